package binder

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/identifiers"
)

var unknownFieldsRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Context keys a handler can set before calling Bind to relax its checks.
const (
	AllowEmptyBodyKey     = "allow_empty_body"
	AllowUnknownFieldsKey = "allow_unknown_fields"
)

// Binder implements echo.Binder. Bodies are JSON only; GET and DELETE
// requests bind from the query string. After decoding, mold cleans the params,
// defaults fills zero values, and validator checks them.
type Binder struct {
	queryDecoder *schema.Decoder
	conform      *mold.Transformer
	validate     *validator.Validate
}

// New initializes a new Binder instance with the catalog's validation rules
// registered.
func New() (*Binder, error) {
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	rules := map[string]validator.Func{
		"date":            dateValidator,
		"url":             urlValidator,
		"identifier_type": identifierTypeValidator,
	}
	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, errors.Wrapf(err, "failed to register %q validation", tag)
		}
	}
	validate.RegisterStructValidation(identifierInputValidator, identifiers.Input{})

	return &Binder{queryDecoder, modifiers.New(), validate}, nil
}

// Bind binds, modifies, and validates payloads against the given struct.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	switch {
	case req.ContentLength != 0 && req.Body != nil && req.Body != http.NoBody:
		if err := b.decodeBody(i, c); err != nil {
			return err
		}
	case req.Method == http.MethodGet || req.Method == http.MethodDelete:
		if err := b.decodeQuery(i, c.QueryParams()); err != nil {
			return err
		}
	default:
		if allow, _ := c.Get(AllowEmptyBodyKey).(bool); !allow {
			return errcodes.EmptyRequestBody()
		}
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) || len(errs) == 0 {
			return errors.WithStack(err)
		}
		return errcodes.ValidationError(formatValidationError(errs[0]))
	}
	return nil
}

func (b *Binder) decodeBody(i interface{}, c echo.Context) error {
	req := c.Request()
	defer req.Body.Close()

	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return errcodes.UnsupportedMediaType()
	}

	dec := json.NewDecoder(req.Body)
	if allow, _ := c.Get(AllowUnknownFieldsKey).(bool); !allow {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(i); err != nil {
		// return better error message when there are unknown fields
		if matches := unknownFieldsRE.FindStringSubmatch(err.Error()); len(matches) > 1 {
			return errcodes.UnknownParameter(matches[1])
		}

		// return better error message on type errors
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
		}

		logger.FromEchoContext(c).Err(err).Warn("unknown json decode error")
		return errcodes.MalformedPayload()
	}
	return nil
}

func (b *Binder) decodeQuery(i interface{}, params url.Values) error {
	err := b.queryDecoder.Decode(i, params)
	if err == nil {
		return nil
	}

	var errs schema.MultiError
	if !errors.As(err, &errs) {
		return errors.WithStack(err)
	}
	// Report a single error, preferring the first key alphabetically so the
	// message is stable.
	var key string
	for k := range errs {
		if key == "" || k < key {
			key = k
		}
	}
	switch e := errs[key].(type) {
	case schema.ConversionError:
		return errcodes.ValidationTypeError(formatSchemaConversionError(e))
	case schema.UnknownKeyError:
		return errcodes.UnknownParameter(e.Key)
	}
	return errors.WithStack(errs[key])
}
