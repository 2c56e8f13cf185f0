package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/identifiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})
}

type identifierParams struct {
	Identifiers []identifiers.Input `json:"identifiers" validate:"dive"`
}

func TestIdentifierValidation(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		errMsg  string
	}{
		{"public id", `{"identifiers":[{"id":"abc"}]}`, ""},
		{"type and value", `{"identifiers":[{"type":"isbn13","value":"978-0-7475-3269-9"}]}`, ""},
		{"unknown type", `{"identifiers":[{"type":"doi","value":"10.1000/1"}]}`, `"type" must be one of the following: "audible_asin"`},
		{"missing value", `{"identifiers":[{"type":"isbn10"}]}`, `"value" is required when an identifier has no id`},
		{"empty object", `{"identifiers":[{}]}`, `"type" is required when an identifier has no id`},
		{"value without digits", `{"identifiers":[{"type":"isbn13","value":"N/A"}]}`, `"value" is not a valid isbn13`},
		{"bad checksum", `{"identifiers":[{"type":"isbn10","value":"0-7475-3269-0"}]}`, `"value" is not a valid isbn10`},
		{"short asin", `{"identifiers":[{"type":"amazon_asin","value":"B00"}]}`, `"value" is not a valid amazon_asin`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := identifierParams{}
			err := b.Bind(&p, newContext(tt.payload, echo.MIMEApplicationJSON))
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

type queryParams struct {
	Limit   int    `query:"limit" json:"limit" default:"25" validate:"min=1,max=50"`
	Enabled *bool  `query:"enabled" json:"enabled"`
	Type    string `query:"type" json:"type" validate:"omitempty,identifier_type"`
}

func TestBindQuery(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		errMsg string
		check  func(t *testing.T, p queryParams)
	}{
		{"defaults", "", "", func(t *testing.T, p queryParams) {
			assert.Equal(t, 25, p.Limit)
			assert.Nil(t, p.Enabled)
		}},
		{"values", "limit=10&enabled=false&type=isbn10", "", func(t *testing.T, p queryParams) {
			assert.Equal(t, 10, p.Limit)
			require.NotNil(t, p.Enabled)
			assert.False(t, *p.Enabled)
		}},
		{"conversion", "limit=ten", `"limit" should be of type int`, nil},
		{"unknown key", "offset=3", `Unknown Parameter "offset"`, nil},
		{"validation", "limit=51", `"limit" must be less than or equal to 50`, nil},
		{"identifier type", "type=issn", `"type" must be one of the following`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			c := e.NewContext(req, httptest.NewRecorder())

			p := queryParams{}
			err := b.Bind(&p, c)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestBindEmptyBody(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	err = b.Bind(&params{}, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request body can't be empty.")

	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	c.Set(AllowEmptyBodyKey, true)
	require.NoError(t, b.Bind(&params{}, c))
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
