package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type fakeFieldError struct {
	tag   string
	param string
	kind  reflect.Kind
}

func (e *fakeFieldError) Error() string           { return "fake field error" }
func (e *fakeFieldError) Tag() string             { return e.tag }
func (e *fakeFieldError) ActualTag() string       { return e.tag }
func (e *fakeFieldError) Namespace() string       { return "" }
func (e *fakeFieldError) StructNamespace() string { return "" }
func (e *fakeFieldError) Field() string           { return "released_at" }
func (e *fakeFieldError) StructField() string     { return "" }
func (e *fakeFieldError) Value() interface{}      { return "" }
func (e *fakeFieldError) Param() string           { return e.param }
func (e *fakeFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *fakeFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *fakeFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{date, "", 0, `"released_at" should be in the format of YYYY-MM-DD`},
		{identifierType, "", 0, `"released_at" must be one of the following: "audible_asin", "amazon_asin", "isbn10", "isbn13", "ean"`},
		{identifierInput, "", 0, `"released_at" is required when an identifier has no id`},
		{identifierValue, "isbn13", 0, `"released_at" is not a valid isbn13`},
		{gt, "0", reflect.Int, `"released_at" must be greater than 0`},
		{mx, "1023", reflect.String, `"released_at" length must be less than or equal to 1023 characters`},
		{mn, "1", reflect.String, `"released_at" length must be greater than or equal to 1 character`},
		{mx, "50", reflect.Int, `"released_at" must be less than or equal to 50`},
		{mn, "0", reflect.Float64, `"released_at" must be greater than or equal to 0`},
		{mx, "100", reflect.Slice, `"released_at" length must be less than or equal to 100 elements`},
		{mn, "1", reflect.Slice, `"released_at" length must be greater than or equal to 1 element`},
		{ne, "", 0, `"released_at" can't be ""`},
		{oneof, "book audiobook", 0, `"released_at" must be one of the following: "book", "audiobook"`},
		{required, "", 0, `"released_at" is required`},
		{urlTag, "", 0, `"released_at" is not a valid URL`},
		{"uuid4", "", 0, `"released_at" is invalid`},
	}

	for _, tt := range cases {
		err := fakeFieldError{tag: tt.tag, param: tt.param, kind: tt.kind}
		assert.Equal(t, tt.msg, formatValidationError(&err), tt.tag)
	}
}
