package binder

import (
	"fmt"
	"reflect"
	"strings"
	timepkg "time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/catalog/pkg/identifiers"
)

const (
	date            = "date"
	gt              = "gt"
	gte             = "gte"
	identifierInput = "identifier_input"
	identifierType  = "identifier_type"
	identifierValue = "identifier_value"
	mx              = "max"
	mn              = "min"
	ne              = "ne"
	oneof           = "oneof"
	required        = "required"
	urlTag          = "url"
)

var (
	timeType = reflect.TypeOf(timepkg.Time{})
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	// FIXME: this doesn't work well for incorrect map values, e.g. it will say
	// `"metadata" should be a string instead of a object` if you pass in
	// `{"metadata":{"foo":{"bar":"baz"}}}`.
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case identifierInput:
		return fmt.Sprintf("%q is required when an identifier has no id", field)
	case identifierValue:
		return fmt.Sprintf("%q is not a valid %s", field, err.Param())
	case identifierType:
		valids := []string{}
		for _, t := range identifiers.Types {
			valids = append(valids, fmt.Sprintf("%q", t))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case gt:
		v := err.Param()
		if v == "" && err.Type() == timeType {
			v = "now"
		}
		return fmt.Sprintf("%q must be greater than %s", field, v)
	case gte:
		v := err.Param()
		if v == "" && err.Type() == timeType {
			v = "now"
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, v)
	case mx:
		return bound(field, "less than or equal to", err.Param(), err.Kind())
	case mn:
		return bound(field, "greater than or equal to", err.Param(), err.Kind())
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	case urlTag:
		return fmt.Sprintf("%q is not a valid URL", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// bound phrases a min or max failure. Numbers compare by value; strings and
// slices compare by length.
func bound(field, relation, param string, kind reflect.Kind) string {
	//exhaustive:ignore
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, relation, param)
	}

	unit := "character"
	if kind == reflect.Slice {
		unit = "element"
	}
	if param != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, relation, param, unit)
}
