package binder

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shishobooks/catalog/pkg/identifiers"
)

var (
	dateRE = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The reason the empty string is allowed is that this validator can be
// used to clear out values. However, this is only useful in that case, so if
// you're using this validator but want the value to be required, add a `ne=` to
// the validate tag so that the empty string is disallowed.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

// urlValidator accepts absolute http(s) URLs or the empty string, which clears
// the value.
func urlValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// identifierTypeValidator accepts only the enumerated identifier types.
func identifierTypeValidator(fl validator.FieldLevel) bool {
	return identifiers.IsValidType(fl.Field().String())
}

// identifierInputValidator requires an identifier input to be shaped as
// either {id} or {type, value}, and the value of a pair to be a well-formed
// code of its type.
func identifierInputValidator(sl validator.StructLevel) {
	in := sl.Current().Interface().(identifiers.Input)
	if in.ID != nil && strings.TrimSpace(*in.ID) != "" {
		return
	}
	hasType := in.Type != nil && strings.TrimSpace(*in.Type) != ""
	hasValue := in.Value != nil && strings.TrimSpace(*in.Value) != ""
	if hasType && hasValue {
		t := identifiers.Type(strings.TrimSpace(*in.Type))
		if !identifiers.IsValidType(string(t)) {
			// identifier_type already reports this one.
			return
		}
		if _, ok := identifiers.Canonical(t, *in.Value); !ok {
			sl.ReportError(in.Value, "value", "Value", identifierValue, string(t))
		}
		return
	}
	if !hasType {
		sl.ReportError(in.Type, "type", "Type", "identifier_input", "")
	}
	if !hasValue {
		sl.ReportError(in.Value, "value", "Value", "identifier_input", "")
	}
}
