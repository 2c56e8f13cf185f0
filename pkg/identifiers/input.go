package identifiers

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
)

// ErrMalformedInput is returned when an identifier input is neither a public id
// reference, a type/value pair, nor (where allowed) a bare value.
var ErrMalformedInput = errors.New("identifier input must have an id, or a type and a value")

// Input is an identifier reference as it crosses the API boundary. Exactly one
// of the shapes {id} or {type, value} is expected when attaching; lookups also
// accept a bare {value}.
type Input struct {
	ID    *string `json:"id,omitempty" query:"id" validate:"omitempty,min=1,max=64"`
	Type  *string `json:"type,omitempty" query:"type" validate:"omitempty,identifier_type"`
	Value *string `json:"value,omitempty" query:"value" validate:"omitempty,min=1,max=255"`
}

// ByPublicID builds an Input referencing an existing identifier.
func ByPublicID(id string) Input {
	return Input{ID: &id}
}

// ByPair builds an Input naming an identifier by type and value.
func ByPair(t Type, value string) Input {
	s := string(t)
	return Input{Type: &s, Value: &value}
}

// ByValue builds a loose lookup Input with no type.
func ByValue(value string) Input {
	return Input{Value: &value}
}

type refMode int

const (
	refByPublicID refMode = iota + 1
	refByPair
	refByValue
)

type ref struct {
	mode     refMode
	publicID string
	typ      Type
	value    string
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// resolve picks the lookup mode for an input. A public id always wins over any
// other field.
func (in Input) resolve(allowBareValue bool) (ref, error) {
	if present(in.ID) {
		return ref{mode: refByPublicID, publicID: strings.TrimSpace(*in.ID)}, nil
	}
	if present(in.Type) && present(in.Value) {
		t := Type(strings.TrimSpace(*in.Type))
		if !IsValidType(string(t)) {
			return ref{}, errors.Wrapf(ErrMalformedInput, "unknown identifier type %q", t)
		}
		value, ok := Canonical(t, *in.Value)
		if !ok {
			return ref{}, errors.Wrapf(ErrMalformedInput, "%q is not a valid %s", strings.TrimSpace(*in.Value), t)
		}
		return ref{mode: refByPair, typ: t, value: value}, nil
	}
	if allowBareValue && present(in.Value) {
		value := strings.TrimSpace(*in.Value)
		if t, ok := DetectType(value); ok {
			value = Normalize(t, value)
		}
		return ref{mode: refByValue, value: value}, nil
	}
	return ref{}, errors.WithStack(ErrMalformedInput)
}

// AsValidationError maps malformed-input errors to a 422 for the API and
// passes every other error through.
func AsValidationError(err error) error {
	if errors.Is(err, ErrMalformedInput) {
		return errcodes.ValidationError(err.Error())
	}
	return err
}
