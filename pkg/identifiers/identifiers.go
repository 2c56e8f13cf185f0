package identifiers

import (
	"regexp"
	"strings"
	"unicode"
)

// Type is the kind of external code an identifier carries.
type Type string

const (
	TypeAudibleASIN Type = "audible_asin"
	TypeAmazonASIN  Type = "amazon_asin"
	TypeISBN10      Type = "isbn10"
	TypeISBN13      Type = "isbn13"
	TypeEAN         Type = "ean"
)

// Types lists every accepted identifier type.
var Types = []Type{TypeAudibleASIN, TypeAmazonASIN, TypeISBN10, TypeISBN13, TypeEAN}

var asinRegex = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// IsValidType reports whether t is one of the enumerated identifier types.
func IsValidType(t string) bool {
	for _, known := range Types {
		if string(known) == t {
			return true
		}
	}
	return false
}

// Normalize returns the canonical form of value for the given type. ISBNs and
// EANs lose separators and prefixes, ASINs are upper-cased. Unknown types are
// only trimmed.
func Normalize(t Type, value string) string {
	value = strings.TrimSpace(value)
	switch t {
	case TypeISBN10, TypeISBN13, TypeEAN:
		return NormalizeISBN(value)
	case TypeAudibleASIN, TypeAmazonASIN:
		return strings.ToUpper(value)
	}
	return value
}

// Validate checks the checksum or pattern of an already-normalized value.
func Validate(t Type, value string) bool {
	switch t {
	case TypeISBN10:
		return ValidateISBN10(value)
	case TypeISBN13, TypeEAN:
		return ValidateISBN13(value)
	case TypeAudibleASIN, TypeAmazonASIN:
		return asinRegex.MatchString(value)
	}
	return false
}

// Canonical normalizes value for t and reports whether the result is a
// well-formed code of that type. Values that normalize to nothing are never
// well-formed.
func Canonical(t Type, value string) (string, bool) {
	normalized := Normalize(t, value)
	if normalized == "" {
		return "", false
	}
	return normalized, Validate(t, normalized)
}

// DetectType guesses the identifier type from a bare value. It returns false
// when the value doesn't look like any known code.
func DetectType(value string) (Type, bool) {
	normalized := NormalizeISBN(value)
	if len(normalized) == 13 && ValidateISBN13(normalized) {
		if strings.HasPrefix(normalized, "978") || strings.HasPrefix(normalized, "979") {
			return TypeISBN13, true
		}
		return TypeEAN, true
	}
	if len(normalized) == 10 && ValidateISBN10(normalized) {
		return TypeISBN10, true
	}
	if asinRegex.MatchString(strings.ToUpper(strings.TrimSpace(value))) {
		return TypeAmazonASIN, true
	}
	return "", false
}

// NormalizeISBN removes hyphens, spaces, and common prefixes from an ISBN.
func NormalizeISBN(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "ISBN:")
	value = strings.TrimPrefix(value, "ISBN")

	var result strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ValidateISBN10 validates an ISBN-10 checksum (mod 11, weights 10..1).
func ValidateISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}

	var sum int
	for i, r := range isbn {
		var digit int
		switch {
		case r == 'X' || r == 'x':
			if i != 9 {
				return false
			}
			digit = 10
		case unicode.IsDigit(r):
			digit = int(r - '0')
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// ValidateISBN13 validates an ISBN-13 or EAN-13 checksum (alternating 1/3).
func ValidateISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}

	var sum int
	for i, r := range isbn {
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return sum%10 == 0
}
