package identifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected Type
		ok       bool
	}{
		{"isbn13", "9780316769488", TypeISBN13, true},
		{"isbn13 with hyphens", "978-0-316-76948-8", TypeISBN13, true},
		{"isbn10", "0316769487", TypeISBN10, true},
		{"isbn10 with X", "080442957X", TypeISBN10, true},
		// EAN-13 outside the bookland prefixes
		{"ean", "4006381333931", TypeEAN, true},
		{"asin", "B08N5WRWNW", TypeAmazonASIN, true},
		{"lowercase asin", "b08n5wrwnw", TypeAmazonASIN, true},
		{"bad checksum", "9780316769489", "", false},
		{"random value", "random text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := DetectType(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsValidType(t *testing.T) {
	for _, typ := range Types {
		assert.True(t, IsValidType(string(typ)), typ)
	}
	assert.False(t, IsValidType("goodreads"))
	assert.False(t, IsValidType(""))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		typ      Type
		value    string
		expected string
	}{
		{TypeISBN13, "978-0-7475-3269-9", "9780747532699"},
		{TypeISBN10, " 0-8044-2957-x ", "080442957X"},
		{TypeEAN, "4 006381 333931", "4006381333931"},
		{TypeAudibleASIN, "b00abc1234", "B00ABC1234"},
		{TypeAmazonASIN, " B08N5WRWNW", "B08N5WRWNW"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.typ, tt.value))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate(TypeISBN13, "9780747532699"))
	assert.False(t, Validate(TypeISBN13, "9780747532690"))
	assert.True(t, Validate(TypeISBN10, "0316769487"))
	assert.True(t, Validate(TypeEAN, "4006381333931"))
	assert.True(t, Validate(TypeAudibleASIN, "B00ABC1234"))
	assert.False(t, Validate(TypeAudibleASIN, "B00ABC123"))
	assert.False(t, Validate("goodreads", "12345"))
}

func TestValidateISBN10(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"0316769487", true},
		{"080442957X", true},
		{"0451524934", true},
		{"0316769488", false},  // bad checksum
		{"123456789", false},   // too short
		{"12345678901", false}, // too long
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateISBN10(tt.value))
		})
	}
}

func TestValidateISBN13(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"9780316769488", true},
		{"9780804429573", true},
		{"9780316769489", false},  // bad checksum
		{"978031676948", false},   // too short
		{"97803167694888", false}, // too long
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateISBN13(tt.value))
		})
	}
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"978-0-316-76948-8", "9780316769488"},
		{"0-316-76948-7", "0316769487"},
		{"978 0 316 76948 8", "9780316769488"},
		{"ISBN: 9780316769488", "9780316769488"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.value))
		})
	}
}

func TestCanonical(t *testing.T) {
	value, ok := Canonical(TypeISBN10, "ISBN 0-316-76948-7")
	assert.True(t, ok)
	assert.Equal(t, "0316769487", value)

	value, ok = Canonical(TypeAmazonASIN, " b000bhpsyq ")
	assert.True(t, ok)
	assert.Equal(t, "B000BHPSYQ", value)

	_, ok = Canonical(TypeISBN13, "N/A")
	assert.False(t, ok)
	_, ok = Canonical(TypeISBN13, "")
	assert.False(t, ok)
}

func TestInputResolve(t *testing.T) {
	t.Run("public id wins over everything else", func(t *testing.T) {
		id := "abc"
		typ := string(TypeISBN13)
		value := "9780747532699"
		r, err := Input{ID: &id, Type: &typ, Value: &value}.resolve(true)
		assert.NoError(t, err)
		assert.Equal(t, refByPublicID, r.mode)
		assert.Equal(t, "abc", r.publicID)
	})

	t.Run("pair is normalized", func(t *testing.T) {
		r, err := ByPair(TypeISBN13, "978-0-7475-3269-9").resolve(false)
		assert.NoError(t, err)
		assert.Equal(t, refByPair, r.mode)
		assert.Equal(t, "9780747532699", r.value)
	})

	t.Run("unknown type is malformed", func(t *testing.T) {
		_, err := ByPair("goodreads", "123").resolve(false)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("pair without a well-formed value is malformed", func(t *testing.T) {
		for _, in := range []Input{
			ByPair(TypeISBN13, "N/A"),
			ByPair(TypeISBN13, "unknown"),
			ByPair(TypeEAN, "TBD"),
			ByPair(TypeISBN10, "--"),
			ByPair(TypeISBN13, "978-0-7475-3269-0"),
			ByPair(TypeAudibleASIN, "B00"),
		} {
			_, err := in.resolve(false)
			assert.ErrorIs(t, err, ErrMalformedInput, *in.Value)
		}
	})

	t.Run("bare value only where allowed", func(t *testing.T) {
		r, err := ByValue("978-0-7475-3269-9").resolve(true)
		assert.NoError(t, err)
		assert.Equal(t, refByValue, r.mode)
		assert.Equal(t, "9780747532699", r.value)

		_, err = ByValue("9780747532699").resolve(false)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("empty input is malformed", func(t *testing.T) {
		_, err := Input{}.resolve(true)
		assert.ErrorIs(t, err, ErrMalformedInput)

		blank := "  "
		_, err = Input{Type: &blank, Value: &blank}.resolve(true)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
}
