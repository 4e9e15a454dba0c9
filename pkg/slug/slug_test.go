package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/assetkit/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple text", input: "Hello World", expected: "hello-world"},
		{name: "punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "Product 123", expected: "product-123"},
		{name: "repeated separators", input: "Too    Many  __ Spaces", expected: "too-many-spaces"},
		{name: "trimmed", input: "  Trim Me  ", expected: "trim-me"},
		{name: "dots", input: "IMG_2041.final.JPG", expected: "img-2041-final-jpg"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!@#$%^&*()", expected: ""},
		{name: "diacritics", input: "Café résumé naïve", expected: "cafe-resume-naive"},
		{name: "german", input: "Ärmel Größe", expected: "armel-grosse"},
		{name: "nordic and polish", input: "Søren Łódź", expected: "soren-lodz"},
		{name: "ligatures", input: "Æsir œuvre", expected: "aesir-oeuvre"},
		{name: "compatibility forms", input: "ﬁle №5", expected: "file-no5"},
		{name: "non latin dropped", input: "товар 42", expected: "42"},
		{name: "keep case", input: "Hello World", opts: []slug.Option{slug.Lowercase(false)}, expected: "Hello-World"},
		{name: "custom separator", input: "Hello World", opts: []slug.Option{slug.Separator("_")}, expected: "hello_world"},
		{name: "max length", input: "This is a very long title", opts: []slug.Option{slug.MaxLength(12)}, expected: "this-is-a-ve"},
		{name: "max length never ends with separator", input: "abc def", opts: []slug.Option{slug.MaxLength(4)}, expected: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Creme brulee", slug.Fold("Crème brûlée"))
	assert.Equal(t, "plain", slug.Fold("plain"))
}
