package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Nil(t, DedupeAndTrim(nil))
	assert.Equal(t, []string{"Acme", "acme", "Okta"},
		DedupeAndTrim([]string{" Acme", "acme ", "Acme", "", "  ", "Okta"}),
		"case is preserved, so differently cased names are distinct")
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "folds case", input: []string{"Acme", "ACME", "acme"}, expected: []string{"acme"}},
		{name: "keeps first-seen order", input: []string{"Okta", " acme", "okta"}, expected: []string{"okta", "acme"}},
		{name: "drops blanks", input: []string{"", "   ", "Acme"}, expected: []string{"acme"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
