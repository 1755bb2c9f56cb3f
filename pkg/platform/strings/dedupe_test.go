package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims whitespace", input: []string{" a:9092 ", "b:9092"}, expected: []string{"a:9092", "b:9092"}},
		{name: "keeps first-seen order", input: []string{"b", "a", "b"}, expected: []string{"b", "a"}},
		{name: "drops blanks", input: []string{"", "  ", "a"}, expected: []string{"a"}},
		{name: "case sensitive", input: []string{"a", "A"}, expected: []string{"a", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimUpper(t *testing.T) {
	got := DedupeAndTrimUpper([]string{"goog", " MSFT", "Goog", "", "brk.b"})
	assert.Equal(t, []string{"GOOG", "MSFT", "BRK.B"}, got)
}
