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
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"U001"},
			expected: []string{"U001"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  U001  ", "U002  ", "  U003"},
			expected: []string{"U001", "U002", "U003"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"U001", "U002", "U001", "U003", "U002"},
			expected: []string{"U001", "U002", "U003"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"U001", "", "  ", "U002"},
			expected: []string{"U001", "U002"},
		},
		{
			name:     "preserves case",
			input:    []string{"Foo", "foo", "FOO"},
			expected: []string{"Foo", "foo", "FOO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
