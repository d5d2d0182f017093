package strings

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindings(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil list", input: nil, expected: nil},
		{name: "only blanks", input: []string{"", "   ", "\t"}, expected: nil},
		{
			name:     "collapses whitespace",
			input:    []string{"  glare on\t the  photo  ", "blur"},
			expected: []string{"glare on the photo", "blur"},
		},
		{
			name:     "repeats are case-insensitive and keep the first spelling",
			input:    []string{"Glare detected", "blur", "glare  DETECTED", "Blur"},
			expected: []string{"Glare detected", "blur"},
		},
		{
			name:     "verifier order is preserved",
			input:    []string{"edge cut off", "low light", "edge cut off", "face partly hidden"},
			expected: []string{"edge cut off", "low light", "face partly hidden"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Findings(tt.input))
		})
	}
}

func TestFindingsAreCapped(t *testing.T) {
	var in []string
	for i := range MaxFindings + 5 {
		in = append(in, fmt.Sprintf("region %d obscured", i))
	}

	out := Findings(in)
	assert.Len(t, out, MaxFindings)
	assert.Equal(t, "region 0 obscured", out[0])
	assert.Equal(t, fmt.Sprintf("region %d obscured", MaxFindings-1), out[MaxFindings-1])
}
