package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "plain words", text: "one two three"},
		{name: "leading whitespace", text: "  indented start"},
		{name: "newlines", text: "line one\nline two\n\nline three"},
		{name: "empty", text: ""},
		{name: "trailing whitespace", text: "ends with space "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCodec()
			ids := c.Encode(tt.text)
			assert.Equal(t, tt.text, c.Decode(ids))
		})
	}
}

func TestCodec_StableIDs(t *testing.T) {
	c := NewCodec()

	// Segments carry their trailing whitespace, so only "alpha " repeats
	// here; the final "beta" is a distinct vocabulary entry from "beta ".
	first := c.Encode("alpha beta alpha beta")
	second := c.Encode("alpha beta alpha beta")

	require.Equal(t, first, second)
	assert.Equal(t, first[0], first[2], "same segment should map to same id")
	assert.NotEqual(t, first[1], first[3], "trailing whitespace distinguishes segments")
}

func TestCodec_Count(t *testing.T) {
	c := NewCodec()

	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 3, c.Count("one two three"))
	assert.Equal(t, 4, c.Count("  leading space here"))
}
