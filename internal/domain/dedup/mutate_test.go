package dedup

import (
	"errors"
	"testing"

	"github.com/corey/xdedup/internal/domain/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Apply: character ranges removed through the byte offset table
// =============================================================================

func offsetsOf(text string) []int {
	offsets, _ := window.Layout(text)
	return offsets
}

func TestApply_ASCII(t *testing.T) {
	text := "0123456789"
	out, err := Apply(text, offsetsOf(text), []Range{{1, 3}, {5, 6}, {8, 10}})
	require.NoError(t, err)
	assert.Equal(t, "03467", out)
}

func TestApply_MultiByte(t *testing.T) {
	text := "aé😀bçd"
	out, err := Apply(text, offsetsOf(text), []Range{{1, 3}, {4, 5}})
	require.NoError(t, err)
	assert.Equal(t, "abd", out)
}

func TestApply_NoRanges(t *testing.T) {
	out, err := Apply("keep", offsetsOf("keep"), nil)
	require.NoError(t, err)
	assert.Equal(t, "keep", out)
}

func TestApply_WholeText(t *testing.T) {
	out, err := Apply("gone", offsetsOf("gone"), []Range{{0, 4}})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestApply_TouchingRanges(t *testing.T) {
	out, err := Apply("abcdef", offsetsOf("abcdef"), []Range{{0, 2}, {2, 4}})
	require.NoError(t, err)
	assert.Equal(t, "ef", out)
}

func TestApply_InvariantViolations(t *testing.T) {
	text := "abcdef"
	tests := []struct {
		name   string
		ranges []Range
	}{
		{"overlap", []Range{{0, 3}, {2, 5}}},
		{"descending", []Range{{3, 4}, {0, 1}}},
		{"past end", []Range{{4, 7}}},
		{"empty range", []Range{{2, 2}}},
		{"negative", []Range{{-1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(text, offsetsOf(text), tt.ranges)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRangeInvariant))
		})
	}
}
