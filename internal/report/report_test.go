package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripReasoning(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no block", "## Summary\nHold.", "## Summary\nHold."},
		{"leading block", "<think>\nweighing\n</think>\n\n## Summary\nBuy.", "## Summary\nBuy."},
		{"leading whitespace", "  <think>x</think> Sell.", "Sell."},
		{"only first block", "<think>a</think>B<think>c</think>", "B<think>c</think>"},
		{"inline block kept", "Intro <think>x</think> end", "Intro <think>x</think> end"},
		{"unterminated", "<think>never closed", "<think>never closed"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripReasoning(tc.in))
		})
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "Recommendation: Hold"))
	want := "\nFinal Report:\n" + strings.Repeat("=", 100) + "\nRecommendation: Hold\n"
	assert.Equal(t, want, buf.String())
}
