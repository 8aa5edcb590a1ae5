// Package report formats the final investment report for the console.
package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	// Title precedes the separator line.
	Title         = "Final Report:"
	SeparatorWide = 100
)

var reasoningBlock = regexp.MustCompile(`^\s*<think>[\s\S]*?</think>\s*`)

// StripReasoning removes a single leading <think>...</think> block emitted by
// reasoning models. Text without such a block comes back unchanged.
func StripReasoning(text string) string {
	loc := reasoningBlock.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[loc[1]:]
}

// Separator returns the rule printed under the title.
func Separator() string {
	return strings.Repeat("=", SeparatorWide)
}

// Render writes the report block: a blank line, the title, the rule, the
// report text and a trailing newline.
func Render(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, "\n%s\n%s\n%s\n", Title, Separator(), text)
	return err
}
