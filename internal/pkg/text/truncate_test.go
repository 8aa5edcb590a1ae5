package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 0))
	// "é" is two bytes; cutting inside it backs off to the rune start
	assert.Equal(t, "caf...", Truncate("café au lait", 4))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "## Summary Hold it.", OneLine("## Summary\n\nHold\tit."))
}
