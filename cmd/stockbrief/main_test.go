package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSymbol(t *testing.T) {
	sym, err := readSymbol(strings.NewReader("  aapl \nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "aapl", sym)

	_, err = readSymbol(strings.NewReader(""))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
