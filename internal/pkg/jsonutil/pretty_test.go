package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Pretty(` {"a":1} `))
	assert.Equal(t, "not json", Pretty("not json"))
	assert.Equal(t, "", Pretty("  "))
}

func TestPrettyValue(t *testing.T) {
	assert.Equal(t, "{\n  \"model\": \"m\"\n}", PrettyValue(map[string]string{"model": "m"}))
	assert.Equal(t, "", PrettyValue(func() {}))
}
