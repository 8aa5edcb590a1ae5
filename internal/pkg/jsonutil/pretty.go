// Package jsonutil formats JSON payloads for the LLM transcript.
package jsonutil

import (
	"encoding/json"
	"strings"
)

// Pretty indents raw when it is valid JSON and returns it unchanged otherwise.
func Pretty(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return string(buf)
}

// PrettyValue marshals v with indentation, or returns "" on failure.
func PrettyValue(v any) string {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(buf)
}
