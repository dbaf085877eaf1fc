// Package llmjson extracts structured JSON from free-form model output.
// Models routinely wrap their JSON payload in prose; this is the single
// place where that untrusted channel is parsed.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPayload signals that no JSON payload was found in the text.
var ErrNoPayload = errors.New("no json payload in model output")

// ExtractObject unmarshals the substring between the first '{' and the last
// '}' into v.
func ExtractObject(text string, v any) error {
	return extract(text, '{', '}', v)
}

// ExtractArray unmarshals the substring between the first '[' and the last
// ']' into v.
func ExtractArray(text string, v any) error {
	return extract(text, '[', ']', v)
}

func extract(text string, open, closing byte, v any) error {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start < 0 || end <= start {
		return fmt.Errorf("%w: missing %q...%q", ErrNoPayload, open, closing)
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}
