// Package jsonx extracts structured JSON from loosely formatted model
// output. Generative models wrap JSON in markdown fences, prefix it with
// prose, or append trailing commentary; every tolerant-parsing trick
// lives here so callers can stay strict.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"

	corerr "github.com/signos-ai/signos/internal/errors"
)

var fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripFences removes a surrounding markdown code fence if present.
func StripFences(text string) string {
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// FirstArray returns the first balanced top-level JSON array in text.
func FirstArray(text string) (string, bool) {
	return firstBalanced(text, '[', ']')
}

// FirstObject returns the first balanced top-level JSON object in text.
func FirstObject(text string) (string, bool) {
	return firstBalanced(text, '{', '}')
}

// firstBalanced scans for the first span opened by open and closed by its
// matching close, tracking string literals so braces inside strings do
// not break the balance.
func firstBalanced(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// UnmarshalFirstArray strips fences, finds the first JSON array, and
// unmarshals it into v.
func UnmarshalFirstArray(text string, v any) error {
	cleaned := StripFences(text)
	span, ok := FirstArray(cleaned)
	if !ok {
		return corerr.UnparseableModelOutput("no JSON array found in model output", nil)
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return corerr.UnparseableModelOutput("malformed JSON array in model output", err)
	}
	return nil
}

// UnmarshalFirstObject strips fences, finds the first JSON object, and
// unmarshals it into v.
func UnmarshalFirstObject(text string, v any) error {
	cleaned := StripFences(text)
	span, ok := FirstObject(cleaned)
	if !ok {
		return corerr.UnparseableModelOutput("no JSON object found in model output", nil)
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return corerr.UnparseableModelOutput("malformed JSON object in model output", err)
	}
	return nil
}
