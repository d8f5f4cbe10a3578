package llmtext

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when every salvage strategy fails to locate a JSON
// value in the model output.
var ErrNoJSON = errors.New("no JSON value found in model output")

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?[ \t]*\n(.*?)\n[ \t]*```")

// SalvageJSON extracts a JSON array or object from raw model output that may
// be wrapped in prose or markdown fences. Strategies, first success wins:
//
//  1. parse the trimmed string directly
//  2. parse the body of a fenced code block
//  3. slice from the first '['/'{' to the last ']'/'}' and parse that
//
// Step 3 is a naive first/last scan, not a balanced-bracket walk; it can
// mis-slice when multiple top-level values are present. That matches the
// observed model-output handling and is kept as-is.
func SalvageJSON(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)

	var firstErr error
	var probe interface{}
	if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
		return json.RawMessage(trimmed), nil
	} else {
		firstErr = err
	}

	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		inner := strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(inner), &probe); err == nil {
			return json.RawMessage(inner), nil
		}
	}

	if span := bracketSpan(raw); span != "" {
		if err := json.Unmarshal([]byte(span), &probe); err == nil {
			return json.RawMessage(span), nil
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrNoJSON, firstErr)
}

// bracketSpan returns the substring between the first opening bracket and the
// last closing bracket of the same kind, preferring whichever opener appears
// first in the text.
func bracketSpan(raw string) string {
	arrStart := strings.Index(raw, "[")
	objStart := strings.Index(raw, "{")

	useArray := arrStart >= 0 && (objStart < 0 || arrStart < objStart)
	if useArray {
		if end := strings.LastIndex(raw, "]"); end > arrStart {
			return raw[arrStart : end+1]
		}
		return ""
	}
	if objStart >= 0 {
		if end := strings.LastIndex(raw, "}"); end > objStart {
			return raw[objStart : end+1]
		}
	}
	return ""
}
