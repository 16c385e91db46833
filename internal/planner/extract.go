package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	objectArrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
	anyArrayPattern    = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractArray pulls the first JSON array of objects out of free-form model
// output. It tolerates surrounding prose, markdown fences and a single level
// of string encoding. It is a heuristic, not a JSON scanner.
func ExtractArray(text string) ([]map[string]any, error) {
	loc := objectArrayPattern.FindStringIndex(text)
	if loc == nil {
		loc = anyArrayPattern.FindStringIndex(text)
	}
	if loc == nil {
		return nil, ErrNoJSONArrayFound
	}

	candidate := text[loc[0]:loc[1]]
	// A double-encoded array sits between quotes. Unquoted contents mean the
	// quotes were decoration, so the bare match is parsed instead.
	start, end := loc[0], loc[1]
	if start > 0 && end < len(text) && text[start-1] == '"' && text[end] == '"' {
		var unwrapped string
		if err := json.Unmarshal([]byte(text[start-1:end+1]), &unwrapped); err == nil {
			candidate = unwrapped
		}
	}
	candidate = strings.TrimSpace(candidate)

	var items []map[string]any
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return items, nil
}
