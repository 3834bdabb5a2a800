package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinHTMLLength is the shortest trimmed html accepted from a provider.
const MinHTMLLength = 50

// ErrUnparsable marks provider output that did not yield a usable site.
var ErrUnparsable = errors.New("unparsable model output")

// Site holds the three generated documents.
type Site struct {
	HTML   string `json:"html"`
	CSS    string `json:"css"`
	Script string `json:"js"`
}

const fence = "```"

// Normalize extracts a Site from raw model output. It accepts a bare JSON
// object, one wrapped in a fenced code block, or one surrounded by prose.
// Every failure wraps ErrUnparsable.
func Normalize(raw string) (Site, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Site{}, fmt.Errorf("%w: empty response", ErrUnparsable)
	}

	candidate := extractJSON(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return Site{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if obj == nil {
		return Site{}, fmt.Errorf("%w: not a JSON object", ErrUnparsable)
	}

	if _, ok := obj["html"]; !ok {
		return Site{}, fmt.Errorf("%w: html field missing", ErrUnparsable)
	}

	site := Site{
		HTML:   stringField(obj, "html"),
		CSS:    stringField(obj, "css"),
		Script: stringField(obj, "js"),
	}
	if n := utf8.RuneCountInString(site.HTML); n < MinHTMLLength {
		return Site{}, fmt.Errorf("%w: html too short (%d chars)", ErrUnparsable, n)
	}
	return site, nil
}

// extractJSON narrows text down to the JSON object candidate: the interior
// of a ```json fence, else of the first generic fence, then the span from
// the first '{' to the last '}'.
func extractJSON(text string) string {
	if i := strings.Index(text, fence+"json"); i >= 0 {
		rest := text[i+len(fence+"json"):]
		if j := strings.Index(rest, fence); j >= 0 {
			rest = rest[:j]
		}
		text = strings.TrimSpace(rest)
	} else if parts := strings.Split(text, fence); len(parts) >= 3 {
		text = strings.TrimSpace(parts[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return text
}

// stringField returns the trimmed string at key, or "" for any other type.
func stringField(obj map[string]any, key string) string {
	s, ok := obj[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
