package extraction

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// PlaceholderTitle marks a recipe saved without usable model output.
const PlaceholderTitle = "Recipe - Manual Review Needed"

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ParseCandidate recovers a JSON object from free-form model text. It tries,
// in order: the whole text, fenced code blocks, the span from the first '{'
// to the last '}', and finally the largest balanced object in the text.
// A top-level {"recipe": {...}} wrapper is unwrapped.
func ParseCandidate(text string) (Candidate, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if c, ok := decodeObject(text); ok {
		return c, true
	}
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if c, ok := decodeObject(m[1]); ok {
			return c, true
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if c, ok := decodeObject(text[start : end+1]); ok {
			return c, true
		}
	}
	if obj := largestBalancedObject(text); obj != "" {
		if c, ok := decodeObject(obj); ok {
			return c, true
		}
	}
	return nil, false
}

// PlaceholderCandidate is substituted when the model output is unusable.
func PlaceholderCandidate(description string) Candidate {
	c := Candidate{
		"title":        PlaceholderTitle,
		"ingredients":  []any{},
		"instructions": []any{},
	}
	if description != "" {
		c["description"] = description
	}
	return c
}

func decodeObject(s string) (Candidate, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(s))))
	var v map[string]any
	if err := dec.Decode(&v); err != nil || v == nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	if inner, ok := v["recipe"].(map[string]any); ok && len(v) == 1 {
		v = inner
	}
	return Candidate(v), true
}

// largestBalancedObject scans once for brace-balanced spans outside of JSON
// strings and returns the longest one.
func largestBalancedObject(s string) string {
	var (
		open             []int
		best             string
		inString, escape bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if i+1-start > len(best) {
				best = s[start : i+1]
			}
		}
	}
	return best
}
