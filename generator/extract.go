package generator

import (
	"github.com/tidwall/gjson"
)

// The service answers in prose more often than it should, even when told to
// emit bare JSON. These helpers pull the first syntactically valid object or
// array out of whatever surrounds it (markdown fences, apologies, trailing
// commentary) instead of trusting the response to deserialize directly.

// FirstJSONObject returns the first balanced, valid JSON object in raw.
func FirstJSONObject(raw string) (string, bool) {
	return firstBalanced(raw, '{', '}')
}

// FirstJSONArray returns the first balanced, valid JSON array in raw.
func FirstJSONArray(raw string) (string, bool) {
	return firstBalanced(raw, '[', ']')
}

func firstBalanced(raw string, open, closer byte) (string, bool) {
	for start := 0; start < len(raw); start++ {
		if raw[start] != open {
			continue
		}
		if end, ok := scanBalanced(raw, start, open, closer); ok {
			candidate := raw[start : end+1]
			if gjson.Valid(candidate) {
				return candidate, true
			}
			// Balanced but not valid JSON; keep looking past this opener.
		}
	}
	return "", false
}

// scanBalanced walks from the opener at start, tracking nesting depth and
// skipping string literals. Returns the index of the matching closer.
func scanBalanced(raw string, start int, open, closer byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
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
		case closer:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
