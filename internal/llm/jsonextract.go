package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when no decodable JSON object is present.
var ErrNoJSONObject = errors.New("no JSON object found in text")

// ExtractJSONObject returns the first balanced {...} object found in text,
// tolerating leading/trailing prose and markdown code fences. Models often
// wrap structured output in commentary; callers must treat failure here as a
// degradation signal, never a fatal error.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	text = stripCodeFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, ErrNoJSONObject
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return nil, ErrNoJSONObject
				}
				return json.RawMessage(candidate), nil
			}
		}
	}
	return nil, ErrNoJSONObject
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
