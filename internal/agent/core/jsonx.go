package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseState tags how a model reply was turned into a typed payload.
type ParseState int

const (
	// ParseOK means the reply parsed and validated as-is.
	ParseOK ParseState = iota
	// ParseRecovered means the reply was unusable and a deterministic
	// fallback payload was constructed instead.
	ParseRecovered
	// ParseUnparseable means no payload could be produced at all.
	ParseUnparseable
)

func (s ParseState) String() string {
	switch s {
	case ParseOK:
		return "ok"
	case ParseRecovered:
		return "recovered"
	default:
		return "unparseable"
	}
}

// StripFences removes markdown code fences from a model reply. A reply
// that is entirely one fenced block is unwrapped; otherwise any inline
// fence markers are dropped.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			rest := s[idx+1:]
			if end := strings.LastIndex(rest, "```"); end >= 0 {
				return strings.TrimSpace(rest[:end])
			}
		}
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// LocateJSONObject returns the first balanced {...} span in s. Model
// replies often wrap the object in leading or trailing prose, so a bare
// json.Unmarshal on the whole reply is not enough.
func LocateJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, ch := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ExtractJSONObject runs the strip -> locate stages and returns the raw
// JSON object text from a model reply.
func ExtractJSONObject(reply string) (string, error) {
	cleaned := StripFences(reply)
	if obj, ok := LocateJSONObject(cleaned); ok {
		return obj, nil
	}
	return "", fmt.Errorf("no JSON object found in reply")
}

// DecodeReply extracts the JSON object from a model reply and unmarshals
// it into out.
func DecodeReply(reply string, out interface{}) error {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
