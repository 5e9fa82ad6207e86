package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// SanitizeAnalysisJSON
// - Strips markdown fences and anything around the outermost JSON object
// - Renames known synonyms (points -> key_points, lang -> language)
// - Coerces a string key_points into a one-element array, drops empty entries
// - Clamps confidence into [0,1]
// - Removes unknown keys (strict additionalProperties = false friendliness)
func SanitizeAnalysisJSON(raw []byte, maxPoints int, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	body, ok := extractJSONObject(string(raw))
	if !ok {
		return nil, nil, fmt.Errorf("sanitize: no JSON object in reply")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	renamed("points", "key_points")
	renamed("bullets", "key_points")
	renamed("keypoints", "key_points")
	renamed("lang", "language")
	renamed("resume", "summary")
	renamed("named_entities", "entities")

	// key_points: accept a lone string or a mixed array; keep non-empty strings
	switch t := m["key_points"].(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			m["key_points"] = []string{s}
		} else {
			delete(m, "key_points")
			dropped = append(dropped, "key_points(empty)")
		}
	case []any:
		points := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					points = append(points, s)
				}
			}
		}
		if maxPoints > 0 && len(points) > maxPoints {
			points = points[:maxPoints]
			dropped = append(dropped, "key_points(trimmed)")
		}
		m["key_points"] = points
	case nil:
		delete(m, "key_points")
	}

	// entities: keep well-formed {type, value} objects, drop the rest
	switch t := m["entities"].(type) {
	case []any:
		ents := make([]map[string]string, 0, len(t))
		for _, e := range t {
			obj, ok := e.(map[string]any)
			if !ok {
				continue
			}
			ty, _ := obj["type"].(string)
			val, _ := obj["value"].(string)
			ty = strings.ToLower(strings.TrimSpace(ty))
			val = strings.TrimSpace(val)
			if ty == "" || val == "" {
				continue
			}
			ents = append(ents, map[string]string{"type": ty, "value": val})
		}
		m["entities"] = ents
	case nil:
		delete(m, "entities")
	default:
		delete(m, "entities")
		dropped = append(dropped, "entities(type)")
	}

	if v, ok := m["confidence"].(float64); ok {
		switch {
		case v < 0:
			m["confidence"] = 0.0
		case v > 1:
			m["confidence"] = 1.0
		}
	} else if _, present := m["confidence"]; present {
		delete(m, "confidence")
		dropped = append(dropped, "confidence(type)")
	}

	for _, k := range []string{"summary", "language"} {
		if v, ok := m[k].(string); ok {
			s := strings.TrimSpace(v)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}
	if v, ok := m["language"].(string); ok {
		m["language"] = strings.ToLower(v)
	}

	allowed := map[string]struct{}{
		"summary": {}, "key_points": {}, "entities": {}, "language": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("ai.sanitize.applied", "dropped", dropped)
	}
	return out, dropped, nil
}

// extractJSONObject returns the substring from the first '{' to its matching
// closing brace, skipping over string literals. Models love wrapping JSON in
// prose or ``` fences.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
