package ai

import (
	"encoding/json"
	"strings"
	"testing"
)

func sanitized(t *testing.T, raw string, maxPoints int) map[string]any {
	t.Helper()
	out, _, err := SanitizeAnalysisJSON([]byte(raw), maxPoints, nil)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("decode sanitized: %v", err)
	}
	return m
}

func TestSanitizeStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\",\"key_points\":[\"a\"],\"language\":\"FR\"}\n```"
	m := sanitized(t, raw, 5)
	if m["summary"] != "ok" {
		t.Errorf("summary = %v", m["summary"])
	}
	if m["language"] != "fr" {
		t.Errorf("language = %v, want lowercased", m["language"])
	}
}

func TestSanitizeRenamesSynonyms(t *testing.T) {
	m := sanitized(t, `{"summary":"ok","points":["a","b"],"lang":"fr"}`, 5)
	if _, ok := m["key_points"]; !ok {
		t.Error("points not renamed to key_points")
	}
	if m["language"] != "fr" {
		t.Errorf("lang not renamed: %v", m)
	}
}

func TestSanitizeCoercesStringKeyPoints(t *testing.T) {
	m := sanitized(t, `{"summary":"ok","key_points":"un seul point","language":"fr"}`, 5)
	pts, ok := m["key_points"].([]any)
	if !ok || len(pts) != 1 || pts[0] != "un seul point" {
		t.Errorf("key_points = %v", m["key_points"])
	}
}

func TestSanitizeTrimsExcessPointsAndEmpties(t *testing.T) {
	m := sanitized(t, `{"summary":"ok","key_points":["a","","b","c","d"],"language":"fr"}`, 3)
	pts := m["key_points"].([]any)
	if len(pts) != 3 {
		t.Errorf("key_points = %v", pts)
	}
}

func TestSanitizeClampsConfidenceAndDropsUnknown(t *testing.T) {
	m := sanitized(t, `{"summary":"ok","key_points":["a"],"language":"fr","confidence":1.7,"chain_of_thought":"..."}`, 5)
	if m["confidence"] != 1.0 {
		t.Errorf("confidence = %v", m["confidence"])
	}
	if _, ok := m["chain_of_thought"]; ok {
		t.Error("unknown key survived")
	}
}

func TestSanitizeEntitiesKeepsWellFormedPairs(t *testing.T) {
	raw := `{"summary":"ok","key_points":["a"],"language":"fr",` +
		`"entities":[{"type":" Person ","value":" Marie Durand "},{"type":"date"},{"value":"x"},"loose",{"type":"","value":"y"}]}`
	m := sanitized(t, raw, 5)
	ents, ok := m["entities"].([]any)
	if !ok || len(ents) != 1 {
		t.Fatalf("entities = %v, want exactly one kept", m["entities"])
	}
	e := ents[0].(map[string]any)
	if e["type"] != "person" || e["value"] != "Marie Durand" {
		t.Errorf("entity = %v, want normalized person/Marie Durand", e)
	}
}

func TestSanitizeEntitiesSynonymAndBadType(t *testing.T) {
	m := sanitized(t, `{"summary":"ok","key_points":["a"],"language":"fr","named_entities":[{"type":"date","value":"15/03/2024"}]}`, 5)
	if ents, ok := m["entities"].([]any); !ok || len(ents) != 1 {
		t.Errorf("named_entities not renamed: %v", m)
	}

	m = sanitized(t, `{"summary":"ok","key_points":["a"],"language":"fr","entities":"not a list"}`, 5)
	if _, present := m["entities"]; present {
		t.Errorf("non-array entities survived: %v", m["entities"])
	}
}

func TestSanitizeRejectsNonJSON(t *testing.T) {
	if _, _, err := SanitizeAnalysisJSON([]byte("no braces here"), 5, nil); err == nil {
		t.Error("expected error for non-JSON reply")
	}
}

func TestExtractJSONObjectSkipsBracesInStrings(t *testing.T) {
	s := `prefix {"summary":"a {weird} value","key_points":[],"language":"fr"} suffix`
	got, ok := extractJSONObject(s)
	if !ok || !strings.HasSuffix(got, `"fr"}`) {
		t.Errorf("got %q ok=%v", got, ok)
	}
}
