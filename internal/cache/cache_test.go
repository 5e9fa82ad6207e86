package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNilStoreIsDisabled(t *testing.T) {
	var s *Store
	if _, ok := s.Lookup(context.Background(), "deadbeef"); ok {
		t.Error("nil store reported a hit")
	}
	s.Save(context.Background(), Entry{ContentHash: "deadbeef"})
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenEmptyPathDisablesCache(t *testing.T) {
	s, err := Open("", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s != nil {
		t.Error("expected nil store for empty path")
	}
}

func TestSaveLookupRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, ok := s.Lookup(ctx, "abc123"); ok {
		t.Fatal("hit before save")
	}

	s.Save(ctx, Entry{
		ContentHash: "abc123",
		Text:        "Facture n° 2024-001",
		Method:      "pdf-text",
		Pages:       1,
		Confidence:  1.0,
	})

	got, ok := s.Lookup(ctx, "abc123")
	if !ok {
		t.Fatal("miss after save")
	}
	if got.Text != "Facture n° 2024-001" || got.Method != "pdf-text" || got.Pages != 1 {
		t.Errorf("entry = %+v", got)
	}

	// upsert replaces
	s.Save(ctx, Entry{ContentHash: "abc123", Text: "nouveau texte", Method: "pdf-ocr", Pages: 2})
	got, ok = s.Lookup(ctx, "abc123")
	if !ok || got.Text != "nouveau texte" || got.Method != "pdf-ocr" {
		t.Errorf("after upsert: %+v ok=%v", got, ok)
	}
}

func TestHashFileStableAcrossRenames(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(a, []byte("même contenu"), 0o644); err != nil {
		t.Fatal(err)
	}
	h1, err := HashFile(a)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	b := filepath.Join(dir, "b.txt")
	if err := os.Rename(a, b); err != nil {
		t.Fatal(err)
	}
	h2, err := HashFile(b)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if h1 != h2 || len(h1) != 64 {
		t.Errorf("h1=%s h2=%s", h1, h2)
	}
}
