package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectoryFiltersAndRecurses(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "facture.pdf"))
	touch(t, filepath.Join(dir, "scan.jpeg"))
	touch(t, filepath.Join(dir, "notes.docx"))
	touch(t, filepath.Join(dir, "sub", "page.png"))
	touch(t, filepath.Join(dir, ".hidden", "secret.pdf"))
	touch(t, filepath.Join(dir, ".DS_Store"))

	files, stats, err := ScanDirectory(dir, nil, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if stats.Matched != 3 {
		t.Errorf("matched = %d, files = %v", stats.Matched, files)
	}
	want := map[string]bool{"facture.pdf": true, "scan.jpeg": true, "page.png": true}
	for _, f := range files {
		if !want[filepath.Base(f)] {
			t.Errorf("unexpected file %s", f)
		}
	}
}

func TestScanDirectoryExplicitExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "b.png"))

	files, _, err := ScanDirectory(dir, []string{".PDF"}, false)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.pdf" {
		t.Errorf("files = %v", files)
	}
}

func TestScanDirectoryEmptyRoot(t *testing.T) {
	if _, _, err := ScanDirectory("  ", nil, false); err == nil {
		t.Error("expected error for empty root")
	}
}
