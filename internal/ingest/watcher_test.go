package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDebounceUnderEventBursts(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: 10 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	// fire bursts of writes so flushes interleave with fresh events
	const n = 20
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, "doc"+string(rune('a'+i))+".pdf")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if i%5 == 0 {
			time.Sleep(15 * time.Millisecond)
		}
	}

	seen := map[string]struct{}{}
	deadline := time.After(3 * time.Second)
	for len(seen) < n {
		select {
		case p, ok := <-paths:
			if !ok {
				t.Fatalf("path channel closed early, saw %d/%d", len(seen), n)
			}
			seen[p] = struct{}{}
		case werr := <-errs:
			t.Logf("watcher error (non-fatal): %v", werr)
		case <-deadline:
			t.Fatalf("timed out, saw %d/%d files", len(seen), n)
		}
	}

	cancel()
	for range paths {
	}
}

func TestWatcherInitialScanEmitsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "already.pdf")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.docx"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	paths, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
	}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	select {
	case p := <-paths:
		if p != existing {
			t.Errorf("emitted %q, want %q", p, existing)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan emitted nothing")
	}
}

func TestWatcherRejectsEmptyRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	if err == nil {
		t.Fatal("expected an error for empty roots")
	}
}
