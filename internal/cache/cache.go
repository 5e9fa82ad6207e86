package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/docintel/internal/common"
)

// Entry is one cached extraction, keyed by content hash so renamed or moved
// files still hit.
type Entry struct {
	ContentHash string
	Text        string
	Method      string
	Pages       int
	Confidence  float32
	CreatedAt   time.Time
}

// Store is a sqlite-backed extraction cache. A nil *Store is valid and
// behaves as a disabled cache, so callers never branch on configuration.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS extractions (
	content_hash TEXT PRIMARY KEY,
	text         TEXT NOT NULL,
	method       TEXT NOT NULL,
	pages        INTEGER NOT NULL DEFAULT 0,
	confidence   REAL NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);`

// Open opens (or creates) the cache database and applies the standard
// pragmas. An empty path disables the cache and returns a nil store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open cache database")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, common.WrapError(err, "set pragma")
		}
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, common.WrapError(err, "create cache schema")
	}

	logger.Info("cache.open", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// HashFile returns the lowercase hex SHA-256 of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Lookup returns the cached entry for a content hash, or ok=false on a miss.
// Cache errors are logged and reported as misses; the cache must never fail
// a pipeline run.
func (s *Store) Lookup(ctx context.Context, contentHash string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}

	var e Entry
	var createdAt int64
	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, text, method, pages, confidence, created_at
		 FROM extractions WHERE content_hash = ?`, contentHash)
	if err := row.Scan(&e.ContentHash, &e.Text, &e.Method, &e.Pages, &e.Confidence, &createdAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("cache.lookup_failed", "error", err)
		}
		return Entry{}, false
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	s.logger.Info("cache.hit", "content_hash", contentHash, "method", e.Method)
	return e, true
}

// Save upserts an extraction. Errors are logged, not returned: a failed
// write only costs a future cache miss.
func (s *Store) Save(ctx context.Context, e Entry) {
	if s == nil {
		return
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (content_hash, text, method, pages, confidence)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET
			text = excluded.text,
			method = excluded.method,
			pages = excluded.pages,
			confidence = excluded.confidence`,
		e.ContentHash, e.Text, e.Method, e.Pages, e.Confidence)
	if err != nil {
		s.logger.Warn("cache.save_failed", "error", err)
		return
	}
	s.logger.Info("cache.saved", "content_hash", e.ContentHash, "text_len", len(e.Text))
}
