// Package cache implements the response cache: a file-backed table mapping the
// SHA-256 of a raw query to a previously produced answer, promoted to cached
// only once the query has been seen Threshold times.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/indigobot/server/internal/agent/model"
	errx "github.com/indigobot/server/internal/core/error"
	logx "github.com/indigobot/server/pkg/logger"

	_ "modernc.org/sqlite"
)

const DefaultThreshold = 3

const createTableSQL = `
CREATE TABLE IF NOT EXISTS response_cache (
	query_hash TEXT PRIMARY KEY,
	response TEXT,
	query_count INTEGER NOT NULL DEFAULT 0
)`

// Store holds no connection between calls; every Get/Put opens the database,
// runs a single transaction and closes it.
type Store struct {
	path      string
	threshold int
}

func New(cfg model.CacheConfig) *Store {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Store{path: cfg.Path, threshold: threshold}
}

// Threshold returns the promotion threshold in use.
func (s *Store) Threshold() int {
	return s.threshold
}

// HashQuery returns the cache key of a raw query. No normalisation is applied.
func HashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// one connection so the busy_timeout pragma applies to every statement
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure cache database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return db, nil
}

// Get looks up query. A first sighting inserts a row with count 1; a sighting
// below the threshold increments the count. Only a row at or above the
// threshold with a stored response is a hit.
func (s *Store) Get(ctx context.Context, query string) (string, bool, error) {
	hash := HashQuery(query)

	db, err := s.open(ctx)
	if err != nil {
		return "", false, errx.WrapCache(err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, errx.WrapCache(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	var (
		response sql.NullString
		count    int
	)
	err = tx.QueryRowContext(ctx,
		"SELECT response, query_count FROM response_cache WHERE query_hash = ?", hash,
	).Scan(&response, &count)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO response_cache (query_hash, response, query_count) VALUES (?, NULL, 1)", hash,
		); err != nil {
			return "", false, errx.WrapCache(fmt.Errorf("insert: %w", err))
		}
		if err := tx.Commit(); err != nil {
			return "", false, errx.WrapCache(fmt.Errorf("commit: %w", err))
		}
		logx.Debug().Str("query_hash", hash).Msg("cache miss: first sighting")
		return "", false, nil

	case err != nil:
		return "", false, errx.WrapCache(fmt.Errorf("select: %w", err))
	}

	if count < s.threshold {
		if _, err := tx.ExecContext(ctx,
			"UPDATE response_cache SET query_count = query_count + 1 WHERE query_hash = ?", hash,
		); err != nil {
			return "", false, errx.WrapCache(fmt.Errorf("update: %w", err))
		}
		if err := tx.Commit(); err != nil {
			return "", false, errx.WrapCache(fmt.Errorf("commit: %w", err))
		}
		logx.Debug().Str("query_hash", hash).Int("query_count", count+1).Int("threshold", s.threshold).
			Msg("cache miss: below threshold")
		return "", false, nil
	}

	if !response.Valid {
		logx.Debug().Str("query_hash", hash).Int("query_count", count).
			Msg("cache miss: threshold reached, response not stored yet")
		return "", false, nil
	}

	logx.Debug().Str("query_hash", hash).Msg("cache hit")
	return response.String, true, nil
}

// Put stores response for query when the row has reached the threshold. Below
// the threshold, or for an unseen query, it is a no-op.
func (s *Store) Put(ctx context.Context, query, response string) error {
	hash := HashQuery(query)

	db, err := s.open(ctx)
	if err != nil {
		return errx.WrapCache(err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapCache(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT query_count FROM response_cache WHERE query_hash = ?", hash,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errx.WrapCache(fmt.Errorf("select: %w", err))
	}
	if count < s.threshold {
		logx.Debug().Str("query_hash", hash).Int("query_count", count).Msg("cache put skipped: below threshold")
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO response_cache (query_hash, response, query_count) VALUES (?, ?, ?)",
		hash, response, count,
	); err != nil {
		return errx.WrapCache(fmt.Errorf("replace: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return errx.WrapCache(fmt.Errorf("commit: %w", err))
	}
	logx.Debug().Str("query_hash", hash).Msg("cache response stored")
	return nil
}

// Entry returns the raw row for query, for inspection and tests.
func (s *Store) Entry(ctx context.Context, query string) (response *string, count int, found bool, err error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, 0, false, errx.WrapCache(err)
	}
	defer db.Close()

	var r sql.NullString
	err = db.QueryRowContext(ctx,
		"SELECT response, query_count FROM response_cache WHERE query_hash = ?", HashQuery(query),
	).Scan(&r, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, errx.WrapCache(err)
	}
	if r.Valid {
		v := r.String
		response = &v
	}
	return response, count, true, nil
}

var _ model.ResponseCache = (*Store)(nil)
