// Package extractcache stores decoded FIT extracts in SQLite so unchanged
// files are not decoded again.
package extractcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	swimfit "github.com/lucasjlepore/swim-analyzer"
)

// FileName is the database file created inside the cache directory.
const FileName = "extract_cache.db"

// schemaVersion changes whenever the cached Extract layout does.
const schemaVersion = 1

// Cache maps (path, size, hash) to a JSON-encoded extract.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at dir/extract_cache.db.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	// Workers share one connection; sqlite serializes writers anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS extracts (
		path       TEXT PRIMARY KEY,
		size       INTEGER NOT NULL,
		hash       TEXT NOT NULL,
		version    INTEGER NOT NULL,
		payload    BLOB NOT NULL,
		cached_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached extract for path when size and hash still match.
func (c *Cache) Get(path string, size int64, hash string) (*swimfit.Extract, bool, error) {
	var payload []byte
	err := c.db.QueryRow(
		`SELECT payload FROM extracts WHERE path = ? AND size = ? AND hash = ? AND version = ?`,
		path, size, hash, schemaVersion,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}

	ex := &swimfit.Extract{}
	if err := json.Unmarshal(payload, ex); err != nil {
		return nil, false, fmt.Errorf("decode cached extract: %w", err)
	}
	return ex, true, nil
}

// Put records a successful extract, replacing any older entry for path.
func (c *Cache) Put(path string, size int64, hash string, ex *swimfit.Extract) error {
	if ex == nil {
		return errors.New("nil extract")
	}
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode extract: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO extracts (path, size, hash, version, payload) VALUES (?, ?, ?, ?, ?)`,
		path, size, hash, schemaVersion, payload,
	)
	if err != nil {
		return fmt.Errorf("store extract: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// HashBytes computes the SHA-256 hash of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
