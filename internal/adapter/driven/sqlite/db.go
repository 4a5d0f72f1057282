// Package sqlite implements the scan ledger on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	readerConns = 2
	dirMode     = 0o755
)

// basePragmas apply to every ledger connection. File-backed databases add WAL.
var basePragmas = []string{
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

// DB holds the ledger's writer and reader pools. The writer is limited to a
// single connection to avoid "database is locked" errors.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the ledger file at dbPath, creating its directory if needed.
// The schema is not touched; see OpenLedger.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	return open(ctx, fileDSN(dbPath), dbPath)
}

// OpenLedger opens the ledger at dbPath and brings its schema up to date.
// It returns the applied schema version.
func OpenLedger(ctx context.Context, dbPath string) (*DB, uint, error) {
	db, err := NewDB(ctx, dbPath)
	if err != nil {
		return nil, 0, err
	}

	version, err := RunMigrations(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, 0, err
	}

	return db, version, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes both pools. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

func open(ctx context.Context, dsn, path string) (*DB, error) {
	writer, err := openPool(ctx, dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, readerConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func fileDSN(path string) string {
	return "file:" + path + "?" + pragmaQuery(append([]string{"journal_mode(WAL)"}, basePragmas...))
}

// memoryDSN names a shared in-memory database. WAL does not apply in memory.
func memoryDSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory&cache=shared&" + pragmaQuery(basePragmas)
}

func pragmaQuery(pragmas []string) string {
	parts := make([]string, len(pragmas))
	for i, p := range pragmas {
		parts[i] = "_pragma=" + p
	}
	return strings.Join(parts, "&")
}
