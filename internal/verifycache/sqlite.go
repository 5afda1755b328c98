package verifycache

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCache is a durable, content-addressed Cache. It opens its
// database in WAL mode with a single connection, since the verifier's own
// pipeline (spec.md §5) is strictly single-threaded and the only
// concurrent writers are independent `orizon-verify` processes sharing the
// same cache file — WAL lets those interleave without blocking readers.
type SQLiteCache struct {
	mu     sync.Mutex
	db     *sql.DB
	hits   atomic.Int64
	misses atomic.Int64
}

// Open creates (if absent) and opens a SQLite-backed cache at path.
func Open(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer, per the WAL rationale above

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			key        TEXT PRIMARY KEY,
			ok         INTEGER NOT NULL,
			checked_at TEXT NOT NULL,
			message    TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(key Key) (Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var r Result
	var ok int
	var checkedAt string
	err := c.db.QueryRow(
		`SELECT ok, checked_at, message FROM results WHERE key = ?`, string(key),
	).Scan(&ok, &checkedAt, &r.Message)
	if err == sql.ErrNoRows {
		c.misses.Add(1)
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	r.OK = ok != 0
	r.CheckedAt, err = time.Parse(time.RFC3339Nano, checkedAt)
	if err != nil {
		return Result{}, false, fmt.Errorf("get %s: malformed checked_at: %w", key, err)
	}
	c.hits.Add(1)
	return r, true, nil
}

func (c *SQLiteCache) Put(key Key, r Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	okInt := 0
	if r.OK {
		okInt = 1
	}
	_, err := c.db.Exec(
		`INSERT INTO results (key, ok, checked_at, message) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET ok = excluded.ok, checked_at = excluded.checked_at, message = excluded.message`,
		string(key), okInt, r.CheckedAt.Format(time.RFC3339Nano), r.Message,
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Exists(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var one int
	err := c.db.QueryRow(`SELECT 1 FROM results WHERE key = ?`, string(key)).Scan(&one)
	return err == nil
}

func (c *SQLiteCache) Invalidate(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM results WHERE key = ?`, string(key)); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	c.hits.Store(0)
	c.misses.Store(0)
	return nil
}

func (c *SQLiteCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	// Entries reflects the durable database; Hits/Misses are process-local
	// counters that reset when the cache is reopened.
	c.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&s.Entries)
	return s
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
