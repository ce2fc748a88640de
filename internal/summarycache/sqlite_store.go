package summarycache

import (
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"

	"github.com/netlens/netsummary/internal/util"
)

// SQLiteStore is a Store backed by a SQLite database. It is the opt-in
// alternative to MemoryStore for callers that want summaries to survive the
// process; the pipeline itself never selects it.
//
// A single connection serves all sessions, so one mutex serializes access;
// per-key locking is a MemoryStore property only.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string
	mu     sync.Mutex
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Initialize opens the database at dbPath and creates the schema if needed.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	s.conn = conn

	if err := s.createTable(); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// createTable creates the summary_entries table if it doesn't exist.
func (s *SQLiteStore) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS summary_entries (
		id TEXT PRIMARY KEY,
		tenant TEXT NOT NULL,
		resource TEXT NOT NULL,
		seq INTEGER NOT NULL,
		summary TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}

	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// nextSeq returns the next append position for key; the caller holds the lock.
func (s *SQLiteStore) nextSeq(key Key) (int64, error) {
	stmt, err := s.conn.Prepare(`
	SELECT COALESCE(MAX(seq), -1) + 1 FROM summary_entries
	WHERE tenant = ? AND resource = ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare seq statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, key.Tenant)
	stmt.BindText(2, key.Resource)

	hasRow, err := stmt.Step()
	if err != nil {
		return 0, fmt.Errorf("failed to execute seq statement: %w", err)
	}
	if !hasRow {
		return 0, nil
	}
	return stmt.ColumnInt64(0), nil
}

// Append adds a summary to the tail of the entry for key.
func (s *SQLiteStore) Append(key Key, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.nextSeq(key)
	if err != nil {
		return err
	}

	stmt, err := s.conn.Prepare(`
	INSERT INTO summary_entries (id, tenant, resource, seq, summary, created_at)
	VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Reset()

	now := time.Now()
	// seq in the hash input keeps ids distinct when a retried generate
	// appends identical summary text within the same clock tick.
	stmt.BindText(1, util.GenerateHash(fmt.Sprintf("%s#%d#%s", key, seq, summary), now.UnixNano()))
	stmt.BindText(2, key.Tenant)
	stmt.BindText(3, key.Resource)
	stmt.BindInt64(4, seq)
	stmt.BindText(5, summary)
	stmt.BindInt64(6, now.Unix())

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to insert summary entry: %w", err)
	}

	return nil
}

// Read returns the ordered summaries for key.
func (s *SQLiteStore) Read(key Key) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(`
	SELECT summary FROM summary_entries
	WHERE tenant = ? AND resource = ?
	ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, key.Tenant)
	stmt.BindText(2, key.Resource)

	var summaries []string
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("failed to execute select statement: %w", err)
		}
		if !hasRow {
			break
		}
		summaries = append(summaries, stmt.ColumnText(0))
	}

	return summaries, nil
}

// IsEmpty reports whether the entry for key holds no summaries.
func (s *SQLiteStore) IsEmpty(key Key) (bool, error) {
	summaries, err := s.Read(key)
	if err != nil {
		return false, err
	}
	return len(summaries) == 0, nil
}

// Reset drops the entry for key and returns the number of summaries removed.
func (s *SQLiteStore) Reset(key Key) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(`
	DELETE FROM summary_entries
	WHERE tenant = ? AND resource = ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, key.Tenant)
	stmt.BindText(2, key.Resource)

	if _, err := stmt.Step(); err != nil {
		return 0, fmt.Errorf("failed to execute delete statement: %w", err)
	}

	return s.conn.Changes(), nil
}

var _ Store = (*SQLiteStore)(nil)
