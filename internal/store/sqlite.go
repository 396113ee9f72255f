package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS nerve_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	weights_json  TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES nerve_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_nerves (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES nerve_versions(version_id)
);

CREATE TABLE IF NOT EXISTS journal (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	stream        TEXT NOT NULL,
	line          TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS journal_stream_idx ON journal(stream, id);
`

// #endregion schema

// #region types

// NerveVersion is one committed nerve snapshot.
type NerveVersion struct {
	VersionID   string
	ParentID    string
	WeightsJSON string
	CreatedAt   time.Time
	Active      bool
}

// JournalLine is one row of the ledger or dream stream.
type JournalLine struct {
	ID        int64
	Stream    Stream
	Line      string
	CreatedAt time.Time
}

// #endregion types

// #region store-struct
// SQLiteStore keeps every nerve snapshot as a version row with a single
// active pointer, and both streams in one journal table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// #endregion store-struct

// #region snapshot

// ReadSnapshot returns the weights of the active version.
func (s *SQLiteStore) ReadSnapshot() ([]byte, error) {
	var weights string
	err := s.db.QueryRow(
		`SELECT v.weights_json FROM active_nerves a
		 JOIN nerve_versions v ON v.version_id = a.version_id
		 WHERE a.id = 1`,
	).Scan(&weights)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active: %w", err)
	}
	return []byte(weights), nil
}

// WriteSnapshot inserts a new version parented on the active one and moves
// the active pointer, atomically.
func (s *SQLiteStore) WriteSnapshot(data []byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	var parentID string
	err = tx.QueryRow(`SELECT version_id FROM active_nerves WHERE id = 1`).Scan(&parentID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("get active: %w", err)
	default:
		parentPtr = parentID
	}

	id := uuid.New().String()
	_, err = tx.Exec(
		`INSERT INTO nerve_versions (version_id, parent_id, weights_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		id, parentPtr, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_nerves (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		id,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion snapshot

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *SQLiteStore) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM nerve_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	_, err = s.db.Exec(`UPDATE active_nerves SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent nerve versions, newest first.
func (s *SQLiteStore) ListVersions(limit int) ([]NerveVersion, error) {
	rows, err := s.db.Query(
		`SELECT v.version_id, v.parent_id, v.weights_json, v.created_at,
		        COALESCE(a.id, 0)
		 FROM nerve_versions v
		 LEFT JOIN active_nerves a ON a.version_id = v.version_id
		 ORDER BY v.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []NerveVersion
	for rows.Next() {
		var v NerveVersion
		var parentID sql.NullString
		var createdStr string
		var active int
		if err := rows.Scan(&v.VersionID, &parentID, &v.WeightsJSON, &createdStr, &active); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if parentID.Valid {
			v.ParentID = parentID.String
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		v.Active = active == 1
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// #endregion list-versions

// #region journal

func (s *SQLiteStore) AppendLine(stream Stream, line string) error {
	_, err := s.db.Exec(
		`INSERT INTO journal (stream, line, created_at) VALUES (?, ?, ?)`,
		string(stream), line, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", stream, err)
	}
	return nil
}

// Tail returns the last n lines of stream in append order (all when n <= 0).
func (s *SQLiteStore) Tail(stream Stream, n int) ([]string, error) {
	recs, err := s.Journal(stream, n)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = r.Line
	}
	return lines, nil
}

// Journal returns the last n rows of stream in append order (all when n <= 0).
func (s *SQLiteStore) Journal(stream Stream, n int) ([]JournalLine, error) {
	limit := n
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, stream, line, created_at FROM journal
		 WHERE stream = ? ORDER BY id DESC LIMIT ?`, string(stream), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("tail %s: %w", stream, err)
	}
	defer rows.Close()

	var recs []JournalLine
	for rows.Next() {
		var r JournalLine
		var st, createdStr string
		if err := rows.Scan(&r.ID, &st, &r.Line, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Stream = Stream(st)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// #endregion journal
