package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal (
	stream  TEXT    NOT NULL,
	seq     INTEGER NOT NULL,
	kind    TEXT    NOT NULL,
	at      INTEGER NOT NULL,
	payload BLOB    NOT NULL,
	PRIMARY KEY (stream, seq)
);`

// SQLiteStore persists the journal in a single sqlite table. One connection
// serializes writers; sqlite itself does the durability.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) a journal database at path.
// ":memory:" gives a throwaway instance.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// A single writer connection avoids SQLITE_BUSY on concurrent appends.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	log.Info("journal opened", "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, stream, kind string, at uint64, payload any) (Entry, error) {
	blob, err := cbor.Marshal(payload)
	if err != nil {
		return Entry{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback()

	var seq uint64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM journal WHERE stream = ?`, stream,
	).Scan(&seq); err != nil {
		return Entry{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO journal (stream, seq, kind, at, payload) VALUES (?, ?, ?, ?, ?)`,
		stream, seq, kind, at, blob,
	); err != nil {
		return Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, err
	}
	return Entry{Seq: seq, Stream: stream, Kind: kind, At: at, Payload: blob}, nil
}

func (s *SQLiteStore) Read(ctx context.Context, stream string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, kind, at, payload FROM journal WHERE stream = ? ORDER BY seq`, stream)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{Stream: stream}
		if err := rows.Scan(&e.Seq, &e.Kind, &e.At, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
