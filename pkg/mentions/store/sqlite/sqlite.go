package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS phrases (
	phrase TEXT PRIMARY KEY,
	entity_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	batch_id TEXT NOT NULL,
	message_idx INTEGER NOT NULL,
	entity_id INTEGER NOT NULL,
	score REAL NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY(batch_id, message_idx, entity_id)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplacePhrases replaces the phrase table in a single transaction.
func (s *sqliteStore) ReplacePhrases(ctx context.Context, phrases []store.Phrase) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM phrases`); err != nil {
		return err
	}

	if len(phrases) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO phrases (phrase, entity_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range phrases {
			if _, err := stmt.ExecContext(ctx, p.Key, p.Entity); err != nil {
				return fmt.Errorf("insert phrase %q: %w", p.Key, err)
			}
		}
	}

	return tx.Commit()
}

// UpsertPhrase adds or replaces a dictionary row.
func (s *sqliteStore) UpsertPhrase(ctx context.Context, p store.Phrase) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO phrases (phrase, entity_id) VALUES (?, ?)
ON CONFLICT(phrase) DO UPDATE SET entity_id=excluded.entity_id;
`, p.Key, p.Entity)
	return err
}

// Phrases returns every stored row ordered by phrase.
func (s *sqliteStore) Phrases(ctx context.Context) ([]store.Phrase, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phrase, entity_id FROM phrases ORDER BY phrase`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phrases []store.Phrase
	for rows.Next() {
		var p store.Phrase
		if err := rows.Scan(&p.Key, &p.Entity); err != nil {
			return nil, err
		}
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}

// SaveResults writes scored rows; re-saving a batch overwrites its rows.
func (s *sqliteStore) SaveResults(ctx context.Context, results []store.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO results (batch_id, message_idx, entity_id, score, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(batch_id, message_idx, entity_id) DO UPDATE SET
	score=excluded.score,
	created_at=excluded.created_at;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		created := r.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, r.BatchID, r.Message, r.Entity, r.Score, created.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Results returns the rows of one batch ordered by message and entity.
func (s *sqliteStore) Results(ctx context.Context, batchID string) ([]store.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT batch_id, message_idx, entity_id, score, created_at
FROM results WHERE batch_id=?
ORDER BY message_idx, entity_id`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Result
	for rows.Next() {
		var (
			r       store.Result
			created string
		)
		if err := rows.Scan(&r.BatchID, &r.Message, &r.Entity, &r.Score, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
