// Package store handles SQLite persistence of saved transcripts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/kikitori/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a transcript or record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for transcript data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			transcript_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			speaker TEXT NOT NULL,
			translation TEXT NOT NULL,
			PRIMARY KEY (transcript_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_updated_at ON transcripts(updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveTranscript stores a new transcript and its records in order.
func (s *Store) SaveTranscript(ctx context.Context, title, source string, records []model.Record) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	now := s.now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transcripts (title, source, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, source, now, now,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO records (transcript_id, position, text, speaker, translation) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, rec := range records {
			if _, err := stmt.ExecContext(ctx, id, i, rec.Text, rec.Speaker.String(), rec.Translation); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListTranscripts returns saved transcripts, most recently updated first.
func (s *Store) ListTranscripts(ctx context.Context) ([]model.TranscriptSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.title, t.created_at, t.updated_at, COUNT(r.position)
		FROM transcripts t
		LEFT JOIN records r ON r.transcript_id = t.id
		GROUP BY t.id
		ORDER BY t.updated_at DESC, t.id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TranscriptSummary
	for rows.Next() {
		var sum model.TranscriptSummary
		var createdAt, updatedAt string
		if err := rows.Scan(&sum.ID, &sum.Title, &createdAt, &updatedAt, &sum.RecordCount); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if sum.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, err
		}
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadTranscript returns a transcript with its records in order.
func (s *Store) LoadTranscript(ctx context.Context, id int64) (model.Transcript, error) {
	var tr model.Transcript
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, source, created_at, updated_at FROM transcripts WHERE id = ?`, id,
	).Scan(&tr.ID, &tr.Title, &tr.Source, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transcript{}, fmt.Errorf("transcript %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Transcript{}, err
	}
	if tr.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.Transcript{}, err
	}
	if tr.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return model.Transcript{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text, speaker, translation FROM records WHERE transcript_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return model.Transcript{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var rec model.Record
		var speaker string
		if err := rows.Scan(&rec.Text, &speaker, &rec.Translation); err != nil {
			return model.Transcript{}, err
		}
		if rec.Speaker, err = model.ParseSpeaker(speaker); err != nil {
			return model.Transcript{}, err
		}
		tr.Records = append(tr.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return model.Transcript{}, err
	}
	return tr, nil
}

// UpdateRecord replaces the record at position wholesale.
func (s *Store) UpdateRecord(ctx context.Context, id int64, position int, rec model.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE records SET text = ?, speaker = ?, translation = ? WHERE transcript_id = ? AND position = ?`,
		rec.Text, rec.Speaker.String(), rec.Translation, id, position,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("transcript %d record %d: %w", id, position, ErrNotFound)
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE transcripts SET updated_at = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339Nano), id); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// DeleteTranscript removes a transcript and its records.
func (s *Store) DeleteTranscript(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE transcript_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("transcript %d: %w", id, ErrNotFound)
		return err
	}
	err = tx.Commit()
	return err
}
