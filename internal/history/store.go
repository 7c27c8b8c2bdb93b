// Package history persists an audit trail of import attempts in PostgreSQL.
//
// The pipeline itself never depends on this package: recording is
// best-effort and the service runs without a database configured.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Attempt is one recorded import attempt.
type Attempt struct {
	BatchID   uuid.UUID `json:"batch_id"`
	FileName  string    `json:"file_name"`
	Imported  int       `json:"imported"`
	Rejected  int       `json:"rejected"`
	Outcome   string    `json:"outcome"` // "imported", "rejected", "failed"
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Outcome values for recorded attempts.
const (
	OutcomeImported = "imported" // batch accepted by the bulk-create endpoint
	OutcomeRejected = "rejected" // batch blocked by validation errors
	OutcomeFailed   = "failed"   // upstream reported failure
)

// Store records and lists import attempts.
type Store struct {
	db DBTX
}

// NewStore creates a history store backed by the given connection.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the history table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS import_history (
			batch_id   UUID PRIMARY KEY,
			file_name  TEXT NOT NULL,
			imported   INTEGER NOT NULL DEFAULT 0,
			rejected   INTEGER NOT NULL DEFAULT 0,
			outcome    TEXT NOT NULL,
			error      TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure import_history schema: %w", err)
	}
	return nil
}

// Record inserts one import attempt. Re-recording the same batch (a retry
// after upstream failure) overwrites the previous outcome.
func (s *Store) Record(ctx context.Context, a Attempt) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO import_history (batch_id, file_name, imported, rejected, outcome, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (batch_id) DO UPDATE
		SET imported = EXCLUDED.imported,
		    rejected = EXCLUDED.rejected,
		    outcome  = EXCLUDED.outcome,
		    error    = EXCLUDED.error`,
		pgtype.UUID{Bytes: a.BatchID, Valid: true},
		a.FileName,
		a.Imported,
		a.Rejected,
		a.Outcome,
		toPgText(a.Error),
	)
	if err != nil {
		return fmt.Errorf("record import attempt: %w", err)
	}
	return nil
}

// Recent returns the most recent import attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT batch_id, file_name, imported, rejected, outcome, error, created_at
		FROM import_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list import attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var (
			a         Attempt
			batchID   pgtype.UUID
			errText   pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&batchID, &a.FileName, &a.Imported, &a.Rejected, &a.Outcome, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import attempt: %w", err)
		}
		if batchID.Valid {
			a.BatchID = uuid.UUID(batchID.Bytes)
		}
		if errText.Valid {
			a.Error = errText.String
		}
		if createdAt.Valid {
			a.CreatedAt = createdAt.Time
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
