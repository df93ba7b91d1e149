package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panarchynow/initiation/internal/models"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository and ensures the
// submissions table exists.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY,
			account_id TEXT NOT NULL,
			form_kind TEXT NOT NULL,
			operation_count INT NOT NULL,
			envelope_xdr TEXT NOT NULL,
			envelope_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS submissions_account_idx
			ON submissions (account_id, created_at DESC);
	`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveSubmission saves a built envelope to the history. A missing ID is
// assigned here.
func (r *PostgresRepository) SaveSubmission(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}

	query := `
		INSERT INTO submissions (
			id, account_id, form_kind, operation_count,
			envelope_xdr, envelope_hash
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		submission.ID,
		submission.AccountID,
		submission.FormKind,
		submission.OperationCount,
		submission.EnvelopeXDR,
		submission.EnvelopeHash,
	)

	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

// ListSubmissionsByAccount lists an account's submission history with
// pagination, newest first.
func (r *PostgresRepository) ListSubmissionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Submission, error) {
	query := `
		SELECT
			id, account_id, form_kind, operation_count,
			envelope_xdr, envelope_hash, created_at
		FROM submissions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		var s models.Submission
		err := rows.Scan(
			&s.ID,
			&s.AccountID,
			&s.FormKind,
			&s.OperationCount,
			&s.EnvelopeXDR,
			&s.EnvelopeHash,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	return submissions, nil
}

// Ping verifies database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
