package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord is a stored response for a replayable ledger request,
// keyed by the client key and the acting account.
type IdempotencyRecord struct {
	Key          string
	AccountID    uuid.UUID
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Pending reports whether the request holding the key has not finished yet.
func (r *IdempotencyRecord) Pending() bool { return r.StatusCode == 0 }

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Lookup returns nil, nil when no live record exists.
func (r *IdempotencyRepository) Lookup(ctx context.Context, key string, accountID uuid.UUID) (*IdempotencyRecord, error) {
	var rec IdempotencyRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT idempotency_key, account_id, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_cache
		WHERE idempotency_key = $1 AND account_id = $2 AND expires_at > now()`,
		key, accountID,
	).Scan(&rec.Key, &rec.AccountID, &rec.RequestHash, &rec.StatusCode, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Lookup: %w", classify(err))
	}
	return &rec, nil
}

// Claim reserves the key for one in-flight request by inserting a pending
// row. It reports false when a live row already holds the key; a row past its
// expiry that the janitor has not purged yet is taken over.
func (r *IdempotencyRepository) Claim(ctx context.Context, rec *IdempotencyRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_cache (idempotency_key, account_id, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6)
		ON CONFLICT (idempotency_key, account_id) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
			status_code = 0,
			response_body = EXCLUDED.response_body,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_cache.expires_at <= EXCLUDED.created_at`,
		rec.Key, rec.AccountID, rec.RequestHash, []byte{}, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("Claim: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Claim: rows affected: %w", err)
	}
	return n == 1, nil
}

// Complete stores the response on a pending row.
func (r *IdempotencyRepository) Complete(ctx context.Context, rec *IdempotencyRecord) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE idempotency_cache
		SET status_code = $3, response_body = $4, expires_at = $5
		WHERE idempotency_key = $1 AND account_id = $2 AND status_code = 0`,
		rec.Key, rec.AccountID, rec.StatusCode, rec.ResponseBody, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Complete: %w", classify(err))
	}
	return nil
}

// Release drops a pending row so the key can be retried. Completed rows are
// left alone.
func (r *IdempotencyRepository) Release(ctx context.Context, key string, accountID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache
		WHERE idempotency_key = $1 AND account_id = $2 AND status_code = 0`,
		key, accountID,
	)
	if err != nil {
		return fmt.Errorf("Release: %w", classify(err))
	}
	return nil
}

func (r *IdempotencyRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at < $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("PurgeExpired: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeExpired: rows affected: %w", err)
	}
	return n, nil
}
