package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

const statementColumns = `id, account_id, transaction_type, description, amount,
	balance_after, reference_number, payment_detail, created_at`

const referenceConstraint = "statements_reference_number_key"

// StatementRepository is the append-only statement log. It has no update or
// delete path.
type StatementRepository struct {
	db *sql.DB
}

func NewStatementRepository(db *sql.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) Create(ctx context.Context, tx *sql.Tx, e *domain.StatementEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO statements (
			id, account_id, transaction_type, description, amount,
			balance_after, reference_number, payment_detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.AccountID, e.Type, e.Description, e.Amount,
		e.BalanceAfter, e.ReferenceNumber, e.PaymentDetail, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, referenceConstraint) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateReference)
		}
		return fmt.Errorf("Create: %w", classify(err))
	}
	return nil
}

// GetByAccountID returns one page of entries, newest first, plus the total
// entry count for the account.
func (r *StatementRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.StatementEntry, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM statements WHERE account_id = $1`, accountID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByAccountID: count: %w", classify(err))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statementColumns+` FROM statements
		WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByAccountID: %w", classify(err))
	}
	defer rows.Close()

	entries := []domain.StatementEntry{}
	for rows.Next() {
		e, err := scanStatementEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("GetByAccountID: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("GetByAccountID: rows: %w", classify(err))
	}
	return entries, total, nil
}

func scanStatementEntry(s scanner) (*domain.StatementEntry, error) {
	var e domain.StatementEntry
	err := s.Scan(
		&e.ID, &e.AccountID, &e.Type, &e.Description, &e.Amount,
		&e.BalanceAfter, &e.ReferenceNumber, &e.PaymentDetail, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
