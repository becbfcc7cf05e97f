package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

const beneficiaryColumns = `id, owner_id, recipient_full_name, recipient_account_number,
	recipient_sort_code, reference, created_at`

type BeneficiaryRepository struct {
	db *sql.DB
}

func NewBeneficiaryRepository(db *sql.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db}
}

func (r *BeneficiaryRepository) Create(ctx context.Context, b *domain.Beneficiary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO beneficiaries (`+beneficiaryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.OwnerID, b.RecipientFullName, b.RecipientAccountNumber,
		b.RecipientSortCode, b.Reference, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", classify(err))
	}
	return nil
}

func (r *BeneficiaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Beneficiary, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+beneficiaryColumns+` FROM beneficiaries WHERE id = $1`, id,
	)
	b, err := scanBeneficiary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrBeneficiaryNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", classify(err))
	}
	return b, nil
}

func (r *BeneficiaryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Beneficiary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+beneficiaryColumns+` FROM beneficiaries
		WHERE owner_id = $1 ORDER BY created_at`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", classify(err))
	}
	defer rows.Close()

	beneficiaries := []domain.Beneficiary{}
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOwner: scan: %w", err)
		}
		beneficiaries = append(beneficiaries, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByOwner: rows: %w", classify(err))
	}
	return beneficiaries, nil
}

// Delete removes the beneficiary only if ownerID owns it.
func (r *BeneficiaryRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM beneficiaries WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", classify(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrBeneficiaryNotFound)
	}
	return nil
}

func scanBeneficiary(s scanner) (*domain.Beneficiary, error) {
	var b domain.Beneficiary
	err := s.Scan(
		&b.ID, &b.OwnerID, &b.RecipientFullName, &b.RecipientAccountNumber,
		&b.RecipientSortCode, &b.Reference, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
