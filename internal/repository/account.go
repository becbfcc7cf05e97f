package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

const accountColumns = `id, user_id, password_hash, role, title, first_name, last_name,
	dob, email, phone, street, city, state, post_code,
	account_number, account_type, sort_code, balance, version,
	otp_secret, last_login, created_at`

// AccountRepository is the credential store: identity, password hash, OTP
// secret, last login and the live balance.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", classify(err))
	}
	return a, nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUserID: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByUserID: %w", classify(err))
	}
	return a, nil
}

// ExistsConflicting reports whether any account already uses one of the
// unique identity fields.
func (r *AccountRepository) ExistsConflicting(ctx context.Context, userID, email, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE user_id = $1 OR email = $2 OR account_number = $3
		)`,
		userID, email, accountNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsConflicting: %w", classify(err))
	}
	return exists, nil
}

// Create inserts the account. A unique-index race with a concurrent
// registration surfaces as domain.ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (
			id, user_id, password_hash, role, title, first_name, last_name,
			dob, email, phone, street, city, state, post_code,
			account_number, account_type, sort_code, balance, version,
			otp_secret, last_login, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)`,
		a.ID, a.UserID, a.PasswordHash, a.Role, a.Title, a.FirstName, a.LastName,
		a.DOB, a.Email, a.Phone, a.Address.Street, a.Address.City, a.Address.State, a.Address.PostCode,
		a.AccountNumber, a.AccountType, a.SortCode, a.Balance, a.Version,
		a.OTPSecret, a.LastLogin, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateAccount)
		}
		return fmt.Errorf("Create: %w", classify(err))
	}
	return nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_login = $1 WHERE id = $2`, at, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateLastLogin: %w", classify(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateLastLogin: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateLastLogin: %w", domain.ErrAccountNotFound)
	}
	return nil
}

// GetForUpdate row-locks the account until tx ends; concurrent ledger
// operations on the same account queue behind it.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", classify(err))
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance int64, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = $2 WHERE id = $3 AND version = $4`,
		newBalance, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", classify(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	var lastLogin sql.NullTime
	err := s.Scan(
		&a.ID, &a.UserID, &a.PasswordHash, &a.Role, &a.Title, &a.FirstName, &a.LastName,
		&a.DOB, &a.Email, &a.Phone, &a.Address.Street, &a.Address.City, &a.Address.State, &a.Address.PostCode,
		&a.AccountNumber, &a.AccountType, &a.SortCode, &a.Balance, &a.Version,
		&a.OTPSecret, &lastLogin, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		a.LastLogin = &lastLogin.Time
	}
	return &a, nil
}
