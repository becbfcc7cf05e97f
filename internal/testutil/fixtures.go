package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

const (
	DefaultPassword  = "password123"
	DefaultOTPSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
)

// SeedAccount inserts a customer account with the given balance. userID also
// derives a unique email and account number so several accounts can coexist.
func SeedAccount(t *testing.T, db *sql.DB, userID string, balance int64) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	id := uuid.New()
	a := &domain.Account{
		ID:            id,
		UserID:        userID,
		PasswordHash:  string(hash),
		Role:          domain.RoleCustomer,
		Title:         "Mx",
		FirstName:     "Test",
		LastName:      userID,
		DOB:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:         userID + "@example.com",
		Phone:         "07000000000",
		AccountNumber: fmt.Sprintf("%08d", id.ID()%100_000_000),
		AccountType:   domain.AccountTypeSavings,
		SortCode:      "40-00-01",
		Balance:       balance,
		Version:       1,
		OTPSecret:     DefaultOTPSecret,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO accounts (
			id, user_id, password_hash, role, title, first_name, last_name,
			dob, email, phone, account_number, account_type, sort_code,
			balance, version, otp_secret, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		a.ID, a.UserID, a.PasswordHash, a.Role, a.Title, a.FirstName, a.LastName,
		a.DOB, a.Email, a.Phone, a.AccountNumber, a.AccountType, a.SortCode,
		a.Balance, a.Version, a.OTPSecret, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", userID, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountStatements(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM statements WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count statements for account %s: %v", accountID, err)
	}
	return count
}
