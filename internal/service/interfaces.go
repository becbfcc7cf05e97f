package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/otp"
)

type accountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Account, error)
	ExistsConflicting(ctx context.Context, userID, email, accountNumber string) (bool, error)
	Create(ctx context.Context, account *domain.Account) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type statementReader interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.StatementEntry, int, error)
}

type beneficiaryRepository interface {
	Create(ctx context.Context, b *domain.Beneficiary) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Beneficiary, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Beneficiary, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

type secretGenerator interface {
	NewSecret(accountName string) (string, error)
}

type tokenIssuer interface {
	IssueSession(accountID uuid.UUID, role domain.Role) (string, error)
	IssueElevated(accountID uuid.UUID, role domain.Role) (string, error)
}

type otpAuthenticator interface {
	Issue(ctx context.Context, acct *domain.Account) (*otp.Challenge, error)
	Verify(ctx context.Context, acct *domain.Account, code string) error
}
