package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/ledger"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

const (
	DefaultStatementLimit = 50
	MaxStatementLimit     = 200
)

type RegisterInput struct {
	Title          string
	FirstName      string
	LastName       string
	UserID         string
	Password       string
	DOB            time.Time
	Email          string
	Phone          string
	Address        domain.Address
	AccountNumber  string
	AccountType    domain.AccountType
	SortCode       string
	OpeningBalance string
}

// AccountService owns registration, login and read access to the caller's
// own account and statement.
type AccountService struct {
	accounts   accountRepository
	statements statementReader
	secrets    secretGenerator
	tokens     tokenIssuer
	bcryptCost int
	now        func() time.Time
}

func NewAccountService(accounts accountRepository, statements statementReader, secrets secretGenerator, tokens tokenIssuer) *AccountService {
	return &AccountService{
		accounts:   accounts,
		statements: statements,
		secrets:    secrets,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if !in.AccountType.IsValid() {
		return nil, fmt.Errorf("Register: account type %q: %w", in.AccountType, domain.ErrInvalidRequest)
	}

	balance, err := ledger.ParseOpeningBalance(in.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.accounts.ExistsConflicting(ctx, in.UserID, email, in.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("Register: %w", domain.ErrDuplicateAccount)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash password: %w", err)
	}

	secret, err := s.secrets.NewSecret(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("Register: otp secret: %w", err)
	}

	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        in.UserID,
		PasswordHash:  string(hash),
		Role:          domain.RoleCustomer,
		Title:         in.Title,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		DOB:           in.DOB,
		Email:         email,
		Phone:         in.Phone,
		Address:       in.Address,
		AccountNumber: in.AccountNumber,
		AccountType:   in.AccountType,
		SortCode:      in.SortCode,
		Balance:       balance,
		Version:       1,
		OTPSecret:     secret,
		CreatedAt:     s.now(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	log.Info("account registered",
		"account_id", account.ID,
		"account_type", account.AccountType,
	)
	return account, nil
}

// Login checks the password, stamps lastLogin and returns a session token.
// An unknown userId is domain.ErrAccountNotFound; a wrong password is
// domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, userID, password string) (string, *domain.Account, error) {
	log := logging.FromContext(ctx)

	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		log.Warn("login rejected", "account_id", account.ID, "reason", "bad password")
		return "", nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}

	now := s.now()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return "", nil, fmt.Errorf("Login: %w", err)
	}
	account.LastLogin = &now

	token, err := s.tokens.IssueSession(account.ID, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("Login: issue token: %w", err)
	}

	log.Info("login succeeded", "account_id", account.ID)
	return token, account, nil
}

func (s *AccountService) Get(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return account, nil
}

// Statement returns one page of the account's entries, newest first.
// limit is clamped to [1, MaxStatementLimit]; zero means the default.
func (s *AccountService) Statement(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.StatementEntry, int, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, 0, fmt.Errorf("Statement: %w", err)
	}

	switch {
	case limit <= 0:
		limit = DefaultStatementLimit
	case limit > MaxStatementLimit:
		limit = MaxStatementLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := s.statements.GetByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("Statement: %w", err)
	}
	return entries, total, nil
}
