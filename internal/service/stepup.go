package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

// StepUpService exchanges a session plus a one-time password for a
// short-lived elevated token.
type StepUpService struct {
	accounts accountRepository
	otp      otpAuthenticator
	tokens   tokenIssuer
}

func NewStepUpService(accounts accountRepository, otp otpAuthenticator, tokens tokenIssuer) *StepUpService {
	return &StepUpService{accounts: accounts, otp: otp, tokens: tokens}
}

// Request issues a challenge and returns its expiry. If only delivery failed
// the expiry is still returned alongside an error wrapping
// domain.ErrOTPDelivery.
func (s *StepUpService) Request(ctx context.Context, accountID uuid.UUID) (time.Time, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return time.Time{}, fmt.Errorf("Request: %w", err)
	}

	ch, err := s.otp.Issue(ctx, account)
	if err != nil {
		if ch != nil && errors.Is(err, domain.ErrOTPDelivery) {
			return ch.ExpiresAt, fmt.Errorf("Request: %w", err)
		}
		return time.Time{}, fmt.Errorf("Request: %w", err)
	}
	return ch.ExpiresAt, nil
}

func (s *StepUpService) Submit(ctx context.Context, accountID uuid.UUID, code string) (string, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("Submit: %w", err)
	}

	if err := s.otp.Verify(ctx, account, code); err != nil {
		return "", fmt.Errorf("Submit: %w", err)
	}

	token, err := s.tokens.IssueElevated(account.ID, account.Role)
	if err != nil {
		return "", fmt.Errorf("Submit: issue token: %w", err)
	}

	logging.FromContext(ctx).Info("elevated token issued", "account_id", account.ID)
	return token, nil
}
