package otp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string, validFor time.Duration) error
}

type Challenge struct {
	AccountID uuid.UUID
	ExpiresAt time.Time
}

type Authenticator struct {
	deriver *Deriver
	store   ChallengeStore
	mailer  Mailer
	now     func() time.Time
}

func NewAuthenticator(deriver *Deriver, store ChallengeStore, mailer Mailer) *Authenticator {
	return &Authenticator{
		deriver: deriver,
		store:   store,
		mailer:  mailer,
		now:     time.Now,
	}
}

// Issue records a fresh challenge for the account and hands the code to the
// mailer. When only delivery fails the challenge is still returned, with an
// error wrapping domain.ErrOTPDelivery.
func (a *Authenticator) Issue(ctx context.Context, acct *domain.Account) (*Challenge, error) {
	log := logging.FromContext(ctx)
	now := a.now()

	code, err := a.deriver.Code(acct.OTPSecret, now)
	if err != nil {
		return nil, fmt.Errorf("Issue: %w", err)
	}

	window := a.deriver.Window()
	if err := a.store.Put(ctx, acct.ID, hashCode(acct.ID, code), window); err != nil {
		return nil, fmt.Errorf("Issue: %w", err)
	}

	ch := &Challenge{AccountID: acct.ID, ExpiresAt: now.Add(window)}

	name := strings.TrimSpace(acct.FirstName + " " + acct.LastName)
	if err := a.mailer.SendOTP(ctx, acct.Email, name, code, window); err != nil {
		log.Error("otp delivery failed", "account_id", acct.ID, "error", err)
		return ch, fmt.Errorf("Issue: %w: %w", domain.ErrOTPDelivery, err)
	}

	log.Info("otp issued", "account_id", acct.ID, "expires_at", ch.ExpiresAt)
	return ch, nil
}

// Verify redeems the pending challenge. A code is accepted once, only while
// its challenge is live and only if it is the TOTP value for the secret.
// Every wrong code is charged against the challenge's attempt limit.
func (a *Authenticator) Verify(ctx context.Context, acct *domain.Account, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("Verify: %w", domain.ErrOTPRequired)
	}

	ok, err := a.store.Consume(ctx, acct.ID, hashCode(acct.ID, code))
	if err != nil {
		return fmt.Errorf("Verify: %w", err)
	}
	if !ok || !a.deriver.Valid(code, acct.OTPSecret, a.now()) {
		logging.FromContext(ctx).Warn("otp rejected", "account_id", acct.ID)
		return fmt.Errorf("Verify: %w", domain.ErrOTPInvalid)
	}

	logging.FromContext(ctx).Info("otp verified", "account_id", acct.ID)
	return nil
}

func hashCode(accountID uuid.UUID, code string) string {
	sum := sha256.Sum256([]byte(accountID.String() + ":" + code))
	return hex.EncodeToString(sum[:])
}
