package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/otp"
)

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	created  int
	err      error
}

func newMockAccountRepo(accounts ...*domain.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
	for _, a := range accounts {
		cp := *a
		m.accounts[a.ID] = &cp
	}
	return m
}

func (m *mockAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrAccountNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) GetByUserID(_ context.Context, userID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("GetByUserID: %w", domain.ErrAccountNotFound)
}

func (m *mockAccountRepo) ExistsConflicting(_ context.Context, userID, email, accountNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID || a.Email == email || a.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccountRepo) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockAccountRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.LastLogin = &at
	return nil
}

type mockStatements struct {
	gotLimit, gotOffset int
}

func (m *mockStatements) GetByAccountID(_ context.Context, _ uuid.UUID, limit, offset int) ([]domain.StatementEntry, int, error) {
	m.gotLimit, m.gotOffset = limit, offset
	return []domain.StatementEntry{}, 0, nil
}

type mockBeneficiaryRepo struct {
	items map[uuid.UUID]*domain.Beneficiary
}

func newMockBeneficiaryRepo() *mockBeneficiaryRepo {
	return &mockBeneficiaryRepo{items: make(map[uuid.UUID]*domain.Beneficiary)}
}

func (m *mockBeneficiaryRepo) Create(_ context.Context, b *domain.Beneficiary) error {
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBeneficiaryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Beneficiary, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, domain.ErrBeneficiaryNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBeneficiaryRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Beneficiary, error) {
	out := []domain.Beneficiary{}
	for _, b := range m.items {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBeneficiaryRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	b, ok := m.items[id]
	if !ok || b.OwnerID != ownerID {
		return domain.ErrBeneficiaryNotFound
	}
	delete(m.items, id)
	return nil
}

type fakeSecrets struct{ err error }

func (f fakeSecrets) NewSecret(accountName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "SECRET-" + accountName, nil
}

type fakeTokens struct{}

func (fakeTokens) IssueSession(id uuid.UUID, _ domain.Role) (string, error) {
	return "session:" + id.String(), nil
}

func (fakeTokens) IssueElevated(id uuid.UUID, _ domain.Role) (string, error) {
	return "elevated:" + id.String(), nil
}

type fakeOTP struct {
	validCode string
	issueErr  error
	issued    int
}

func (f *fakeOTP) Issue(_ context.Context, acct *domain.Account) (*otp.Challenge, error) {
	f.issued++
	ch := &otp.Challenge{AccountID: acct.ID, ExpiresAt: time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)}
	if f.issueErr != nil {
		if errors.Is(f.issueErr, domain.ErrOTPDelivery) {
			return ch, f.issueErr
		}
		return nil, f.issueErr
	}
	return ch, nil
}

func (f *fakeOTP) Verify(_ context.Context, _ *domain.Account, code string) error {
	if code == "" {
		return domain.ErrOTPRequired
	}
	if code != f.validCode {
		return domain.ErrOTPInvalid
	}
	f.validCode = ""
	return nil
}
