package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

type BeneficiaryInput struct {
	FullName      string
	AccountNumber string
	SortCode      string
	Reference     *string
}

// BeneficiaryService is the payee registry. Every read and delete checks
// that the caller's account exists and owns the beneficiary; a payee owned
// by someone else is reported as not found.
type BeneficiaryService struct {
	accounts      accountRepository
	beneficiaries beneficiaryRepository
	now           func() time.Time
}

func NewBeneficiaryService(accounts accountRepository, beneficiaries beneficiaryRepository) *BeneficiaryService {
	return &BeneficiaryService{
		accounts:      accounts,
		beneficiaries: beneficiaries,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *BeneficiaryService) Add(ctx context.Context, ownerID uuid.UUID, in BeneficiaryInput) (*domain.Beneficiary, error) {
	if _, err := s.accounts.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("Add: %w", err)
	}

	b := &domain.Beneficiary{
		ID:                     uuid.New(),
		OwnerID:                ownerID,
		RecipientFullName:      in.FullName,
		RecipientAccountNumber: in.AccountNumber,
		RecipientSortCode:      in.SortCode,
		Reference:              in.Reference,
		CreatedAt:              s.now(),
	}
	if err := s.beneficiaries.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("Add: %w", err)
	}

	logging.FromContext(ctx).Info("beneficiary added", "account_id", ownerID, "beneficiary_id", b.ID)
	return b, nil
}

func (s *BeneficiaryService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Beneficiary, error) {
	if _, err := s.accounts.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	list, err := s.beneficiaries.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return list, nil
}

func (s *BeneficiaryService) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Beneficiary, error) {
	if _, err := s.accounts.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	b, err := s.beneficiaries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if !b.OwnedBy(ownerID) {
		logging.FromContext(ctx).Warn("beneficiary ownership mismatch", "account_id", ownerID, "beneficiary_id", id)
		return nil, fmt.Errorf("Get: %w", domain.ErrBeneficiaryNotFound)
	}
	return b, nil
}

func (s *BeneficiaryService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.accounts.GetByID(ctx, ownerID); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	if err := s.beneficiaries.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	logging.FromContext(ctx).Info("beneficiary deleted", "account_id", ownerID, "beneficiary_id", id)
	return nil
}
