package domain

import (
	"time"

	"github.com/google/uuid"
)

type Beneficiary struct {
	ID                     uuid.UUID
	OwnerID                uuid.UUID
	RecipientFullName      string
	RecipientAccountNumber string
	RecipientSortCode      string
	Reference              *string
	CreatedAt              time.Time
}

func (b *Beneficiary) OwnedBy(accountID uuid.UUID) bool {
	return b.OwnerID == accountID
}
