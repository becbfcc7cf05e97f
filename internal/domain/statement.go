package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// StatementEntry is written once per settled transaction and never updated.
// BalanceAfter equals the account balance committed in the same transaction.
type StatementEntry struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Type            TransactionType
	Description     string
	Amount          decimal.Decimal
	BalanceAfter    int64
	ReferenceNumber string
	PaymentDetail   *string
	CreatedAt       time.Time
}
