// Package ledger applies balance-changing transactions. Every successful call
// changes the account balance and appends exactly one statement entry in the
// same database transaction.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

const maxReferenceAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type accountStore interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance int64, newVersion int64) error
}

type statementLog interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.StatementEntry) error
}

type Request struct {
	AccountID     uuid.UUID
	Kind          domain.TransactionType
	Amount        string
	Description   string
	PaymentDetail *string
}

type Engine struct {
	db         txRunner
	accounts   accountStore
	statements statementLog
	refs       ReferenceGenerator
	timeout    time.Duration
	now        func() time.Time
}

func NewEngine(db txRunner, accounts accountStore, statements statementLog, refs ReferenceGenerator, timeout time.Duration) *Engine {
	return &Engine{
		db:         db,
		accounts:   accounts,
		statements: statements,
		refs:       refs,
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Apply settles a deposit or withdrawal. Business-rule failures
// (ErrInvalidAmount, ErrInsufficientFunds, ErrAccountNotFound) leave the
// account and statement log untouched.
func (e *Engine) Apply(ctx context.Context, req Request) (*domain.StatementEntry, error) {
	log := logging.FromContext(ctx)

	if req.Kind != domain.TransactionTypeDeposit && req.Kind != domain.TransactionTypeWithdrawal {
		return nil, fmt.Errorf("Apply: %q: %w", req.Kind, domain.ErrInvalidTransactionKind)
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("Apply: %w", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var entry *domain.StatementEntry
	for attempt := 1; ; attempt++ {
		entry, err = e.settle(ctx, req, amount)
		if !errors.Is(err, domain.ErrDuplicateReference) || attempt == maxReferenceAttempts {
			break
		}
		log.Warn("reference number collision, retrying", "attempt", attempt)
	}
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrTransient) {
			err = fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}
		return nil, fmt.Errorf("Apply: %w", err)
	}

	log.Info("transaction settled",
		"account_id", entry.AccountID,
		"type", entry.Type,
		"amount", entry.Amount.String(),
		"balance_after", entry.BalanceAfter,
		"reference", entry.ReferenceNumber,
	)
	return entry, nil
}

func (e *Engine) settle(ctx context.Context, req Request, amount decimal.Decimal) (*domain.StatementEntry, error) {
	var entry *domain.StatementEntry

	err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		acct, err := e.accounts.GetForUpdate(ctx, tx, req.AccountID)
		if err != nil {
			return err
		}

		newBalance, err := NextBalance(acct.Balance, req.Kind, amount)
		if err != nil {
			return err
		}

		ref, err := e.refs.Next()
		if err != nil {
			return err
		}

		entry = &domain.StatementEntry{
			ID:              uuid.New(),
			AccountID:       acct.ID,
			Type:            req.Kind,
			Description:     req.Description,
			Amount:          amount,
			BalanceAfter:    newBalance,
			ReferenceNumber: ref,
			PaymentDetail:   req.PaymentDetail,
			CreatedAt:       e.now(),
		}

		if err := e.accounts.UpdateBalance(ctx, tx, acct.ID, newBalance, acct.Version+1); err != nil {
			return err
		}
		return e.statements.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}
	return entry, nil
}
