package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

var maxBalance = decimal.NewFromInt(math.MaxInt64)

// ParseAmount accepts a plain or exponent decimal string strictly greater
// than zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("ParseAmount: empty: %w", domain.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ParseAmount: %q: %w", s, domain.ErrInvalidAmount)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("ParseAmount: %s: %w", d, domain.ErrInvalidAmount)
	}
	if d.GreaterThan(maxBalance) {
		return decimal.Zero, fmt.Errorf("ParseAmount: %s too large: %w", d, domain.ErrInvalidAmount)
	}
	return d, nil
}

// ParseOpeningBalance is ParseAmount that also admits zero and an empty
// value. The result is floored to whole units.
func ParseOpeningBalance(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "0" {
		return 0, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.GreaterThan(maxBalance) {
		return 0, fmt.Errorf("ParseOpeningBalance: %q: %w", s, domain.ErrInvalidAmount)
	}
	return d.Floor().IntPart(), nil
}

// NextBalance applies amount to balance and floors the result to whole
// units: 100 + 50.7 settles at 150, 100 - 0.5 settles at 99.
func NextBalance(balance int64, kind domain.TransactionType, amount decimal.Decimal) (int64, error) {
	current := decimal.NewFromInt(balance)

	var next decimal.Decimal
	switch kind {
	case domain.TransactionTypeDeposit:
		next = current.Add(amount)
	case domain.TransactionTypeWithdrawal:
		next = current.Sub(amount)
	default:
		return 0, fmt.Errorf("NextBalance: %q: %w", kind, domain.ErrInvalidTransactionKind)
	}

	next = next.Floor()
	if next.IsNegative() {
		return 0, fmt.Errorf("NextBalance: %w", domain.ErrInsufficientFunds)
	}
	if next.GreaterThan(maxBalance) {
		return 0, fmt.Errorf("NextBalance: balance overflow: %w", domain.ErrInvalidAmount)
	}
	return next.IntPart(), nil
}
