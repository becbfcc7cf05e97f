package ledger_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/ledger"
	"github.com/josh-kwaku/liquid-bank-api/internal/repository"
	"github.com/josh-kwaku/liquid-bank-api/internal/testutil"
)

func setupEngine(t *testing.T, db *sql.DB) *ledger.Engine {
	t.Helper()
	refs, err := ledger.NewSnowflakeReferences(1)
	require.NoError(t, err)
	return ledger.NewEngine(
		repository.NewDB(db),
		repository.NewAccountRepository(db),
		repository.NewStatementRepository(db),
		refs,
		5*time.Second,
	)
}

func statementsFor(t *testing.T, db *sql.DB, acct *domain.Account) []domain.StatementEntry {
	t.Helper()
	entries, _, err := repository.NewStatementRepository(db).GetByAccountID(context.Background(), acct.ID, 1000, 0)
	require.NoError(t, err)
	return entries
}

func TestEngine_DepositThenOverdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, db, "worked_example", 100)

	entry, err := engine.Apply(ctx, ledger.Request{
		AccountID:   acct.ID,
		Kind:        domain.TransactionTypeDeposit,
		Amount:      "50.7",
		Description: "top up",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150), entry.BalanceAfter)
	assert.Len(t, entry.ReferenceNumber, ledger.ReferenceLength)

	_, err = engine.Apply(ctx, ledger.Request{
		AccountID: acct.ID,
		Kind:      domain.TransactionTypeWithdrawal,
		Amount:    "200",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, int64(150), testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 1, testutil.CountStatements(t, db, acct.ID))

	stored := statementsFor(t, db, acct)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Amount.Equal(decimal.RequireFromString("50.7")))
	assert.Equal(t, "top up", stored[0].Description)
}

func TestEngine_SequenceMatchesFlooredRunningBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, db, "sequence", 10)

	ops := []struct {
		kind   domain.TransactionType
		amount string
	}{
		{domain.TransactionTypeDeposit, "5.5"},
		{domain.TransactionTypeWithdrawal, "20"},
		{domain.TransactionTypeWithdrawal, "0.25"},
		{domain.TransactionTypeDeposit, "100"},
		{domain.TransactionTypeWithdrawal, "114"},
		{domain.TransactionTypeWithdrawal, "1"},
		{domain.TransactionTypeDeposit, "0.9"},
	}

	expected := int64(10)
	successes := 0
	for _, op := range ops {
		next, modelErr := ledger.NextBalance(expected, op.kind, decimal.RequireFromString(op.amount))
		entry, err := engine.Apply(ctx, ledger.Request{AccountID: acct.ID, Kind: op.kind, Amount: op.amount})
		if modelErr != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds, "op %s %s", op.kind, op.amount)
			continue
		}
		require.NoError(t, err, "op %s %s", op.kind, op.amount)
		assert.Equal(t, next, entry.BalanceAfter)
		expected = next
		successes++
	}

	assert.Equal(t, expected, testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, successes, testutil.CountStatements(t, db, acct.ID))

	stored := statementsFor(t, db, acct)
	require.NotEmpty(t, stored)
	assert.Equal(t, expected, stored[0].BalanceAfter, "newest entry carries the live balance")

	refs := make(map[string]struct{}, len(stored))
	for _, e := range stored {
		assert.GreaterOrEqual(t, e.BalanceAfter, int64(0))
		_, dup := refs[e.ReferenceNumber]
		assert.False(t, dup)
		refs[e.ReferenceNumber] = struct{}{}
	}
}

func TestEngine_DepositWithdrawRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, db, "round_trip", 42)

	_, err := engine.Apply(ctx, ledger.Request{AccountID: acct.ID, Kind: domain.TransactionTypeDeposit, Amount: "58"})
	require.NoError(t, err)
	_, err = engine.Apply(ctx, ledger.Request{AccountID: acct.ID, Kind: domain.TransactionTypeWithdrawal, Amount: "58"})
	require.NoError(t, err)

	assert.Equal(t, int64(42), testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 2, testutil.CountStatements(t, db, acct.ID))
}

func TestEngine_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, db, "concurrent", 100)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Apply(ctx, ledger.Request{
				AccountID: acct.ID,
				Kind:      domain.TransactionTypeWithdrawal,
				Amount:    "60",
			})
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			failures++
		}
	}

	assert.Equal(t, 1, successes, "exactly one withdrawal should succeed")
	assert.Equal(t, workers-1, failures)
	assert.Equal(t, int64(40), testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 1, testutil.CountStatements(t, db, acct.ID))
}

func TestEngine_UnknownAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db)

	_, err := engine.Apply(context.Background(), ledger.Request{
		AccountID: uuid.New(),
		Kind:      domain.TransactionTypeDeposit,
		Amount:    "1",
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
