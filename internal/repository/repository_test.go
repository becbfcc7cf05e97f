package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/repository"
	"github.com/josh-kwaku/liquid-bank-api/internal/testutil"
)

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewAccountRepository(db)
	existing := testutil.SeedAccount(t, db, "ada", 0)

	clash := *existing
	clash.ID = uuid.New()
	clash.AccountNumber = "99999999"
	clash.Email = "other@example.com"

	err := repo.Create(ctx, &clash)
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)

	conflict, err := repo.ExistsConflicting(ctx, "someone", existing.Email, "00000000")
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = repo.ExistsConflicting(ctx, "someone", "someone@example.com", "00000000")
	require.NoError(t, err)
	assert.False(t, conflict)

	got, err := repo.GetByUserID(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Nil(t, got.LastLogin)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func insertEntry(t *testing.T, db *sql.DB, repo *repository.StatementRepository, e *domain.StatementEntry) error {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	if err := repo.Create(context.Background(), tx, e); err != nil {
		require.NoError(t, tx.Rollback())
		return err
	}
	return tx.Commit()
}

func TestStatementRepository_Paging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewStatementRepository(db)
	acct := testutil.SeedAccount(t, db, "ada", 0)

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 5 {
		require.NoError(t, insertEntry(t, db, repo, &domain.StatementEntry{
			ID:              uuid.New(),
			AccountID:       acct.ID,
			Type:            domain.TransactionTypeDeposit,
			Amount:          decimal.NewFromInt(int64(i + 1)),
			BalanceAfter:    int64((i + 1) * (i + 2) / 2),
			ReferenceNumber: fmt.Sprintf("%019d", i+1),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, total, err := repo.GetByAccountID(context.Background(), acct.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "0000000000000000004", page[0].ReferenceNumber)
	assert.Equal(t, "0000000000000000003", page[1].ReferenceNumber)

	empty, total, err := repo.GetByAccountID(context.Background(), uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, empty)
}

func TestStatementRepository_DuplicateReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewStatementRepository(db)
	acct := testutil.SeedAccount(t, db, "ada", 0)

	entry := func() *domain.StatementEntry {
		return &domain.StatementEntry{
			ID:              uuid.New(),
			AccountID:       acct.ID,
			Type:            domain.TransactionTypeDeposit,
			Amount:          decimal.NewFromInt(1),
			BalanceAfter:    1,
			ReferenceNumber: "1234567890123456789",
			CreatedAt:       time.Now().UTC(),
		}
	}

	require.NoError(t, insertEntry(t, db, repo, entry()))
	err := insertEntry(t, db, repo, entry())
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestBeneficiaryRepository_DeleteScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewBeneficiaryRepository(db)
	owner := testutil.SeedAccount(t, db, "ada", 0)
	other := testutil.SeedAccount(t, db, "bob", 0)

	ref := "rent"
	b := &domain.Beneficiary{
		ID:                     uuid.New(),
		OwnerID:                owner.ID,
		RecipientFullName:      "Landlord",
		RecipientAccountNumber: "12345678",
		RecipientSortCode:      "20-00-00",
		Reference:              &ref,
		CreatedAt:              time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, b))

	list, err := repo.ListByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = repo.Delete(ctx, b.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrBeneficiaryNotFound)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Reference)
	assert.Equal(t, "rent", *got.Reference)

	require.NoError(t, repo.Delete(ctx, b.ID, owner.ID))
	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrBeneficiaryNotFound)
}

func TestIdempotencyRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewIdempotencyRepository(db)
	acct := testutil.SeedAccount(t, db, "ada", 0)
	now := time.Now().UTC()

	rec := &repository.IdempotencyRecord{
		Key:         "key-1",
		AccountID:   acct.ID,
		RequestHash: "hash-a",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Minute),
	}
	claimed, err := repo.Claim(ctx, rec)
	require.NoError(t, err)
	require.True(t, claimed)

	second := *rec
	second.RequestHash = "hash-b"
	claimed, err = repo.Claim(ctx, &second)
	require.NoError(t, err)
	assert.False(t, claimed, "a live key is held by its first claimant")

	got, err := repo.Lookup(ctx, "key-1", acct.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Pending())
	assert.Equal(t, "hash-a", got.RequestHash)

	rec.StatusCode = 200
	rec.ResponseBody = []byte(`{"success":true}`)
	rec.ExpiresAt = now.Add(time.Hour)
	require.NoError(t, repo.Complete(ctx, rec))

	got, err = repo.Lookup(ctx, "key-1", acct.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Pending())
	assert.Equal(t, 200, got.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(got.ResponseBody))

	require.NoError(t, repo.Release(ctx, "key-1", acct.ID))
	got, err = repo.Lookup(ctx, "key-1", acct.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "release leaves completed rows alone")

	got, err = repo.Lookup(ctx, "key-1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyRepository_ReleaseAndExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewIdempotencyRepository(db)
	acct := testutil.SeedAccount(t, db, "ada", 0)
	now := time.Now().UTC()

	pending := &repository.IdempotencyRecord{
		Key:         "key-retry",
		AccountID:   acct.ID,
		RequestHash: "hash-a",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Minute),
	}
	claimed, err := repo.Claim(ctx, pending)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, repo.Release(ctx, "key-retry", acct.ID))
	claimed, err = repo.Claim(ctx, pending)
	require.NoError(t, err)
	assert.True(t, claimed, "a released key can be claimed again")

	stale := &repository.IdempotencyRecord{
		Key:         "key-old",
		AccountID:   acct.ID,
		RequestHash: "hash-old",
		CreatedAt:   now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}
	claimed, err = repo.Claim(ctx, stale)
	require.NoError(t, err)
	require.True(t, claimed)

	got, err := repo.Lookup(ctx, "key-old", acct.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "expired rows are invisible")

	fresh := &repository.IdempotencyRecord{
		Key:         "key-old",
		AccountID:   acct.ID,
		RequestHash: "hash-new",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Minute),
	}
	claimed, err = repo.Claim(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, claimed, "an expired row is taken over before the janitor runs")

	got, err = repo.Lookup(ctx, "key-old", acct.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash-new", got.RequestHash)

	n, err := repo.PurgeExpired(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
