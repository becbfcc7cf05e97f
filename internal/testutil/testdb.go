package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/josh-kwaku/liquid-bank-api/internal/repository"
)

var (
	sharedOnce sync.Once
	sharedDB   *sql.DB
	sharedErr  error
)

// SetupTestDB returns a migrated postgres shared by every test in the
// binary, emptied before each caller. The container is reaped by
// testcontainers when the process exits. Tests using it must not run in
// parallel.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}

	sharedOnce.Do(func() {
		sharedDB, sharedErr = startPostgres(context.Background())
	})
	if sharedErr != nil {
		t.Fatalf("start test database: %v", sharedErr)
	}

	if _, err := sharedDB.Exec(
		`TRUNCATE statements, beneficiaries, idempotency_cache, accounts`,
	); err != nil {
		t.Fatalf("reset test database: %v", err)
	}
	return sharedDB
}

func startPostgres(ctx context.Context) (*sql.DB, error) {
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("liquid_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("run container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}

	db, err := repository.NewPostgresDB(ctx, dsn, repository.PoolConfig{
		MaxOpenConns:     20,
		MaxIdleConns:     5,
		ConnMaxLifetimeS: 300,
		ConnMaxIdleTimeS: 60,
	})
	if err != nil {
		return nil, err
	}

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
