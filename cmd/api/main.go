package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/liquid-bank-api/internal/auth"
	"github.com/josh-kwaku/liquid-bank-api/internal/config"
	"github.com/josh-kwaku/liquid-bank-api/internal/fx"
	"github.com/josh-kwaku/liquid-bank-api/internal/handler"
	"github.com/josh-kwaku/liquid-bank-api/internal/ledger"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
	"github.com/josh-kwaku/liquid-bank-api/internal/mailer"
	"github.com/josh-kwaku/liquid-bank-api/internal/otp"
	"github.com/josh-kwaku/liquid-bank-api/internal/repository"
	"github.com/josh-kwaku/liquid-bank-api/internal/service"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		// .env is optional outside production
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("liquid-bank-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	deps, err := wire(cfg, db, rdb, logger)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	go deps.janitor.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           deps.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

type app struct {
	router  http.Handler
	janitor *service.Janitor
}

func wire(cfg *config.Config, db *sql.DB, rdb *redis.Client, logger *slog.Logger) (*app, error) {
	accountRepo := repository.NewAccountRepository(db)
	statementRepo := repository.NewStatementRepository(db)
	beneficiaryRepo := repository.NewBeneficiaryRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	deriver := otp.NewDeriver(otp.Params{
		Issuer: cfg.OTPIssuer,
		Step:   cfg.OTPStep,
		Digits: cfg.OTPDigits,
		Skew:   cfg.OTPSkew,
	})

	tasks := []service.SweepTask{{
		Name: "idempotency_keys",
		Run: func(ctx context.Context) (int64, error) {
			return idempotencyRepo.PurgeExpired(ctx, time.Now())
		},
	}}

	var challenges otp.ChallengeStore
	switch cfg.OTPStore {
	case "redis":
		challenges = otp.NewRedisStore(rdb)
	default:
		mem := otp.NewMemoryStore()
		challenges = mem
		tasks = append(tasks, service.SweepTask{
			Name: "otp_challenges",
			Run: func(ctx context.Context) (int64, error) {
				n, err := mem.EvictExpired(ctx)
				return int64(n), err
			},
		})
	}

	var sender otp.Mailer = mailer.NewLogMailer(os.Stdout)
	if cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Retries:  cfg.MailRetries,
		})
		if err != nil {
			return nil, err
		}
		sender = smtp
	} else {
		slog.Warn("SMTP_HOST not set, one-time passwords are written to stdout")
	}

	refs, err := ledger.NewSnowflakeReferences(cfg.ReferenceNode)
	if err != nil {
		return nil, err
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.ElevatedTokenTTL)
	authenticator := otp.NewAuthenticator(deriver, challenges, sender)

	accountSvc := service.NewAccountService(accountRepo, statementRepo, deriver, issuer)
	stepUpSvc := service.NewStepUpService(accountRepo, authenticator, issuer)
	beneficiarySvc := service.NewBeneficiaryService(accountRepo, beneficiaryRepo)
	engine := ledger.NewEngine(repository.NewDB(db), accountRepo, statementRepo, refs, cfg.StoreTimeout)

	var cache fx.Cache = fx.NoCache{}
	checks := map[string]handler.Pinger{"database": db}
	if rdb != nil {
		cache = fx.NewRedisCache(rdb)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	rates := fx.NewRateService(fx.Config{
		BaseURL:     cfg.ExchangeAPIURL,
		APIKey:      cfg.ExchangeAPIKey,
		DefaultBase: cfg.ExchangeBase,
		CacheTTL:    cfg.ExchangeCacheTTL,
	}, cache)

	router := newRouter(routes{
		verifier:      issuer,
		requireOTP:    cfg.RequireOTPForSensitive,
		idempotency:   idempotencyRepo,
		auth:          handler.NewAuthHandler(accountSvc, stepUpSvc, cfg.ElevatedTokenTTL),
		accounts:      handler.NewAccountHandler(accountSvc, engine),
		beneficiaries: handler.NewBeneficiaryHandler(beneficiarySvc),
		fx:            handler.NewFXHandler(rates),
		health:        handler.NewHealthHandler(checks),
	})

	return &app{
		router:  router,
		janitor: service.NewJanitor(logger, cfg.JanitorInterval, tasks...),
	}, nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		var db *sql.DB
		if db, err = repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connectDB: %w", ctx.Err())
		case <-time.After(time.Second):
		}
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
