package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/josh-kwaku/liquid-bank-api/internal/auth"
	"github.com/josh-kwaku/liquid-bank-api/internal/handler"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
	"github.com/josh-kwaku/liquid-bank-api/internal/repository"
)

type IdempotencyStore interface {
	Lookup(ctx context.Context, key string, accountID uuid.UUID) (*repository.IdempotencyRecord, error)
	Claim(ctx context.Context, rec *repository.IdempotencyRecord) (bool, error)
	Complete(ctx context.Context, rec *repository.IdempotencyRecord) error
	Release(ctx context.Context, key string, accountID uuid.UUID) error
}

const (
	idempotencyTTL       = 24 * time.Hour
	pendingTTL           = 2 * time.Minute
	maxIdempotencyKeyLen = 255
	maxIdempotentBody    = 1 << 20
)

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key. The header is optional; requests without it pass through.
// The key is claimed before the handler runs, so a retry that races the
// first request gets 409 instead of a second execution. Only 2xx responses
// are remembered so a rejected request can be retried.
func Idempotency(repo IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}

			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}
			accountID := claims.AccountID
			log := logging.FromContext(r.Context())

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					handler.RespondAppError(w, handler.ErrRequestTooLarge, nil)
					return
				}
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			now := time.Now().UTC()
			entry := &repository.IdempotencyRecord{
				Key:         key,
				AccountID:   accountID,
				RequestHash: computeHash(r.Method, r.URL.Path, body),
				CreatedAt:   now,
				ExpiresAt:   now.Add(pendingTTL),
			}

			claimed, err := repo.Claim(r.Context(), entry)
			if err != nil {
				log.Error("idempotency claim failed", "error", err, "idempotency_key", key)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !claimed {
				respondExisting(w, r, repo, entry)
				return
			}

			// The row is written outside the request context so a client
			// hang-up cannot strand it pending.
			storeCtx := context.WithoutCancel(r.Context())
			succeeded := false
			defer func() {
				if succeeded {
					return
				}
				if err := repo.Release(storeCtx, key, accountID); err != nil {
					log.Error("idempotency release failed", "error", err, "idempotency_key", key)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode < 200 || rec.statusCode >= 300 {
				return
			}

			// The handler has taken effect. If the store fails the pending row
			// stays until it expires instead of freeing the key for a rerun.
			succeeded = true
			entry.StatusCode = rec.statusCode
			entry.ResponseBody = rec.body.Bytes()
			entry.ExpiresAt = time.Now().UTC().Add(idempotencyTTL)
			if err := repo.Complete(storeCtx, entry); err != nil {
				log.Error("idempotency cache store failed", "error", err, "idempotency_key", key)
			}
		})
	}
}

// respondExisting answers a request whose key is already held: a different
// payload is a conflict, an unfinished one is still in progress, and a
// finished one is replayed.
func respondExisting(w http.ResponseWriter, r *http.Request, repo IdempotencyStore, entry *repository.IdempotencyRecord) {
	log := logging.FromContext(r.Context())

	cached, err := repo.Lookup(r.Context(), entry.Key, entry.AccountID)
	if err != nil {
		log.Error("idempotency cache lookup failed", "error", err, "idempotency_key", entry.Key)
		handler.RespondAppError(w, handler.ErrInternalError, nil)
		return
	}

	switch {
	case cached == nil:
		// Released between our claim and lookup; the client may retry.
		handler.RespondAppError(w, handler.ErrIdempotencyPending, nil)
	case cached.RequestHash != entry.RequestHash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
	case cached.Pending():
		handler.RespondAppError(w, handler.ErrIdempotencyPending, nil)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Idempotent-Replayed", "true")
		w.WriteHeader(cached.StatusCode)
		if _, err := w.Write(cached.ResponseBody); err != nil {
			log.Error("failed to write idempotent replay", "error", err, "idempotency_key", entry.Key)
		}
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
