package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/liquid-bank-api/internal/auth"
	"github.com/josh-kwaku/liquid-bank-api/internal/handler"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth accepts session and elevated bearer tokens. Expired and otherwise
// invalid tokens get distinct 401 codes.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if auth.IsExpired(err) {
					handler.RespondAppError(w, handler.ErrTokenExpired, nil)
					return
				}
				logging.FromContext(r.Context()).Warn("token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			ctx = logging.WithAccount(ctx, claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireElevated rejects requests whose token did not pass OTP step-up.
// With enabled false it is a pass-through.
func RequireElevated(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}
			if !claims.Elevated() {
				handler.RespondAppError(w, handler.ErrElevationRequired, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
