package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

// Scope separates a password-only session from one that also passed OTP.
type Scope string

const (
	ScopeSession  Scope = "session"
	ScopeElevated Scope = "elevated"
)

type Claims struct {
	AccountID uuid.UUID
	Role      domain.Role
	Scope     Scope
	ExpiresAt time.Time
}

func (c *Claims) Elevated() bool {
	return c.Scope == ScopeElevated
}

type tokenClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	Scope     string `json:"scope"`
}

func GenerateToken(accountID uuid.UUID, role domain.Role, scope Scope, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		AccountID: accountID.String(),
		Role:      string(role),
		Scope:     string(scope),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

// ValidateToken returns an error wrapping jwt.ErrTokenExpired for expired
// tokens so callers can tell them apart from forged or malformed ones.
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: %w", jwt.ErrTokenInvalidClaims)
	}

	accountID, err := uuid.Parse(tc.AccountID)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid account_id in token: %w", jwt.ErrTokenInvalidClaims)
	}

	scope := Scope(tc.Scope)
	if scope != ScopeSession && scope != ScopeElevated {
		return nil, fmt.Errorf("ValidateToken: unknown scope %q: %w", tc.Scope, jwt.ErrTokenInvalidClaims)
	}

	return &Claims{
		AccountID: accountID,
		Role:      domain.Role(tc.Role),
		Scope:     scope,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// Issuer mints the two token flavours with their configured lifetimes.
// The elevated lifetime is never longer than the session lifetime.
type Issuer struct {
	secret      string
	sessionTTL  time.Duration
	elevatedTTL time.Duration
}

func NewIssuer(secret string, sessionTTL, elevatedTTL time.Duration) *Issuer {
	if elevatedTTL > sessionTTL {
		elevatedTTL = sessionTTL
	}
	return &Issuer{secret: secret, sessionTTL: sessionTTL, elevatedTTL: elevatedTTL}
}

func (i *Issuer) IssueSession(accountID uuid.UUID, role domain.Role) (string, error) {
	return GenerateToken(accountID, role, ScopeSession, i.secret, i.sessionTTL)
}

func (i *Issuer) IssueElevated(accountID uuid.UUID, role domain.Role) (string, error) {
	return GenerateToken(accountID, role, ScopeElevated, i.secret, i.elevatedTTL)
}

func (i *Issuer) Verify(token string) (*Claims, error) {
	return ValidateToken(token, i.secret)
}

func (i *Issuer) ElevatedTTL() time.Duration {
	return i.elevatedTTL
}
