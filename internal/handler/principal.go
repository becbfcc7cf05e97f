package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/auth"
)

func callerID(r *http.Request) (uuid.UUID, *AppError) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return claims.AccountID, nil
}

func idFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}
