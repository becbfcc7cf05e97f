package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps a wrapped domain error onto its AppError. Anything
// unrecognised is logged in full and reported as a bare 500.
func RespondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	RespondAppError(w, mapDomainError(r, err), nil)
}

func mapDomainError(r *http.Request, err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, domain.ErrBeneficiaryNotFound):
		return ErrBeneficiaryNotFound
	case errors.Is(err, domain.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, domain.ErrInvalidAmount):
		return ErrInvalidAmount
	case errors.Is(err, domain.ErrDuplicateAccount):
		return ErrDuplicateAccount
	case errors.Is(err, domain.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, domain.ErrOTPRequired):
		return ErrOTPMissing
	case errors.Is(err, domain.ErrOTPInvalid):
		return ErrOTPInvalid
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidTransactionKind):
		return ErrInvalidRequest
	}

	log := logging.FromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrOTPDelivery):
		log.Error("otp delivery error", "error", err)
		return ErrOTPDeliveryFailed
	case errors.Is(err, domain.ErrVersionConflict):
		log.Warn("version conflict", "error", err)
		return ErrVersionConflict
	case errors.Is(err, domain.ErrTransient):
		log.Error("transient store failure", "error", err)
		return ErrTransient
	case errors.Is(err, domain.ErrUpstream):
		log.Error("upstream failure", "error", err)
		return ErrUpstream
	}

	log.Error("unhandled domain error", "error", err)
	return ErrInternalError
}
