package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid"}
	ErrTokenExpired       = &AppError{http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid user id or password"}
	ErrElevationRequired  = &AppError{http.StatusUnauthorized, "OTP_REQUIRED", "Verify a one-time password to perform this operation"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrAccountNotFound     = &AppError{http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrBeneficiaryNotFound = &AppError{http.StatusNotFound, "BENEFICIARY_NOT_FOUND", "Beneficiary not found"}
	ErrDuplicateAccount    = &AppError{http.StatusConflict, "DUPLICATE_ACCOUNT", "User id, email or account number already in use"}
	ErrInsufficientFunds   = &AppError{http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a number greater than zero"}
	ErrOTPMissing          = &AppError{http.StatusBadRequest, "OTP_REQUIRED", "otp is required"}
	ErrOTPInvalid          = &AppError{http.StatusUnauthorized, "OTP_INVALID", "One-time password is invalid or expired"}
	ErrOTPDeliveryFailed   = &AppError{http.StatusInternalServerError, "OTP_DELIVERY_FAILED", "Could not deliver the one-time password"}
	ErrVersionConflict     = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrTransient           = &AppError{http.StatusInternalServerError, "TRANSIENT_ERROR", "Temporary failure, safe to retry"}
	ErrUpstream            = &AppError{http.StatusBadGateway, "UPSTREAM_ERROR", "Exchange rate provider unavailable"}
	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyPending  = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed"}
	ErrRequestTooLarge     = &AppError{http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body exceeds the size limit"}
)
