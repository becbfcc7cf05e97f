package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrBeneficiaryNotFound    = errors.New("beneficiary not found")
	ErrInvalidAmount          = errors.New("amount must be a number greater than zero")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrDuplicateAccount       = errors.New("user id, email or account number already in use")
	ErrDuplicateReference     = errors.New("duplicate reference number")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrOTPRequired            = errors.New("otp required")
	ErrOTPInvalid             = errors.New("otp invalid or expired")
	ErrOTPDelivery            = errors.New("otp delivery failed")
	ErrVersionConflict        = errors.New("optimistic lock conflict")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrTransient              = errors.New("temporary store failure")
	ErrUpstream               = errors.New("upstream service failure")
)
