package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
	"github.com/josh-kwaku/liquid-bank-api/internal/service"
)

type accountAuthenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, userID, password string) (string, *domain.Account, error)
}

type stepUp interface {
	Request(ctx context.Context, accountID uuid.UUID) (time.Time, error)
	Submit(ctx context.Context, accountID uuid.UUID, code string) (string, error)
}

type AuthHandler struct {
	accounts    accountAuthenticator
	stepUp      stepUp
	elevatedTTL time.Duration
}

func NewAuthHandler(accounts accountAuthenticator, stepUp stepUp, elevatedTTL time.Duration) *AuthHandler {
	return &AuthHandler{accounts: accounts, stepUp: stepUp, elevatedTTL: elevatedTTL}
}

type loginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAndValidate[loginRequest](w, r)
	if !ok {
		return
	}

	token, _, err := h.accounts.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusOK, tokenResponse{Token: token})
}

type registerRequest struct {
	Title         string      `json:"title" validate:"max=20"`
	FirstName     string      `json:"firstName" validate:"required,max=100"`
	LastName      string      `json:"lastName" validate:"required,max=100"`
	UserID        string      `json:"userId" validate:"required,min=3,max=64"`
	Password      string      `json:"password" validate:"required,min=6,max=72"`
	DOB           string      `json:"dob" validate:"required,datetime=2006-01-02"`
	Email         string      `json:"email" validate:"required,email"`
	Phone         string      `json:"phone" validate:"required,max=32"`
	Street        string      `json:"street"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	PostCode      string      `json:"postCode"`
	AccountNumber string      `json:"accountNumber" validate:"required,numeric,min=6,max=20"`
	AccountType   string      `json:"accountType" validate:"required,oneof=savings checking business"`
	SortCode      string      `json:"sortCode" validate:"required,max=16"`
	Balance       amountField `json:"balance"`
}

type registerResponse struct {
	Message   string    `json:"message"`
	AccountID uuid.UUID `json:"accountId"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAndValidate[registerRequest](w, r)
	if !ok {
		return
	}

	dob, err := time.Parse(time.DateOnly, req.DOB)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "dob", Message: "must be a date in YYYY-MM-DD format"}})
		return
	}

	acct, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Title:     req.Title,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserID:    req.UserID,
		Password:  req.Password,
		DOB:       dob,
		Email:     req.Email,
		Phone:     req.Phone,
		Address: domain.Address{
			Street:   req.Street,
			City:     req.City,
			State:    req.State,
			PostCode: req.PostCode,
		},
		AccountNumber:  req.AccountNumber,
		AccountType:    domain.AccountType(req.AccountType),
		SortCode:       req.SortCode,
		OpeningBalance: string(req.Balance),
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, registerResponse{
		Message:   "Account created successfully",
		AccountID: acct.ID,
	})
}

type otpIssuedResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	expiresAt, err := h.stepUp.Request(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrOTPDelivery) {
			logging.FromContext(r.Context()).Warn("otp issued but not delivered", "expires_at", expiresAt)
		}
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusOK, otpIssuedResponse{
		Message:   "A one-time password has been sent to your email",
		ExpiresAt: expiresAt,
	})
}

type submitOTPRequest struct {
	OTP string `json:"otp"`
}

func (h *AuthHandler) SubmitOTP(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	req, ok := decodeAndValidate[submitOTPRequest](w, r)
	if !ok {
		return
	}

	token, err := h.stepUp.Submit(r.Context(), accountID, req.OTP)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int64(h.elevatedTTL / time.Second),
	})
}
