package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/ledger"
)

type accountReader interface {
	Get(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	Statement(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.StatementEntry, int, error)
}

type transactor interface {
	Apply(ctx context.Context, req ledger.Request) (*domain.StatementEntry, error)
}

type AccountHandler struct {
	accounts accountReader
	ledger   transactor
}

func NewAccountHandler(accounts accountReader, ledger transactor) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger}
}

type addressDTO struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	PostCode string `json:"postCode"`
}

type detailsResponse struct {
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	DOB           string     `json:"dob"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       addressDTO `json:"address"`
	Balance       int64      `json:"balance"`
	AccountNumber string     `json:"accountNumber"`
	AccountType   string     `json:"accountType"`
	SortCode      string     `json:"sortCode"`
	LastLogin     *time.Time `json:"lastLogin"`
}

func (h *AccountHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.caller(w, r)
	if !ok {
		return
	}

	RespondSuccess(w, http.StatusOK, detailsResponse{
		UserID:    acct.UserID,
		Title:     acct.Title,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		DOB:       acct.DOB.Format(time.DateOnly),
		Email:     acct.Email,
		Phone:     acct.Phone,
		Address: addressDTO{
			Street:   acct.Address.Street,
			City:     acct.Address.City,
			State:    acct.Address.State,
			PostCode: acct.Address.PostCode,
		},
		Balance:       acct.Balance,
		AccountNumber: acct.AccountNumber,
		AccountType:   string(acct.AccountType),
		SortCode:      acct.SortCode,
		LastLogin:     acct.LastLogin,
	})
}

type accountInfoResponse struct {
	AccountType   string `json:"accountType"`
	SortCode      string `json:"sortCode"`
	Balance       int64  `json:"balance"`
	AccountNumber string `json:"accountNumber"`
}

func (h *AccountHandler) GetAccountInformation(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.caller(w, r)
	if !ok {
		return
	}

	RespondSuccess(w, http.StatusOK, accountInfoResponse{
		AccountType:   string(acct.AccountType),
		SortCode:      acct.SortCode,
		Balance:       acct.Balance,
		AccountNumber: acct.AccountNumber,
	})
}

func (h *AccountHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	accountID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return nil, false
	}

	acct, err := h.accounts.Get(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, r, err)
		return nil, false
	}
	return acct, true
}

type statementEntryDTO struct {
	ID                      uuid.UUID `json:"id"`
	Type                    string    `json:"type"`
	Description             string    `json:"description"`
	Amount                  string    `json:"amount"`
	BalanceAfterTransaction int64     `json:"balanceAfterTransaction"`
	ReferenceNumber         string    `json:"referenceNumber"`
	PaymentDetail           *string   `json:"paymentDetail,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
}

type statementResponse struct {
	Entries []statementEntryDTO `json:"entries"`
	Total   int                 `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

func toStatementEntryDTO(e domain.StatementEntry) statementEntryDTO {
	return statementEntryDTO{
		ID:                      e.ID,
		Type:                    string(e.Type),
		Description:             e.Description,
		Amount:                  e.Amount.String(),
		BalanceAfterTransaction: e.BalanceAfter,
		ReferenceNumber:         e.ReferenceNumber,
		PaymentDetail:           e.PaymentDetail,
		CreatedAt:               e.CreatedAt,
	}
}

func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit, offset, fields := pagingParams(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	entries, total, err := h.accounts.Statement(r.Context(), accountID, limit, offset)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	dtos := make([]statementEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toStatementEntryDTO(e)
	}

	RespondSuccess(w, http.StatusOK, statementResponse{
		Entries: dtos,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func pagingParams(r *http.Request) (limit, offset int, fields []FieldError) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields = append(fields, FieldError{Field: "limit", Message: "must be a positive integer"})
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields = append(fields, FieldError{Field: "offset", Message: "must be a non-negative integer"})
		}
		offset = n
	}
	return limit, offset, fields
}

type transactionRequest struct {
	Amount        amountField `json:"amount"`
	Description   string      `json:"description" validate:"max=255"`
	PaymentDetail *string     `json:"paymentDetail" validate:"omitempty,max=255"`
}

type transactionResponse struct {
	Message         string `json:"message"`
	Balance         int64  `json:"balance"`
	ReferenceNumber string `json:"referenceNumber"`
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.transact(w, r, domain.TransactionTypeDeposit, "Deposit successful")
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transact(w, r, domain.TransactionTypeWithdrawal, "Withdrawal successful")
}

func (h *AccountHandler) transact(w http.ResponseWriter, r *http.Request, kind domain.TransactionType, message string) {
	accountID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	req, ok := decodeAndValidate[transactionRequest](w, r)
	if !ok {
		return
	}

	entry, err := h.ledger.Apply(r.Context(), ledger.Request{
		AccountID:     accountID,
		Kind:          kind,
		Amount:        string(req.Amount),
		Description:   req.Description,
		PaymentDetail: req.PaymentDetail,
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transactionResponse{
		Message:         message,
		Balance:         entry.BalanceAfter,
		ReferenceNumber: entry.ReferenceNumber,
	})
}
