package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/service"
)

type beneficiaryRegistry interface {
	Add(ctx context.Context, ownerID uuid.UUID, in service.BeneficiaryInput) (*domain.Beneficiary, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Beneficiary, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Beneficiary, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type BeneficiaryHandler struct {
	registry beneficiaryRegistry
}

func NewBeneficiaryHandler(registry beneficiaryRegistry) *BeneficiaryHandler {
	return &BeneficiaryHandler{registry: registry}
}

type beneficiaryDTO struct {
	ID                     uuid.UUID `json:"id"`
	RecipientFullName      string    `json:"recipientFullName"`
	RecipientAccountNumber string    `json:"recipientAccountNumber"`
	RecipientSortCode      string    `json:"recipientSortCode"`
	Reference              *string   `json:"reference,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}

func toBeneficiaryDTO(b domain.Beneficiary) beneficiaryDTO {
	return beneficiaryDTO{
		ID:                     b.ID,
		RecipientFullName:      b.RecipientFullName,
		RecipientAccountNumber: b.RecipientAccountNumber,
		RecipientSortCode:      b.RecipientSortCode,
		Reference:              b.Reference,
		CreatedAt:              b.CreatedAt,
	}
}

type addBeneficiaryRequest struct {
	RecipientFullName      string  `json:"recipientFullName" validate:"required,max=200"`
	RecipientAccountNumber string  `json:"recipientAccountNumber" validate:"required,numeric,min=6,max=20"`
	RecipientSortCode      string  `json:"recipientSortCode" validate:"required,max=16"`
	Reference              *string `json:"reference" validate:"omitempty,max=140"`
}

type beneficiaryAddedResponse struct {
	Message     string         `json:"message"`
	Beneficiary beneficiaryDTO `json:"beneficiary"`
}

func (h *BeneficiaryHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	req, ok := decodeAndValidate[addBeneficiaryRequest](w, r)
	if !ok {
		return
	}

	b, err := h.registry.Add(r.Context(), ownerID, service.BeneficiaryInput{
		FullName:      req.RecipientFullName,
		AccountNumber: req.RecipientAccountNumber,
		SortCode:      req.RecipientSortCode,
		Reference:     req.Reference,
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusOK, beneficiaryAddedResponse{
		Message:     "Beneficiary added",
		Beneficiary: toBeneficiaryDTO(*b),
	})
}

func (h *BeneficiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	list, err := h.registry.List(r.Context(), ownerID)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	dtos := make([]beneficiaryDTO, len(list))
	for i, b := range list {
		dtos[i] = toBeneficiaryDTO(b)
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *BeneficiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, ErrBeneficiaryNotFound, nil)
		return
	}

	b, err := h.registry.Get(r.Context(), ownerID, id)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBeneficiaryDTO(*b))
}

func (h *BeneficiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, ErrBeneficiaryNotFound, nil)
		return
	}

	if err := h.registry.Delete(r.Context(), ownerID, id); err != nil {
		RespondDomainError(w, r, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "Beneficiary deleted"})
}
