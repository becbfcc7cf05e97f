package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/liquid-bank-api/internal/fx"
)

type rateSource interface {
	Latest(ctx context.Context, base string) (*fx.Rates, error)
}

type FXHandler struct {
	fx rateSource
}

func NewFXHandler(fxSvc rateSource) *FXHandler {
	return &FXHandler{fx: fxSvc}
}

func (h *FXHandler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base != "" && !fx.ValidCurrency(base) {
		RespondValidationError(w, []FieldError{{Field: "base", Message: "must be a three-letter ISO currency code"}})
		return
	}

	rates, err := h.fx.Latest(r.Context(), base)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondSuccess(w, http.StatusOK, rates)
}
