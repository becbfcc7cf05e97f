package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/service"
)

type stubRegistry struct {
	items map[uuid.UUID]domain.Beneficiary
}

func (s *stubRegistry) Add(_ context.Context, ownerID uuid.UUID, in service.BeneficiaryInput) (*domain.Beneficiary, error) {
	b := domain.Beneficiary{ID: uuid.New(), OwnerID: ownerID, RecipientFullName: in.FullName, RecipientAccountNumber: in.AccountNumber, RecipientSortCode: in.SortCode}
	s.items[b.ID] = b
	return &b, nil
}

func (s *stubRegistry) List(_ context.Context, ownerID uuid.UUID) ([]domain.Beneficiary, error) {
	var out []domain.Beneficiary
	for _, b := range s.items {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubRegistry) Get(_ context.Context, ownerID, id uuid.UUID) (*domain.Beneficiary, error) {
	b, ok := s.items[id]
	if !ok || !b.OwnedBy(ownerID) {
		return nil, domain.ErrBeneficiaryNotFound
	}
	return &b, nil
}

func (s *stubRegistry) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	b, ok := s.items[id]
	if !ok || !b.OwnedBy(ownerID) {
		return domain.ErrBeneficiaryNotFound
	}
	delete(s.items, id)
	return nil
}

func TestBeneficiaryHandler(t *testing.T) {
	reg := &stubRegistry{items: map[uuid.UUID]domain.Beneficiary{}}
	h := NewBeneficiaryHandler(reg)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/addBeneficiary", h.Add)
	mux.HandleFunc("GET /user/getBeneficiaries", h.List)
	mux.HandleFunc("GET /user/getBeneficiary/{id}", h.Get)
	mux.HandleFunc("DELETE /user/delBeneficiary/{id}", h.Delete)

	owner, stranger := uuid.New(), uuid.New()
	do := func(method, path, body string, as uuid.UUID) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, authed(req, as))
		return rec
	}

	rec := do(http.MethodPost, "/user/addBeneficiary", `{"recipientFullName":"Mum","recipientAccountNumber":"12345678","recipientSortCode":"20-00-00"}`, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec).Data.(map[string]any)["beneficiary"].(map[string]any)["id"].(string)

	rec = do(http.MethodPost, "/user/addBeneficiary", `{"recipientFullName":"Mum"}`, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/user/getBeneficiary/"+id, "", owner).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/user/getBeneficiary/"+id, "", stranger).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/user/getBeneficiary/not-a-uuid", "", owner).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/user/delBeneficiary/"+id, "", stranger).Code)

	rec = do(http.MethodGet, "/user/getBeneficiaries", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec).Data.([]any), 1)

	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/user/delBeneficiary/"+id, "", owner).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/user/getBeneficiary/"+id, "", owner).Code)
}
