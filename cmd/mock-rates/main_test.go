package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/fx"
)

func TestMockRates_ServesProviderDocument(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(newMux(func() time.Time { return fixed }))
	t.Cleanup(srv.Close)

	svc := fx.NewRateService(fx.Config{BaseURL: srv.URL, APIKey: "local", DefaultBase: "GBP", CacheTTL: time.Minute}, fx.NoCache{})

	rates, err := svc.Latest(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "GBP", rates.Base)
	assert.Equal(t, "1.2718", rates.Rates["USD"].String())
	assert.Equal(t, fixed.Truncate(time.Hour), rates.UpdatedAt)

	rates, err = svc.Latest(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "1", rates.Rates["USD"].String())
	assert.Equal(t, "0.786287", rates.Rates["GBP"].String())

	_, err = svc.Latest(context.Background(), "XYZ")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
