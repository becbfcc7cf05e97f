package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

const providerOK = `{
	"result": "success",
	"base_code": "GBP",
	"time_last_update_unix": 1709251201,
	"conversion_rates": {"GBP": 1, "USD": 1.2634, "EUR": 1.1687}
}`

func newProvider(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/test-key/latest/GBP", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func testConfig(url string) Config {
	return Config{BaseURL: url, APIKey: "test-key", DefaultBase: "GBP", CacheTTL: 15 * time.Minute}
}

func TestLatest_FetchesAndCaches(t *testing.T) {
	srv, hits := newProvider(t, http.StatusOK, providerOK)
	cache, mr := newRedisCache(t)
	svc := NewRateService(testConfig(srv.URL), cache)
	ctx := context.Background()

	rates, err := svc.Latest(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "GBP", rates.Base)
	assert.True(t, rates.Rates["USD"].Equal(decimal.RequireFromString("1.2634")))
	assert.Equal(t, time.Unix(1709251201, 0).UTC(), rates.UpdatedAt)

	again, err := svc.Latest(ctx, "gbp")
	require.NoError(t, err)
	assert.True(t, again.Rates["EUR"].Equal(decimal.RequireFromString("1.1687")))
	assert.Equal(t, int32(1), hits.Load(), "second call must be served from cache")

	mr.FastForward(16 * time.Minute)
	_, err = svc.Latest(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "expired entry must refetch")
}

func TestLatest_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops"},
		{name: "provider error result", status: http.StatusOK, body: `{"result":"error","error-type":"invalid-key"}`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
		{name: "no rates", status: http.StatusOK, body: `{"result":"success","base_code":"GBP"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newProvider(t, tc.status, tc.body)
			svc := NewRateService(testConfig(srv.URL), NoCache{})

			_, err := svc.Latest(context.Background(), "")

			assert.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

func TestLatest_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewRateService(testConfig(url), NoCache{})
	_, err := svc.Latest(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestLatest_RejectsBadBase(t *testing.T) {
	svc := NewRateService(testConfig("http://unused"), NoCache{})

	for _, base := range []string{"US", "USDX", "12$"} {
		_, err := svc.Latest(context.Background(), base)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, base)
	}
}

func TestLatest_CacheDownFallsThrough(t *testing.T) {
	srv, hits := newProvider(t, http.StatusOK, providerOK)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	svc := NewRateService(testConfig(srv.URL), NewRedisCache(client))

	rates, err := svc.Latest(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "GBP", rates.Base)
	assert.Equal(t, int32(1), hits.Load())
}
