// Package fx proxies the third-party latest-rates document and caches it.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

type Rates struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Config struct {
	BaseURL     string
	APIKey      string
	DefaultBase string
	CacheTTL    time.Duration
}

type RateService struct {
	cfg        Config
	cache      Cache
	httpClient *http.Client
}

func NewRateService(cfg Config, cache Cache) *RateService {
	return &RateService{
		cfg:   cfg,
		cache: cache,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func ValidCurrency(code string) bool {
	return currencyCode.MatchString(code)
}

// Latest returns rates for base, or the configured default when base is
// empty. Cache failures are logged and fall through to the provider.
func (s *RateService) Latest(ctx context.Context, base string) (*Rates, error) {
	log := logging.FromContext(ctx)

	if base == "" {
		base = s.cfg.DefaultBase
	}
	base = strings.ToUpper(base)
	if !ValidCurrency(base) {
		return nil, fmt.Errorf("Latest: base %q: %w", base, domain.ErrInvalidRequest)
	}

	key := "fx:latest:" + base
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn("fx cache read failed", "error", err)
	} else if ok {
		var cached Rates
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		log.Warn("fx cache entry unreadable, refetching", "key", key)
	}

	rates, err := s.fetch(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}

	if raw, err := json.Marshal(rates); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
			log.Warn("fx cache write failed", "error", err)
		}
	}
	return rates, nil
}

type providerDocument struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	BaseCode        string                     `json:"base_code"`
	TimeLastUpdate  int64                      `json:"time_last_update_unix"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

func (s *RateService) fetch(ctx context.Context, base string) (*Rates, error) {
	log := logging.FromContext(ctx)

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/" + s.cfg.APIKey + "/latest/" + base
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	log.Info("fx provider response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrUpstream)
	}

	var doc providerDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("fetch: decode: %w: %w", domain.ErrUpstream, err)
	}
	if doc.Result != "success" {
		return nil, fmt.Errorf("fetch: provider result %q (%s): %w", doc.Result, doc.ErrorType, domain.ErrUpstream)
	}
	if len(doc.ConversionRates) == 0 {
		return nil, fmt.Errorf("fetch: empty rates: %w", domain.ErrUpstream)
	}

	return &Rates{
		Base:      doc.BaseCode,
		Rates:     doc.ConversionRates,
		UpdatedAt: time.Unix(doc.TimeLastUpdate, 0).UTC(),
	}, nil
}

