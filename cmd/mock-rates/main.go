// Command mock-rates stands in for the exchange-rate provider during local
// development. Point EXCHANGE_API_URL at it.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/liquid-bank-api/internal/fx"
	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

// Rates against GBP; other bases are derived by cross division.
var gbpRates = map[string]string{
	"GBP": "1",
	"USD": "1.2718",
	"EUR": "1.1689",
	"NGN": "1964.35",
	"JPY": "190.42",
	"CAD": "1.7402",
}

func main() {
	logging.Init("mock-rates", "info", os.Getenv("APP_ENV"))

	addr := ":8081"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	slog.Info("mock rates provider started", "addr", addr)
	if err := http.ListenAndServe(addr, newMux(time.Now)); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type document struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type,omitempty"`
	BaseCode        string                     `json:"base_code,omitempty"`
	TimeLastUpdate  int64                      `json:"time_last_update_unix,omitempty"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates,omitempty"`
}

func newMux(now func() time.Time) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /{key}/latest/{base}", func(w http.ResponseWriter, r *http.Request) {
		base := r.PathValue("base")
		if !fx.ValidCurrency(base) {
			writeJSON(w, http.StatusNotFound, document{Result: "error", ErrorType: "unsupported-code"})
			return
		}
		rates, ok := ratesFor(base)
		if !ok {
			writeJSON(w, http.StatusNotFound, document{Result: "error", ErrorType: "unsupported-code"})
			return
		}
		slog.Info("rates served", "base", base)
		writeJSON(w, http.StatusOK, document{
			Result:          "success",
			BaseCode:        base,
			TimeLastUpdate:  now().Truncate(time.Hour).Unix(),
			ConversionRates: rates,
		})
	})
	return mux
}

func ratesFor(base string) (map[string]decimal.Decimal, bool) {
	raw, ok := gbpRates[base]
	if !ok {
		return nil, false
	}
	divisor := decimal.RequireFromString(raw)

	out := make(map[string]decimal.Decimal, len(gbpRates))
	for code, v := range gbpRates {
		out[code] = decimal.RequireFromString(v).DivRound(divisor, 6)
	}
	return out, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
