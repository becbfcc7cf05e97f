package main

import (
	"net/http"

	"github.com/josh-kwaku/liquid-bank-api/api"
	"github.com/josh-kwaku/liquid-bank-api/internal/handler"
	"github.com/josh-kwaku/liquid-bank-api/internal/middleware"
)

type routes struct {
	verifier      middleware.TokenVerifier
	requireOTP    bool
	idempotency   middleware.IdempotencyStore
	auth          *handler.AuthHandler
	accounts      *handler.AccountHandler
	beneficiaries *handler.BeneficiaryHandler
	fx            *handler.FXHandler
	health        *handler.HealthHandler
}

func newRouter(rt routes) http.Handler {
	authed := middleware.Auth(rt.verifier)
	elevated := middleware.RequireElevated(rt.requireOTP)
	idem := middleware.Idempotency(rt.idempotency)

	session := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}
	sensitive := func(h http.Handler) http.Handler {
		return authed(elevated(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", rt.health.Liveness)
	mux.HandleFunc("GET /health/ready", rt.health.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs("Liquid Bank API", "/docs/openapi.yaml"))
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.OpenAPI))

	mux.HandleFunc("POST /user/login", rt.auth.Login)
	mux.HandleFunc("POST /user/register", rt.auth.Register)
	mux.Handle("GET /user/getOtp", session(rt.auth.RequestOTP))
	mux.Handle("POST /user/submitotp", session(rt.auth.SubmitOTP))

	mux.Handle("GET /user/getdetails", session(rt.accounts.GetDetails))
	mux.Handle("GET /user/getaccountinformation", session(rt.accounts.GetAccountInformation))
	mux.Handle("GET /user/getstatement", session(rt.accounts.GetStatement))
	mux.Handle("POST /user/deposit", authed(idem(http.HandlerFunc(rt.accounts.Deposit))))
	mux.Handle("POST /user/withdraw", sensitive(idem(http.HandlerFunc(rt.accounts.Withdraw))))

	mux.Handle("POST /user/addBeneficiary", sensitive(http.HandlerFunc(rt.beneficiaries.Add)))
	mux.Handle("GET /user/getBeneficiaries", session(rt.beneficiaries.List))
	mux.Handle("GET /user/getBeneficiary/{id}", session(rt.beneficiaries.Get))
	mux.Handle("PATCH /user/delBeneficiary/{id}", sensitive(http.HandlerFunc(rt.beneficiaries.Delete)))
	mux.Handle("DELETE /user/delBeneficiary/{id}", sensitive(http.HandlerFunc(rt.beneficiaries.Delete)))

	mux.Handle("GET /user/exchangerates", session(rt.fx.ExchangeRates))

	return middleware.RequestID(middleware.Logging(middleware.Recovery(mux)))
}
