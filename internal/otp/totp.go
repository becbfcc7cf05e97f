// Package otp is the step-up authenticator. Codes are TOTP values derived from
// the account's secret; issuing one also records a per-account pending
// challenge so each code can be redeemed once.
package otp

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

type Params struct {
	Issuer string
	Step   time.Duration
	Digits int
	Skew   uint
}

// Deriver computes and checks time-stepped codes. It holds no state.
type Deriver struct {
	issuer string
	opts   totp.ValidateOpts
}

func NewDeriver(p Params) *Deriver {
	digits := otp.DigitsSix
	if p.Digits == 8 {
		digits = otp.DigitsEight
	}
	return &Deriver{
		issuer: p.Issuer,
		opts: totp.ValidateOpts{
			Period:    uint(p.Step / time.Second),
			Skew:      p.Skew,
			Digits:    digits,
			Algorithm: otp.AlgorithmSHA256,
		},
	}
}

// NewSecret creates the base32 secret stored with the account at registration.
func (d *Deriver) NewSecret(accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      d.issuer,
		AccountName: accountName,
		Period:      d.opts.Period,
		Digits:      d.opts.Digits,
		Algorithm:   d.opts.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("NewSecret: %w", err)
	}
	return key.Secret(), nil
}

func (d *Deriver) Code(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, at, d.opts)
	if err != nil {
		return "", fmt.Errorf("Code: %w", err)
	}
	return code, nil
}

// Valid accepts the code for the step containing at, or up to Skew steps
// either side of it.
func (d *Deriver) Valid(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, d.opts)
	return err == nil && ok
}

// Window is how long an issued code stays redeemable.
func (d *Deriver) Window() time.Duration {
	return time.Duration(d.opts.Period) * time.Second
}
