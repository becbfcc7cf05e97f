// Package mailer delivers one-time passwords by e-mail.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wneessen/go-mail"

	"github.com/josh-kwaku/liquid-bank-api/internal/logging"
)

const otpSubject = "Your one-time password"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Retries  uint64
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends through one SMTP relay and retries transport failures
// with exponential backoff. Address errors are not retried.
type SMTPMailer struct {
	client  sender
	from    string
	retries uint64
	backoff func() backoff.BackOff
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSMTPMailer: %w", err)
	}
	return newSMTPMailer(client, cfg.From, cfg.Retries), nil
}

func newSMTPMailer(client sender, from string, retries uint64) *SMTPMailer {
	return &SMTPMailer{
		client:  client,
		from:    from,
		retries: retries,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string, validFor time.Duration) error {
	log := logging.FromContext(ctx)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("SendOTP: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("SendOTP: to: %w", err)
	}
	msg.Subject(otpSubject)
	msg.SetBodyString(mail.TypeTextPlain, otpBody(name, code, validFor))

	attempt := 0
	op := func() error {
		attempt++
		err := m.client.DialAndSendWithContext(ctx, msg)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if err != nil {
			log.Warn("otp mail attempt failed", "attempt", attempt, "error", err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(m.backoff(), m.retries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("SendOTP: after %d attempts: %w", attempt, err)
	}

	log.Info("otp mail sent", "attempts", attempt)
	return nil
}

// LogMailer writes the message to w instead of sending it. Used when no SMTP
// host is configured.
type LogMailer struct {
	w io.Writer
}

func NewLogMailer(w io.Writer) *LogMailer {
	return &LogMailer{w: w}
}

func (m *LogMailer) SendOTP(ctx context.Context, to, name, code string, validFor time.Duration) error {
	if to == "" {
		return errors.New("SendOTP: empty recipient")
	}
	_, err := fmt.Fprintf(m.w, "To: %s\nSubject: %s\n\n%s\n", to, otpSubject, otpBody(name, code, validFor))
	if err != nil {
		return fmt.Errorf("SendOTP: %w", err)
	}
	logging.FromContext(ctx).Info("otp mail written to console")
	return nil
}

func otpBody(name, code string, validFor time.Duration) string {
	if name == "" {
		name = "customer"
	}
	return fmt.Sprintf(
		"Hello %s,\n\nYour one-time password is %s.\nIt is valid for %s. Do not share it with anyone.\n",
		name, code, humanDuration(validFor),
	)
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		mins := int(d / time.Minute)
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	return d.String()
}
