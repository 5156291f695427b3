package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"notifica/internal/errs"
	"notifica/internal/models"
)

// SMTPConfigSource yields the active SMTP credential record (the most
// recently updated one). errs.ErrNoSMTPConfig when none is registered.
type SMTPConfigSource interface {
	ActiveSMTPConfig(ctx context.Context) (*models.SMTPConfig, error)
}

type dialFunc func(cfg *models.SMTPConfig) (gomail.SendCloser, error)

// Sender pushes composed emails over SMTP. A fresh transport is dialed per
// attempt (no pooled connection) and the handshake is verified before the
// message is submitted.
type Sender struct {
	Configs SMTPConfigSource
	Limiter *rate.Limiter
	Log     *zap.Logger

	dial dialFunc
}

func NewSender(configs SMTPConfigSource, limiter *rate.Limiter, log *zap.Logger) *Sender {
	return &Sender{
		Configs: configs,
		Limiter: limiter,
		Log:     log,
		dial: func(cfg *models.SMTPConfig) (gomail.SendCloser, error) {
			return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password).Dial()
		},
	}
}

// Send delivers one message to one recipient and returns the generated
// Message-ID on success.
func (s *Sender) Send(ctx context.Context, to, subject string, composed *Composed) (string, error) {
	cfg, err := s.Configs.ActiveSMTPConfig(ctx)
	if err != nil {
		return "", &errs.ConfigurationError{Err: err}
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	// Dial verifies the handshake before anything is sent. Transient dial
	// failures are retried briefly within this one attempt; this is not a
	// redelivery queue.
	var closer gomail.SendCloser
	dialOp := func() error {
		var dialErr error
		closer, dialErr = s.dial(cfg)
		return dialErr
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	if err := backoff.Retry(dialOp, backoff.WithContext(bo, ctx)); err != nil {
		return "", &errs.ConnectionError{Host: cfg.Host, Err: err}
	}
	defer closer.Close()

	msgID := fmt.Sprintf("<%s@notifica>", uuid.NewString())

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", msgID)
	m.SetBody("text/html", composed.HTML)

	for _, att := range composed.Attachments {
		m.Embed(att.Path,
			gomail.Rename(att.Filename),
			gomail.SetHeader(map[string][]string{
				"Content-ID":   {"<" + att.CID + ">"},
				"Content-Type": {att.ContentType},
			}),
		)
	}

	if err := gomail.Send(closer, m); err != nil {
		return "", &errs.DeliveryError{Recipient: to, Err: err}
	}

	s.Log.Info("email sent",
		zap.String("to", to),
		zap.String("message_id", msgID),
	)
	return msgID, nil
}

// Recipients expands a resident into the full address list: primary email
// plus the comma-separated extras, trimmed and filtered to plausible
// addresses.
func Recipients(res models.Resident) []string {
	out := make([]string, 0, 4)
	seen := make(map[string]struct{})

	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" || !strings.Contains(addr, "@") {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	add(res.Email)
	for _, extra := range strings.Split(res.ExtraEmails, ",") {
		add(extra)
	}
	return out
}

// ErrNoRecipients is returned when a resident has no usable address.
var ErrNoRecipients = errors.New("resident has no valid email address")
