package mailer

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"notifica/internal/errs"
	"notifica/internal/models"
)

type fakeConfigSource struct {
	cfg *models.SMTPConfig
	err error
}

func (f *fakeConfigSource) ActiveSMTPConfig(context.Context) (*models.SMTPConfig, error) {
	return f.cfg, f.err
}

type fakeSendCloser struct {
	from   string
	to     []string
	sends  int
	closed bool
}

func (f *fakeSendCloser) Send(from string, to []string, msg io.WriterTo) error {
	f.from = from
	f.to = to
	f.sends++
	return nil
}

func (f *fakeSendCloser) Close() error {
	f.closed = true
	return nil
}

func testSMTPConfig() *models.SMTPConfig {
	return &models.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "cobranca@example.com",
	}
}

func TestSendMissingConfig(t *testing.T) {
	s := NewSender(&fakeConfigSource{err: errs.ErrNoSMTPConfig}, nil, zap.NewNop())

	_, err := s.Send(context.Background(), "ana@example.com", "Cobrança", &Composed{HTML: "<p>x</p>"})
	require.Error(t, err)

	var cfgErr *errs.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSendHandshakeFailure(t *testing.T) {
	s := NewSender(&fakeConfigSource{cfg: testSMTPConfig()}, nil, zap.NewNop())
	s.dial = func(*models.SMTPConfig) (gomail.SendCloser, error) {
		return nil, errors.New("connection refused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Send(ctx, "ana@example.com", "Cobrança", &Composed{HTML: "<p>x</p>"})
	require.Error(t, err)

	var connErr *errs.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "smtp.example.com", connErr.Host)
}

func TestSendSuccess(t *testing.T) {
	closer := &fakeSendCloser{}
	s := NewSender(&fakeConfigSource{cfg: testSMTPConfig()}, nil, zap.NewNop())
	s.dial = func(*models.SMTPConfig) (gomail.SendCloser, error) {
		return closer, nil
	}

	msgID, err := s.Send(context.Background(), "ana@example.com", "Cobrança", &Composed{HTML: "<p>x</p>"})
	require.NoError(t, err)

	assert.NotEmpty(t, msgID)
	assert.Equal(t, 1, closer.sends)
	assert.Equal(t, "cobranca@example.com", closer.from)
	assert.Equal(t, []string{"ana@example.com"}, closer.to)
	assert.True(t, closer.closed)
}

// Each attempt dials its own transport; nothing is pooled between sends.
func TestSendDialsPerAttempt(t *testing.T) {
	dials := 0
	s := NewSender(&fakeConfigSource{cfg: testSMTPConfig()}, nil, zap.NewNop())
	s.dial = func(*models.SMTPConfig) (gomail.SendCloser, error) {
		dials++
		return &fakeSendCloser{}, nil
	}

	_, err := s.Send(context.Background(), "a@example.com", "x", &Composed{HTML: "a"})
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "b@example.com", "x", &Composed{HTML: "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, dials)
}
