// Package errs defines the error taxonomy shared by the notice pipeline.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSMTPConfig signals that no SMTP credential record exists.
var ErrNoSMTPConfig = errors.New("no smtp configuration registered")

// ValidationError reports user input that cannot be accepted, such as a
// template containing placeholders outside the whitelist.
type ValidationError struct {
	Message string
	Tokens  []string
}

func (e *ValidationError) Error() string {
	if len(e.Tokens) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Tokens, ", "))
}

// NotFoundError marks a missing template, condominium or resident.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConfigurationError wraps a failure to load the active SMTP configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("smtp configuration unavailable: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConnectionError wraps an SMTP handshake failure.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("smtp connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TemplateCompileError wraps a template syntax error.
type TemplateCompileError struct {
	Err error
}

func (e *TemplateCompileError) Error() string {
	return fmt.Sprintf("template compile failed: %v", e.Err)
}

func (e *TemplateCompileError) Unwrap() error { return e.Err }

// RowProcessingError attaches the 1-indexed spreadsheet line (header
// included, so the first data row is line 2) to a bulk-import failure.
type RowProcessingError struct {
	Line int
	Err  error
}

func (e *RowProcessingError) Error() string {
	return fmt.Sprintf("Linha %d: %v", e.Line, e.Err)
}

func (e *RowProcessingError) Unwrap() error { return e.Err }

// DeliveryError records a failed send to one recipient.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
