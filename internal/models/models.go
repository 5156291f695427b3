package models

import "time"

// DeliveryStatus tracks whether a billing notice reached the resident.
// Values are persisted as-is, so they match the legacy Portuguese enum.
type DeliveryStatus string

const (
	DeliveryNotSent DeliveryStatus = "NAO_ENVIADO"
	DeliverySent    DeliveryStatus = "ENVIADO"
	DeliveryError   DeliveryStatus = "ERRO"
)

// BillingStatus is the lifecycle of the charge itself, independent of delivery.
type BillingStatus string

const (
	BillingPending BillingStatus = "PENDING"
	BillingPaid    BillingStatus = "PAID"
	BillingLate    BillingStatus = "LATE"
)

type BillingRecord struct {
	ID               int64
	CondominiumID    int64
	ResidentID       int64
	LetterTemplateID int64
	// Amount is nullable on purpose: an import row may omit it, and renderers
	// must show "not informed" rather than zero.
	Amount         *float64
	DueDate        time.Time
	Status         BillingStatus
	DeliveryStatus DeliveryStatus
	ErrorMessage   string
	CreatedAt      time.Time
	SentAt         *time.Time
}

type LetterTemplate struct {
	ID             int64
	Title          string
	Subject        string
	Content        string
	HeaderImageRef string
	FooterImageRef string
	UpdatedAt      time.Time
}

type Resident struct {
	ID            int64
	CondominiumID int64
	Name          string
	Email         string
	// ExtraEmails holds additional addresses, comma separated, as entered by
	// the back office. Parsing/trimming happens at send time.
	ExtraEmails string
	Phone       string
	Block       string
	Unit        string
}

type Condominium struct {
	ID       int64
	Name     string
	CNPJ     string
	Street   string
	Number   string
	District string
	City     string
	State    string
	CEP      string
}

// SMTPConfig is the runtime mail credential record. The newest row (by
// UpdatedAt) is the active one.
type SMTPConfig struct {
	ID        int64
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	UpdatedAt time.Time
}

// EmailAttachment describes one file embedded in an outgoing message.
// Derived per send, never persisted.
type EmailAttachment struct {
	Filename    string
	Path        string
	ContentType string
	CID         string
}
