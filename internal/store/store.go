// Package store is the Postgres persistence layer for the notice pipeline.
// Entity CRUD beyond what the pipeline needs (dashboards, auth, uploads)
// lives in other services.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notifica/internal/errs"
	"notifica/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(conn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), conn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

// ----------------------------
// Billing records
// ----------------------------

func (s *Store) CreateBillingRecord(ctx context.Context, rec *models.BillingRecord) error {
	return s.Pool.QueryRow(ctx,
		`INSERT INTO billing_records
		 (condominium_id, resident_id, letter_template_id, amount, due_date,
		  status, delivery_status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		 RETURNING id, created_at`,
		rec.CondominiumID,
		rec.ResidentID,
		rec.LetterTemplateID,
		rec.Amount,
		rec.DueDate,
		rec.Status,
		rec.DeliveryStatus,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *Store) GetBillingRecord(ctx context.Context, id int64) (*models.BillingRecord, error) {
	var rec models.BillingRecord
	err := s.Pool.QueryRow(ctx,
		`SELECT id, condominium_id, resident_id, letter_template_id, amount,
		        due_date, status, delivery_status, COALESCE(error_message, ''),
		        created_at, sent_at
		 FROM billing_records WHERE id=$1`, id,
	).Scan(
		&rec.ID, &rec.CondominiumID, &rec.ResidentID, &rec.LetterTemplateID,
		&rec.Amount, &rec.DueDate, &rec.Status, &rec.DeliveryStatus,
		&rec.ErrorMessage, &rec.CreatedAt, &rec.SentAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "billing record", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkDelivery records the outcome of a send attempt. sentAt is only set on
// success.
func (s *Store) MarkDelivery(
	ctx context.Context,
	recordID int64,
	status models.DeliveryStatus,
	errMsg string,
	sentAt *time.Time,
) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE billing_records
		 SET delivery_status=$1,
		     error_message=NULLIF($2, ''),
		     sent_at=COALESCE($3, sent_at)
		 WHERE id=$4`,
		status, errMsg, sentAt, recordID,
	)
	return err
}

// ----------------------------
// Residents
// ----------------------------

func (s *Store) GetResident(ctx context.Context, id int64) (*models.Resident, error) {
	var res models.Resident
	err := s.Pool.QueryRow(ctx,
		`SELECT id, condominium_id, name, email, COALESCE(extra_emails, ''),
		        COALESCE(phone, ''), COALESCE(block, ''), COALESCE(unit, '')
		 FROM residents WHERE id=$1`, id,
	).Scan(
		&res.ID, &res.CondominiumID, &res.Name, &res.Email,
		&res.ExtraEmails, &res.Phone, &res.Block, &res.Unit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "resident", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpsertResident creates the resident if no row exists for the
// (condominium, email) pair; an existing resident is returned unchanged.
func (s *Store) UpsertResident(ctx context.Context, res *models.Resident) error {
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO residents (condominium_id, name, email, block, unit)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (condominium_id, email) DO NOTHING
		 RETURNING id`,
		res.CondominiumID, res.Name, res.Email, res.Block, res.Unit,
	).Scan(&res.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// conflict: load the existing row instead
	return s.Pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(extra_emails, ''), COALESCE(block, ''), COALESCE(unit, '')
		 FROM residents WHERE condominium_id=$1 AND email=$2`,
		res.CondominiumID, res.Email,
	).Scan(&res.ID, &res.Name, &res.ExtraEmails, &res.Block, &res.Unit)
}

// ----------------------------
// Letter templates
// ----------------------------

func (s *Store) GetLetterTemplate(ctx context.Context, id int64) (*models.LetterTemplate, error) {
	var tpl models.LetterTemplate
	err := s.Pool.QueryRow(ctx,
		`SELECT id, title, COALESCE(subject, ''), content,
		        COALESCE(header_image_ref, ''), COALESCE(footer_image_ref, ''), updated_at
		 FROM letter_templates WHERE id=$1`, id,
	).Scan(
		&tpl.ID, &tpl.Title, &tpl.Subject, &tpl.Content,
		&tpl.HeaderImageRef, &tpl.FooterImageRef, &tpl.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "letter template", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// SaveLetterTemplate inserts or updates a template. Placeholder validation
// happens at the service layer, before this is called.
func (s *Store) SaveLetterTemplate(ctx context.Context, tpl *models.LetterTemplate) error {
	if tpl.ID == 0 {
		return s.Pool.QueryRow(ctx,
			`INSERT INTO letter_templates
			 (title, subject, content, header_image_ref, footer_image_ref, updated_at)
			 VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),NOW())
			 RETURNING id, updated_at`,
			tpl.Title, tpl.Subject, tpl.Content, tpl.HeaderImageRef, tpl.FooterImageRef,
		).Scan(&tpl.ID, &tpl.UpdatedAt)
	}
	_, err := s.Pool.Exec(ctx,
		`UPDATE letter_templates
		 SET title=$1, subject=$2, content=$3,
		     header_image_ref=NULLIF($4,''), footer_image_ref=NULLIF($5,''),
		     updated_at=NOW()
		 WHERE id=$6`,
		tpl.Title, tpl.Subject, tpl.Content, tpl.HeaderImageRef, tpl.FooterImageRef, tpl.ID,
	)
	return err
}

// ----------------------------
// Condominiums
// ----------------------------

func (s *Store) GetCondominium(ctx context.Context, id int64) (*models.Condominium, error) {
	var c models.Condominium
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(cnpj, ''), COALESCE(street, ''), COALESCE(number, ''),
		        COALESCE(district, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(cep, '')
		 FROM condominiums WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.CNPJ, &c.Street, &c.Number, &c.District, &c.City, &c.State, &c.CEP)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errs.NotFoundError{Entity: "condominium", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ----------------------------
// SMTP configuration
// ----------------------------

// ActiveSMTPConfig returns the most recently updated credential record.
func (s *Store) ActiveSMTPConfig(ctx context.Context) (*models.SMTPConfig, error) {
	var cfg models.SMTPConfig
	err := s.Pool.QueryRow(ctx,
		`SELECT id, host, port, username, password, from_address, updated_at
		 FROM smtp_configs ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&cfg.ID, &cfg.Host, &cfg.Port, &cfg.Username, &cfg.Password, &cfg.From, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNoSMTPConfig
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
