// Package masssend fans one user action out into billing-record creation and
// delivery across many residents, isolating each target's failure.
package masssend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"notifica/internal/metrics"
	"notifica/internal/models"
)

// Repository is the slice of the store the orchestrator needs.
type Repository interface {
	GetResident(ctx context.Context, id int64) (*models.Resident, error)
	GetCondominium(ctx context.Context, id int64) (*models.Condominium, error)
	GetLetterTemplate(ctx context.Context, id int64) (*models.LetterTemplate, error)
	GetBillingRecord(ctx context.Context, id int64) (*models.BillingRecord, error)
	CreateBillingRecord(ctx context.Context, rec *models.BillingRecord) error
}

// Deliverer sends one notice and reconciles the record's delivery status.
type Deliverer interface {
	Deliver(ctx context.Context, rec models.BillingRecord, res models.Resident,
		condo models.Condominium, tpl models.LetterTemplate) error
}

// Request targets either residents (records are created per resident) or
// existing billing records. Exactly one of the id lists should be set.
type Request struct {
	CondominiumID    int64      `json:"condominium_id"`
	LetterTemplateID int64      `json:"letter_template_id"`
	Amount           *float64   `json:"amount"`
	DueDate          *time.Time `json:"due_date"`

	ResidentIDs      []int64 `json:"resident_ids"`
	BillingRecordIDs []int64 `json:"billing_record_ids"`
}

// ItemResult is the per-target outcome. The batch as a whole never fails.
type ItemResult struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Orchestrator struct {
	Repo      Repository
	Deliverer Deliverer
	Log       *zap.Logger
}

// Send dispatches all targets concurrently and returns once every dispatch
// has settled. Results are positional; no cross-item ordering of the actual
// sends is guaranteed.
func (o *Orchestrator) Send(ctx context.Context, req Request) []ItemResult {
	byResident := len(req.ResidentIDs) > 0
	ids := req.ResidentIDs
	if !byResident {
		ids = req.BillingRecordIDs
	}

	results := make([]ItemResult, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(slot int, targetID int64) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[slot] = ItemResult{
						ID:      targetID,
						Message: fmt.Sprintf("panic: %v", r),
					}
				}
			}()

			var err error
			if byResident {
				err = o.sendToResident(ctx, req, targetID)
			} else {
				err = o.sendRecord(ctx, targetID)
			}

			if err != nil {
				metrics.MassSendItems.WithLabelValues("error").Inc()
				o.Log.Warn("mass-send target failed",
					zap.Int64("target_id", targetID),
					zap.Error(err),
				)
				results[slot] = ItemResult{ID: targetID, Message: err.Error()}
				return
			}

			metrics.MassSendItems.WithLabelValues("sent").Inc()
			results[slot] = ItemResult{ID: targetID, Success: true, Message: "enviado"}
		}(i, id)
	}

	wg.Wait()
	return results
}

func (o *Orchestrator) sendToResident(ctx context.Context, req Request, residentID int64) error {
	res, err := o.Repo.GetResident(ctx, residentID)
	if err != nil {
		return err
	}
	condo, err := o.Repo.GetCondominium(ctx, req.CondominiumID)
	if err != nil {
		return err
	}
	tpl, err := o.Repo.GetLetterTemplate(ctx, req.LetterTemplateID)
	if err != nil {
		return err
	}

	due := time.Now()
	if req.DueDate != nil {
		due = *req.DueDate
	}
	rec := models.BillingRecord{
		CondominiumID:    req.CondominiumID,
		ResidentID:       res.ID,
		LetterTemplateID: tpl.ID,
		Amount:           req.Amount,
		DueDate:          due,
		Status:           models.BillingPending,
		DeliveryStatus:   models.DeliveryNotSent,
	}
	if err := o.Repo.CreateBillingRecord(ctx, &rec); err != nil {
		return err
	}

	return o.Deliverer.Deliver(ctx, rec, *res, *condo, *tpl)
}

func (o *Orchestrator) sendRecord(ctx context.Context, recordID int64) error {
	rec, err := o.Repo.GetBillingRecord(ctx, recordID)
	if err != nil {
		return err
	}
	res, err := o.Repo.GetResident(ctx, rec.ResidentID)
	if err != nil {
		return err
	}
	condo, err := o.Repo.GetCondominium(ctx, rec.CondominiumID)
	if err != nil {
		return err
	}
	tpl, err := o.Repo.GetLetterTemplate(ctx, rec.LetterTemplateID)
	if err != nil {
		return err
	}

	return o.Deliverer.Deliver(ctx, *rec, *res, *condo, *tpl)
}
