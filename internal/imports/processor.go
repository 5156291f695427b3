// Package imports runs the asynchronous bulk spreadsheet import: per row,
// resident upsert, billing-record creation, render and send, with row-level
// error isolation.
package imports

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notifica/internal/errs"
	"notifica/internal/metrics"
	"notifica/internal/models"
)

// Repository is the slice of the store the import job needs.
type Repository interface {
	UpsertResident(ctx context.Context, res *models.Resident) error
	CreateBillingRecord(ctx context.Context, rec *models.BillingRecord) error
	GetLetterTemplate(ctx context.Context, id int64) (*models.LetterTemplate, error)
	GetCondominium(ctx context.Context, id int64) (*models.Condominium, error)
}

// Deliverer sends one notice and reconciles the record's delivery status.
type Deliverer interface {
	Deliver(ctx context.Context, rec models.BillingRecord, res models.Resident,
		condo models.Condominium, tpl models.LetterTemplate) error
}

type Processor struct {
	Repo      Repository
	Deliverer Deliverer
	Log       *zap.Logger
}

// Run processes one job. Rows are visited strictly sequentially: the
// expected volume is hundreds of rows and per-row error attribution matters
// more than throughput. Only a failure to read the file itself is fatal;
// everything else becomes a report entry and the loop continues.
func (p *Processor) Run(ctx context.Context, job *Job) (*Result, error) {
	rows, err := ParseRows(job.FileBytes)
	if err != nil {
		return nil, err
	}

	tpl, err := p.Repo.GetLetterTemplate(ctx, job.LetterTemplateID)
	if err != nil {
		return nil, err
	}
	condo, err := p.Repo.GetCondominium(ctx, job.CondominiumID)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, row := range rows {
		if err := p.processRow(ctx, job, row, *tpl, *condo, result); err != nil {
			rowErr := &errs.RowProcessingError{Line: row.Line, Err: err}
			result.ErrorCount++
			result.ErrorDetails = append(result.ErrorDetails, rowErr.Error())
			metrics.ImportRowsFailed.Inc()
			p.Log.Warn("import row failed",
				zap.String("job_id", job.ID),
				zap.Int("line", row.Line),
				zap.Error(err),
			)
		}
	}

	result.Message = fmt.Sprintf(
		"Importação concluída: %d cobranças enviadas, %d linhas com erro",
		result.SuccessCount, result.ErrorCount,
	)
	return result, nil
}

func (p *Processor) processRow(
	ctx context.Context,
	job *Job,
	row Row,
	tpl models.LetterTemplate,
	condo models.Condominium,
	result *Result,
) error {
	if field := missingField(row); field != "" {
		return fmt.Errorf("campo obrigatório ausente: %s", field)
	}

	res := models.Resident{
		CondominiumID: job.CondominiumID,
		Name:          row.Name,
		Email:         row.Email,
		Block:         row.Block,
		Unit:          row.Unit,
	}
	if err := p.Repo.UpsertResident(ctx, &res); err != nil {
		return fmt.Errorf("falha ao registrar morador: %w", err)
	}

	// The spreadsheet carries no due date; the reference month is "now".
	rec := models.BillingRecord{
		CondominiumID:    job.CondominiumID,
		ResidentID:       res.ID,
		LetterTemplateID: job.LetterTemplateID,
		Amount:           row.Amount,
		DueDate:          time.Now(),
		Status:           models.BillingPending,
		DeliveryStatus:   models.DeliveryNotSent,
	}
	if err := p.Repo.CreateBillingRecord(ctx, &rec); err != nil {
		return fmt.Errorf("falha ao criar cobrança: %w", err)
	}

	// A failed send is not a row failure: the record exists and is marked
	// ERRO by the deliverer, so it is reported but still counts as
	// processed.
	if err := p.Deliverer.Deliver(ctx, rec, res, condo, tpl); err != nil {
		result.ErrorDetails = append(result.ErrorDetails,
			fmt.Sprintf("Linha %d: envio falhou: %v", row.Line, err))
		metrics.ImportRowsProcessed.Inc()
		return nil
	}

	result.SuccessCount++
	metrics.ImportRowsProcessed.Inc()
	return nil
}

func missingField(row Row) string {
	switch {
	case row.Name == "":
		return "nome"
	case row.Email == "":
		return "email"
	case row.Block == "":
		return "bloco"
	case row.Unit == "":
		return "apartamento"
	default:
		return ""
	}
}
