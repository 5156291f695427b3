package mailer

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"notifica/internal/metrics"
	"notifica/internal/models"
	"notifica/internal/template"
)

// DeliveryRecorder persists the outcome of a send attempt on the billing
// record. After any completed attempt the record is ENVIADO or ERRO, never
// left NAO_ENVIADO.
type DeliveryRecorder interface {
	MarkDelivery(ctx context.Context, recordID int64, status models.DeliveryStatus, errMsg string, sentAt *time.Time) error
}

// NoticeSender abstracts Sender.Send for tests.
type NoticeSender interface {
	Send(ctx context.Context, to, subject string, composed *Composed) (string, error)
}

// Deliverer runs the full path for one notice: render, embed, fan out to
// every recipient address, then reconcile the record's delivery status.
type Deliverer struct {
	Assembler *Assembler
	Sender    NoticeSender
	Records   DeliveryRecorder
	Log       *zap.Logger
}

// Deliver attempts the notice for every address of the resident. The record
// ends up ENVIADO when at least one address succeeds, ERRO only when all
// fail. The returned error is non-nil only in the all-failed case.
func (d *Deliverer) Deliver(
	ctx context.Context,
	rec models.BillingRecord,
	res models.Resident,
	condo models.Condominium,
	tpl models.LetterTemplate,
) error {
	recipients := Recipients(res)
	if len(recipients) == 0 {
		d.reconcile(ctx, rec.ID, false, ErrNoRecipients.Error())
		return ErrNoRecipients
	}

	noticeCtx := template.NewNoticeContext(res, condo, rec)
	subject, composed, err := d.Assembler.BuildNotice(tpl, noticeCtx)
	if err != nil {
		d.reconcile(ctx, rec.ID, false, err.Error())
		return err
	}

	var failures []string
	delivered := false

	for _, to := range recipients {
		if _, sendErr := d.Sender.Send(ctx, to, subject, composed); sendErr != nil {
			d.Log.Warn("recipient delivery failed",
				zap.Int64("record_id", rec.ID),
				zap.String("to", to),
				zap.Error(sendErr),
			)
			failures = append(failures, sendErr.Error())
			continue
		}
		delivered = true
	}

	if delivered {
		d.reconcile(ctx, rec.ID, true, strings.Join(failures, "; "))
		return nil
	}

	allFailed := strings.Join(failures, "; ")
	d.reconcile(ctx, rec.ID, false, allFailed)
	return &deliveryFanOutError{detail: allFailed}
}

func (d *Deliverer) reconcile(ctx context.Context, recordID int64, delivered bool, detail string) {
	status := models.DeliveryError
	var sentAt *time.Time
	if delivered {
		status = models.DeliverySent
		now := time.Now()
		sentAt = &now
		metrics.NoticesSent.Inc()
	} else {
		metrics.NoticesFailed.Inc()
	}

	if err := d.Records.MarkDelivery(ctx, recordID, status, detail, sentAt); err != nil {
		d.Log.Error("delivery status update failed",
			zap.Int64("record_id", recordID),
			zap.Error(err),
		)
	}
}

type deliveryFanOutError struct {
	detail string
}

func (e *deliveryFanOutError) Error() string {
	return "all recipients failed: " + e.detail
}
