package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"notifica/internal/errs"
	"notifica/internal/imports"
	"notifica/internal/mailer"
	"notifica/internal/masssend"
	"notifica/internal/models"
	"notifica/internal/store"
	"notifica/internal/template"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	Store     *store.Store
	Engine    *template.Engine
	Deliverer *mailer.Deliverer
	Mass      *masssend.Orchestrator
	Registry  *imports.Registry
	Jobs      chan<- *imports.Job
	Log       *zap.Logger
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/notices/{id}/send", h.SendNotice)
	r.Post("/notices/mass-send", h.MassSend)
	r.Post("/imports", h.EnqueueImport)
	r.Get("/imports/{id}", h.ImportStatus)
	r.Post("/templates", h.SaveTemplate)
	r.Put("/templates/{id}", h.SaveTemplate)

	return r
}

// SendNotice renders and delivers one existing billing record synchronously.
func (h *Handler) SendNotice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	rec, err := h.Store.GetBillingRecord(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.Store.GetResident(ctx, rec.ResidentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	condo, err := h.Store.GetCondominium(ctx, rec.CondominiumID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tpl, err := h.Store.GetLetterTemplate(ctx, rec.LetterTemplateID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.Deliverer.Deliver(ctx, *rec, *res, *condo, *tpl); err != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":              rec.ID,
			"delivery_status": models.DeliveryError,
			"message":         err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":              rec.ID,
		"delivery_status": models.DeliverySent,
	})
}

// MassSend fans out over the requested targets and returns the per-item
// results once all dispatches settle.
func (h *Handler) MassSend(w http.ResponseWriter, r *http.Request) {
	var req masssend.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.ResidentIDs) == 0 && len(req.BillingRecordIDs) == 0 {
		http.Error(w, "no targets", http.StatusBadRequest)
		return
	}

	results := h.Mass.Send(r.Context(), req)
	h.writeJSON(w, http.StatusOK, results)
}

// EnqueueImport accepts the spreadsheet upload and acknowledges immediately;
// the job runs on the worker pool and is polled via ImportStatus.
func (h *Handler) EnqueueImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	condoID, err1 := strconv.ParseInt(r.FormValue("condominium_id"), 10, 64)
	tplID, err2 := strconv.ParseInt(r.FormValue("letter_template_id"), 10, 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "condominium_id and letter_template_id are required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := &imports.Job{
		ID:               uuid.NewString(),
		CondominiumID:    condoID,
		LetterTemplateID: tplID,
		FileBytes:        data,
	}

	h.Registry.Enqueue(job.ID)
	h.Jobs <- job

	h.Log.Info("import job enqueued",
		zap.String("job_id", job.ID),
		zap.Int64("condominium_id", condoID),
	)

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.ID,
		"message": "Importação recebida e em processamento",
	})
}

func (h *Handler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := h.Registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

type templatePayload struct {
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	HeaderImageRef string `json:"header_image_ref"`
	FooterImageRef string `json:"footer_image_ref"`
}

// SaveTemplate persists a letter template. The placeholder whitelist gates
// every save; the offending tokens come back in the error body.
func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := template.ValidateTokens(payload.Content); err != nil {
		h.writeError(w, err)
		return
	}

	tpl := models.LetterTemplate{
		Title:          payload.Title,
		Subject:        payload.Subject,
		Content:        payload.Content,
		HeaderImageRef: payload.HeaderImageRef,
		FooterImageRef: payload.FooterImageRef,
	}
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid template id", http.StatusBadRequest)
			return
		}
		tpl.ID = id
	}

	if err := h.Store.SaveLetterTemplate(r.Context(), &tpl); err != nil {
		h.writeError(w, err)
		return
	}

	h.Engine.ClearCache()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"id": tpl.ID})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.Error("response encode failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *errs.ValidationError
		notFoundErr   *errs.NotFoundError
		configErr     *errs.ConfigurationError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &configErr), errors.Is(err, errs.ErrNoSMTPConfig):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
