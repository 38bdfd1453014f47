package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"catalog_importer/internal/domain"
	"catalog_importer/internal/sheet"
	"catalog_importer/internal/storage/postgres"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	templateFilename  = "product_template.xlsx"
	defaultUploadName = "upload.xlsx"
	defaultRunsLimit  = 20
	maxRunsLimit      = 100
)

type Importer interface {
	Import(ctx context.Context, source string, r io.Reader) (*domain.RunStats, error)
}

// RunReader serves stored run history.
type RunReader interface {
	Get(ctx context.Context, runID string) (*domain.RunStats, error)
	Recent(ctx context.Context, limit int) ([]domain.RunStats, error)
	Outcomes(ctx context.Context, runID string) ([]domain.OutcomeEvent, error)
}

type Config struct {
	MaxUploadSize int64
}

// Handler exposes the import HTTP endpoints.
type Handler struct {
	importer Importer
	runs     RunReader
	template sheet.Template
	metrics  http.Handler
	cfg      Config
	logger   *slog.Logger
}

// NewHandler builds the handler. runs and metrics may be nil, in which case
// their routes are not registered.
func NewHandler(importer Importer, runs RunReader, template sheet.Template, metrics http.Handler, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		importer: importer,
		runs:     runs,
		template: template,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger.With("component", "api"),
	}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/healthz", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/template", h.downloadTemplate)
		r.Post("/imports", h.createImport)

		if h.runs != nil {
			r.Get("/imports", h.listImports)
			r.Get("/imports/{id}", h.getImport)
			r.Get("/imports/{id}/outcomes", h.listOutcomes)
		}
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) downloadTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sheet.WriteTemplate(&buf, h.template); err != nil {
		h.logger.Error("failed to build template", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build template")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": templateFilename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// createImport accepts the workbook either as the raw request body or as the
// multipart field "file".
func (h *Handler) createImport(w http.ResponseWriter, r *http.Request) {
	if h.cfg.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	}

	source, body, err := uploadedFile(r)
	if err != nil {
		respondError(w, uploadStatus(err), err.Error())
		return
	}
	defer body.Close()

	stats, err := h.importer.Import(r.Context(), source, body)
	if err != nil {
		status := importStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("import failed", "source", source, "error", err)
		}
		respondError(w, status, err.Error())
		return
	}
	respond(w, http.StatusOK, stats)
}

func importStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrInvalidFile), errors.Is(err, sheet.ErrSheetNotFound):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) listImports(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	respond(w, http.StatusOK, runs)
}

func (h *Handler) getImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stats, err := h.runs.Get(r.Context(), id)
	if errors.Is(err, postgres.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	respond(w, http.StatusOK, stats)
}

func (h *Handler) listOutcomes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.runs.Get(r.Context(), id); err != nil {
		if errors.Is(err, postgres.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	outcomes, err := h.runs.Outcomes(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list outcomes", "run_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list outcomes")
		return
	}
	respond(w, http.StatusOK, outcomes)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}
