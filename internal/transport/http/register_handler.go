package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/middleware"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// multipartMemory is the part of an upload kept in memory while parsing
const multipartMemory = 8 << 20

// RegisterHandler serves the register statistics, records, reload and upload endpoints
type RegisterHandler struct {
	store          RegisterManager
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
	auditLogger    *slog.Logger
	maxUploadBytes int64
}

// RecordsResponse is the raw data view of the loaded register
type RecordsResponse struct {
	Count   int                     `json:"count"`
	Records []domain.ParsedShipment `json:"records"`
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(store RegisterManager, maxUploadBytes int64, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		store:          store,
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("component", "register_handler")),
		auditLogger:    logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the /api/register routes. Changes to the register are audited.
func (h *RegisterHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetStats)
	r.Get("/records", h.GetRecords)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuditLog(h.auditLogger))
		r.Post("/reload", h.Reload)
		r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
			Post("/upload", h.Upload)
	})
	return r
}

// GetStats handles GET /api/register
func (h *RegisterHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap.Stats)
}

// GetRecords handles GET /api/register/records
func (h *RegisterHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, RecordsResponse{Count: len(snap.Records), Records: snap.Records})
}

// Reload handles POST /api/register/reload
func (h *RegisterHandler) Reload(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// Upload handles POST /api/register/upload
func (h *RegisterHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 && r.ContentLength > h.maxUploadBytes {
		h.errorHandler.HandleError(w, r, &http.MaxBytesError{Limit: h.maxUploadBytes})
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, tooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "a workbook must be sent in the file field"))
		return
	}
	defer file.Close()

	stats, err := h.store.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "register replaced by upload",
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size),
		slog.Int("rows", stats.Rows))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stats)
}
