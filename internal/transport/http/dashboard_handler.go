package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/exporter"
	"github.com/marcojr93/cntrackerv1/internal/middleware"
)

// DashboardHandler serves the KPI, forecast, map and calendar endpoints
type DashboardHandler struct {
	service      DashboardProvider
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardProvider, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
	}
}

// DashboardRoutes returns the /api/dashboard routes
func (h *DashboardHandler) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDashboard)
	r.Get("/export.csv", h.ExportSeries)
	return r
}

// MapRoutes returns the /api/map routes
func (h *DashboardHandler) MapRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMap)
	r.Get("/export.csv", h.ExportMap)
	return r
}

// CalendarRoutes returns the /api/calendar routes
func (h *DashboardHandler) CalendarRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/weeks", h.GetWeeks)
	r.Get("/months", h.GetMonths)
	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, _, err := parseSelection(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	d, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, d)
}

// ExportSeries handles GET /api/dashboard/export.csv
func (h *DashboardHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	sel, _, err := parseSelection(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	d, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("delivery-forecast-%s-%s.csv", d.Period.Granularity, d.Period.Start.Format(time.DateOnly))
	h.writeCSVHeaders(w, filename)
	if err := exporter.WriteSeries(w, d.Series); err != nil {
		h.logCSVError(r, filename, err)
	}
}

// GetMap handles GET /api/map
func (h *DashboardHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	sel, country, err := parseSelection(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	m, err := h.service.Map(r.Context(), sel, country)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, m)
}

// ExportMap handles GET /api/map/export.csv. With a country selected it
// exports that country's containers, otherwise the per-country summary.
func (h *DashboardHandler) ExportMap(w http.ResponseWriter, r *http.Request) {
	sel, country, err := parseSelection(h.validator, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	m, err := h.service.Map(r.Context(), sel, country)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	start := m.Period.Start.Format(time.DateOnly)
	if m.Selected != "" {
		filename := fmt.Sprintf("containers-%s-%s.csv", sanitizeFilename(m.Selected), start)
		h.writeCSVHeaders(w, filename)
		if err := exporter.WriteContainers(w, m.Containers); err != nil {
			h.logCSVError(r, filename, err)
		}
		return
	}

	filename := fmt.Sprintf("countries-%s.csv", start)
	h.writeCSVHeaders(w, filename)
	if err := exporter.WriteCountries(w, m.Countries); err != nil {
		h.logCSVError(r, filename, err)
	}
}

// GetWeeks handles GET /api/calendar/weeks
func (h *DashboardHandler) GetWeeks(w http.ResponseWriter, r *http.Request) {
	now, err := referenceDate(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.Weeks(now))
}

// GetMonths handles GET /api/calendar/months
func (h *DashboardHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	now, err := referenceDate(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.Months(now))
}

func (h *DashboardHandler) writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

// logCSVError logs a failure after the response has started
func (h *DashboardHandler) logCSVError(r *http.Request, filename string, err error) {
	h.logger.ErrorContext(r.Context(), "csv export failed",
		slog.String("file", filename),
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("error", err.Error()))
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
