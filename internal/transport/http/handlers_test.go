package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/middleware"
	"github.com/marcojr93/cntrackerv1/internal/register"
	"github.com/marcojr93/cntrackerv1/internal/services"
	"github.com/marcojr93/cntrackerv1/internal/shared/testutil"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// MockDashboard implements DashboardProvider
type MockDashboard struct {
	mock.Mock
}

func (m *MockDashboard) Dashboard(ctx context.Context, sel services.Selection) (*services.Dashboard, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Dashboard), args.Error(1)
}

func (m *MockDashboard) Map(ctx context.Context, sel services.Selection, country string) (*services.MapSummary, error) {
	args := m.Called(ctx, sel, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MapSummary), args.Error(1)
}

func (m *MockDashboard) Records(ctx context.Context) ([]domain.ParsedShipment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ParsedShipment), args.Error(1)
}

func (m *MockDashboard) Weeks(now time.Time) services.WeekCatalog {
	return m.Called(now).Get(0).(services.WeekCatalog)
}

func (m *MockDashboard) Months(now time.Time) services.MonthCatalog {
	return m.Called(now).Get(0).(services.MonthCatalog)
}

// MockRegister implements RegisterManager
type MockRegister struct {
	mock.Mock
}

func (m *MockRegister) Snapshot() (*register.Snapshot, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Snapshot), args.Error(1)
}

func (m *MockRegister) Reload(ctx context.Context) (register.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(register.Stats), args.Error(1)
}

func (m *MockRegister) Upload(ctx context.Context, name string, r io.Reader) (register.Stats, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, name, string(body))
	return args.Get(0).(register.Stats), args.Error(1)
}

var (
	week29    = domain.WeekWindow{Label: "2025 - Week 30 (Jul 28-Aug 01)", Start: date(2025, 7, 28), End: date(2025, 8, 1), Year: 2025, Number: 30}
	notLoaded = apierrors.NewUnavailableError("no container register has been loaded", register.ErrNotLoaded)
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestRouter(t *testing.T, dash DashboardProvider, reg RegisterManager) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := middleware.NewRequestValidator(logger)

	dh := NewDashboardHandler(dash, validator, errorHandler, logger)
	rh := NewRegisterHandler(reg, 1<<20, errorHandler, logger)

	r := chi.NewRouter()
	r.Mount("/api/dashboard", dh.DashboardRoutes())
	r.Mount("/api/map", dh.MapRoutes())
	r.Mount("/api/calendar", dh.CalendarRoutes())
	r.Mount("/api/register", rh.Routes())
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestGetDashboard(t *testing.T) {
	dash := new(MockDashboard)
	august := date(2025, 8, 1)
	want := services.Selection{
		WeekIndex:   29,
		Granularity: domain.GranularityMonth,
		Month:       &august,
		Now:         date(2025, 7, 30),
	}
	dash.On("Dashboard", mock.Anything, want).Return(&services.Dashboard{
		WeekIndex: 29,
		Week:      week29,
		Period:    domain.AnalysisPeriod{Label: "Month of August 2025", Granularity: domain.GranularityMonth},
		Metrics:   domain.AggregateMetrics{ShipCount: 2, TotalAmount: decimal.RequireFromString("250.5")},
		Empty:     false,
	}, nil)

	router := newTestRouter(t, dash, new(MockRegister))
	rec := do(t, router, httptest.NewRequest(http.MethodGet,
		"/api/dashboard?week=29&granularity=Monthly+View&month=2025-08&now=2025-07-30", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(29), body["week_index"])
	assert.Equal(t, "Month of August 2025", body["period"].(map[string]interface{})["label"])
	assert.Equal(t, "250.5", body["metrics"].(map[string]interface{})["total_amount"])
	dash.AssertExpectations(t)
}

func TestGetDashboard_DefaultsToCurrentWeek(t *testing.T) {
	dash := new(MockDashboard)
	dash.On("Dashboard", mock.Anything, services.Selection{WeekIndex: services.CurrentWeek}).
		Return(&services.Dashboard{Empty: true}, nil)

	rec := do(t, newTestRouter(t, dash, new(MockRegister)), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["empty"])
	dash.AssertExpectations(t)
}

func TestGetDashboard_Errors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		setup   func(*MockDashboard)
		status  int
		errType string
	}{
		{
			name:    "invalid query",
			url:     "/api/dashboard?week=abc&granularity=yearly",
			setup:   func(*MockDashboard) {},
			status:  http.StatusBadRequest,
			errType: apierrors.TypeValidation,
		},
		{
			name: "register not loaded",
			url:  "/api/dashboard",
			setup: func(m *MockDashboard) {
				m.On("Dashboard", mock.Anything, mock.Anything).Return(nil, notLoaded)
			},
			status:  http.StatusServiceUnavailable,
			errType: apierrors.TypeRegisterNotLoaded,
		},
		{
			name: "week out of range",
			url:  "/api/dashboard?week=999",
			setup: func(m *MockDashboard) {
				m.On("Dashboard", mock.Anything, mock.Anything).
					Return(nil, apierrors.NewAppError(apierrors.ErrTypeValidation, "week 999 is outside 0..50", services.ErrWeekOutOfRange))
			},
			status:  http.StatusBadRequest,
			errType: apierrors.TypeValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dash := new(MockDashboard)
			tt.setup(dash)

			rec := do(t, newTestRouter(t, dash, new(MockRegister)), httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.errType, body["type"])
			assert.Equal(t, float64(tt.status), body["status"])
		})
	}
}

func TestExportSeries(t *testing.T) {
	dash := new(MockDashboard)
	dash.On("Dashboard", mock.Anything, mock.Anything).Return(&services.Dashboard{
		Period: domain.AnalysisPeriod{Start: date(2025, 7, 28), Granularity: domain.GranularityWeek},
		Series: []domain.ChartPoint{{
			Label: "🚢 PO-2 - Gadgets - Globex", PONumber: "PO-2", DeliveryDate: date(2025, 8, 1),
			DaysUntilArrival: 2, TransportMode: domain.TransportShip,
		}},
	}, nil)

	rec := do(t, newTestRouter(t, dash, new(MockRegister)), httptest.NewRequest(http.MethodGet, "/api/dashboard/export.csv?week=29", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="delivery-forecast-week-2025-07-28.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "PO-2,2025-08-01,2,ship,,false")
}

func TestGetMap(t *testing.T) {
	dash := new(MockDashboard)
	dash.On("Map", mock.Anything, services.Selection{WeekIndex: 29}, "Brazil").Return(&services.MapSummary{
		WeekIndex:  29,
		Countries:  []domain.CountryCount{{Country: "Brazil", Count: 2}},
		Selected:   "Brazil",
		Containers: []domain.ContainerDetail{{ContainerID: "C1"}, {ContainerID: "C2"}},
		Total:      2,
	}, nil)

	router := newTestRouter(t, dash, new(MockRegister))
	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/map?week=29&country=Brazil", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Brazil", body["selected_country"])
	assert.Len(t, body["containers"], 2)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/map/export.csv?week=29&country=Brazil", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "containers-Brazil-")
	assert.Contains(t, rec.Body.String(), "Container ID")
}

func TestCalendarEndpoints(t *testing.T) {
	dash := new(MockDashboard)
	now := date(2025, 7, 30)
	dash.On("Weeks", now).Return(services.WeekCatalog{Weeks: []domain.WeekWindow{week29}, CurrentIndex: 0})
	dash.On("Months", time.Time{}).Return(services.MonthCatalog{
		Months:       []domain.MonthOption{{Label: "July 2025", Month: date(2025, 7, 1)}},
		DefaultIndex: 0,
	})
	router := newTestRouter(t, dash, new(MockRegister))

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/calendar/weeks?now=2025-07-30", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["weeks"], 1)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/calendar/months", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["default_index"])

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/calendar/weeks?now=30/07/2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	dash.AssertExpectations(t)
}

func TestRegisterStatsAndRecords(t *testing.T) {
	reg := new(MockRegister)
	reg.On("Snapshot").Return(&register.Snapshot{
		Records: []domain.ParsedShipment{{ShipmentRecord: domain.ShipmentRecord{Row: 3, PONumber: "PO-1"}}},
		Stats:   register.Stats{Source: register.SourceFile, Path: "register.xlsx"},
	}, nil)
	router := newTestRouter(t, new(MockDashboard), reg)

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/register", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "register.xlsx", decode(t, rec)["path"])

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/register/records", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestRegisterStats_NotLoaded(t *testing.T) {
	reg := new(MockRegister)
	reg.On("Snapshot").Return(nil, notLoaded)

	rec := do(t, newTestRouter(t, new(MockDashboard), reg), httptest.NewRequest(http.MethodGet, "/api/register", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReload(t *testing.T) {
	reg := new(MockRegister)
	reg.On("Reload", mock.Anything).Return(register.Stats{Source: register.SourceFile, Path: "data/register.xlsx"}, nil).Once()
	reg.On("Reload", mock.Anything).Return(register.Stats{}, apierrors.NewNotFoundError("register source data")).Once()
	router := newTestRouter(t, new(MockDashboard), reg)

	rec := do(t, router, httptest.NewRequest(http.MethodPost, "/api/register/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data/register.xlsx", decode(t, rec)["path"])

	rec = do(t, router, httptest.NewRequest(http.MethodPost, "/api/register/reload", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	reg.AssertExpectations(t)
}

func multipartUpload(t *testing.T, field, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/register/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	stats := register.Stats{Source: register.SourceUpload}
	stats.Rows = 3
	reg := new(MockRegister)
	reg.On("Upload", mock.Anything, "register.xlsx", "PK\x03\x04data").Return(stats, nil)

	rec := do(t, newTestRouter(t, new(MockDashboard), reg), multipartUpload(t, "file", "register.xlsx", "PK\x03\x04data"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, register.SourceUpload, body["source"])
	assert.Equal(t, float64(3), body["rows"])
	reg.AssertExpectations(t)
}

func TestUpload_Rejected(t *testing.T) {
	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/register/upload", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := do(t, newTestRouter(t, new(MockDashboard), new(MockRegister)), req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		rec := do(t, newTestRouter(t, new(MockDashboard), new(MockRegister)), multipartUpload(t, "document", "register.xlsx", "x"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := strings.Repeat("x", 2<<20)
		rec := do(t, newTestRouter(t, new(MockDashboard), new(MockRegister)), multipartUpload(t, "file", "register.xlsx", big))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, apierrors.TypePayloadTooLarge, decode(t, rec)["type"])
	})

	t.Run("store rejects workbook", func(t *testing.T) {
		reg := new(MockRegister)
		reg.On("Upload", mock.Anything, "notes.txt", "hello").Return(register.Stats{}, apierrors.ErrUnsupportedUpload)

		rec := do(t, newTestRouter(t, new(MockDashboard), reg), multipartUpload(t, "file", "notes.txt", "hello"))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name     string
		snapshot *register.Snapshot
		err      error
		handler  func(*HealthHandler) http.HandlerFunc
		status   int
		want     string
	}{
		{"health", nil, notLoaded, func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck }, http.StatusOK, "ok"},
		{"live", nil, notLoaded, func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck }, http.StatusOK, "alive"},
		{"not ready", nil, notLoaded, func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck }, http.StatusServiceUnavailable, "not_ready"},
		{"ready", &register.Snapshot{}, nil, func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck }, http.StatusOK, "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := new(MockRegister)
			if tt.snapshot != nil {
				reg.On("Snapshot").Return(tt.snapshot, nil)
			} else {
				reg.On("Snapshot").Return(nil, tt.err)
			}
			h := NewHealthHandler(services.NewHealthService(reg, logger), logger)

			rec := httptest.NewRecorder()
			tt.handler(h)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, decode(t, rec)["status"])
		})
	}

	rec := httptest.NewRecorder()
	NewHealthHandler(services.NewHealthService(new(MockRegister), logger), logger).
		Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "version")
}
