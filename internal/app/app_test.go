package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcojr93/cntrackerv1/internal/config"
	"github.com/marcojr93/cntrackerv1/internal/shared/testutil"
)

func testConfig(t *testing.T, registerPath string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Register.Path = registerPath
	cfg.Register.UploadDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, registerPath string) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := newApplication(testConfig(t, registerPath), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })
	return a
}

func registerFixture(t *testing.T) string {
	t.Helper()
	return testutil.WriteRegister(t, t.TempDir(), "register.xlsx", testutil.RegisterWorkbook{
		Rows: []testutil.RegisterRow{
			{Supplier: "Acme", PONumber: "PO-1", Product: "Widgets", Container: "MSCU1", Country: "Brazil",
				Delivery: "Week July 28th, 2025", Transport: "TO DOOR", Amount: 1000},
			{Supplier: "Globex", PONumber: "PO-2", Product: "Gadgets", Container: "MSCU2", Country: "Chile",
				Delivery: "Week July 28th, 2025", Amount: 500},
		},
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func problemType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var problem struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem.Type
}

func TestNewApplication_LoadsRegister(t *testing.T) {
	a := newTestApp(t, registerFixture(t))

	assert.True(t, a.Register.Loaded())
	assert.Equal(t, "127.0.0.1:0", a.Server.Addr)
	assert.Equal(t, a.Router, a.Server.Handler)

	rec := get(t, a.Router, "/api/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestNewApplication_MissingRegisterIsNotFatal(t *testing.T) {
	a := newTestApp(t, t.TempDir()+"/missing.xlsx")

	assert.False(t, a.Register.Loaded())

	rec := get(t, a.Router, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, a.Router, "/api/dashboard?week=29&now=2025-07-30")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "/errors/register/not-loaded", problemType(t, rec))
}

func TestRouter_Dashboard(t *testing.T) {
	a := newTestApp(t, registerFixture(t))

	rec := get(t, a.Router, "/api/dashboard?week=29&now=2025-07-30")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 29, body["week_index"])
	assert.Equal(t, false, body["empty"])

	rec = get(t, a.Router, "/api/map?week=29&now=2025-07-30")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["total"])

	rec = get(t, a.Router, "/api/calendar/weeks?now=2025-07-30")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	a := newTestApp(t, registerFixture(t))

	rec := get(t, a.Router, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, problemType(t, rec))

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	a := newTestApp(t, registerFixture(t))
	require.NotNil(t, a.OTelProviders.PrometheusHTTP)

	get(t, a.Router, "/api/health")

	rec := get(t, a.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "register_loads_total")
	assert.Contains(t, string(body), "http_requests_total")
}

func TestStop_ClosesLog(t *testing.T) {
	a := newTestApp(t, registerFixture(t))
	closed := false
	a.closeLog = func() error { closed = true; return nil }

	require.NoError(t, a.Stop(context.Background()))
	assert.True(t, closed)
}
