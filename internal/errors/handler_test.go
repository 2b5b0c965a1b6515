package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcojr93/cntrackerv1/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "context deadline",
			err:        fmt.Errorf("compute: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error",
			err:        ErrValidation("week", "out of range"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantDetail: "Request validation failed",
		},
		{
			name:       "app validation error",
			err:        NewAppValidationError("period 2025-02-01 to 2025-01-01"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantDetail: "period 2025-02-01 to 2025-01-01",
		},
		{
			name:       "wrapped parsing error",
			err:        fmt.Errorf("upload: %w", NewParsingError("cannot open workbook", errors.New("zip"))),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeRegisterUnreadable,
			wantDetail: "cannot open workbook",
		},
		{
			name:       "missing sheet",
			err:        NewNotFoundError(`sheet "SOON"`),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantDetail: `sheet "SOON" not found`,
		},
		{
			name:       "register not loaded",
			err:        NewUnavailableError("no container register loaded", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeRegisterNotLoaded,
			wantDetail: "no container register loaded",
		},
		{
			name:       "storage error hides message",
			err:        NewStorageError("write /srv/data/uploads/x.xlsx", errors.New("permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeStorage,
			wantDetail: "An unexpected error occurred while processing your request",
		},
		{
			name:       "body too large",
			err:        &http.MaxBytesError{Limit: 1024},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/dashboard", body["instance"])
			assert.Contains(t, body, "trace_id")
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
			assert.NotContains(t, body, "stack")

			level := slog.LevelWarn
			if tt.wantStatus >= 500 {
				level = slog.LevelError
			}
			assert.True(t, logs.Contains(level, "request failed"))
			assert.True(t, logs.HasAttr("component", "error_handler"))
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	w := httptest.NewRecorder()
	NewErrorHandler(logger, false).HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
	assert.Empty(t, logs.Records())
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	err := NewNotFoundError(`sheet "SOON"`).WithContext("available_sheets", []string{"Sheet1", "Archive"})
	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodPost, "/api/register/upload", nil), err)

	body := decodeProblem(t, w)
	ctx, ok := body["context"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"Sheet1", "Archive"}, ctx["available_sheets"])
	assert.Equal(t, "NOT_FOUND", body["error_code"])
	assert.NotContains(t, body, "stack", "client errors never carry a stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	h.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/api/map", nil), "nil map write")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "nil map write", body["panic"])
	assert.True(t, strings.Contains(body["stack"].(string), "goroutine"))
	assert.True(t, logs.Contains(slog.LevelError, "panic recovered"))
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method DELETE is not allowed for this endpoint", decodeProblem(t, w)["detail"])
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	mw := RecoveryMiddleware(NewErrorHandler(logger, false))

	panicking := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("index out of range")
	}))
	w := httptest.NewRecorder()
	panicking.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	ok := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w = httptest.NewRecorder()
	ok.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
