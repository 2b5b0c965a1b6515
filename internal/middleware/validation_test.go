package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/shared/testutil"
)

type selectionQuery struct {
	Week        string `query:"week" validate:"omitempty,numeric"`
	Granularity string `query:"granularity" validate:"omitempty,granularity"`
	Month       string `query:"month" validate:"omitempty,yearmonth"`
	Now         string `query:"now" validate:"omitempty,datetime=2006-01-02"`
}

func TestRequestValidator_ValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	tests := []struct {
		name   string
		query  selectionQuery
		fields []string
	}{
		{name: "empty is valid", query: selectionQuery{}},
		{
			name:  "all valid",
			query: selectionQuery{Week: "12", Granularity: "Monthly View", Month: "2025-04", Now: "2025-01-29"},
		},
		{name: "week not numeric", query: selectionQuery{Week: "twelve"}, fields: []string{"week"}},
		{name: "unknown granularity", query: selectionQuery{Granularity: "yearly"}, fields: []string{"granularity"}},
		{
			name:   "bad month and date",
			query:  selectionQuery{Month: "April", Now: "29/01/2025"},
			fields: []string{"month", "now"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.query)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var got []string
			for _, fe := range details.Errors {
				got = append(got, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestFormatValidationError_Messages(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	err := v.ValidateStruct(selectionQuery{Granularity: "fortnight"})
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	details := apiErr.Details.(apierrors.ValidationErrors)
	assert.Equal(t, "granularity must be week, month or quarter", details.Errors[0].Message)
}

func TestContentTypeValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	mw := ContentTypeValidator(apierrors.NewErrorHandler(logger, false), "multipart/form-data")
	h := mw(http.HandlerFunc(okHandler))

	r := httptest.NewRequest(http.MethodPost, "/api/register/upload", nil)
	r.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/register/upload", nil)
	r.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
