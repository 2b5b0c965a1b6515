package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/marcojr93/cntrackerv1/internal/calendar"
	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/middleware"
	"github.com/marcojr93/cntrackerv1/internal/services"
)

// selectionQuery is the raw query string of a dashboard or map request
type selectionQuery struct {
	Week        string `query:"week" validate:"omitempty,numeric"`
	Granularity string `query:"granularity" validate:"omitempty,granularity"`
	Month       string `query:"month" validate:"omitempty,yearmonth"`
	Now         string `query:"now" validate:"omitempty,datetime=2006-01-02"`
	Country     string `query:"country" validate:"omitempty,max=100"`
}

func readSelectionQuery(r *http.Request) selectionQuery {
	q := r.URL.Query()
	return selectionQuery{
		Week:        q.Get("week"),
		Granularity: q.Get("granularity"),
		Month:       q.Get("month"),
		Now:         q.Get("now"),
		Country:     q.Get("country"),
	}
}

// parseSelection validates the query and converts it to a Selection
func parseSelection(v *middleware.RequestValidator, r *http.Request) (services.Selection, string, error) {
	q := readSelectionQuery(r)
	if err := v.ValidateStruct(q); err != nil {
		return services.Selection{}, "", err
	}

	sel := services.Selection{WeekIndex: services.CurrentWeek}
	if q.Week != "" {
		idx, err := strconv.Atoi(q.Week)
		if err != nil {
			return services.Selection{}, "", apierrors.ErrValidation("week", "week must be a whole number")
		}
		sel.WeekIndex = idx
	}
	if q.Granularity != "" {
		g, err := calendar.ParseGranularity(q.Granularity)
		if err != nil {
			return services.Selection{}, "", apierrors.ErrValidation("granularity", err.Error())
		}
		sel.Granularity = g
	}
	if q.Month != "" {
		m, err := calendar.ParseMonth(q.Month)
		if err != nil {
			return services.Selection{}, "", apierrors.ErrValidation("month", err.Error())
		}
		sel.Month = &m
	}
	if q.Now != "" {
		now, err := time.Parse(time.DateOnly, q.Now)
		if err != nil {
			return services.Selection{}, "", apierrors.ErrValidation("now", err.Error())
		}
		sel.Now = now
	}

	return sel, q.Country, nil
}

// referenceDate reads the optional now parameter of the calendar endpoints
func referenceDate(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("now")
	if s == "" {
		return time.Time{}, nil
	}
	now, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apierrors.ErrValidation("now", "now must be a date in the form 2006-01-02")
	}
	return now, nil
}
