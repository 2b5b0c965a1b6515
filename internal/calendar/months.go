package calendar

import (
	"fmt"
	"time"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// MonthOptions lists every month of the horizon, e.g. "January 2025"
func MonthOptions(years []int) []domain.MonthOption {
	out := make([]domain.MonthOption, 0, len(years)*12)
	for _, year := range years {
		for m := time.January; m <= time.December; m++ {
			month := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
			out = append(out, domain.MonthOption{Label: month.Format("January 2006"), Month: month})
		}
	}
	return out
}

// DefaultMonthIndex returns the option matching the month of now, or 0
func DefaultMonthIndex(options []domain.MonthOption, now time.Time) int {
	for i, opt := range options {
		if opt.Month.Year() == now.Year() && opt.Month.Month() == now.Month() {
			return i
		}
	}
	return 0
}

// ParseMonth reads a "2006-01" month selector as the first day of that month
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}
