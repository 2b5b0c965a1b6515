package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// ErrUnknownGranularity is returned for granularities other than week, month and quarter
var ErrUnknownGranularity = errors.New("unknown granularity")

var granularityAliases = map[string]domain.Granularity{
	"week":               domain.GranularityWeek,
	"weekly":             domain.GranularityWeek,
	"selected week only": domain.GranularityWeek,
	"month":              domain.GranularityMonth,
	"monthly":            domain.GranularityMonth,
	"monthly view":       domain.GranularityMonth,
	"quarter":            domain.GranularityQuarter,
	"quarterly":          domain.GranularityQuarter,
	"quarterly view":     domain.GranularityQuarter,
}

// ParseGranularity accepts the canonical names and the dashboard captions.
// An empty value selects the week.
func ParseGranularity(s string) (domain.Granularity, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return domain.GranularityWeek, nil
	}
	if g, ok := granularityAliases[key]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// Resolve turns the selected week and granularity into concrete bounds.
// monthAnchor overrides the week's month for the month granularity only.
func Resolve(week domain.WeekWindow, granularity domain.Granularity, monthAnchor *time.Time) (domain.AnalysisPeriod, error) {
	switch granularity {
	case domain.GranularityWeek:
		return domain.AnalysisPeriod{
			Start:       week.Start,
			End:         week.End,
			Label:       fmt.Sprintf("Week %s to %s", week.Start.Format("02-Jan"), week.End.Format("02-Jan")),
			Granularity: granularity,
		}, nil

	case domain.GranularityMonth:
		anchor := week.Start
		if monthAnchor != nil {
			anchor = *monthAnchor
		}
		start, end := MonthBounds(anchor)
		return domain.AnalysisPeriod{
			Start:       start,
			End:         end,
			Label:       "Month of " + start.Format("January 2006"),
			Granularity: granularity,
		}, nil

	case domain.GranularityQuarter:
		start, end, q := QuarterBounds(week.Start)
		return domain.AnalysisPeriod{
			Start:       start,
			End:         end,
			Label:       fmt.Sprintf("Q%d %d", q, start.Year()),
			Granularity: granularity,
		}, nil
	}

	return domain.AnalysisPeriod{}, fmt.Errorf("%w: %q", ErrUnknownGranularity, granularity)
}

// MonthBounds returns the first and last day of the month containing anchor
func MonthBounds(anchor time.Time) (time.Time, time.Time) {
	start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := start.AddDate(0, 1, 0)
	return start, nextMonth.AddDate(0, 0, -1)
}

// QuarterBounds returns the calendar quarter containing anchor and its number
func QuarterBounds(anchor time.Time) (time.Time, time.Time, int) {
	q := (int(anchor.Month())-1)/3 + 1
	year := anchor.Year()
	start := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	if q == 4 {
		return start, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), q
	}
	next := time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	return start, next.AddDate(0, 0, -1), q
}
