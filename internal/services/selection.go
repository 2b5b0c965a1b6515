package services

import (
	"fmt"
	"time"

	"github.com/marcojr93/cntrackerv1/internal/calendar"
	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// CurrentWeek selects the catalog week containing the reference date
const CurrentWeek = -1

// Selection is the user's choice of analysis window
type Selection struct {
	WeekIndex   int
	Granularity domain.Granularity
	// Month anchors the month granularity and the month KPIs
	Month *time.Time
	// Now is the reference date; zero means the service clock
	Now time.Time
}

// resolved is a Selection bound to a concrete catalog week and period
type resolved struct {
	weekIndex int
	week      domain.WeekWindow
	period    domain.AnalysisPeriod
	month     domain.AnalysisPeriod
	now       time.Time
}

func resolveSelection(catalog *calendar.Catalog, sel Selection, clock func() time.Time) (resolved, error) {
	if catalog.Len() == 0 {
		return resolved{}, apierrors.NewConfigError("no selectable weeks", ErrEmptyCalendar)
	}

	now := sel.Now
	if now.IsZero() {
		now = clock()
	}

	idx := sel.WeekIndex
	if idx == CurrentWeek {
		idx = catalog.IndexOf(now)
	}
	week, ok := catalog.At(idx)
	if !ok {
		return resolved{}, apierrors.NewAppError(apierrors.ErrTypeValidation,
			fmt.Sprintf("week %d is outside 0..%d", idx, catalog.Len()-1), ErrWeekOutOfRange)
	}

	granularity := sel.Granularity
	if granularity == "" {
		granularity = domain.GranularityWeek
	}
	period, err := calendar.Resolve(week, granularity, sel.Month)
	if err != nil {
		return resolved{}, apierrors.NewAppError(apierrors.ErrTypeValidation, err.Error(), err)
	}
	month, err := calendar.Resolve(week, domain.GranularityMonth, sel.Month)
	if err != nil {
		return resolved{}, err
	}

	return resolved{weekIndex: idx, week: week, period: period, month: month, now: now}, nil
}
