package calendar

import (
	"fmt"
	"time"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// DefaultYears is the horizon offered when none is configured
var DefaultYears = []int{2025, 2026, 2027}

// GenerateWeeks lists the Monday to Friday business weeks of each year, in
// the order given. A year's weeks start at its first Monday on or after
// January 1 and stop before a Friday that would spill into the next year.
func GenerateWeeks(years []int) []domain.WeekWindow {
	weeks := make([]domain.WeekWindow, 0, len(years)*52)
	for _, year := range years {
		weeks = append(weeks, weeksOf(year)...)
	}
	return weeks
}

func weeksOf(year int) []domain.WeekWindow {
	monday := FirstMonday(year)
	out := make([]domain.WeekWindow, 0, 53)
	for n := 1; ; n++ {
		friday := monday.AddDate(0, 0, 4)
		if friday.Year() != year {
			break
		}
		out = append(out, domain.WeekWindow{
			Label:  WeekLabel(year, n, monday, friday),
			Start:  monday,
			End:    friday,
			Year:   year,
			Number: n,
		})
		monday = monday.AddDate(0, 0, 7)
	}
	return out
}

// FirstMonday returns January 1 when it is a Monday, else the next Monday
func FirstMonday(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDate(0, 0, offset)
}

// WeekLabel renders the catalog caption, e.g. "2025 - Week 01 (Jan 06-Jan 10)"
func WeekLabel(year, number int, start, end time.Time) string {
	return fmt.Sprintf("%d - Week %02d (%s-%s)", year, number, start.Format("Jan 02"), end.Format("Jan 02"))
}

// Catalog is the fixed list of selectable weeks for a horizon. It is
// read-only after construction and safe for concurrent use.
type Catalog struct {
	years   []int
	weeks   []domain.WeekWindow
	byLabel map[string]int
}

// NewCatalog generates the weeks of years once. An empty horizon falls
// back to DefaultYears.
func NewCatalog(years []int) *Catalog {
	if len(years) == 0 {
		years = DefaultYears
	}
	c := &Catalog{
		years: append([]int(nil), years...),
		weeks: GenerateWeeks(years),
	}
	c.byLabel = make(map[string]int, len(c.weeks))
	for i, w := range c.weeks {
		c.byLabel[w.Label] = i
	}
	return c
}

// Years returns the horizon the catalog was built for
func (c *Catalog) Years() []int {
	return append([]int(nil), c.years...)
}

// Len returns the number of weeks
func (c *Catalog) Len() int {
	return len(c.weeks)
}

// Weeks returns a copy of the catalog
func (c *Catalog) Weeks() []domain.WeekWindow {
	return append([]domain.WeekWindow(nil), c.weeks...)
}

// At returns the week at index
func (c *Catalog) At(index int) (domain.WeekWindow, bool) {
	if index < 0 || index >= len(c.weeks) {
		return domain.WeekWindow{}, false
	}
	return c.weeks[index], true
}

// IndexOf returns the week whose Monday to Sunday span contains date,
// or 0 when no week does.
func (c *Catalog) IndexOf(date time.Time) int {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for i, w := range c.weeks {
		if !day.Before(w.Start) && day.Before(w.Start.AddDate(0, 0, 7)) {
			return i
		}
	}
	return 0
}

// Step moves index by delta weeks, clamped to the catalog bounds
func (c *Catalog) Step(index, delta int) int {
	if len(c.weeks) == 0 {
		return 0
	}
	next := index + delta
	if next < 0 {
		return 0
	}
	if next >= len(c.weeks) {
		return len(c.weeks) - 1
	}
	return next
}

// Find returns the index of the week with label
func (c *Catalog) Find(label string) (int, bool) {
	i, ok := c.byLabel[label]
	return i, ok
}
