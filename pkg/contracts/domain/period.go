package domain

import "time"

// Granularity is the size of the analysis window
type Granularity string

const (
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

// WeekWindow is a selectable Monday to Friday business week
type WeekWindow struct {
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Year   int       `json:"year"`
	Number int       `json:"number"`
}

// Contains reports whether date falls within the business week (inclusive)
func (w WeekWindow) Contains(date time.Time) bool {
	return !date.Before(w.Start) && !date.After(w.End)
}

// AnalysisPeriod is a resolved [Start, End] window with a display label
type AnalysisPeriod struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Label       string      `json:"label"`
	Granularity Granularity `json:"granularity"`
}

// Contains reports whether date falls inside the period, both ends inclusive
func (p AnalysisPeriod) Contains(date time.Time) bool {
	return !date.Before(p.Start) && !date.After(p.End)
}

// MonthOption is a selectable calendar month
type MonthOption struct {
	Label string    `json:"label"`
	Month time.Time `json:"month"`
}
