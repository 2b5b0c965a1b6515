package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// weekDatePattern matches register entries like "Week July 28th, 2025"
var weekDatePattern = regexp.MustCompile(`(?i)Week ([A-Za-z]+) (\d{1,2})(?:st|nd|rd|th)?, (\d{4})`)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// fallbackLayouts are tried in order when the week pattern does not match
var fallbackLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01-02-06",
	"1-2-06",
	"2006",
}

// Excel serials beyond 9999-12-31 are not dates
const maxExcelSerial = 2958465

// ParseDeliveryDate converts free-text delivery date cells into a calendar
// date at 00:00 UTC. ok is false when nothing recognisable was found.
func ParseDeliveryDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if m := weekDatePattern.FindStringSubmatch(text); m != nil {
		return weekDate(m[1], m[2], m[3])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return dateOnly(t), true
		}
	}

	return excelSerialDate(text)
}

// weekDate builds the date from the captured month, day and year. A match of
// the week pattern is final: an impossible date is not retried elsewhere.
func weekDate(monthText, dayText, yearText string) (time.Time, bool) {
	month, ok := monthNames[strings.ToLower(monthText)]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises Feb 30 into March
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func excelSerialDate(text string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(text, 64)
	if err != nil || serial < 1 || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

// dateOnly drops the clock and zone, keeping the calendar date
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
