package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDeliveryDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{name: "week with ordinal suffix", input: "Week July 28th, 2025", want: date(2025, time.July, 28), wantOK: true},
		{name: "week with nd suffix", input: "Week February 2nd, 2026", want: date(2026, time.February, 2), wantOK: true},
		{name: "week without suffix", input: "Week March 3, 2025", want: date(2025, time.March, 3), wantOK: true},
		{name: "lowercase month", input: "Week january 6th, 2025", want: date(2025, time.January, 6), wantOK: true},
		{name: "abbreviated month", input: "Week Sep 1st, 2025", want: date(2025, time.September, 1), wantOK: true},
		{name: "embedded in longer text", input: "ETA Week August 4th, 2025 (tentative)", want: date(2025, time.August, 4), wantOK: true},
		{name: "surrounding whitespace", input: "  Week May 5th, 2025  ", want: date(2025, time.May, 5), wantOK: true},
		{name: "impossible calendar date", input: "Week February 30th, 2025", wantOK: false},
		{name: "leap day accepted in leap year", input: "Week February 29th, 2028", want: date(2028, time.February, 29), wantOK: true},
		{name: "leap day rejected otherwise", input: "Week February 29th, 2025", wantOK: false},
		{name: "unknown month name", input: "Week Smarch 3rd, 2025", wantOK: false},
		{name: "iso date", input: "2025-03-14", want: date(2025, time.March, 14), wantOK: true},
		{name: "iso date time", input: "2025-03-14 10:30:00", want: date(2025, time.March, 14), wantOK: true},
		{name: "rfc3339", input: "2025-03-14T10:30:00Z", want: date(2025, time.March, 14), wantOK: true},
		{name: "month first slashes", input: "03/14/2025", want: date(2025, time.March, 14), wantOK: true},
		{name: "day first slashes", input: "28/07/2025", want: date(2025, time.July, 28), wantOK: true},
		{name: "day first slashes unpadded", input: "28/7/2025", want: date(2025, time.July, 28), wantOK: true},
		{name: "ambiguous slashes read month first", input: "07/08/2025", want: date(2025, time.July, 8), wantOK: true},
		{name: "dd-Mon-yyyy", input: "14-Mar-2025", want: date(2025, time.March, 14), wantOK: true},
		{name: "long month name", input: "March 14, 2025", want: date(2025, time.March, 14), wantOK: true},
		{name: "day first long month", input: "14 March 2025", want: date(2025, time.March, 14), wantOK: true},
		{name: "excel serial", input: "45658", want: date(2025, time.January, 1), wantOK: true},
		{name: "excel serial with time fraction", input: "45658.5", want: date(2025, time.January, 1), wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace only", input: "   ", wantOK: false},
		{name: "garbage", input: "garbage", wantOK: false},
		{name: "placeholder text", input: "TBC", wantOK: false},
		{name: "negative number", input: "-5", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDeliveryDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
				assert.Equal(t, time.UTC, got.Location())
			} else {
				assert.True(t, got.IsZero())
			}
		})
	}
}

func TestParseDeliveryDate_PrimaryMatchIsFinal(t *testing.T) {
	// the trailing ISO date must not rescue an impossible week date
	_, ok := ParseDeliveryDate("Week February 30th, 2025 2025-03-01")
	assert.False(t, ok)
}
