package services

import "errors"

// Selection errors
var (
	ErrWeekOutOfRange = errors.New("week index out of range")
	ErrEmptyCalendar  = errors.New("calendar has no weeks")
)
