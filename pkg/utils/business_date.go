package utils

import (
	"time"
)

// BusinessDateLayout is the YYYY-MM-DD form used for ledger and order dates
const BusinessDateLayout = "2006-01-02"

// FormatBusinessDate renders t as a calendar date in the café's timezone
func FormatBusinessDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(BusinessDateLayout)
}

// ParseBusinessDate validates a YYYY-MM-DD date and returns it normalised
func ParseBusinessDate(s string) (string, error) {
	t, err := time.Parse(BusinessDateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(BusinessDateLayout), nil
}

// PreviousBusinessDate returns the calendar day before date
func PreviousBusinessDate(date string) (string, error) {
	t, err := time.Parse(BusinessDateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(BusinessDateLayout), nil
}

// NextBusinessDate returns the day after date
func NextBusinessDate(date string) (string, error) {
	t, err := time.Parse(BusinessDateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(BusinessDateLayout), nil
}
