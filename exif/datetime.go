package exif

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the EXIF date format, "YYYY:MM:DD HH:MM:SS"
const DateTimeLayout = "2006:01:02 15:04:05"

// ErrInvalidDate is returned for date strings that cannot be parsed
var ErrInvalidDate = errors.New("exif: invalid date")

// userLayouts are the date formats accepted on the command line
var userLayouts = []string{
	DateTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime parses an EXIF date. Incomplete dates are rejected.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimRight(s, "\x00 ")
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDateTime formats t as an EXIF date
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseUserDate parses a date typed by a user in any of the accepted layouts
func ParseUserDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range userLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY:MM:DD HH:MM:SS or YYYY-MM-DD)", ErrInvalidDate, s)
}
