package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for daily record dates.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the format layout for timestamped record dates.
	DateTimeLayout = "2006-01-02 15:04:05"
	// IndiaLocation is the time zone of the NSE.
	IndiaLocation = "Asia/Kolkata"
)

// dateLayouts are the accepted record date layouts, in order of preference.
var dateLayouts = []string{DateLayout, DateTimeLayout, time.RFC3339}

// ParseDate parses a record date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		dt, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unknown date format: %q", s)
}

// TradingDay truncates the provided time to its calendar day in the provided location.
func TradingDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// Calendar represents the calendar fields of a record date.
type Calendar struct {
	Year      int
	Month     int
	Day       int
	DayOfWeek int
	Quarter   int
}

// NewCalendar returns the calendar fields of the provided date. Weekdays start at zero on
// monday.
func NewCalendar(t time.Time) Calendar {
	return Calendar{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		DayOfWeek: (int(t.Weekday()) + 6) % 7,
		Quarter:   (int(t.Month())-1)/3 + 1,
	}
}
