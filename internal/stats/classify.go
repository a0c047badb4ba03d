package stats

import "time"

// Weekdays are the ISO weekday labels in report order.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const (
	dateLayout      = "2006-01-02"
	monthLayout     = "2006-01"
	monthNameLayout = "January 2006"
)

// SessionIndex returns the index of the window containing t's hour.
// Sessions must already be validated; t must be in the configured zone.
func SessionIndex(sessions []SessionWindow, t time.Time) int {
	h := t.Hour()
	for i, s := range sessions {
		if h >= s.StartHour && h < s.EndHour {
			return i
		}
	}
	return len(sessions) - 1
}

// WeekdayIndex maps t to 0 (Monday) through 6 (Sunday).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DateKey drops the time of day.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// MonthKey returns the year and month as "YYYY-MM", which sorts chronologically.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// MonthName renders a month key as "March 2024".
func MonthName(key string) string {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return key
	}
	return t.Format(monthNameLayout)
}
