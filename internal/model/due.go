package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDue = errors.New("model: invalid due date")

// maxRelativeDue caps "in N units" input far below time.Duration's range.
const maxRelativeDue = 100 * 365 * 24 * time.Hour

var (
	dayMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{2}))?$`)
	relativeDue  = regexp.MustCompile(`^(?:in\s+)?(\d+)\s*(m|min|mins|minute|minutes|h|hour|hours|d|day|days|w|week|weeks)$`)
)

// ParseDue reads a due date typed by the user. Supported forms:
//
//	2026-03-01 14:30     local date and time
//	2026-03-01           end of that local day
//	01/03/2026 [14:30]   day/month/year, end of day when no time is given
//	45 minutes, 2h, in 3 days, 1 week
//
// Empty input means no deadline and returns nil.
func ParseDue(input string, now time.Time) (*time.Time, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return nil, nil
	}
	loc := now.Location()
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, loc); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		end := endOfDay(t)
		return &end, nil
	}
	if t, err := parseDayMonthYear(raw, loc); err == nil {
		return &t, nil
	}
	if t, err := parseRelativeDue(raw, now); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %q (use YYYY-MM-DD [HH:MM], dd/mm/yyyy or N minutes/hours/days/weeks)", ErrInvalidDue, raw)
}

func parseDayMonthYear(raw string, loc *time.Location) (time.Time, error) {
	m := dayMonthYear.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, ErrInvalidDue
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrInvalidDue
	}
	hour, minute, sec := 23, 59, 59
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		sec = 0
		if hour > 23 || minute > 59 {
			return time.Time{}, ErrInvalidDue
		}
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, ErrInvalidDue
	}
	return t, nil
}

func parseRelativeDue(raw string, now time.Time) (time.Time, error) {
	m := relativeDue.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return time.Time{}, ErrInvalidDue
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return time.Time{}, ErrInvalidDue
	}
	var unit time.Duration
	switch m[2] {
	case "m", "min", "mins", "minute", "minutes":
		unit = time.Minute
	case "h", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = 24 * time.Hour
	default:
		unit = 7 * 24 * time.Hour
	}
	if int64(n) > int64(maxRelativeDue/unit) {
		return time.Time{}, ErrInvalidDue
	}
	switch unit {
	case time.Minute, time.Hour:
		return now.Add(time.Duration(n) * unit), nil
	case 24 * time.Hour:
		return endOfDay(now.AddDate(0, 0, n)), nil
	default:
		return endOfDay(now.AddDate(0, 0, 7*n)), nil
	}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// FormatDue renders a due date for cards and tables.
func FormatDue(t Task) string {
	due, ok := t.Due()
	if !ok {
		return ""
	}
	return due.Local().Format("2006-01-02 15:04")
}
