package model

import (
	"fmt"
	"net/url"
	"time"
)

const (
	calendarBaseURL    = "https://calendar.google.com/calendar/render"
	calendarTimeLayout = "20060102T150405Z"
	calendarEventSpan  = time.Hour
)

// CalendarURL builds a Google Calendar event template for a task with a due date. The event
// starts at the due date and lasts one hour.
func CalendarURL(t Task) (string, bool) {
	due, ok := t.Due()
	if !ok {
		return "", false
	}
	start := due.UTC()
	end := start.Add(calendarEventSpan)
	details := fmt.Sprintf("%s\n\nPriority: %s\nStatus: %s\nGenerated by thetask", t.Description, t.Priority, t.Status.Label())

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", t.Title)
	q.Set("details", details)
	q.Set("dates", start.Format(calendarTimeLayout)+"/"+end.Format(calendarTimeLayout))
	return calendarBaseURL + "?" + q.Encode(), true
}
