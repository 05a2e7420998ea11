package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseDue(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01 14:30", time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"2026-03-01", time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)},
		{"01/03/2026", time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)},
		{"01/03/2026 08:15", time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC)},
		{"45 minutes", now.Add(45 * time.Minute)},
		{"in 2h", now.Add(2 * time.Hour)},
		{"3 days", time.Date(2026, 2, 12, 23, 59, 59, 0, time.UTC)},
		{"1 week", time.Date(2026, 2, 16, 23, 59, 59, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDue(tc.in, now)
		if err != nil {
			t.Fatalf("ParseDue(%q) failed: %v", tc.in, err)
		}
		if got == nil || !got.Equal(tc.want) {
			t.Fatalf("ParseDue(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDueEmptyAndInvalid(t *testing.T) {
	now := time.Now()
	got, err := ParseDue("  ", now)
	if err != nil || got != nil {
		t.Fatalf("expected no deadline, got %v %v", got, err)
	}
	for _, in := range []string{"tomorrowish", "31/02/2026", "0 days"} {
		if _, err := ParseDue(in, now); !errors.Is(err, ErrInvalidDue) {
			t.Fatalf("ParseDue(%q) expected ErrInvalidDue, got %v", in, err)
		}
	}
}

func TestParseDueRejectsHugeRelativeSpans(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	for _, in := range []string{"9999999 hours", "999999999 minutes", "99999 days", "9999 weeks", "99999999999999999999 hours"} {
		if _, err := ParseDue(in, now); !errors.Is(err, ErrInvalidDue) {
			t.Fatalf("ParseDue(%q) expected ErrInvalidDue, got %v", in, err)
		}
	}
	got, err := ParseDue("5000 weeks", now)
	if err != nil || got == nil || !got.After(now) {
		t.Fatalf("ParseDue(5000 weeks) = %v, %v", got, err)
	}
}
