package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidTheme    = errors.New("model: invalid theme")
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses returns the board columns in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

// ParseStatus accepts wire values and labels, ignoring case, spaces and dashes.
func ParseStatus(raw string) (Status, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case "todo":
		return StatusTodo, nil
	case "inprogress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	case "blocked":
		return StatusBlocked, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// ParsePriority also understands the Portuguese labels the planner model answers with.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low", "baixa":
		return PriorityLow, nil
	case "medium", "média", "media":
		return PriorityMedium, nil
	case "high", "alta":
		return PriorityHigh, nil
	case "critical", "crítica", "critica":
		return PriorityCritical, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

// Next cycles Low -> Medium -> High -> Critical -> Low.
func (p Priority) Next() Priority {
	all := Priorities()
	for i, candidate := range all {
		if candidate == p {
			return all[(i+1)%len(all)]
		}
	}
	return PriorityMedium
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) IsValid() bool {
	return t == ThemeDark || t == ThemeLight
}

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

func ParseTheme(raw string) (Theme, error) {
	theme := Theme(strings.ToLower(strings.TrimSpace(raw)))
	if !theme.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
	return theme, nil
}

// Task timestamps are epoch milliseconds.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt"`
	DueDate     *int64   `json:"dueDate,omitempty"`
}

func NewID() string {
	return uuid.NewString()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt <= 0 {
		return errors.New("model: task createdAt is required")
	}
	return nil
}

func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = make([]string, len(t.Tags))
		copy(out.Tags, t.Tags)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

func (t Task) Due() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*t.DueDate), true
}

func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

func (t Task) IsOverdue(now time.Time) bool {
	due, ok := t.Due()
	if !ok || t.Status == StatusDone {
		return false
	}
	return due.Before(now)
}

// IsNearDue is the card badge rule: due within the next hour.
func (t Task) IsNearDue(now time.Time) bool {
	due, ok := t.Due()
	if !ok || t.Status == StatusDone {
		return false
	}
	left := due.Sub(now)
	return left > 0 && left < time.Hour
}

func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func DueAt(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

// ParseTags splits comma separated input, trimming entries and dropping empty ones.
func ParseTags(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
