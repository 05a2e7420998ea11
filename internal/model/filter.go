package model

import (
	"fmt"
	"strings"
)

// PriorityFilter is either "all" or a single priority.
type PriorityFilter string

const PriorityFilterAll PriorityFilter = "all"

func (f PriorityFilter) Matches(p Priority) bool {
	return f == "" || f == PriorityFilterAll || Priority(f) == p
}

func ParsePriorityFilter(raw string) (PriorityFilter, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, string(PriorityFilterAll)) || strings.EqualFold(trimmed, "todas") {
		return PriorityFilterAll, nil
	}
	p, err := ParsePriority(trimmed)
	if err != nil {
		return "", fmt.Errorf("model: priority filter: %w", err)
	}
	return PriorityFilter(p), nil
}

// Next cycles all -> Low -> Medium -> High -> Critical -> all.
func (f PriorityFilter) Next() PriorityFilter {
	if f == "" || f == PriorityFilterAll {
		return PriorityFilter(PriorityLow)
	}
	if Priority(f) == PriorityCritical {
		return PriorityFilterAll
	}
	return PriorityFilter(Priority(f).Next())
}

// Filter returns the tasks whose title, description or any tag contains query
// (case-insensitive) and whose priority passes the filter. Input order is kept.
func Filter(tasks []Task, query string, priority PriorityFilter) []Task {
	q := strings.ToLower(query)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !priority.Matches(t.Priority) {
			continue
		}
		if !matchesQuery(t, q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesQuery(t Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
