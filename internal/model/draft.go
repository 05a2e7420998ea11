package model

import (
	"strings"
	"time"
)

const (
	AIGeneratedTag   = "gerado-por-ia"
	DefaultDraftName = "New task"
)

// TaskDraft is a partial task proposed by the planner. Priority is free text.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

// FromDraft turns a draft into a new Todo task, filling missing fields.
func FromDraft(d TaskDraft, now time.Time) Task {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = DefaultDraftName
	}
	priority, err := ParsePriority(d.Priority)
	if err != nil {
		priority = PriorityMedium
	}
	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		tags = []string{AIGeneratedTag}
	}
	return Task{
		ID:          NewID(),
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Priority:    priority,
		Status:      StatusTodo,
		Tags:        tags,
		CreatedAt:   Millis(now),
	}
}

func FromDrafts(drafts []TaskDraft, now time.Time) []Task {
	out := make([]Task, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, FromDraft(d, now))
	}
	return out
}
