package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
)

// TaskRecord is the row shape of the tasks table.
type TaskRecord struct {
	ID          string
	Position    int64
	Title       string
	Description string
	Priority    string
	Status      string
	Tags        string
	CreatedAt   int64
	DueAt       *int64
}

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type TaskListFilter struct {
	Status   string
	Priority string
	Limit    int
	Offset   int
}

func recordFromTask(t model.Task, position int64) (TaskRecord, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("encode tags: %w", err)
	}
	rec := TaskRecord{
		ID:          t.ID,
		Position:    position,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Tags:        string(raw),
		CreatedAt:   t.CreatedAt,
	}
	if t.DueDate != nil {
		due := *t.DueDate
		rec.DueAt = &due
	}
	return rec, nil
}

func (r TaskRecord) toTask() (model.Task, error) {
	tags := make([]string, 0)
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return model.Task{}, fmt.Errorf("%w: task %s tags: %v", ErrCorrupt, r.ID, err)
	}
	out := model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    model.Priority(r.Priority),
		Status:      model.Status(r.Status),
		Tags:        tags,
		CreatedAt:   r.CreatedAt,
	}
	if r.DueAt != nil {
		due := *r.DueAt
		out.DueDate = &due
	}
	return out, nil
}
