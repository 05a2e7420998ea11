package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrTitleRequired = errors.New("model: task title is required")

var validate = validator.New()

// TaskForm is the create/edit input. Empty Priority and Status fall back to defaults on
// create and to the existing values on edit.
type TaskForm struct {
	Title       string   `validate:"required"`
	Description string
	Priority    Priority `validate:"omitempty,oneof=Low Medium High Critical"`
	Status      Status   `validate:"omitempty,oneof=todo in_progress done blocked"`
	Tags        string
	Due         *time.Time
}

// InlineEdit carries the fields a card can edit in place.
type InlineEdit struct {
	Title       string   `validate:"required"`
	Description string
	Priority    Priority `validate:"omitempty,oneof=Low Medium High Critical"`
	Due         *time.Time
}

func (f TaskForm) normalized() TaskForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	return f
}

func (f TaskForm) Validate() error {
	return validationError(validate.Struct(f.normalized()))
}

func (e InlineEdit) Validate() error {
	e.Title = strings.TrimSpace(e.Title)
	return validationError(validate.Struct(e))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			return ErrTitleRequired
		case "Priority":
			return fmt.Errorf("%w: %q", ErrInvalidPriority, fe.Value())
		case "Status":
			return fmt.Errorf("%w: %q", ErrInvalidStatus, fe.Value())
		}
	}
	return err
}

// NewFromForm builds a fresh task with the create defaults applied.
func NewFromForm(f TaskForm, now time.Time) (Task, error) {
	if err := f.Validate(); err != nil {
		return Task{}, err
	}
	f = f.normalized()
	task := Task{
		ID:          NewID(),
		Title:       f.Title,
		Description: f.Description,
		Priority:    PriorityMedium,
		Status:      StatusTodo,
		Tags:        ParseTags(f.Tags),
		CreatedAt:   Millis(now),
	}
	if f.Priority != "" {
		task.Priority = f.Priority
	}
	if f.Status != "" {
		task.Status = f.Status
	}
	if f.Due != nil {
		task.DueDate = DueAt(*f.Due)
	}
	return task, nil
}

// ApplyForm keeps identity and createdAt, and keeps status unless the form sets one.
func ApplyForm(existing Task, f TaskForm) (Task, error) {
	if err := f.Validate(); err != nil {
		return Task{}, err
	}
	f = f.normalized()
	out := existing.Clone()
	out.Title = f.Title
	out.Description = f.Description
	if f.Priority != "" {
		out.Priority = f.Priority
	}
	if f.Status != "" {
		out.Status = f.Status
	}
	out.Tags = ParseTags(f.Tags)
	out.DueDate = nil
	if f.Due != nil {
		out.DueDate = DueAt(*f.Due)
	}
	return out, nil
}

func ApplyInlineEdit(existing Task, e InlineEdit) (Task, error) {
	if err := e.Validate(); err != nil {
		return Task{}, err
	}
	out := existing.Clone()
	out.Title = strings.TrimSpace(e.Title)
	out.Description = strings.TrimSpace(e.Description)
	if e.Priority != "" {
		out.Priority = e.Priority
	}
	out.DueDate = nil
	if e.Due != nil {
		out.DueDate = DueAt(*e.Due)
	}
	return out, nil
}

// FormFromTask pre-fills an edit form.
func FormFromTask(t Task) TaskForm {
	f := TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Tags:        strings.Join(t.Tags, ", "),
	}
	if due, ok := t.Due(); ok {
		f.Due = &due
	}
	return f
}
