package api

import (
	"strings"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
)

// taskRequest accepts the due date either as epoch milliseconds or as text understood by
// model.ParseDue.
type taskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	Status      model.Status   `json:"status"`
	Tags        []string       `json:"tags"`
	DueDate     *int64         `json:"dueDate"`
	Due         string         `json:"due"`
}

func (r taskRequest) due(now time.Time) (*time.Time, error) {
	if r.DueDate != nil {
		t := time.UnixMilli(*r.DueDate)
		return &t, nil
	}
	return model.ParseDue(r.Due, now)
}

func (r taskRequest) form(now time.Time) (model.TaskForm, error) {
	due, err := r.due(now)
	if err != nil {
		return model.TaskForm{}, err
	}
	return model.TaskForm{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Tags:        strings.Join(r.Tags, ","),
		Due:         due,
	}, nil
}

type inlineRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	DueDate     *int64         `json:"dueDate"`
	Due         string         `json:"due"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type locationDTO struct {
	Column model.Status `json:"droppableId"`
	Index  int          `json:"index"`
}

type dragRequest struct {
	TaskID      string       `json:"draggableId"`
	Source      locationDTO  `json:"source"`
	Destination *locationDTO `json:"destination"`
}

func (r dragRequest) result() model.DragResult {
	out := model.DragResult{
		TaskID: r.TaskID,
		Source: model.BoardLocation{Column: r.Source.Column, Index: r.Source.Index},
	}
	if r.Destination != nil {
		out.Destination = &model.BoardLocation{Column: r.Destination.Column, Index: r.Destination.Index}
	}
	return out
}

type decomposeRequest struct {
	Goal string `json:"goal"`
}

type themeDTO struct {
	Theme string `json:"theme"`
}

type countDTO struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type dayDTO struct {
	Day       string `json:"day"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

type analyticsDTO struct {
	Total              int        `json:"total"`
	Done               int        `json:"done"`
	CompletionRate     int        `json:"completionRate"`
	Status             []countDTO `json:"status"`
	PriorityLoad       []countDTO `json:"priorityLoad"`
	PriorityCompletion []countDTO `json:"priorityCompletion"`
	Week               []dayDTO   `json:"week"`
}

func analyticsFrom(sum model.Summary) analyticsDTO {
	out := analyticsDTO{
		Total:              sum.Total,
		Done:               sum.Done,
		CompletionRate:     sum.CompletionRate,
		Status:             make([]countDTO, 0, len(sum.Status)),
		PriorityLoad:       make([]countDTO, 0, len(sum.PriorityLoad)),
		PriorityCompletion: make([]countDTO, 0, len(sum.PriorityCompletion)),
		Week:               make([]dayDTO, 0, len(sum.Week)),
	}
	for _, c := range sum.Status.NonZero() {
		out.Status = append(out.Status, countDTO{Key: string(c.Status), Count: c.Count})
	}
	for _, c := range sum.PriorityLoad {
		out.PriorityLoad = append(out.PriorityLoad, countDTO{Key: string(c.Priority), Count: c.Count})
	}
	for _, c := range sum.PriorityCompletion {
		out.PriorityCompletion = append(out.PriorityCompletion, countDTO{Key: string(c.Priority), Count: c.Count})
	}
	for _, d := range sum.Week {
		out.Week = append(out.Week, dayDTO{Day: d.Day.Format("2006-01-02"), Created: d.Created, Completed: d.Completed})
	}
	return out
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
