package update

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/views"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldTags
	fieldDue
	fieldCount
)

var fieldLabels = [fieldCount]string{"title", "description", "tags", "due"}

type formState struct {
	editingID string
	inline    bool
	inputs    [fieldCount]textinput.Model
	order     []int
	focus     int
	priority  model.Priority
	status    model.Status
	err       string
}

func newFormState(task *model.Task, inline bool) formState {
	f := formState{
		inline:   inline,
		priority: model.PriorityMedium,
		status:   model.StatusTodo,
		order:    []int{fieldTitle, fieldDescription, fieldTags, fieldDue},
	}
	if inline {
		f.order = []int{fieldTitle, fieldDescription, fieldDue}
	}
	placeholders := [fieldCount]string{"what needs doing", "details (optional)", "comma, separated", "2026-05-01 14:00, 31/05/2026 or in 2h"}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 0
		in.Width = 48
		f.inputs[i] = in
	}
	if task != nil {
		form := model.FormFromTask(*task)
		f.editingID = task.ID
		f.priority = task.Priority
		f.status = task.Status
		f.inputs[fieldTitle].SetValue(form.Title)
		f.inputs[fieldDescription].SetValue(form.Description)
		f.inputs[fieldTags].SetValue(form.Tags)
		f.inputs[fieldDue].SetValue(model.FormatDue(*task))
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func (f *formState) focused() int {
	return f.order[f.focus]
}

func (f *formState) cycleFocus(delta int) {
	f.inputs[f.focused()].Blur()
	f.focus = (f.focus + delta + len(f.order)) % len(f.order)
	f.inputs[f.focused()].Focus()
}

func (m Model) openForm(task *model.Task, inline bool) Model {
	m.form = newFormState(task, inline)
	m.Mode = ModeForm
	if inline {
		m.Mode = ModeInline
	}
	return m
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeBoard
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "tab", "down":
		m.form.cycleFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.form.cycleFocus(-1)
		return m, nil
	case "ctrl+p":
		m.form.priority = m.form.priority.Next()
		return m, nil
	case "ctrl+s":
		if !m.form.inline {
			m.form.status = nextStatus(m.form.status)
		}
		return m, nil
	case "enter":
		return m.submitForm()
	}
	var cmd tea.Cmd
	idx := m.form.focused()
	m.form.inputs[idx], cmd = m.form.inputs[idx].Update(msg)
	return m, cmd
}

// submitForm refuses an empty title without any message.
func (m Model) submitForm() (Model, tea.Cmd) {
	f := m.form
	title := strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		return m, nil
	}
	due, err := model.ParseDue(f.inputs[fieldDue].Value(), m.now())
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	ctx, cancel := m.opContext()
	defer cancel()

	switch {
	case f.inline:
		existing, err := m.store.Get(f.editingID)
		if err != nil {
			return m.fail(err), nil
		}
		next, err := model.ApplyInlineEdit(existing, model.InlineEdit{
			Title:       title,
			Description: f.inputs[fieldDescription].Value(),
			Priority:    f.priority,
			Due:         due,
		})
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		if err := m.store.Update(ctx, next); err != nil {
			return m.fail(err), nil
		}
		m.Mode = ModeBoard
		m.Status = StatusBar{Text: "saved"}
		return m, clearStatusAfter(m.cfg.SavedAckDuration, "saved")
	case f.editingID != "":
		existing, err := m.store.Get(f.editingID)
		if err != nil {
			return m.fail(err), nil
		}
		next, err := model.ApplyForm(existing, m.formInput(title, due))
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		if err := m.store.Update(ctx, next); err != nil {
			return m.fail(err), nil
		}
		m.Mode = ModeBoard
		m.Status = StatusBar{Text: "task updated: " + next.Title}
		return m.selectTask(next.ID), nil
	default:
		task, err := model.NewFromForm(m.formInput(title, due), m.now())
		if err != nil {
			if errors.Is(err, model.ErrTitleRequired) {
				return m, nil
			}
			m.form.err = err.Error()
			return m, nil
		}
		if err := m.store.Create(ctx, task); err != nil {
			return m.fail(err), nil
		}
		m.Mode = ModeBoard
		m.Status = StatusBar{Text: "task created: " + task.Title}
		m.triggerMonitor()
		return m.selectTask(task.ID), nil
	}
}

func (m Model) formInput(title string, due *time.Time) model.TaskForm {
	return model.TaskForm{
		Title:       title,
		Description: m.form.inputs[fieldDescription].Value(),
		Priority:    m.form.priority,
		Status:      m.form.status,
		Tags:        m.form.inputs[fieldTags].Value(),
		Due:         due,
	}
}

func (m Model) renderForm() string {
	heading := "new task"
	hint := "[tab] next field  [ctrl+p] priority  [ctrl+s] status  [enter] save  [esc] cancel"
	status := m.form.status.Label()
	switch {
	case m.form.inline:
		heading = "quick edit"
		hint = "[tab] next field  [ctrl+p] priority  [enter] save  [esc] cancel"
		status = ""
	case m.form.editingID != "":
		heading = "edit task"
	}
	fields := make([]views.FieldData, 0, len(m.form.order))
	for i, idx := range m.form.order {
		fields = append(fields, views.FieldData{
			Label:   fieldLabels[idx],
			View:    m.form.inputs[idx].View(),
			Focused: i == m.form.focus,
		})
	}
	return views.RenderForm(views.FormData{
		Theme:    string(m.theme()),
		Heading:  heading,
		Fields:   fields,
		Priority: string(m.form.priority),
		Status:   status,
		Hint:     hint,
		Error:    m.form.err,
	})
}

func nextStatus(s model.Status) model.Status {
	all := model.Statuses()
	for i, candidate := range all {
		if candidate == s {
			return all[(i+1)%len(all)]
		}
	}
	return model.StatusTodo
}
