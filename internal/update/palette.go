package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/thetask/internal/commands"
	"github.com/sandeepkv93/thetask/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeBoard
		m.paletteInput.SetValue("")
		m.paletteInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		return m.executePaletteCommand(m.paletteInput.Value())
	}
	var cmd tea.Cmd
	m.paletteInput, cmd = m.paletteInput.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand(raw string) (Model, tea.Cmd) {
	m.Mode = ModeBoard
	m.paletteInput.SetValue("")
	m.paletteInput.Blur()

	cmd, err := commands.Parse(strings.TrimSpace(raw))
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := model.NewFromForm(model.TaskForm{Title: a.Title}, m.now())
			if err != nil {
				return commands.Result{}, err
			}
			ctx, cancel := m.opContext()
			defer cancel()
			if err := m.store.Create(ctx, task); err != nil {
				return commands.Result{}, err
			}
			m = m.selectTask(task.ID)
			return commands.Result{Message: fmt.Sprintf("added task: %s", task.Title)}, nil
		},
		Move: func(a commands.MoveArgs) (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
			}
			m = m.setSelectedStatus(a.Status)
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: fmt.Sprintf("moved %q to %s", task.Title, a.Status.Label())}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			m.Query = a.Query
			m.searchInput.SetValue(a.Query)
			m = m.clampRows()
			if a.Query == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("search: %s", a.Query)}, nil
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			m.PriorityFilter = a.Filter
			m = m.clampRows()
			return commands.Result{Message: "priority filter: " + string(a.Filter)}, nil
		},
		Plan: func(a commands.PlanArgs) (commands.Result, error) {
			if m.Planning {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "planner already running"}
			}
			m, follow = m.submitPlan(a.Goal)
			return commands.Result{Message: "planning: " + a.Goal}, nil
		},
		Hint: func() (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
			}
			m, follow = m.requestHint()
			return commands.Result{Message: "asking for a hint on " + task.Title}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			theme := a.Theme
			if theme == "" {
				theme = m.theme().Toggle()
			}
			m = m.setTheme(theme)
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: "theme: " + string(theme)}, nil
		},
		Delete: func() (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
			}
			m = m.deleteTask(task.ID)
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: fmt.Sprintf("deleted %q", task.Title)}, nil
		},
		Calendar: func() (commands.Result, error) {
			m = m.showCalendar()
			if m.Status.IsError {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, follow
}
