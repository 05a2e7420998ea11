package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/thetask/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.monitor != nil {
		return waitForDeadlineCmd(m.monitor.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModeForm, ModeInline:
			return m.handleFormKey(typed)
		case ModeSearch:
			return m.handleSearchKey(typed)
		case ModePalette:
			return m.handlePaletteKey(typed)
		case ModePlanner:
			return m.handlePlannerKey(typed)
		case ModeConfirmDelete:
			return m.handleConfirmDeleteKey(typed)
		case ModeAlert:
			return m.handleAlertKey(typed)
		case ModeAnalytics:
			switch typed.String() {
			case "a", "esc":
				m.Mode = ModeBoard
				return m, nil
			case m.Keys.Quit:
				m.Quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch typed.String() {
		case m.Keys.Palette:
			m.Mode = ModePalette
			m.paletteInput.SetValue("")
			m.paletteInput.Focus()
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleBoardKey(typed)
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		m.Height = typed.Height
		m.helpModel.Width = typed.Width
		return m, nil
	case spinner.TickMsg:
		if m.Planning || len(m.HintLoading) > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		if typed.Text == "" || typed.Text == m.Status.Text {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case DeadlineMsg:
		m = m.applyDeadline(typed.Event)
		if m.monitor != nil {
			return m, waitForDeadlineCmd(m.monitor.C())
		}
		return m, nil
	case PlanResultMsg:
		return m.applyPlanResult(typed), nil
	case HintResultMsg:
		return m.applyHintResult(typed), nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	left := ""
	right := ""
	switch m.Mode {
	case ModeAnalytics:
		left = m.renderAnalytics()
	case ModeForm, ModeInline:
		left = m.renderBoard()
		right = m.renderForm()
	case ModePlanner:
		left = m.renderBoard()
		right = views.RenderPlanner(views.PlannerData{
			Theme:       string(m.theme()),
			InputView:   m.plannerInput.View(),
			Pending:     m.Planning,
			SpinnerView: m.spinner.View(),
			Enabled:     m.assistant != nil && m.assistant.Enabled(),
		})
	case ModeAlert:
		left = m.renderBoard()
		if m.Alert != nil {
			right = views.RenderAlert(views.AlertData{Theme: string(m.theme()), Title: m.Alert.Title, Body: m.Alert.Body})
		}
	default:
		left = m.renderBoard()
		right = m.renderDetail()
	}

	extras := make([]string, 0, 3)
	if m.Mode == ModeSearch {
		extras = append(extras, m.searchInput.View())
	}
	if p := views.RenderCommandPalette(m.Mode == ModePalette, m.paletteInput.View()); p != "" {
		extras = append(extras, p)
	}
	if m.HelpVisible {
		extras = append(extras, m.renderHelpView())
	}
	if len(extras) > 0 {
		right = strings.TrimSpace(right + "\n\n" + strings.Join(extras, "\n\n"))
	}

	tasks := 0
	if m.store != nil {
		tasks = len(m.store.Snapshot())
	}
	planning := ""
	if m.Planning {
		planning = " | " + m.spinner.View() + " planning"
	}
	return views.RenderApp(views.AppData{
		Theme:        string(m.theme()),
		Header:       fmt.Sprintf("thetask | tasks: %d | mode: %s%s", tasks, m.Mode, planning),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		Notification: m.renderNotifications(),
		Footer:       fmt.Sprintf("keys: h/l j/k move | H/L shift | n new | e edit | f search | p priority | a stats | g plan | i hint | %s cmd | %s help | %s quit", m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}
