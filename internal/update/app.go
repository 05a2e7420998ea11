package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/thetask/internal/ai"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/scheduler"
	"github.com/sandeepkv93/thetask/internal/views"
)

const opTimeout = 5 * time.Second

func (m Model) handleBoardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		if m.Column > 0 {
			m.Column--
		}
	case "l", "right":
		if m.Column < columnCount-1 {
			m.Column++
		}
	case "j", "down":
		if n := len(m.columnTasks(m.Column)); m.Rows[m.Column] < n-1 {
			m.Rows[m.Column]++
		}
	case "k", "up":
		if m.Rows[m.Column] > 0 {
			m.Rows[m.Column]--
		}
	case "H", "<":
		return m.moveSelected(-1), nil
	case "L", ">":
		return m.moveSelected(1), nil
	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		return m.setSelectedStatus(model.Statuses()[idx]), nil
	case "n":
		return m.openForm(nil, false), nil
	case "e", "E":
		task, ok := m.selectedTask()
		if !ok {
			m.Status = StatusBar{Text: "no task selected", IsError: true}
			return m, nil
		}
		return m.openForm(&task, msg.String() == "E"), nil
	case "f":
		m.Mode = ModeSearch
		m.searchInput.SetValue(m.Query)
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
	case "p":
		m.PriorityFilter = m.PriorityFilter.Next()
		m.Status = StatusBar{Text: "priority filter: " + string(m.PriorityFilter)}
	case "esc":
		if m.Query != "" || (m.PriorityFilter != "" && m.PriorityFilter != model.PriorityFilterAll) {
			m.Query = ""
			m.PriorityFilter = model.PriorityFilterAll
			m.Status = StatusBar{Text: "filters cleared"}
		}
	case "a":
		m.Mode = ModeAnalytics
	case "g":
		m.Mode = ModePlanner
		m.plannerInput.Focus()
	case "i":
		return m.requestHint()
	case "c":
		return m.showCalendar(), nil
	case "t":
		return m.toggleTheme(), nil
	case "d":
		task, ok := m.selectedTask()
		if !ok {
			m.Status = StatusBar{Text: "no task selected", IsError: true}
			return m, nil
		}
		m.PendingDelete = task.ID
		m.Mode = ModeConfirmDelete
		m.Status = StatusBar{Text: fmt.Sprintf("delete %q? [y/n]", task.Title)}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.Mode = ModeBoard
		m.searchInput.Blur()
		return m.clampRows(), nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.Query = m.searchInput.Value()
	return m.clampRows(), cmd
}

func (m Model) handleConfirmDeleteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	id := m.PendingDelete
	m.PendingDelete = ""
	m.Mode = ModeBoard
	switch msg.String() {
	case "y", "Y":
		return m.deleteTask(id), nil
	default:
		m.Status = StatusBar{Text: "delete cancelled"}
		return m, nil
	}
}

func (m Model) handleAlertKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ", "q":
		m.Alert = nil
		m.Mode = ModeBoard
	}
	return m, nil
}

func (m Model) handlePlannerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.plannerInput.Blur()
		m.Mode = ModeBoard
		return m, nil
	case "enter":
		return m.submitPlan(m.plannerInput.Value())
	}
	var cmd tea.Cmd
	m.plannerInput, cmd = m.plannerInput.Update(msg)
	return m, cmd
}

// columnTasks returns the filtered tasks of one column in collection order.
func (m Model) columnTasks(col int) []model.Task {
	if m.store == nil || col < 0 || col >= columnCount {
		return nil
	}
	cols := model.Columns(m.visibleTasks())
	return cols[model.Statuses()[col]]
}

func (m Model) visibleTasks() []model.Task {
	if m.store == nil {
		return nil
	}
	return model.Filter(m.store.Snapshot(), m.Query, m.PriorityFilter)
}

func (m Model) selectedTask() (model.Task, bool) {
	tasks := m.columnTasks(m.Column)
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	row := min(max(m.Rows[m.Column], 0), len(tasks)-1)
	return tasks[row], true
}

func (m Model) clampRows() Model {
	cols := model.Columns(m.visibleTasks())
	for i, s := range model.Statuses() {
		n := len(cols[s])
		if m.Rows[i] >= n {
			m.Rows[i] = max(n-1, 0)
		}
	}
	return m
}

// selectTask points the cursor at id when it is visible.
func (m Model) selectTask(id string) Model {
	loc, ok := model.Locate(m.visibleTasks(), id)
	if !ok {
		return m.clampRows()
	}
	for i, s := range model.Statuses() {
		if s == loc.Column {
			m.Column = i
			m.Rows[i] = loc.Index
		}
	}
	return m
}

func (m Model) moveSelected(delta int) Model {
	task, ok := m.selectedTask()
	if !ok {
		return m
	}
	target := m.Column + delta
	if target < 0 || target >= columnCount {
		return m
	}
	src, _ := model.Locate(m.visibleTasks(), task.ID)
	ctx, cancel := m.opContext()
	defer cancel()
	changed, err := m.store.ApplyDrag(ctx, model.DragResult{
		TaskID:      task.ID,
		Source:      src,
		Destination: &model.BoardLocation{Column: model.Statuses()[target], Index: 0},
	})
	if err != nil {
		return m.fail(err)
	}
	if changed {
		m.Status = StatusBar{Text: fmt.Sprintf("moved %q to %s", task.Title, model.Statuses()[target].Label())}
		m.triggerMonitor()
	}
	return m.selectTask(task.ID)
}

func (m Model) setSelectedStatus(status model.Status) Model {
	task, ok := m.selectedTask()
	if !ok {
		return m
	}
	ctx, cancel := m.opContext()
	defer cancel()
	if err := m.store.SetStatus(ctx, task.ID, status); err != nil {
		return m.fail(err)
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%q is now %s", task.Title, status.Label())}
	m.triggerMonitor()
	return m.selectTask(task.ID)
}

func (m Model) deleteTask(id string) Model {
	if id == "" {
		return m
	}
	ctx, cancel := m.opContext()
	defer cancel()
	if err := m.store.Delete(ctx, id); err != nil {
		return m.fail(err)
	}
	delete(m.Hints, id)
	if m.CalendarTaskID == id {
		m.CalendarTaskID, m.CalendarURL = "", ""
	}
	if m.monitor != nil {
		m.monitor.Forget(m.store.Snapshot())
	}
	m.Status = StatusBar{Text: "task deleted"}
	return m.clampRows()
}

func (m Model) showCalendar() Model {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m
	}
	url, ok := model.CalendarURL(task)
	if !ok {
		m.Status = StatusBar{Text: "calendar export needs a due date", IsError: true}
		return m
	}
	m.CalendarTaskID = task.ID
	m.CalendarURL = url
	m.Status = StatusBar{Text: "calendar link ready"}
	return m
}

func (m Model) toggleTheme() Model {
	return m.setTheme(m.theme().Toggle())
}

func (m Model) setTheme(theme model.Theme) Model {
	ctx, cancel := m.opContext()
	defer cancel()
	if err := m.store.SetTheme(ctx, theme); err != nil {
		return m.fail(err)
	}
	m.Status = StatusBar{Text: "theme: " + string(theme)}
	return m
}

func (m Model) submitPlan(goal string) (Model, tea.Cmd) {
	goal = strings.TrimSpace(goal)
	if m.Planning || goal == "" {
		return m, nil
	}
	m.Planning = true
	m.Status = StatusBar{Text: "planning..."}
	return m, tea.Batch(m.spinner.Tick, planCmd(m.assistant, goal, m.cfg.AITimeout))
}

func (m Model) applyPlanResult(msg PlanResultMsg) Model {
	m.Planning = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.plannerInput.Blur()
		m.Mode = ModeAlert
		var credErr *ai.CredentialError
		if errors.As(msg.Err, &credErr) {
			m.Alert = &Alert{Title: "Configuration required", Body: credErr.Remediation}
			m.Status = StatusBar{Text: "AI planner needs an API key", IsError: true}
			return m
		}
		m.log.WithError(msg.Err).Warn("planner failed")
		m.Alert = &Alert{Title: "AI service unavailable", Body: "Connection failure with the AI service. Try again in a moment."}
		m.Status = StatusBar{Text: "planner failed", IsError: true}
		return m
	}
	tasks := model.FromDrafts(msg.Drafts, m.now())
	if len(tasks) == 0 {
		m.Status = StatusBar{Text: "planner returned no tasks"}
		return m
	}
	ctx, cancel := m.opContext()
	defer cancel()
	if err := m.store.AddBatch(ctx, tasks); err != nil {
		return m.fail(err)
	}
	m.plannerInput.SetValue("")
	m.plannerInput.Blur()
	m.Mode = ModeBoard
	m.Status = StatusBar{Text: fmt.Sprintf("planner added %d tasks", len(tasks))}
	m.triggerMonitor()
	return m.selectTask(tasks[0].ID)
}

func (m Model) requestHint() (Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m, nil
	}
	if m.HintLoading[task.ID] {
		return m, nil
	}
	m.HintLoading[task.ID] = true
	return m, tea.Batch(m.spinner.Tick, hintCmd(m.assistant, task, m.cfg.AITimeout))
}

func (m Model) applyHintResult(msg HintResultMsg) Model {
	delete(m.HintLoading, msg.TaskID)
	var credErr *ai.CredentialError
	switch {
	case errors.As(msg.Err, &credErr):
		m.Hints[msg.TaskID] = "⚠ CONFIGURATION REQUIRED: " + credErr.Remediation
	case msg.Err != nil:
		m.log.WithError(msg.Err).WithField("task_id", msg.TaskID).Warn("hint failed")
		m.Hints[msg.TaskID] = ai.FallbackHint
	default:
		m.Hints[msg.TaskID] = msg.Hint
	}
	return m
}

func (m Model) applyDeadline(ev scheduler.DeadlineEvent) Model {
	n := ev.Notification()
	m.Notifications = append(m.Notifications, n)
	if limit := m.cfg.NotificationLogSize; len(m.Notifications) > limit {
		m.Notifications = m.Notifications[len(m.Notifications)-limit:]
	}
	m.Status = StatusBar{Text: n.Title + " " + n.Body, IsError: ev.Kind == scheduler.KindOverdue}
	return m
}

func planCmd(a Assistant, goal string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if a == nil {
			return PlanResultMsg{Goal: goal, Err: &ai.CredentialError{Remediation: ai.DefaultRemediation}}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		drafts, err := a.DecomposeGoal(ctx, goal)
		return PlanResultMsg{Goal: goal, Drafts: drafts, Err: err}
	}
}

func hintCmd(a Assistant, task model.Task, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if a == nil {
			return HintResultMsg{TaskID: task.ID, Err: &ai.CredentialError{Remediation: ai.DefaultRemediation}}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		hint, err := a.SuggestHint(ctx, task.Title, task.Description)
		return HintResultMsg{TaskID: task.ID, Hint: hint, Err: err}
	}
}

func waitForDeadlineCmd(ch <-chan scheduler.DeadlineEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DeadlineMsg{Event: ev}
	}
}

func clearStatusAfter(d time.Duration, text string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return ClearStatusMsg{Text: text} })
}

func (m Model) fail(err error) Model {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.log.WithError(err).Error("board operation failed")
	return m
}

func (m Model) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (m Model) triggerMonitor() {
	if m.monitor != nil {
		_ = m.monitor.Trigger()
	}
}

func (m Model) theme() model.Theme {
	if m.store == nil {
		return model.ThemeDark
	}
	return m.store.Theme()
}

func (m Model) renderBoard() string {
	total := map[model.Status]int{}
	if m.store != nil {
		for _, t := range m.store.Snapshot() {
			total[t.Status]++
		}
	}
	cols := model.Columns(m.visibleTasks())
	now := m.now()
	data := views.BoardData{Theme: string(m.theme()), Width: m.boardWidth()}
	if m.Query != "" || (m.PriorityFilter != "" && m.PriorityFilter != model.PriorityFilterAll) {
		data.Filter = fmt.Sprintf("%q priority=%s", m.Query, m.PriorityFilter)
	}
	for i, s := range model.Statuses() {
		col := views.ColumnData{Title: s.Label(), Total: total[s], Active: i == m.Column}
		for row, t := range cols[s] {
			col.Cards = append(col.Cards, views.CardData{
				ID:       t.ID,
				Title:    t.Title,
				Priority: string(t.Priority),
				Tags:     t.Tags,
				Due:      model.FormatDue(t),
				Overdue:  t.IsOverdue(now),
				NearDue:  t.IsNearDue(now),
				Selected: i == m.Column && row == min(m.Rows[i], len(cols[s])-1),
			})
		}
		data.Columns = append(data.Columns, col)
	}
	return views.RenderBoard(data)
}

func (m Model) boardWidth() int {
	if m.Width <= 0 {
		return 0
	}
	return max(m.Width-48, 0)
}

func (m Model) renderDetail() string {
	task, ok := m.selectedTask()
	data := views.DetailData{Theme: string(m.theme())}
	if ok {
		data.ID = task.ID
		data.Title = task.Title
		data.Description = task.Description
		data.Priority = string(task.Priority)
		data.Status = task.Status.Label()
		data.Tags = task.Tags
		data.Created = task.Created().Local().Format("2006-01-02 15:04")
		data.Due = model.FormatDue(task)
		data.Overdue = task.IsOverdue(m.now())
		data.Hint = m.Hints[task.ID]
		data.HintLoading = m.HintLoading[task.ID]
		data.SpinnerView = m.spinner.View()
		if m.CalendarTaskID == task.ID {
			data.CalendarURL = m.CalendarURL
		}
	}
	vp := m.detail
	if m.Height > 10 {
		vp.Height = m.Height - 10
	}
	vp.SetContent(views.RenderDetail(data))
	return vp.View()
}

func (m Model) renderAnalytics() string {
	var tasks []model.Task
	if m.store != nil {
		tasks = m.store.Snapshot()
	}
	sum := model.Summarize(tasks, m.now(), time.Local)
	data := views.AnalyticsData{
		Theme:          string(m.theme()),
		Total:          sum.Total,
		Done:           sum.Done,
		CompletionRate: sum.CompletionRate,
		CompletionView: m.progress.ViewAs(float64(sum.CompletionRate) / 100),
	}
	for _, c := range sum.Status.NonZero() {
		data.Status = append(data.Status, views.BarRow{Label: c.Status.Label(), Count: c.Count})
	}
	for _, c := range sum.PriorityLoad {
		data.PriorityLoad = append(data.PriorityLoad, views.BarRow{Label: string(c.Priority), Count: c.Count})
	}
	for _, c := range sum.PriorityCompletion {
		data.PriorityCompletion = append(data.PriorityCompletion, views.BarRow{Label: string(c.Priority), Count: c.Count})
	}
	for _, d := range sum.Week {
		data.Week = append(data.Week, views.DayRow{Label: d.Day.Format("Mon 2"), Created: d.Created, Completed: d.Completed})
	}
	return views.RenderAnalytics(data)
}

func (m Model) renderNotifications() string {
	items := make([]views.NotificationData, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		items = append(items, views.NotificationData{
			Level: string(n.Level),
			At:    n.At.Local().Format("15:04"),
			Title: n.Title,
			Body:  n.Body,
		})
	}
	return views.RenderNotifications(items, 3)
}
