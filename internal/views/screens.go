package views

import (
	"fmt"
	"strings"
)

type BarRow struct {
	Label string
	Count int
}

type DayRow struct {
	Label     string
	Created   int
	Completed int
}

type AnalyticsData struct {
	Theme              string
	Total              int
	Done               int
	CompletionRate     int
	CompletionView     string
	Status             []BarRow
	PriorityLoad       []BarRow
	PriorityCompletion []BarRow
	Week               []DayRow
}

const barWidth = 24

func RenderAnalytics(data AnalyticsData) string {
	st := stylesFor(data.Theme)
	var b strings.Builder
	b.WriteString(st.header.Render("analytics") + "\n")
	b.WriteString(fmt.Sprintf("tasks: %d | done: %d | completion: %d%%\n", data.Total, data.Done, data.CompletionRate))
	if data.CompletionView != "" {
		b.WriteString(data.CompletionView + "\n")
	}

	b.WriteString("\n" + st.header.Render("status distribution") + "\n")
	if len(data.Status) == 0 {
		b.WriteString(st.muted.Render("(no tasks)") + "\n")
	}
	writeBars(&b, data.Status)

	b.WriteString("\n" + st.header.Render("open load by priority") + "\n")
	writeBars(&b, data.PriorityLoad)

	b.WriteString("\n" + st.header.Render("completed by priority") + "\n")
	writeBars(&b, data.PriorityCompletion)

	b.WriteString("\n" + st.header.Render("last 7 days (created / completed)") + "\n")
	peak := 0
	for _, d := range data.Week {
		peak = max(peak, d.Created, d.Completed)
	}
	for _, d := range data.Week {
		b.WriteString(fmt.Sprintf("%-6s %s %d\n", d.Label, bar(d.Created, peak, barWidth/2), d.Created))
		b.WriteString(fmt.Sprintf("%-6s %s %d\n", "", st.status.Render(bar(d.Completed, peak, barWidth/2)), d.Completed))
	}
	b.WriteString("\n" + st.muted.Render("[a/esc] back to board"))
	return b.String()
}

func writeBars(b *strings.Builder, rows []BarRow) {
	peak := 0
	for _, r := range rows {
		peak = max(peak, r.Count)
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-12s %s %d\n", r.Label, bar(r.Count, peak, barWidth), r.Count))
	}
}

func bar(n, peak, width int) string {
	if peak <= 0 || n <= 0 {
		return strings.Repeat("·", width)
	}
	filled := n * width / peak
	if filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("·", width-filled)
}

type FieldData struct {
	Label   string
	View    string
	Focused bool
}

type FormData struct {
	Theme    string
	Heading  string
	Fields   []FieldData
	Priority string
	Status   string
	Hint     string
	Error    string
}

func RenderForm(data FormData) string {
	st := stylesFor(data.Theme)
	var b strings.Builder
	b.WriteString(st.header.Render(data.Heading) + "\n\n")
	for _, f := range data.Fields {
		label := fmt.Sprintf("%-12s", f.Label)
		if f.Focused {
			label = st.selected.Render(label)
		}
		b.WriteString(label + " " + f.View + "\n")
	}
	if data.Priority != "" {
		b.WriteString(fmt.Sprintf("%-12s %s\n", "priority", data.Priority))
	}
	if data.Status != "" {
		b.WriteString(fmt.Sprintf("%-12s %s\n", "status", data.Status))
	}
	if data.Error != "" {
		b.WriteString(st.errText.Render("error: "+data.Error) + "\n")
	}
	if data.Hint != "" {
		b.WriteString("\n" + st.muted.Render(data.Hint))
	}
	return strings.TrimRight(b.String(), "\n")
}

type PlannerData struct {
	Theme       string
	InputView   string
	Pending     bool
	SpinnerView string
	Enabled     bool
}

func RenderPlanner(data PlannerData) string {
	st := stylesFor(data.Theme)
	var b strings.Builder
	b.WriteString(st.header.Render("AI planner") + "\n")
	b.WriteString("describe a goal and it is broken down into tasks\n\n")
	b.WriteString(data.InputView + "\n")
	if data.Pending {
		b.WriteString("\n" + data.SpinnerView + " planning...\n")
	}
	if !data.Enabled {
		b.WriteString("\n" + st.warnText.Render("no API key configured") + "\n")
	}
	b.WriteString("\n" + st.muted.Render("[enter] plan  [esc] close"))
	return b.String()
}

type AlertData struct {
	Theme string
	Title string
	Body  string
}

func RenderAlert(data AlertData) string {
	st := stylesFor(data.Theme)
	body := st.errText.Render(data.Title) + "\n\n" + data.Body + "\n\n" + st.muted.Render("[enter/esc] dismiss")
	return st.panel.Render(body)
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

type NotificationData struct {
	Level string
	At    string
	Title string
	Body  string
}

func RenderNotifications(items []NotificationData, limit int) string {
	if len(items) == 0 {
		return ""
	}
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	lines := make([]string, 0, len(items))
	for _, n := range items {
		lines = append(lines, fmt.Sprintf("[%s] %s %s: %s", strings.ToUpper(n.Level), n.At, n.Title, n.Body))
	}
	return strings.Join(lines, "\n")
}
