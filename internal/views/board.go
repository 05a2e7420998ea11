package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type CardData struct {
	ID       string
	Title    string
	Priority string
	Tags     []string
	Due      string
	Overdue  bool
	NearDue  bool
	Selected bool
}

type ColumnData struct {
	Title  string
	Total  int
	Cards  []CardData
	Active bool
}

type BoardData struct {
	Theme   string
	Columns []ColumnData
	Width   int
	Filter  string
}

const (
	defaultColumnWidth = 26
	minColumnWidth     = 18
)

func RenderBoard(data BoardData) string {
	st := stylesFor(data.Theme)
	p := paletteFor(data.Theme)
	width := defaultColumnWidth
	if data.Width > 0 && len(data.Columns) > 0 {
		width = data.Width/len(data.Columns) - 2
		if width < minColumnWidth {
			width = minColumnWidth
		}
	}

	cols := make([]string, 0, len(data.Columns))
	for _, col := range data.Columns {
		var b strings.Builder
		title := fmt.Sprintf("%s (%d)", col.Title, len(col.Cards))
		if len(col.Cards) != col.Total {
			title = fmt.Sprintf("%s (%d/%d)", col.Title, len(col.Cards), col.Total)
		}
		if col.Active {
			b.WriteString(st.selected.Render(title))
		} else {
			b.WriteString(st.header.Render(title))
		}
		b.WriteString("\n")
		if len(col.Cards) == 0 {
			b.WriteString(st.muted.Render("(empty)"))
		}
		for i, card := range col.Cards {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(renderCard(card, st, width-4))
		}
		border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1).Width(width)
		if col.Active {
			border = border.BorderForeground(p.accent)
		}
		cols = append(cols, border.Render(b.String()))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if data.Filter != "" {
		board = st.muted.Render("filter: "+data.Filter) + "\n" + board
	}
	return board
}

func renderCard(card CardData, st styles, width int) string {
	cursor := " "
	title := card.Title
	if width > 3 && lipgloss.Width(title) > width-2 {
		title = truncate(title, width-2)
	}
	line := fmt.Sprintf("%s %s", cursor, title)
	if card.Selected {
		line = st.selected.Render("> " + title)
	}
	meta := []string{priorityBadge(card.Priority)}
	if card.Due != "" {
		due := card.Due
		switch {
		case card.Overdue:
			due = st.errText.Render("! " + due)
		case card.NearDue:
			due = st.warnText.Render("~ " + due)
		}
		meta = append(meta, due)
	}
	out := line + "\n  " + strings.Join(meta, " ")
	if len(card.Tags) > 0 {
		out += "\n  " + st.muted.Render("#"+strings.Join(card.Tags, " #"))
	}
	return out
}

func priorityBadge(p string) string {
	switch p {
	case "Critical":
		return "[CRIT]"
	case "High":
		return "[HIGH]"
	case "Low":
		return "[LOW]"
	default:
		return "[MED]"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type DetailData struct {
	Theme       string
	ID          string
	Title       string
	Description string
	Priority    string
	Status      string
	Tags        []string
	Created     string
	Due         string
	Overdue     bool
	Hint        string
	HintLoading bool
	SpinnerView string
	CalendarURL string
}

func RenderDetail(data DetailData) string {
	st := stylesFor(data.Theme)
	if strings.TrimSpace(data.ID) == "" {
		return st.muted.Render("no task selected")
	}
	var b strings.Builder
	b.WriteString(st.header.Render(data.Title) + "\n")
	b.WriteString(fmt.Sprintf("status: %s | priority: %s\n", data.Status, data.Priority))
	if len(data.Tags) > 0 {
		b.WriteString("tags: " + strings.Join(data.Tags, ", ") + "\n")
	}
	b.WriteString("created: " + data.Created + "\n")
	if data.Due != "" {
		due := "due: " + data.Due
		if data.Overdue {
			due = st.errText.Render(due + " (overdue)")
		}
		b.WriteString(due + "\n")
	}
	if strings.TrimSpace(data.Description) != "" {
		b.WriteString("\n" + data.Description + "\n")
	}
	switch {
	case data.HintLoading:
		b.WriteString("\n" + data.SpinnerView + " asking for a hint...\n")
	case strings.HasPrefix(data.Hint, "⚠"):
		b.WriteString("\n" + st.warnText.Render(data.Hint) + "\n")
	case data.Hint != "":
		b.WriteString("\nhint:\n" + RenderMarkdown(data.Hint, data.Theme) + "\n")
	}
	if data.CalendarURL != "" {
		b.WriteString("\ncalendar:\n" + data.CalendarURL + "\n")
	}
	return strings.TrimSpace(b.String())
}
