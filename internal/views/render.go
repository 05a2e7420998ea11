package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Theme        string
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	Footer       string
	Notification string
}

type palette struct {
	accent lipgloss.Color
	text   lipgloss.Color
	muted  lipgloss.Color
	border lipgloss.Color
	ok     lipgloss.Color
	warn   lipgloss.Color
	err    lipgloss.Color
}

var (
	darkPalette = palette{
		accent: lipgloss.Color("12"),
		text:   lipgloss.Color("15"),
		muted:  lipgloss.Color("8"),
		border: lipgloss.Color("240"),
		ok:     lipgloss.Color("10"),
		warn:   lipgloss.Color("11"),
		err:    lipgloss.Color("9"),
	}
	lightPalette = palette{
		accent: lipgloss.Color("4"),
		text:   lipgloss.Color("0"),
		muted:  lipgloss.Color("244"),
		border: lipgloss.Color("250"),
		ok:     lipgloss.Color("2"),
		warn:   lipgloss.Color("3"),
		err:    lipgloss.Color("1"),
	}
)

func paletteFor(theme string) palette {
	if theme == "light" {
		return lightPalette
	}
	return darkPalette
}

type styles struct {
	header   lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
	warnText lipgloss.Style
	panel    lipgloss.Style
	footer   lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
}

func stylesFor(theme string) styles {
	p := paletteFor(theme)
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		status:   lipgloss.NewStyle().Foreground(p.ok),
		errText:  lipgloss.NewStyle().Foreground(p.err),
		warnText: lipgloss.NewStyle().Foreground(p.warn),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		footer:   lipgloss.NewStyle().Foreground(p.muted),
		muted:    lipgloss.NewStyle().Foreground(p.muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
	}
}

func RenderApp(data AppData) string {
	st := stylesFor(data.Theme)
	row := data.LeftPane
	if data.RightPane != "" {
		right := st.panel.Width(44).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, data.LeftPane, right)
	}

	status := st.status.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = st.errText.Render(data.StatusLine)
	}

	lines := []string{
		st.header.Render(data.Header),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, st.panel.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, st.footer.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders with the glamour style matching the board theme and falls back to
// the raw text when rendering fails.
func RenderMarkdown(md, theme string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	style := "dark"
	if theme == "light" {
		style = "light"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
