package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/thetask/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	global := toBindings(m.globalBindings())
	contextual := toBindings(m.modeBindings())
	var plain []string
	for _, kb := range m.modeBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.Mode),
		Bindings:    plain,
		HelpView: m.helpModel.FullHelpView(helpKeyMap{
			short: global,
			full:  [][]key.Binding{global, contextual},
		}.FullHelp()),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Palette, Action: "command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) modeBindings() []KeyBinding {
	switch m.Mode {
	case ModeForm, ModeInline:
		return []KeyBinding{
			{Key: "tab", Action: "next field"},
			{Key: "ctrl+p", Action: "cycle priority"},
			{Key: "ctrl+s", Action: "cycle status"},
			{Key: "enter", Action: "save"},
			{Key: "esc", Action: "cancel"},
		}
	case ModePlanner:
		return []KeyBinding{
			{Key: "enter", Action: "break goal into tasks"},
			{Key: "esc", Action: "close planner"},
		}
	case ModeAnalytics:
		return []KeyBinding{{Key: "a/esc", Action: "back to board"}}
	default:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next column"},
			{Key: "j/k", Action: "move selection"},
			{Key: "H/L", Action: "move task to previous/next column"},
			{Key: "1-4", Action: "set status"},
			{Key: "n", Action: "new task"},
			{Key: "e/E", Action: "edit / quick edit"},
			{Key: "f", Action: "search"},
			{Key: "p", Action: "cycle priority filter"},
			{Key: "a", Action: "analytics"},
			{Key: "g", Action: "AI planner"},
			{Key: "i", Action: "AI hint"},
			{Key: "c", Action: "calendar link"},
			{Key: "t", Action: "toggle theme"},
			{Key: "d", Action: "delete task"},
		}
	}
}

func toBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
