package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/notify"
	"github.com/sandeepkv93/thetask/internal/scheduler"
	"github.com/sandeepkv93/thetask/internal/store"
	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeBoard         Mode = "board"
	ModeForm          Mode = "form"
	ModeInline        Mode = "inline"
	ModeSearch        Mode = "search"
	ModePalette       Mode = "palette"
	ModePlanner       Mode = "planner"
	ModeAnalytics     Mode = "analytics"
	ModeConfirmDelete Mode = "confirm_delete"
	ModeAlert         Mode = "alert"
)

const columnCount = 4

// Assistant is the slice of the AI client the board uses.
type Assistant interface {
	Enabled() bool
	DecomposeGoal(ctx context.Context, goal string) ([]model.TaskDraft, error)
	SuggestHint(ctx context.Context, title, description string) (string, error)
}

type Deps struct {
	Store     *store.Store
	Monitor   *scheduler.Monitor
	Assistant Assistant
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

type StatusBar struct {
	Text    string
	IsError bool
}

type Alert struct {
	Title string
	Body  string
}

type GlobalKeyMap struct {
	Palette string
	Help    string
	Quit    string
}

type Model struct {
	Mode           Mode
	Column         int
	Rows           [columnCount]int
	Query          string
	PriorityFilter model.PriorityFilter
	Status         StatusBar
	Notifications  []notify.Notification
	Alert          *Alert
	HelpVisible    bool
	Planning       bool
	Hints          map[string]string
	HintLoading    map[string]bool
	CalendarTaskID string
	CalendarURL    string
	PendingDelete  string
	Keys           GlobalKeyMap
	Width          int
	Height         int
	Quitting       bool
	LastError      error

	store     *store.Store
	monitor   *scheduler.Monitor
	assistant Assistant
	log       logrus.FieldLogger
	now       func() time.Time
	cfg       RuntimeConfig

	form         formState
	searchInput  textinput.Model
	paletteInput textinput.Model
	plannerInput textinput.Model
	spinner      spinner.Model
	progress     progress.Model
	helpModel    help.Model
	detail       viewport.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg clears the status bar. A non-empty Text only clears that exact message.
type ClearStatusMsg struct {
	Text string
}

type AppErrorMsg struct {
	Err error
}

type DeadlineMsg struct {
	Event scheduler.DeadlineEvent
}

type PlanResultMsg struct {
	Goal   string
	Drafts []model.TaskDraft
	Err    error
}

type HintResultMsg struct {
	TaskID string
	Hint   string
	Err    error
}

func NewModel(deps Deps, cfg RuntimeConfig) Model {
	cfg = cfg.withDefaults()
	m := Model{
		Mode:           ModeBoard,
		PriorityFilter: model.PriorityFilterAll,
		Hints:          make(map[string]string),
		HintLoading:    make(map[string]bool),
		Keys: GlobalKeyMap{
			Palette: "/",
			Help:    "?",
			Quit:    "q",
		},
		store:     deps.Store,
		monitor:   deps.Monitor,
		assistant: deps.Assistant,
		log:       deps.Logger,
		now:       deps.Now,
		cfg:       cfg,
	}
	if m.log == nil {
		m.log = logrus.New()
	}
	m.log = m.log.WithField("component", "tui")
	if m.now == nil {
		m.now = time.Now
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.Placeholder = "title or description"
	m.searchInput.CharLimit = 256
	m.searchInput.Width = 40

	m.paletteInput = textinput.New()
	m.paletteInput.Prompt = "/"
	m.paletteInput.CharLimit = 256
	m.paletteInput.Width = 48

	m.plannerInput = textinput.New()
	m.plannerInput.Prompt = "goal> "
	m.plannerInput.Placeholder = "e.g. launch the beta next month"
	m.plannerInput.CharLimit = 500
	m.plannerInput.Width = 60

	m.progress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detail = viewport.New(44, 20)
}
