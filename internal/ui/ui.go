// Package ui renders the daily nutrition log as a Bubble Tea TUI: summary
// header, meal sections, sync indicator, and key-driven mutations.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nosh-app/nosh/internal/engine"
	"github.com/nosh-app/nosh/internal/nutrition"
)

const uiTick = 500 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context context.Context
	Engine  *engine.Engine
	Store   ViewSource
	Date    string
	Theme   string
	Notices <-chan engine.Notice
	Offline func() bool
	// Load fetches a date into the store; called when the user navigates.
	Load func(date string) error
	// DateChanged reports navigation so the host can persist the spot.
	DateChanged func(date string)
}

// ViewSource is the slice of the cache the UI reads.
type ViewSource interface {
	Get(date string) nutrition.View
}

// inputMode says what the text input at the bottom is editing.
type inputMode int

const (
	inputNone inputMode = iota
	inputGoal
	inputFood
)

// itemRef addresses one item by position in the rendered list.
type itemRef struct {
	section int
	item    int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx  context.Context
	opts Options

	theme Theme
	keys  keyMap
	help  help.Model
	spin  spinner.Model
	input textinput.Model

	date     string
	view     nutrition.View
	items    []itemRef
	selected int

	syncing bool
	offline bool
	notice  string
	mode    inputMode

	width  int
	height int
	ready  bool
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	theme := ThemeByName(opts.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.Styles().Accent

	in := textinput.New()
	in.CharLimit = 80

	m := Model{
		ctx:   ctx,
		opts:  opts,
		theme: theme,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		spin:  sp,
		input: in,
		date:  opts.Date,
	}
	m.refresh()
	return m
}

// Run boots the UI until quit or context cancellation.
func Run(opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen())

	if opts.Context != nil {
		go func() {
			<-opts.Context.Done()
			program.Quit()
		}()
	}

	_, err := program.Run()
	return err
}

type tickMsg time.Time

type noticeMsg engine.Notice

type mutationDoneMsg struct {
	err  error
	info string
}

func tick() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForNotice() tea.Cmd {
	if m.opts.Notices == nil {
		return nil
	}
	notices := m.opts.Notices
	return func() tea.Msg {
		n, ok := <-notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spin.Tick, m.waitForNotice())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case noticeMsg:
		m.notice = msg.Message
		return m, m.waitForNotice()

	case mutationDoneMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else if msg.info != "" {
			m.notice = msg.info
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh re-reads the cached view and the sync/offline indicators.
func (m *Model) refresh() {
	if m.opts.Store != nil {
		m.view = m.opts.Store.Get(m.date)
	}
	if m.opts.Engine != nil {
		m.syncing = m.opts.Engine.PulseState() == engine.SyncSyncing
	}
	if m.opts.Offline != nil {
		m.offline = m.opts.Offline()
	}
	m.items = m.items[:0]
	for si, sec := range m.view.Sections {
		for ii := range sec.Items {
			m.items = append(m.items, itemRef{section: si, item: ii})
		}
	}
	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) selectedItem() (nutrition.LogItem, bool) {
	if len(m.items) == 0 || m.selected >= len(m.items) {
		return nutrition.LogItem{}, false
	}
	ref := m.items[m.selected]
	return m.view.Sections[ref.section].Items[ref.item], true
}

func (m Model) mutate(run func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		info, err := run()
		return mutationDoneMsg{err: err, info: info}
	}
}

func (m *Model) setDate(date string) tea.Cmd {
	m.date = date
	m.selected = 0
	m.notice = ""
	m.refresh()
	if m.opts.DateChanged != nil {
		m.opts.DateChanged(date)
	}
	load := m.opts.Load
	if load == nil {
		return nil
	}
	return func() tea.Msg {
		if err := load(date); err != nil {
			return mutationDoneMsg{err: fmt.Errorf("load %s: %w", date, err)}
		}
		return mutationDoneMsg{}
	}
}

func shiftDate(date string, days int) string {
	t, err := time.Parse(nutrition.DateLayout, date)
	if err != nil {
		return nutrition.Today()
	}
	return t.AddDate(0, 0, days).Format(nutrition.DateLayout)
}
