// Package pager shows a rendered report in a scrollable terminal UI that
// reloads when the inspected config files change.
package pager

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/termconf/internal/util"
	"github.com/Dicklesworthstone/termconf/internal/watcher"
)

// Title is shown above the report.
const Title = "Full terminal config"

// Page is one rendering of the report.
type Page struct {
	Content string
	// Watch lists the files the report was built from.
	Watch []string
}

// Source renders the report from scratch.
type Source func() (Page, error)

// KeyMap defines pager keybindings. Scrolling uses the viewport's own keys.
type KeyMap struct {
	Quit   key.Binding
	Reload key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	}
}

// Options configure the pager.
type Options struct {
	// Watch enables reloading on file changes.
	Watch    bool
	Debounce time.Duration
	Logger   *slog.Logger
}

type pageMsg struct {
	page Page
	err  error
	at   time.Time
}

type fileChangedMsg struct{}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	footerStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Model is the pager's bubbletea model.
type Model struct {
	source   Source
	opts     Options
	keys     KeyMap
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	content  string
	watching []string
	watcher  *watcher.Watcher
	loadedAt time.Time
	reloads  int
	err      error
}

// New creates a pager model for source.
func New(source Source, opts Options) Model {
	return Model{
		source: source,
		opts:   opts,
		keys:   DefaultKeyMap(),
	}
}

func (m Model) logger() *slog.Logger {
	if m.opts.Logger != nil {
		return m.opts.Logger
	}
	return slog.Default()
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return loadCmd(m.source)
}

func loadCmd(source Source) tea.Cmd {
	return func() tea.Msg {
		page, err := source()
		return pageMsg{page: page, err: err, at: time.Now()}
	}
}

// watchCmd waits for the next debounced change or for the watcher to stop.
func watchCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changed():
			return fileChangedMsg{}
		case <-w.Done():
			return nil
		}
	}
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stopWatching()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			return m, loadCmd(m.source)
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case pageMsg:
		if msg.err != nil {
			m.err = msg.err
			m.logger().Warn("reloading report failed", "error", msg.err)
			return m, nil
		}
		m.err = nil
		if !m.loadedAt.IsZero() {
			m.reloads++
		}
		m.loadedAt = msg.at
		m.content = msg.page.Content
		if m.ready {
			offset := m.viewport.YOffset
			m.viewport.SetContent(m.content)
			m.viewport.SetYOffset(offset)
		}
		return m, m.rewatch(msg.page.Watch)

	case fileChangedMsg:
		cmds := []tea.Cmd{loadCmd(m.source)}
		if m.watcher != nil {
			cmds = append(cmds, watchCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) setSize(w, h int) {
	m.width = w
	m.height = h
	contentHeight := h - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(w, contentHeight)
		m.viewport.YPosition = 1
		m.viewport.SetContent(m.content)
		m.ready = true
		return
	}
	m.viewport.Width = w
	m.viewport.Height = contentHeight
}

// rewatch replaces the watcher when the set of files changed.
func (m *Model) rewatch(paths []string) tea.Cmd {
	if !m.opts.Watch || len(paths) == 0 {
		return nil
	}
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if m.watcher != nil && slices.Equal(sorted, m.watching) {
		return nil
	}

	m.stopWatching()
	w, err := watcher.NewWatcher(sorted,
		watcher.WithDebounceDuration(m.opts.Debounce),
		watcher.WithLogger(m.logger()),
	)
	if err == nil {
		err = w.Start()
	}
	if err != nil {
		m.logger().Warn("not watching config files", "error", err)
		return nil
	}
	m.watcher = w
	m.watching = sorted
	return watchCmd(w)
}

func (m *Model) stopWatching() {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
		m.watching = nil
	}
}

// View renders the pager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(util.Truncate(Title, m.width))
	return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), m.footer())
}

func (m Model) footer() string {
	parts := []string{
		fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100),
	}
	for _, b := range []key.Binding{m.keys.Reload, m.keys.Top, m.keys.Bottom, m.keys.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	if m.watcher != nil {
		parts = append(parts, fmt.Sprintf("watching %d file(s)", len(m.watching)))
	}
	if m.reloads > 0 {
		parts = append(parts, fmt.Sprintf("reloaded %s", m.loadedAt.Format("15:04:05")))
	}
	line := util.Truncate(strings.Join(parts, "  "), m.width)
	if m.err != nil {
		msg := util.Truncate("reload failed: "+m.err.Error(), m.width)
		return errorStyle.Render(msg)
	}
	return footerStyle.Render(line)
}

// Run shows the pager until the user quits or ctx is cancelled.
func Run(ctx context.Context, source Source, opts Options) error {
	m := New(source, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(Model); ok {
		fm.stopWatching()
	}
	if err != nil {
		return fmt.Errorf("running pager: %w", err)
	}
	return nil
}
