// Package tui provides a Bubble Tea terminal user interface for flac2mp3.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/flac2mp3/internal/config"
	"github.com/handiism/flac2mp3/internal/model"
	"github.com/handiism/flac2mp3/internal/preflight"
	"github.com/handiism/flac2mp3/internal/resolver"
	"github.com/handiism/flac2mp3/internal/transcode"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateResolving
	StateTranscoding
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   transcode.ProgressLevel
}

// eventBuffer collects progress events from dispatcher workers until the
// next tick drains them.
type eventBuffer struct {
	mu     sync.Mutex
	events []transcode.ProgressEvent
}

func (b *eventBuffer) push(event transcode.ProgressEvent) {
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []transcode.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	events    *eventBuffer
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	plan       *model.Plan
	dispatcher *transcode.Dispatcher
	lock       *transcode.RunLock
	report     *model.Report

	done   int
	failed int
	total  int

	// Options
	playlist bool
	artwork  bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. initialPath pre-fills the input.
func NewModel(settings *config.Settings, initialPath string) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "/path/to/music"
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60
	ti.SetValue(initialPath)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		events:    &eventBuffer{},
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.Playlist.Create,
		artwork:   settings.Artwork.Embed,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ResolvedMsg is sent when the input path has been resolved.
	ResolvedMsg struct {
		Plan       *model.Plan
		Dispatcher *transcode.Dispatcher
		Lock       *transcode.RunLock
		Err        error
	}

	// DoneMsg is sent when every job has finished.
	DoneMsg struct {
		Report *model.Report
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

var errCancelled = errors.New("cancelled by user")

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateTranscoding || m.state == StateResolving {
				m.cancel()
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateResolving
				return m, tea.Batch(m.resolve(), m.spinner.Tick)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "ctrl+t":
			if m.state == StateInput {
				m.artwork = !m.artwork
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ResolvedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		if m.ctx.Err() != nil {
			m.releaseLock(msg.Lock)
			m.state = StateError
			m.err = errCancelled
			break
		}
		m.plan = msg.Plan
		m.dispatcher = msg.Dispatcher
		m.lock = msg.Lock
		m.total = msg.Plan.Len()
		m.state = StateTranscoding
		cmds = append(cmds, m.transcode(), m.tickProgress())

	case DoneMsg:
		m.report = msg.Report
		m.done = msg.Report.Total()
		m.total = msg.Report.Total()
		m.failed = len(msg.Report.Failed())
		m.appendEvents(m.events.drain())
		m.releaseLock(m.lock)
		m.lock = nil
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = errCancelled
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.dispatcher != nil && m.state == StateTranscoding {
			m.done, m.failed, m.total = m.dispatcher.Progress()
			m.appendEvents(m.events.drain())

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) appendEvents(events []transcode.ProgressEvent) {
	for _, ev := range events {
		if ev.Level == transcode.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: ev.Message, Level: ev.Level})
	}
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.plan = nil
	m.dispatcher = nil
	m.report = nil
	m.done, m.failed, m.total = 0, 0, 0
	m.events = &eventBuffer{}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m *Model) releaseLock(lock *transcode.RunLock) {
	if lock == nil {
		return
	}
	if err := lock.Release(); err != nil {
		m.logs = append(m.logs, LogEntry{Message: err.Error(), Level: transcode.LevelWarning})
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎵 flac2mp3"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Convert a FLAC library to MP3"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateResolving:
		b.WriteString(m.viewResolving())
	case StateTranscoding:
		b.WriteString(m.viewTranscoding())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a FLAC file or directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlists (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Embed cover art (ctrl+t)\n", checkbox(m.artwork))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+o)\n", checkbox(m.verbose))
	b.WriteString("\n")

	output := m.settings.Paths.OutputDir
	if output == "" {
		output = filepath.Join("<common ancestor>", m.settings.Paths.OutputSubdir)
	}
	b.WriteString(dimStyle.Render("Output: " + output))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewResolving() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Scanning for FLAC files..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewTranscoding() string {
	var b strings.Builder

	if m.plan != nil {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d file(s) under", m.plan.Len())))
		b.WriteString("\n")
		b.WriteString(pathStyle.Render("  ♪ " + m.plan.Root))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  → " + m.plan.OutputRoot))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d | Failed: %d", m.done, m.total, m.failed)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	elapsed := time.Duration(0)
	succeeded := 0
	if m.report != nil {
		elapsed = m.report.Elapsed.Round(time.Millisecond)
		succeeded = m.report.Succeeded()
	}
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"✨ Conversion Complete!\n\n"+
			"Converted: %d/%d\n"+
			"Failed: %d\n"+
			"Time: %s",
		succeeded, m.total, m.failed, elapsed,
	)))
	b.WriteString("\n")

	if m.report != nil {
		for _, res := range m.report.Failed() {
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", res.Job.Rel, res.Err)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case transcode.LevelError:
			style = errorStyle
			prefix = "✗"
		case transcode.LevelWarning:
			style = warningStyle
			prefix = "!"
		case transcode.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case transcode.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+p: playlist • ctrl+t: artwork • ctrl+o: verbose • esc: quit"
	case StateResolving, StateTranscoding:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new conversion • q: quit"
	}
	return ""
}

// resolve scans the input path, runs preflight checks and prepares the
// dispatcher.
func (m *Model) resolve() tea.Cmd {
	input := strings.Trim(strings.TrimSpace(m.textInput.Value()), `"'`)

	settings := *m.settings
	settings.Playlist.Create = m.playlist
	settings.Artwork.Embed = m.artwork
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		plan, err := resolver.New(settings.ToResolverOptions()).Resolve([]string{input})
		if err != nil {
			return ResolvedMsg{Err: err}
		}
		if failed := preflight.Failed(preflight.RunAll(&settings, plan.OutputRoot)); len(failed) > 0 {
			details := make([]string, 0, len(failed))
			for _, f := range failed {
				details = append(details, f.Name+": "+f.Detail)
			}
			return ResolvedMsg{Err: fmt.Errorf("preflight checks failed: %s", strings.Join(details, "; "))}
		}
		if err := ctx.Err(); err != nil {
			return ResolvedMsg{Err: errCancelled}
		}

		lock, err := transcode.AcquireRunLock(plan.OutputRoot)
		if err != nil {
			return ResolvedMsg{Err: err}
		}

		dispatcher := transcode.NewDispatcher(settings.ToDispatcherConfig(),
			transcode.WithProgress(events.push),
			transcode.WithPlaylists(settings.ToPlaylistCreator()),
		)
		return ResolvedMsg{Plan: plan, Dispatcher: dispatcher, Lock: lock}
	}
}

// transcode runs every job in the background.
func (m *Model) transcode() tea.Cmd {
	ctx := m.ctx
	dispatcher := m.dispatcher
	jobs := m.plan.Jobs
	return func() tea.Msg {
		return DoneMsg{Report: dispatcher.Run(ctx, jobs)}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, initialPath string) error {
	p := tea.NewProgram(NewModel(settings, initialPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
