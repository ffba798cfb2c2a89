package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/flac2mp3/internal/config"
	"github.com/handiism/flac2mp3/internal/model"
	"github.com/handiism/flac2mp3/internal/transcode"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestOptionTogglesDoNotReachInput(t *testing.T) {
	m := NewModel(config.DefaultSettings(), "")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if !m.playlist {
		t.Fatal("ctrl+p should enable playlists")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.artwork {
		t.Fatal("ctrl+t should disable artwork, which defaults on")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if !m.verbose {
		t.Fatal("ctrl+o should enable verbose output")
	}
	if m.textInput.Value() != "" {
		t.Fatalf("toggles leaked into input: %q", m.textInput.Value())
	}
	if !strings.Contains(m.View(), "[×] Create playlists") {
		t.Fatal("view should show the playlist option checked")
	}
}

func TestResolveErrorShowsErrorState(t *testing.T) {
	m := NewModel(nil, "/music")
	m.state = StateResolving

	m = update(t, m, ResolvedMsg{Err: errors.New("no source files found")})
	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "no source files found") {
		t.Fatal("error view should include the error")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput || m.err != nil {
		t.Fatalf("r should reset to input, got state %v err %v", m.state, m.err)
	}
}

func TestDoneShowsSummary(t *testing.T) {
	m := NewModel(nil, "")
	m.state = StateTranscoding
	m.events.push(transcode.ProgressEvent{Message: "Transcoded: a.mp3", Level: transcode.LevelSuccess})
	m.events.push(transcode.ProgressEvent{Message: "Transcoding: b.mp3", Level: transcode.LevelVerbose})

	report := &model.Report{Results: []model.Result{
		{Job: model.Job{Rel: "a.mp3"}},
		{Job: model.Job{Rel: "b.mp3"}, Stage: model.StageEncode, Err: errors.New("exit status 1")},
	}}
	m = update(t, m, DoneMsg{Report: report})

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	if len(m.logs) != 1 {
		t.Fatalf("expected verbose event to be filtered, got %d logs", len(m.logs))
	}
	view := m.View()
	for _, want := range []string{"Converted: 1/", "Failed: 1", "b.mp3"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
