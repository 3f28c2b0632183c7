package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/termpong/internal/storage"
)

type stubHistory struct {
	points []storage.PointEntry
	conns  []storage.ConnectionEntry
	err    error
}

func (s stubHistory) RecentPoints(int) ([]storage.PointEntry, error) { return s.points, s.err }

func (s stubHistory) RecentConnections(int) ([]storage.ConnectionEntry, error) {
	return s.conns, s.err
}

func TestHistoryTabs(t *testing.T) {
	now := time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)
	src := stubHistory{
		points: []storage.PointEntry{
			{Role: "p1", Scorer: "p1", ScoreA: 1, CreatedAt: now},
			{Role: "p1", Scorer: "p2", ScoreA: 1, ScoreB: 1, CreatedAt: now},
		},
		conns: []storage.ConnectionEntry{
			{Role: "p1", Server: "ws://pong/ws", OpenedAt: now, ClosedAt: now.Add(time.Minute)},
		},
	}

	m := NewHistoryModel(src, 100, 30)
	if m.Tab() != TabPoints || len(m.Rows()) != 2 {
		t.Fatalf("initial tab %v with %d rows", m.Tab(), len(m.Rows()))
	}
	if got := m.Rows()[1][3]; got != "1 — 1" {
		t.Errorf("score cell = %q", got)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(HistoryModel)
	if m.Tab() != TabConnections || len(m.Rows()) != 1 {
		t.Fatalf("after tab: %v with %d rows", m.Tab(), len(m.Rows()))
	}
	if got := m.Rows()[0][2]; got != "1m0s" {
		t.Errorf("duration cell = %q", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(HistoryModel)
	if m.Tab() != TabPoints {
		t.Errorf("shift+tab should go back to points, got %v", m.Tab())
	}
	if !strings.Contains(m.View(), "MATCH HISTORY") {
		t.Error("view missing title")
	}
}

func TestHistoryEmptyAndErrors(t *testing.T) {
	m := NewHistoryModel(stubHistory{}, 80, 24)
	if !strings.Contains(m.View(), "No points recorded yet.") {
		t.Error("empty points view missing hint")
	}

	m = NewHistoryModel(stubHistory{err: errors.New("disk gone")}, 80, 24)
	if !strings.Contains(m.View(), "disk gone") {
		t.Error("load error should be shown")
	}

	m = NewHistoryModel(nil, 80, 24)
	if !strings.Contains(m.View(), "History is disabled.") {
		t.Error("nil source should be reported")
	}
}

func TestHistoryQuit(t *testing.T) {
	m := NewHistoryModel(stubHistory{}, 80, 24)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || next.(HistoryModel).View() != "" {
		t.Error("q should quit the browser")
	}
}
