// Package tui provides the Bubble Tea frontend of the pong client.
// It owns the single-threaded dispatch loop: connection events, timers and
// terminal input all arrive as messages and are applied in Update.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg triggers a redraw of the table.
type FrameMsg time.Time

// CountdownTickMsg advances the countdown of one generation.
type CountdownTickMsg struct {
	Generation uint64
}

// AudioTickMsg triggers a sample of the ball position.
type AudioTickMsg time.Time

// frameCmd returns a command that sends frame messages at the given rate.
func frameCmd(fps int) tea.Cmd {
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func countdownCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return CountdownTickMsg{Generation: gen}
	})
}

func audioCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return AudioTickMsg(t)
	})
}
