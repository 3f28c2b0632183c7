package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/render"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

// Screen layout: one header row above the table, three footer rows below.
const (
	headerRows = 1
	footerRows = 3
	minRows    = headerRows + footerRows + 1
)

var (
	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	scoreStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	roleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	messageStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	startStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	startOffStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// tableStyles colours the glyphs drawn by render.Renderer.
var tableStyles = map[core.Color]lipgloss.Style{
	render.NetColor:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	render.PaddleAColor: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	render.PaddleBColor: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	render.BallColor:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
}

// tableView draws the table buffer. Blank court is written raw; each run of
// same-coloured glyphs shares one styled span.
func tableView(s *core.Screen) string {
	var b strings.Builder
	b.Grow(s.Width()*s.Height() + s.Height())

	var run []rune
	runColor := core.ColorDefault
	flush := func() {
		if len(run) == 0 {
			return
		}
		if style, ok := tableStyles[runColor]; ok {
			b.WriteString(style.Render(string(run)))
		} else {
			b.WriteString(string(run))
		}
		run = run[:0]
	}

	for y := range s.Height() {
		if y > 0 {
			flush()
			b.WriteByte('\n')
		}
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Rune == ' ' {
				flush()
				b.WriteByte(' ')
				continue
			}
			if cell.Color != runColor {
				flush()
				runColor = cell.Color
			}
			run = append(run, cell.Rune)
		}
	}
	flush()
	return b.String()
}

// indicator renders the connection indicator.
func indicator(phase session.Phase) string {
	if phase == session.Connected {
		return connectedStyle.Render(phase.String())
	}
	return disconnectedStyle.Render(phase.String())
}

// scoreText is the score readout, left paddle first.
func scoreText(s snapshot.Score) string {
	return fmt.Sprintf("%d — %d", s.A, s.B)
}

// roleText labels which paddle this client controls.
func roleText(r session.Role) string {
	side := "left"
	if r == session.PlayerB {
		side = "right"
	}
	return fmt.Sprintf("You: %s (%s)", r, side)
}

// startText is the caption of the start control as drawn.
func startText(label string) string {
	return "[ " + label + " ]"
}

// startSpan returns the columns [from, to) covered by the start control
// when centred in width.
func startSpan(label string, width int) (from, to int) {
	w := lipgloss.Width(startText(label))
	from = max((width-w)/2, 0)
	return from, from + w
}

// headerLine lays out indicator, score and role across width.
func headerLine(phase session.Phase, score snapshot.Score, role session.Role, width int) string {
	left := " " + indicator(phase)
	center := scoreStyle.Render(scoreText(score))
	right := roleStyle.Render(roleText(role)) + " "

	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	if lw+cw+rw+2 > width {
		return left + "  " + center
	}
	gapL := max((width-cw)/2-lw, 1)
	gapR := max(width-lw-gapL-cw-rw, 1)
	return left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
}

// startLine renders the start control centred in width.
func startLine(label string, enabled bool, width int) string {
	from, _ := startSpan(label, width)
	style := startStyle
	if !enabled {
		style = startOffStyle
	}
	return strings.Repeat(" ", from) + style.Render(startText(label))
}

// centerText centres a possibly multi-line block in width.
func centerText(text string, width int) string {
	if lipgloss.Width(text) >= width {
		return text
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
