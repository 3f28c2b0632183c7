package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termpong/internal/audio"
	"github.com/vovakirdan/termpong/internal/client"
	"github.com/vovakirdan/termpong/internal/conn"
	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/input"
	"github.com/vovakirdan/termpong/internal/protocol"
	"github.com/vovakirdan/termpong/internal/render"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

// Transport carries intents to the server and events back.
// *conn.Manager implements it.
type Transport interface {
	Events() <-chan conn.Event
	Send(msg protocol.Outbound) bool
}

// History records what this client observed. *storage.Recorder implements it.
type History interface {
	ConnectionOpened() error
	ConnectionClosed() error
	PointScored(scorer string, scoreA, scoreB int) error
}

// Options configures a match model.
type Options struct {
	Table   core.Table
	Runtime core.RuntimeConfig
	Audio   audio.Config
	KeyStep float64
	Synth   audio.Synth // nil plays nothing
	History History     // nil records nothing
	Logger  *log.Logger
}

// Model is the Bubble Tea model of one match client. It owns every piece
// of client state; connection events and timers reach it as messages.
type Model struct {
	transport Transport
	session   *session.Session
	store     *snapshot.Store
	machine   *client.Machine
	input     *input.Controller
	watcher   *audio.Watcher
	synth     audio.Synth
	renderer  render.Renderer
	history   History
	logger    *log.Logger

	table         core.Table
	config        core.RuntimeConfig
	audioInterval time.Duration
	screen        *core.Screen
	viewport      core.Viewport

	keys     PlayKeyMap
	help     help.Model
	quitting bool
}

// NewModel creates a match model for sess talking over transport.
func NewModel(transport Transport, sess *session.Session, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	synth := opts.Synth
	if synth == nil {
		synth = audio.NopSynth{}
	}
	if opts.Audio.Interval <= 0 {
		opts.Audio = audio.DefaultConfig()
	}
	cfg := opts.Runtime.Normalize()

	store := snapshot.NewStore(snapshot.Default(opts.Table))
	m := Model{
		transport:     transport,
		session:       sess,
		store:         store,
		machine:       client.NewMachine(store, sess, logger),
		input:         input.NewController(opts.Table, sess.Role, opts.KeyStep),
		watcher:       audio.NewWatcher(opts.Audio, opts.Table, store.Load().Ball.X),
		synth:         synth,
		renderer:      render.NewRenderer(opts.Table),
		history:       opts.History,
		logger:        logger,
		table:         opts.Table,
		config:        cfg,
		audioInterval: opts.Audio.Interval,
		screen:        core.NewScreen(0, 0),
		keys:          DefaultPlayKeyMap(),
		help:          help.New(),
	}
	m.layout(cfg.ScreenW, cfg.ScreenH)
	return m
}

// Init starts the event wait and the three periodic loops.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		frameCmd(m.config.FPS),
		audioCmd(m.audioInterval),
	)
}

// waitForEvent returns a command that blocks on the next connection event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.transport.Events()
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ev
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case conn.Opened:
		return m.handleOpened(msg)
	case conn.Received:
		return m.handleReceived(msg)
	case conn.Closed:
		return m.handleClosed(msg)

	case FrameMsg:
		m.renderer.Draw(m.screen, m.store.Load())
		return m, frameCmd(m.config.FPS)

	case CountdownTickMsg:
		if m.machine.TickCountdown(msg.Generation) {
			return m, countdownCmd(msg.Generation)
		}
		return m, nil

	case AudioTickMsg:
		if tone, ok := m.watcher.ObserveSnapshot(m.store.Load()); ok {
			if err := m.synth.Play(tone); err != nil {
				m.logger.Debug("synth failed", "err", err)
			}
		}
		return m, audioCmd(m.audioInterval)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		m.renderer.Draw(m.screen, m.store.Load())
		return m, nil
	}

	return m, nil
}

func (m Model) handleOpened(ev conn.Opened) (tea.Model, tea.Cmd) {
	m.session.Connection = session.Connected
	m.machine.Resync()
	m.logger.Debug("connection opened", "endpoint", ev.Endpoint, "attempt", ev.Attempt)
	if m.history != nil {
		if err := m.history.ConnectionOpened(); err != nil {
			m.logger.Warn("could not record connection", "err", err)
		}
	}
	return m, m.waitForEvent()
}

func (m Model) handleReceived(ev conn.Received) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForEvent()}

	eff, err := m.machine.HandlePayload(ev.Payload)
	if err != nil {
		// Already logged; the frame is dropped.
		return m, cmds[0]
	}
	if eff.Tick {
		cmds = append(cmds, countdownCmd(eff.Generation))
	}
	if eff.Point != nil && m.history != nil {
		p := eff.Point
		if err := m.history.PointScored(p.Scorer.WireName(), p.Score.A, p.Score.B); err != nil {
			m.logger.Warn("could not record point", "err", err)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleClosed(ev conn.Closed) (tea.Model, tea.Cmd) {
	m.session.Connection = session.Disconnected
	if ev.WasOpen {
		m.logger.Debug("connection lost", "err", ev.Err, "retry_in", ev.RetryIn)
		if m.history != nil {
			if err := m.history.ConnectionClosed(); err != nil {
				m.logger.Warn("could not record disconnect", "err", err)
			}
		}
	} else {
		m.logger.Debug("connect failed", "attempt", ev.Attempt, "err", ev.Err, "retry_in", ev.RetryIn)
	}
	return m, m.waitForEvent()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.sendMove(m.input.Key(input.KeyUp, m.store.Load(), m.session.Connected()))

	case key.Matches(msg, m.keys.Down):
		m.sendMove(m.input.Key(input.KeyDown, m.store.Load(), m.session.Connected()))

	case key.Matches(msg, m.keys.Start):
		m.pressStart()
	}
	return m, nil
}

// handleMouse maps terminal cells onto the table for drags and detects
// clicks on the start control.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.onStartControl(msg.X, msg.Y) {
			m.pressStart()
			return m, nil
		}
		m.input.PointerDown(m.viewport.Contains(msg.X, msg.Y))

	case tea.MouseActionMotion:
		if m.input.Dragging() {
			m.sendMove(m.input.PointerMove(m.viewport.TableY(msg.Y)))
		}

	case tea.MouseActionRelease:
		m.input.PointerUp()
	}
	return m, nil
}

func (m Model) sendMove(move protocol.Move, ok bool) {
	if !ok {
		return
	}
	if !m.transport.Send(move) {
		m.logger.Debug("move dropped", "y", move.Y)
	}
}

func (m Model) pressStart() {
	intent, ok := m.machine.PressStart()
	if !ok {
		return
	}
	if !m.transport.Send(intent) {
		m.logger.Debug("start dropped while disconnected")
	}
}

func (m Model) startRow() int {
	return headerRows + m.screen.Height() + 1
}

func (m Model) onStartControl(x, y int) bool {
	if y != m.startRow() {
		return false
	}
	from, to := startSpan(m.machine.StartLabel(), m.config.ScreenW)
	return x >= from && x < to
}

// layout sizes the table area to the terminal.
func (m *Model) layout(width, height int) {
	m.config.ScreenW = max(width, 1)
	m.config.ScreenH = max(height, minRows)
	tableRows := m.config.ScreenH - headerRows - footerRows
	m.screen.Resize(m.config.ScreenW, tableRows)
	m.viewport = core.NewViewport(core.NewRect(0, headerRows, m.config.ScreenW, tableRows), m.table)
	m.help.Width = m.config.ScreenW
}

// View renders the HUD around the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.config.ScreenW
	snap := m.store.Load()

	var b strings.Builder
	b.WriteString(headerLine(m.session.Connection, snap.Score, m.session.Role, w))
	b.WriteString("\n")
	b.WriteString(tableView(m.screen))
	b.WriteString("\n")
	b.WriteString(centerText(messageStyle.Render(m.machine.Message()), w))
	b.WriteString("\n")
	b.WriteString(startLine(m.machine.StartLabel(), m.machine.StartEnabled(), w))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Snapshot returns the snapshot currently on display.
func (m Model) Snapshot() snapshot.Snapshot {
	return m.store.Load()
}

// Machine exposes the protocol state machine for inspection.
func (m Model) Machine() *client.Machine {
	return m.machine
}

// Run connects mgr and runs the match UI until the user quits or ctx ends.
func Run(ctx context.Context, mgr *conn.Manager, sess *session.Session, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	p := tea.NewProgram(
		NewModel(mgr, sess, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	cancel()
	runErr := <-done

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
