// Package client implements the protocol state machine that turns inbound
// server messages into snapshot replacements and UI state.
package client

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termpong/internal/protocol"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

// Phase is the match phase as announced by the server.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseCountingDown
	PhaseRunning
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseWaiting:
		return "Waiting"
	case PhaseCountingDown:
		return "Counting down"
	case PhaseRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// Readiness hints shown in the message area.
const (
	HintBothReady   = "Both ready — starting soon..."
	HintWaitingPeer = "Waiting for other player..."
)

// Start control labels.
const (
	StartLabel   = "Click to Start"
	WaitingLabel = "Waiting..."
)

// Point describes a score change observed between two snapshots.
type Point struct {
	Scorer session.Role
	Score  snapshot.Score
}

// Effect reports follow-up work for the coordinator after a message.
type Effect struct {
	// Tick asks for the next countdown tick of Generation in one second.
	Tick       bool
	Generation uint64

	// Point is set when the score grew.
	Point *Point
}

// Machine is the client-side protocol state machine. It is not safe for
// concurrent use; the UI loop is its only caller.
type Machine struct {
	store   *snapshot.Store
	session *session.Session
	logger  *log.Logger

	phase        Phase
	message      string
	startEnabled bool
	countdown    Countdown
	countdownVal int

	// synced is false until the first state after a (re)connect, which
	// establishes the score baseline without counting points.
	synced bool
}

// NewMachine creates a machine writing into store on behalf of sess.
func NewMachine(store *snapshot.Store, sess *session.Session, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.Default()
	}
	return &Machine{
		store:        store,
		session:      sess,
		logger:       logger,
		startEnabled: true,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Message returns the text for the message area.
func (m *Machine) Message() string {
	return m.message
}

// StartEnabled reports whether the start control accepts presses.
func (m *Machine) StartEnabled() bool {
	return m.startEnabled
}

// StartLabel returns the caption of the start control.
func (m *Machine) StartLabel() string {
	if m.startEnabled {
		return StartLabel
	}
	return WaitingLabel
}

// CountdownValue returns the number on display and whether a countdown is active.
func (m *Machine) CountdownValue() (int, bool) {
	if !m.countdown.Active() {
		return 0, false
	}
	return m.countdownVal, true
}

// CountdownGeneration returns the generation of the latest countdown.
// Ticks carrying any other generation are ignored.
func (m *Machine) CountdownGeneration() uint64 {
	return m.countdown.Generation()
}

// Resync forgets the score baseline. Call it whenever a new connection opens.
func (m *Machine) Resync() {
	m.synced = false
}

// HandlePayload decodes one frame and applies it. Malformed frames are
// logged and discarded without touching any state.
func (m *Machine) HandlePayload(data []byte) (Effect, error) {
	msg, err := protocol.Decode(data)
	if err != nil {
		m.logger.Warn("discarding frame", "err", err, "bytes", len(data))
		return Effect{}, fmt.Errorf("client: %w", err)
	}
	return m.Handle(msg), nil
}

// Handle applies one decoded message.
func (m *Machine) Handle(msg protocol.Inbound) Effect {
	switch v := msg.(type) {
	case protocol.State:
		return m.handleState(v)
	case protocol.Waiting:
		m.phase = PhaseWaiting
		m.message = v.Msg
		m.cancelCountdown()
	case protocol.Countdown:
		m.phase = PhaseCountingDown
		m.message = ""
		gen := m.countdown.Start(v.N)
		return Effect{Tick: m.step(gen), Generation: gen}
	case protocol.Started:
		m.phase = PhaseRunning
		m.message = ""
		m.store.MarkRunning()
	case protocol.Info:
		m.logger.Debug("server info", "msg", v.Msg)
	case protocol.Pong:
		m.logger.Debug("pong")
	case protocol.Error:
		m.logger.Debug("server error", "msg", v.Msg)
	case protocol.Unknown:
		m.logger.Debug("ignoring message", "type", v.Type)
	}
	return Effect{}
}

// TickCountdown advances the countdown of generation gen. It reports
// whether another tick should be scheduled.
func (m *Machine) TickCountdown(gen uint64) bool {
	return m.step(gen)
}

func (m *Machine) step(gen uint64) bool {
	value, done, ok := m.countdown.Step(gen)
	if !ok {
		return false
	}
	if done {
		m.message = ""
		m.startEnabled = true
		return false
	}
	m.countdownVal = value
	m.message = strconv.Itoa(value)
	return true
}

// cancelCountdown stops the countdown. An interrupted countdown never
// reaches its final tick, so the start control is handed back here.
func (m *Machine) cancelCountdown() {
	if m.countdown.Active() {
		m.startEnabled = true
	}
	m.countdown.Cancel()
	m.countdownVal = 0
}

// PressStart handles a press of the start control. It returns the start
// intent, or false when the control is disabled.
func (m *Machine) PressStart() (protocol.Outbound, bool) {
	if !m.startEnabled {
		return nil, false
	}
	m.startEnabled = false
	return protocol.Start{}, true
}

func (m *Machine) handleState(st protocol.State) Effect {
	prev := m.store.Load()
	next := snapshot.Snapshot{
		Ball:    snapshot.Ball{X: st.Ball.X, Y: st.Ball.Y},
		PaddleA: snapshot.Paddle{Y: st.PaddleA},
		PaddleB: snapshot.Paddle{Y: st.PaddleB},
		Score:   snapshot.Score{A: st.ScoreA, B: st.ScoreB},
		Running: st.Running,
		Ready:   snapshot.Readiness{A: st.ReadyA, B: st.ReadyB},
	}
	m.store.Replace(next)
	m.session.ApplyReadiness(next.Ready)

	if !m.countdown.Active() {
		switch {
		case m.session.LocalReady && m.session.RemoteReady:
			m.message = HintBothReady
		case m.session.LocalReady:
			m.message = HintWaitingPeer
		}
	}
	if next.Running {
		m.message = ""
	}

	var eff Effect
	if m.synced {
		if scorer, ok := session.Scored(prev.Score, next.Score); ok {
			eff.Point = &Point{Scorer: scorer, Score: next.Score}
		}
	}
	m.synced = true
	return eff
}
