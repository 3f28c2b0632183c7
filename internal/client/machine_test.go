package client

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/protocol"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

func newTestMachine(role session.Role) (*Machine, *snapshot.Store, *session.Session) {
	store := snapshot.NewStore(snapshot.Default(core.DefaultTable()))
	sess := session.New(role)
	return NewMachine(store, sess, log.New(io.Discard)), store, sess
}

func stateMsg(running bool, a, b int, readyA, readyB bool) protocol.State {
	return protocol.State{
		Ball:    protocol.Point{X: 450, Y: 250},
		PaddleA: 200,
		PaddleB: 200,
		ScoreA:  a,
		ScoreB:  b,
		Running: running,
		ReadyA:  readyA,
		ReadyB:  readyB,
	}
}

func TestWaitingCountdownStartedScenario(t *testing.T) {
	m, store, _ := newTestMachine(session.PlayerA)

	m.Handle(protocol.Waiting{Msg: "Waiting for opponent"})
	if m.Message() != "Waiting for opponent" || m.Phase() != PhaseWaiting {
		t.Fatalf("after waiting: message=%q phase=%v", m.Message(), m.Phase())
	}

	if _, ok := m.PressStart(); !ok {
		t.Fatal("start control should be enabled initially")
	}

	eff := m.Handle(protocol.Countdown{N: 3})
	if !eff.Tick {
		t.Fatal("countdown should ask for a tick")
	}
	if m.Message() != "3" || m.Phase() != PhaseCountingDown {
		t.Fatalf("after countdown: message=%q phase=%v", m.Message(), m.Phase())
	}

	m.Handle(protocol.Started{})
	if m.Phase() != PhaseRunning || !store.Load().Running {
		t.Fatal("started should mark the match running")
	}

	m.Handle(stateMsg(true, 0, 0, false, false))

	var shown []string
	for m.TickCountdown(eff.Generation) {
		shown = append(shown, m.Message())
	}
	if len(shown) != 2 || shown[0] != "2" || shown[1] != "1" {
		t.Errorf("countdown ticks showed %v, expected [2 1]", shown)
	}
	if m.Message() != "" {
		t.Errorf("message after countdown = %q, expected empty", m.Message())
	}
	if !m.StartEnabled() || m.StartLabel() != StartLabel {
		t.Error("start control should be re-enabled after the countdown")
	}
	if got := store.Load().Score; got != (snapshot.Score{}) {
		t.Errorf("score = %+v, expected 0-0", got)
	}
}

func TestStateRunningClearsMessage(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)

	m.Handle(protocol.Waiting{Msg: "Waiting for other player..."})
	m.Handle(stateMsg(true, 0, 0, true, true))

	if m.Message() != "" {
		t.Errorf("running state should clear the message, got %q", m.Message())
	}
}

func TestReadinessHint(t *testing.T) {
	tests := []struct {
		name     string
		role     session.Role
		readyA   bool
		readyB   bool
		expected string
	}{
		{"nobody ready keeps message", session.PlayerA, false, false, "keep"},
		{"A local ready", session.PlayerA, true, false, HintWaitingPeer},
		{"B local ready", session.PlayerB, false, true, HintWaitingPeer},
		{"A sees only remote ready", session.PlayerA, false, true, "keep"},
		{"both ready", session.PlayerB, true, true, HintBothReady},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, _, sess := newTestMachine(tc.role)
			m.Handle(protocol.Waiting{Msg: "keep"})
			m.Handle(stateMsg(false, 0, 0, tc.readyA, tc.readyB))

			if m.Message() != tc.expected {
				t.Errorf("message = %q, expected %q", m.Message(), tc.expected)
			}
			if sess.LocalReady != tc.role.Ready(snapshot.Readiness{A: tc.readyA, B: tc.readyB}) {
				t.Error("session readiness not applied for own role")
			}
		})
	}
}

func TestReadinessHintSuppressedDuringCountdown(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)

	m.Handle(protocol.Countdown{N: 3})
	m.Handle(stateMsg(false, 0, 0, true, true))

	if m.Message() != "3" {
		t.Errorf("countdown digit should stay on screen, got %q", m.Message())
	}
}

func TestStateReplacesSnapshotWholesale(t *testing.T) {
	m, store, _ := newTestMachine(session.PlayerB)

	st := protocol.State{
		Ball:    protocol.Point{X: 12, Y: 34},
		PaddleA: 56,
		PaddleB: 78,
		ScoreA:  4,
		ScoreB:  2,
		ReadyB:  true,
	}
	m.Handle(st)

	expected := snapshot.Snapshot{
		Ball:    snapshot.Ball{X: 12, Y: 34},
		PaddleA: snapshot.Paddle{Y: 56},
		PaddleB: snapshot.Paddle{Y: 78},
		Score:   snapshot.Score{A: 4, B: 2},
		Ready:   snapshot.Readiness{B: true},
	}
	if got := store.Load(); got != expected {
		t.Errorf("snapshot = %+v, expected %+v", got, expected)
	}
}

func TestWaitingCancelsCountdown(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)
	m.PressStart()

	eff := m.Handle(protocol.Countdown{N: 3})
	m.Handle(protocol.Waiting{Msg: "Waiting for other player..."})

	if m.TickCountdown(eff.Generation) {
		t.Error("a cancelled countdown must not schedule more ticks")
	}
	if m.Message() != "Waiting for other player..." {
		t.Errorf("stale tick overwrote the message: %q", m.Message())
	}
	if !m.StartEnabled() || m.StartLabel() != StartLabel {
		t.Error("an interrupted countdown should hand the start control back")
	}
	if _, ok := m.CountdownValue(); ok {
		t.Error("no countdown value should remain after waiting")
	}
}

func TestStartUsableAfterInterruptedCountdown(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)
	if _, ok := m.PressStart(); !ok {
		t.Fatal("start control should be enabled initially")
	}

	eff := m.Handle(protocol.Countdown{N: 3})
	m.Handle(protocol.Waiting{Msg: "Opponent left"})
	for range 10 {
		m.TickCountdown(eff.Generation)
	}
	m.Handle(stateMsg(false, 0, 0, false, false))

	intent, ok := m.PressStart()
	if !ok {
		t.Fatal("start should be pressable again after the countdown was interrupted")
	}
	if _, isStart := intent.(protocol.Start); !isStart {
		t.Errorf("PressStart() = %T, expected protocol.Start", intent)
	}
}

func TestWaitingWithoutCountdownKeepsControl(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)
	m.PressStart()

	m.Handle(protocol.Waiting{Msg: "Waiting for opponent"})
	if m.StartEnabled() {
		t.Error("waiting with no countdown running should leave a pressed start disabled")
	}
}

func TestNewCountdownReplacesOld(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)

	first := m.Handle(protocol.Countdown{N: 3})
	second := m.Handle(protocol.Countdown{N: 2})

	if m.TickCountdown(first.Generation) {
		t.Error("tick of the replaced countdown should be dropped")
	}
	if !m.TickCountdown(second.Generation) || m.Message() != "1" {
		t.Errorf("second countdown should show 1, got %q", m.Message())
	}
	if v, ok := m.CountdownValue(); !ok || v != 1 {
		t.Errorf("CountdownValue() = %d/%v, expected 1", v, ok)
	}
}

func TestCountdownZero(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)
	m.PressStart()

	eff := m.Handle(protocol.Countdown{N: 0})
	if eff.Tick {
		t.Error("countdown 0 should finish without ticks")
	}
	if !m.StartEnabled() || m.Message() != "" {
		t.Error("countdown 0 should clear and re-enable start at once")
	}
}

func TestPressStartDisablesControl(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)

	intent, ok := m.PressStart()
	if !ok {
		t.Fatal("first press should produce an intent")
	}
	if _, isStart := intent.(protocol.Start); !isStart {
		t.Errorf("intent = %T, expected protocol.Start", intent)
	}
	if m.StartEnabled() || m.StartLabel() != WaitingLabel {
		t.Error("control should be disabled after a press")
	}
	if _, ok := m.PressStart(); ok {
		t.Error("second press should be ignored while disabled")
	}
}

func TestMalformedFrameIsDiscarded(t *testing.T) {
	m, store, _ := newTestMachine(session.PlayerA)
	m.Handle(protocol.Waiting{Msg: "hold"})
	before := store.Load()

	_, err := m.HandlePayload([]byte(`{"type":"state","ball":{"x":1,"y":2}}`))
	if !errors.Is(err, protocol.ErrMalformed) {
		t.Fatalf("HandlePayload error = %v, expected ErrMalformed", err)
	}
	if store.Load() != before || m.Message() != "hold" || m.Phase() != PhaseWaiting {
		t.Error("malformed frame must not change any state")
	}

	if _, err := m.HandlePayload([]byte(`{"type":"started"}`)); err != nil {
		t.Fatalf("next frame should still be processed: %v", err)
	}
	if m.Phase() != PhaseRunning {
		t.Error("processing should continue after a bad frame")
	}
}

func TestAdvisoryMessagesChangeNothing(t *testing.T) {
	m, store, _ := newTestMachine(session.PlayerA)
	m.Handle(protocol.Waiting{Msg: "hold"})
	before := store.Load()

	for _, msg := range []protocol.Inbound{
		protocol.Info{Msg: "p2 joined"},
		protocol.Pong{},
		protocol.Error{Msg: "invalid player"},
		protocol.Unknown{Type: "chat"},
	} {
		if eff := m.Handle(msg); eff != (Effect{}) {
			t.Errorf("Handle(%T) effect = %+v, expected none", msg, eff)
		}
	}
	if store.Load() != before || m.Message() != "hold" || m.Phase() != PhaseWaiting {
		t.Error("advisory messages must not change state")
	}
}

func TestPointsReportedAfterBaseline(t *testing.T) {
	m, _, _ := newTestMachine(session.PlayerA)

	if eff := m.Handle(stateMsg(true, 3, 2, false, false)); eff.Point != nil {
		t.Error("the first state after connecting is a baseline, not a point")
	}

	eff := m.Handle(stateMsg(false, 3, 3, false, false))
	if eff.Point == nil || eff.Point.Scorer != session.PlayerB || eff.Point.Score != (snapshot.Score{A: 3, B: 3}) {
		t.Errorf("point = %+v, expected PlayerB at 3-3", eff.Point)
	}

	if eff := m.Handle(stateMsg(false, 3, 3, false, false)); eff.Point != nil {
		t.Error("unchanged score is not a point")
	}

	m.Resync()
	if eff := m.Handle(stateMsg(false, 4, 3, false, false)); eff.Point != nil {
		t.Error("first state after Resync should not count")
	}
}
