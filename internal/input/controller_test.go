package input

import (
	"math"
	"testing"

	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

func TestPointerDragEmitsClampedMoves(t *testing.T) {
	c := NewController(core.DefaultTable(), session.PlayerA, 0)

	if _, ok := c.PointerMove(250); ok {
		t.Fatal("move without a drag should be ignored")
	}

	c.PointerDown(true)

	tests := []struct {
		pointer  float64
		expected float64
	}{
		{250, 200},
		{0, 0},
		{-80, 0},
		{49, 0},
		{51, 1},
		{450, 400},
		{500, 400},
		{99999, 400},
	}
	for _, tc := range tests {
		move, ok := c.PointerMove(tc.pointer)
		if !ok {
			t.Fatalf("PointerMove(%v) dropped during a drag", tc.pointer)
		}
		if move.Y != tc.expected {
			t.Errorf("PointerMove(%v) = %v, expected %v", tc.pointer, move.Y, tc.expected)
		}
	}

	c.PointerUp()
	if _, ok := c.PointerMove(250); ok {
		t.Error("move after release should be ignored")
	}
}

func TestPointerDownOffSurface(t *testing.T) {
	c := NewController(core.DefaultTable(), session.PlayerA, 0)
	c.PointerDown(false)

	if c.Dragging() {
		t.Error("press outside the surface should not start a drag")
	}
}

func TestRapidPointerMovesAreNotCoalesced(t *testing.T) {
	table := core.DefaultTable()
	c := NewController(table, session.PlayerB, 0)
	c.PointerDown(true)

	emitted := 0
	for y := -200.0; y <= 700; y += 3.7 {
		move, ok := c.PointerMove(y)
		if !ok {
			t.Fatalf("move at %v dropped", y)
		}
		if move.Y < 0 || move.Y > table.MaxPaddleY() {
			t.Fatalf("move at %v out of range: %v", y, move.Y)
		}
		emitted++
	}
	if expected := int(math.Floor(900/3.7)) + 1; emitted != expected {
		t.Errorf("emitted %d moves, expected %d", emitted, expected)
	}
}

func TestTouchDrag(t *testing.T) {
	c := NewController(core.DefaultTable(), session.PlayerA, 0)

	if c.TouchStart(nil, true) {
		t.Error("touch start without points should not prevent default")
	}
	if !c.TouchStart([]TouchPoint{{X: 10, Y: 300}}, true) {
		t.Fatal("touch start on surface should prevent default")
	}

	move, ok, prevent := c.TouchMove([]TouchPoint{{X: 10, Y: 300}, {X: 800, Y: 10}})
	if !ok || !prevent || move.Y != 250 {
		t.Errorf("TouchMove = %v/%v/%v, expected 250 from the first touch", move.Y, ok, prevent)
	}

	if _, ok, prevent := c.TouchMove(nil); ok || !prevent {
		t.Error("empty touch move should emit nothing but still prevent default")
	}

	c.TouchEnd()
	if _, ok, prevent := c.TouchMove([]TouchPoint{{Y: 10}}); ok || prevent {
		t.Error("touch move after end should be ignored")
	}
}

func TestKeyMoves(t *testing.T) {
	snap := snapshot.Snapshot{PaddleA: snapshot.Paddle{Y: 10}, PaddleB: snapshot.Paddle{Y: 390}}

	tests := []struct {
		name     string
		role     session.Role
		key      Key
		expected float64
	}{
		{"A up clamps at top", session.PlayerA, KeyUp, 0},
		{"A down", session.PlayerA, KeyDown, 24},
		{"B up", session.PlayerB, KeyUp, 376},
		{"B down clamps at bottom", session.PlayerB, KeyDown, 400},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(core.DefaultTable(), tc.role, DefaultKeyStep)
			move, ok := c.Key(tc.key, snap, true)
			if !ok {
				t.Fatal("key should be accepted while connected")
			}
			if move.Y != tc.expected {
				t.Errorf("Key() = %v, expected %v", move.Y, tc.expected)
			}
		})
	}
}

func TestKeyIgnoredWhileDisconnected(t *testing.T) {
	c := NewController(core.DefaultTable(), session.PlayerA, 0)

	if _, ok := c.Key(KeyDown, snapshot.Snapshot{}, false); ok {
		t.Error("keys should be ignored while disconnected")
	}
	if _, ok := c.Key(Key(42), snapshot.Snapshot{}, true); ok {
		t.Error("unknown keys should be ignored")
	}
}
