// Package input converts pointer, touch and key events into paddle-position
// intents. Every accepted event yields exactly one clamped move.
package input

import (
	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/protocol"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

// DefaultKeyStep is how far one arrow key press moves the paddle.
const DefaultKeyStep = 14

// Key is a paddle key.
type Key int

const (
	KeyUp Key = iota + 1
	KeyDown
)

// TouchPoint is one active touch in table coordinates.
type TouchPoint struct {
	X, Y float64
}

// Controller tracks the drag gesture and maps events to move intents.
type Controller struct {
	table    core.Table
	role     session.Role
	keyStep  float64
	dragging bool
}

// NewController creates a controller for role on table.
func NewController(table core.Table, role session.Role, keyStep float64) *Controller {
	if keyStep <= 0 {
		keyStep = DefaultKeyStep
	}
	return &Controller{
		table:   table,
		role:    role,
		keyStep: keyStep,
	}
}

// Dragging reports whether a pointer or touch drag is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// PointerDown starts a drag when the press lands on the play surface.
func (c *Controller) PointerDown(onSurface bool) {
	if onSurface {
		c.dragging = true
	}
}

// PointerMove centres the paddle on the pointer while dragging.
// y is the pointer position in table units.
func (c *Controller) PointerMove(y float64) (protocol.Move, bool) {
	if !c.dragging {
		return protocol.Move{}, false
	}
	return c.moveCentredOn(y), true
}

// PointerUp ends the drag wherever the pointer is released.
func (c *Controller) PointerUp() {
	c.dragging = false
}

// TouchStart begins a touch drag on the surface. It reports whether the
// platform's default touch handling (scrolling) must be suppressed.
func (c *Controller) TouchStart(points []TouchPoint, onSurface bool) (preventDefault bool) {
	if !onSurface || len(points) == 0 {
		return false
	}
	c.dragging = true
	return true
}

// TouchMove follows the first touch point while dragging.
func (c *Controller) TouchMove(points []TouchPoint) (move protocol.Move, ok, preventDefault bool) {
	if !c.dragging {
		return protocol.Move{}, false, false
	}
	if len(points) == 0 {
		return protocol.Move{}, false, true
	}
	return c.moveCentredOn(points[0].Y), true, true
}

// TouchEnd ends a touch drag.
func (c *Controller) TouchEnd() {
	c.dragging = false
}

// Key nudges the local paddle from its currently rendered position.
// Keys are ignored while disconnected.
func (c *Controller) Key(k Key, current snapshot.Snapshot, connected bool) (protocol.Move, bool) {
	if !connected {
		return protocol.Move{}, false
	}
	y := c.role.Paddle(current).Y
	switch k {
	case KeyUp:
		y -= c.keyStep
	case KeyDown:
		y += c.keyStep
	default:
		return protocol.Move{}, false
	}
	return protocol.Move{Y: c.table.ClampPaddle(y)}, true
}

func (c *Controller) moveCentredOn(y float64) protocol.Move {
	return protocol.Move{Y: c.table.ClampPaddle(y - c.table.PaddleHeight/2)}
}
