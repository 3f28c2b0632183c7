// Package session describes who this client is in a match: its role,
// its connection phase and the readiness view derived from server snapshots.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/termpong/internal/snapshot"
)

// ErrUnknownRole is returned by ParseRole for anything but a known role name.
var ErrUnknownRole = errors.New("session: unknown role")

// Role identifies which paddle this client controls.
type Role int

const (
	// PlayerA controls the left paddle (wire name "p1").
	PlayerA Role = iota + 1
	// PlayerB controls the right paddle (wire name "p2").
	PlayerB
)

// ParseRole accepts p1, p2, a, b, playera and playerb, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p1", "a", "playera":
		return PlayerA, nil
	case "p2", "b", "playerb":
		return PlayerB, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case PlayerA:
		return "Player A"
	case PlayerB:
		return "Player B"
	default:
		return "Unknown"
	}
}

// WireName is the name the server uses for the role.
func (r Role) WireName() string {
	switch r {
	case PlayerA:
		return "p1"
	case PlayerB:
		return "p2"
	default:
		return ""
	}
}

// Valid reports whether r is PlayerA or PlayerB.
func (r Role) Valid() bool {
	return r == PlayerA || r == PlayerB
}

// Other returns the opposing role.
func (r Role) Other() Role {
	if r == PlayerA {
		return PlayerB
	}
	return PlayerA
}

// Paddle returns the paddle this role controls in snap.
func (r Role) Paddle(snap snapshot.Snapshot) snapshot.Paddle {
	if r == PlayerB {
		return snap.PaddleB
	}
	return snap.PaddleA
}

// Ready reports the readiness flag belonging to this role.
func (r Role) Ready(ready snapshot.Readiness) bool {
	if r == PlayerB {
		return ready.B
	}
	return ready.A
}

// Scored returns the role whose score grew between prev and next, if any.
func Scored(prev, next snapshot.Score) (Role, bool) {
	switch {
	case next.A > prev.A:
		return PlayerA, true
	case next.B > prev.B:
		return PlayerB, true
	default:
		return 0, false
	}
}

// Phase is the state of the transport as seen by the UI.
type Phase int

const (
	Disconnected Phase = iota
	Connected
)

// String returns the indicator text for the phase.
func (p Phase) String() string {
	if p == Connected {
		return "Connected"
	}
	return "Disconnected"
}

// Session is the local participant of a match.
type Session struct {
	ID         uuid.UUID
	Role       Role
	Connection Phase

	// LocalReady and RemoteReady mirror the last snapshot's readiness
	// from this client's point of view.
	LocalReady  bool
	RemoteReady bool
}

// New creates a disconnected session for role with a fresh ID.
func New(role Role) *Session {
	return &Session{
		ID:   uuid.New(),
		Role: role,
	}
}

// ApplyReadiness maps the per-side readiness onto own/other.
func (s *Session) ApplyReadiness(ready snapshot.Readiness) {
	s.LocalReady = s.Role.Ready(ready)
	s.RemoteReady = s.Role.Other().Ready(ready)
}

// Connected reports whether the transport is currently open.
func (s *Session) Connected() bool {
	return s.Connection == Connected
}
