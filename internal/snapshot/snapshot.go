// Package snapshot holds the last authoritative game state received from the server.
package snapshot

import (
	"sync/atomic"

	"github.com/vovakirdan/termpong/internal/core"
)

// Ball is the top-left corner of the ball in table units.
type Ball struct {
	X, Y float64
}

// Paddle is the top edge of a paddle in table units.
type Paddle struct {
	Y float64
}

// Score holds the points of each side.
type Score struct {
	A, B int
}

// Total returns the number of points played so far.
func (s Score) Total() int {
	return s.A + s.B
}

// Readiness records which sides have pressed start.
type Readiness struct {
	A, B bool
}

// Snapshot is one complete server-reported state of the table.
// Values are never merged; a new state replaces the previous one wholesale.
type Snapshot struct {
	Ball    Ball
	PaddleA Paddle
	PaddleB Paddle
	Score   Score
	Running bool
	Ready   Readiness
}

// Default returns the centred start-of-match snapshot for a table.
func Default(t core.Table) Snapshot {
	paddle := Paddle{Y: t.CenteredPaddleY()}
	return Snapshot{
		Ball:    Ball{X: t.Width / 2, Y: t.Height / 2},
		PaddleA: paddle,
		PaddleB: paddle,
	}
}

// Store holds exactly one live snapshot. Every update swaps a fully formed
// value in with a single pointer store, so readers never see a partial state.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

// NewStore creates a store seeded with initial.
func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.Replace(initial)
	return s
}

// Load returns a copy of the current snapshot.
func (s *Store) Load() Snapshot {
	return *s.cur.Load()
}

// Replace installs next as the current snapshot.
func (s *Store) Replace(next Snapshot) {
	s.cur.Store(&next)
}

// MarkRunning replaces the current snapshot with a copy flagged as running.
// Only the protocol machine calls it, so the load and store never race with
// another writer.
func (s *Store) MarkRunning() {
	next := s.Load()
	next.Running = true
	s.Replace(next)
}
