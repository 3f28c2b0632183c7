package storage

import (
	"github.com/jonboulle/clockwork"
)

// Recorder writes the history of one client session.
// It is used from the UI loop only.
type Recorder struct {
	store     *Store
	clock     clockwork.Clock
	sessionID string
	role      string
	server    string

	openID int64 // 0 while no connection row is open
}

// NewRecorder creates a recorder for one session.
func NewRecorder(store *Store, clock clockwork.Clock, sessionID, role, server string) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Recorder{
		store:     store,
		clock:     clock,
		sessionID: sessionID,
		role:      role,
		server:    server,
	}
}

// ConnectionOpened starts a connection row, closing any row left open.
func (r *Recorder) ConnectionOpened() error {
	if r.openID != 0 {
		if err := r.ConnectionClosed(); err != nil {
			return err
		}
	}
	id, err := r.store.OpenConnection(r.sessionID, r.role, r.server, r.clock.Now())
	if err != nil {
		return err
	}
	r.openID = id
	return nil
}

// ConnectionClosed stamps the open connection row, if any.
func (r *Recorder) ConnectionClosed() error {
	if r.openID == 0 {
		return nil
	}
	id := r.openID
	r.openID = 0
	return r.store.CloseConnection(id, r.clock.Now())
}

// PointScored records a point won by scorer at the given score.
func (r *Recorder) PointScored(scorer string, scoreA, scoreB int) error {
	_, err := r.store.SavePoint(PointEntry{
		SessionID: r.sessionID,
		Role:      r.role,
		Scorer:    scorer,
		ScoreA:    scoreA,
		ScoreB:    scoreB,
		CreatedAt: r.clock.Now(),
	})
	return err
}
