// Package audio produces the soft ticking feedback played while the ball moves.
// The server sends no hit events, so tones are derived from ball motion alone.
package audio

import (
	"math"
	"time"

	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

// Config tunes the motion heuristic.
type Config struct {
	Interval  time.Duration // how often the watcher samples the ball
	Threshold float64       // minimum horizontal movement between samples
	MinFreq   float64       // tone at the centre line, in Hz
	MaxFreq   float64       // tone at either wall, in Hz
	Duration  time.Duration
	Volume    float64
}

// DefaultConfig returns the 120ms sampler with 400-1200Hz tones.
func DefaultConfig() Config {
	return Config{
		Interval:  120 * time.Millisecond,
		Threshold: 2,
		MinFreq:   400,
		MaxFreq:   1200,
		Duration:  50 * time.Millisecond,
		Volume:    0.08,
	}
}

// Tone is one short beep.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64
}

// Watcher compares successive ball positions and decides when to beep.
type Watcher struct {
	cfg   Config
	table core.Table
	lastX float64
}

// NewWatcher creates a watcher whose first sample is compared against lastX.
func NewWatcher(cfg Config, table core.Table, lastX float64) *Watcher {
	return &Watcher{
		cfg:   cfg,
		table: table,
		lastX: lastX,
	}
}

// Observe samples ballX. It returns a tone when the match is running and the
// ball moved more than the threshold since the previous sample. The sample
// is remembered either way.
func (w *Watcher) Observe(ballX float64, running bool) (Tone, bool) {
	moved := math.Abs(ballX - w.lastX)
	w.lastX = ballX
	if !running || !(moved > w.cfg.Threshold) {
		return Tone{}, false
	}

	half := w.table.Width / 2
	ratio := 0.0
	if half > 0 {
		ratio = math.Abs(ballX-half) / half
	}
	return Tone{
		Frequency: w.cfg.MinFreq + ratio*(w.cfg.MaxFreq-w.cfg.MinFreq),
		Duration:  w.cfg.Duration,
		Volume:    w.cfg.Volume,
	}, true
}

// ObserveSnapshot is Observe applied to a snapshot.
func (w *Watcher) ObserveSnapshot(snap snapshot.Snapshot) (Tone, bool) {
	return w.Observe(snap.Ball.X, snap.Running)
}
