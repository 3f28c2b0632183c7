package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// Synth plays tones.
type Synth interface {
	Play(t Tone) error
}

// NopSynth discards every tone.
type NopSynth struct{}

// Play implements Synth.
func (NopSynth) Play(Tone) error { return nil }

// BellSynth rings the terminal bell. Terminals cannot vary pitch, so only the
// timing of a tone survives. At most one bell is written per MinGap.
type BellSynth struct {
	w      io.Writer
	clock  clockwork.Clock
	minGap time.Duration
	last   time.Time
	rung   bool
}

// NewBellSynth writes BEL to w, at most once per minGap.
func NewBellSynth(w io.Writer, clock clockwork.Clock, minGap time.Duration) *BellSynth {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &BellSynth{
		w:      w,
		clock:  clock,
		minGap: minGap,
	}
}

// Play implements Synth.
func (b *BellSynth) Play(Tone) error {
	now := b.clock.Now()
	if b.rung && now.Sub(b.last) < b.minGap {
		return nil
	}
	b.last = now
	b.rung = true
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("audio: ring bell: %w", err)
	}
	return nil
}

// LogSynth records tones in the debug log instead of playing them.
type LogSynth struct {
	Logger *log.Logger
}

// Play implements Synth.
func (s LogSynth) Play(t Tone) error {
	s.Logger.Debug("tone", "freq", fmt.Sprintf("%.0fHz", t.Frequency), "dur", t.Duration, "vol", t.Volume)
	return nil
}

// New returns the synth named kind: "bell", "log" or "none".
func New(kind string, w io.Writer, minGap time.Duration, logger *log.Logger) (Synth, error) {
	switch kind {
	case "", "none":
		return NopSynth{}, nil
	case "bell":
		return NewBellSynth(w, nil, minGap), nil
	case "log":
		if logger == nil {
			logger = log.Default()
		}
		return LogSynth{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("audio: unknown synth %q", kind)
	}
}
