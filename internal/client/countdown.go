package client

// Countdown tracks a server-announced countdown. Each Start or Cancel bumps
// the generation so that ticks scheduled for an earlier countdown are dropped.
type Countdown struct {
	remaining  int
	generation uint64
	active     bool
}

// Start seeds a new countdown from n and returns its generation.
func (c *Countdown) Start(n int) uint64 {
	c.generation++
	c.remaining = n
	c.active = true
	return c.generation
}

// Cancel stops the current countdown, if any.
func (c *Countdown) Cancel() {
	c.generation++
	c.active = false
}

// Active reports whether a countdown is in progress.
func (c *Countdown) Active() bool {
	return c.active
}

// Generation returns the current generation.
func (c *Countdown) Generation() uint64 {
	return c.generation
}

// Step advances the countdown of generation gen by one second.
// It returns the value to display, whether the countdown has just finished,
// and ok=false when gen is stale or nothing is running.
func (c *Countdown) Step(gen uint64) (value int, done, ok bool) {
	if !c.active || gen != c.generation {
		return 0, false, false
	}
	if c.remaining <= 0 {
		c.active = false
		return 0, true, true
	}
	value = c.remaining
	c.remaining--
	return value, false, true
}
