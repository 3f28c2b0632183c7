// Package protocol implements the JSON text-frame protocol spoken with the
// pong server. Every frame is one object with a "type" discriminator.
package protocol

// Message type discriminators.
const (
	TypeMove      = "move"
	TypeStart     = "start"
	TypePing      = "ping"
	TypeState     = "state"
	TypeWaiting   = "waiting"
	TypeCountdown = "countdown"
	TypeStarted   = "started"
	TypeInfo      = "info"
	TypePong      = "pong"
	TypeError     = "error"
)

// Outbound is a client-to-server message.
type Outbound interface {
	outbound()
	// Type returns the wire discriminator.
	Type() string
}

// Move asks the server to place this client's paddle top edge at Y.
type Move struct {
	Y float64
}

func (Move) outbound() {}
func (Move) Type() string { return TypeMove }

// Start signals readiness to begin a point.
type Start struct{}

func (Start) outbound() {}
func (Start) Type() string { return TypeStart }

// Ping is the keep-alive message.
type Ping struct{}

func (Ping) outbound() {}
func (Ping) Type() string { return TypePing }

// Inbound is a server-to-client message.
type Inbound interface {
	inbound()
}

// Point is a position in table units.
type Point struct {
	X, Y float64
}

// State is one authoritative snapshot of the table.
type State struct {
	Ball    Point
	PaddleA float64
	PaddleB float64
	ScoreA  int
	ScoreB  int
	Running bool
	ReadyA  bool
	ReadyB  bool
}

func (State) inbound() {}

// Waiting carries a human-readable status line to show verbatim.
type Waiting struct {
	Msg string
}

func (Waiting) inbound() {}

// Countdown starts a countdown from N seconds.
type Countdown struct {
	N int
}

func (Countdown) inbound() {}

// Started announces that play has begun.
type Started struct{}

func (Started) inbound() {}

// Info is an advisory notice such as "p2 joined".
type Info struct {
	Msg string
}

func (Info) inbound() {}

// Pong answers a Ping.
type Pong struct{}

func (Pong) inbound() {}

// Error reports a server-side rejection, for example an invalid role.
type Error struct {
	Msg string
}

func (Error) inbound() {}

// Unknown is a well-formed frame with a type this client does not know.
type Unknown struct {
	Type string
}

func (Unknown) inbound() {}
