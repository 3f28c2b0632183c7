package conn

import "time"

// Event is posted by the Manager to its consumer.
type Event interface {
	connEvent()
}

// Opened is posted once a connection is established.
type Opened struct {
	Attempt  uint64
	Endpoint string
}

func (Opened) connEvent() {}

// Received carries one inbound text frame.
type Received struct {
	Payload []byte
}

func (Received) connEvent() {}

// Closed is posted after a connection drops or a dial fails.
// WasOpen distinguishes the two; both are retried the same way.
type Closed struct {
	Attempt uint64
	Err     error
	WasOpen bool
	RetryIn time.Duration
}

func (Closed) connEvent() {}
