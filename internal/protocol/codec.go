package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every decode failure.
var ErrMalformed = errors.New("protocol: malformed message")

type envelope struct {
	Type *string `json:"type"`
}

type wirePoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type wirePaddle struct {
	Y *float64 `json:"y"`
}

type wireSides[T any] struct {
	P1 *T `json:"p1"`
	P2 *T `json:"p2"`
}

type wireState struct {
	Ball    *wirePoint       `json:"ball"`
	P1      *wirePaddle      `json:"p1"`
	P2      *wirePaddle      `json:"p2"`
	Score   *wireSides[int]  `json:"score"`
	Running *bool            `json:"running"`
	Ready   *wireSides[bool] `json:"ready"`
}

type wireText struct {
	Msg string `json:"msg"`
}

type wireCountdown struct {
	N *int `json:"n"`
}

type wireMove struct {
	Type string  `json:"type"`
	Y    float64 `json:"y"`
}

type wireBare struct {
	Type string `json:"type"`
}

// Encode serializes an outbound message to a single JSON text frame.
func Encode(m Outbound) ([]byte, error) {
	var v any
	switch msg := m.(type) {
	case Move:
		v = wireMove{Type: TypeMove, Y: msg.Y}
	case Start, Ping:
		v = wireBare{Type: msg.Type()}
	default:
		return nil, fmt.Errorf("protocol: cannot encode %T", m)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.Type(), err)
	}
	return data, nil
}

// Decode parses one inbound frame. Frames that are not JSON objects, lack a
// type, or carry a malformed body for a known type return an error wrapping
// ErrMalformed. Unrecognised types decode to Unknown without error.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch typ := *env.Type; typ {
	case TypeState:
		return decodeState(data)
	case TypeWaiting:
		var w wireText
		if err := unmarshalBody(typ, data, &w); err != nil {
			return nil, err
		}
		return Waiting{Msg: w.Msg}, nil
	case TypeCountdown:
		return decodeCountdown(data)
	case TypeStarted:
		return Started{}, nil
	case TypeInfo:
		var w wireText
		if err := unmarshalBody(typ, data, &w); err != nil {
			return nil, err
		}
		return Info{Msg: w.Msg}, nil
	case TypePong:
		return Pong{}, nil
	case TypeError:
		var w wireText
		if err := unmarshalBody(typ, data, &w); err != nil {
			return nil, err
		}
		return Error{Msg: w.Msg}, nil
	default:
		return Unknown{Type: typ}, nil
	}
}

func unmarshalBody(typ string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, typ, err)
	}
	return nil
}

func decodeCountdown(data []byte) (Inbound, error) {
	var w wireCountdown
	if err := unmarshalBody(TypeCountdown, data, &w); err != nil {
		return nil, err
	}
	if w.N == nil {
		return nil, fmt.Errorf("%w: countdown: missing n", ErrMalformed)
	}
	if *w.N < 0 {
		return nil, fmt.Errorf("%w: countdown: negative n %d", ErrMalformed, *w.N)
	}
	return Countdown{N: *w.N}, nil
}

func decodeState(data []byte) (Inbound, error) {
	var w wireState
	if err := unmarshalBody(TypeState, data, &w); err != nil {
		return nil, err
	}

	switch {
	case w.Ball == nil || w.Ball.X == nil || w.Ball.Y == nil:
		return nil, fmt.Errorf("%w: state: missing ball", ErrMalformed)
	case w.P1 == nil || w.P1.Y == nil:
		return nil, fmt.Errorf("%w: state: missing p1", ErrMalformed)
	case w.P2 == nil || w.P2.Y == nil:
		return nil, fmt.Errorf("%w: state: missing p2", ErrMalformed)
	case w.Score == nil || w.Score.P1 == nil || w.Score.P2 == nil:
		return nil, fmt.Errorf("%w: state: missing score", ErrMalformed)
	case w.Running == nil:
		return nil, fmt.Errorf("%w: state: missing running", ErrMalformed)
	case w.Ready == nil || w.Ready.P1 == nil || w.Ready.P2 == nil:
		return nil, fmt.Errorf("%w: state: missing ready", ErrMalformed)
	}
	if *w.Score.P1 < 0 || *w.Score.P2 < 0 {
		return nil, fmt.Errorf("%w: state: negative score", ErrMalformed)
	}

	return State{
		Ball:    Point{X: *w.Ball.X, Y: *w.Ball.Y},
		PaddleA: *w.P1.Y,
		PaddleB: *w.P2.Y,
		ScoreA:  *w.Score.P1,
		ScoreB:  *w.Score.P2,
		Running: *w.Running,
		ReadyA:  *w.Ready.P1,
		ReadyB:  *w.Ready.P2,
	}, nil
}
