package session

import (
	"errors"
	"testing"

	"github.com/vovakirdan/termpong/internal/snapshot"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in       string
		expected Role
	}{
		{"p1", PlayerA},
		{"P1", PlayerA},
		{"a", PlayerA},
		{"PlayerA", PlayerA},
		{" p2 ", PlayerB},
		{"b", PlayerB},
		{"playerb", PlayerB},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			if err != nil {
				t.Fatalf("ParseRole(%q) error: %v", tc.in, err)
			}
			if got != tc.expected {
				t.Errorf("ParseRole(%q) = %v, expected %v", tc.in, got, tc.expected)
			}
		})
	}
}

func TestParseRoleUnknown(t *testing.T) {
	for _, in := range []string{"", "p3", "spectator"} {
		if _, err := ParseRole(in); !errors.Is(err, ErrUnknownRole) {
			t.Errorf("ParseRole(%q) error = %v, expected ErrUnknownRole", in, err)
		}
	}
}

func TestRoleNames(t *testing.T) {
	if PlayerA.WireName() != "p1" || PlayerB.WireName() != "p2" {
		t.Errorf("wire names = %q/%q", PlayerA.WireName(), PlayerB.WireName())
	}
	if PlayerA.Other() != PlayerB || PlayerB.Other() != PlayerA {
		t.Error("Other() should swap roles")
	}
	if Role(0).Valid() || !PlayerB.Valid() {
		t.Error("Valid() mismatch")
	}
}

func TestRolePaddle(t *testing.T) {
	snap := snapshot.Snapshot{PaddleA: snapshot.Paddle{Y: 10}, PaddleB: snapshot.Paddle{Y: 300}}

	if got := PlayerA.Paddle(snap).Y; got != 10 {
		t.Errorf("PlayerA paddle = %v, expected 10", got)
	}
	if got := PlayerB.Paddle(snap).Y; got != 300 {
		t.Errorf("PlayerB paddle = %v, expected 300", got)
	}
}

func TestApplyReadinessNeverSwaps(t *testing.T) {
	tests := []struct {
		name         string
		role         Role
		ready        snapshot.Readiness
		local, other bool
	}{
		{"A sees own flag", PlayerA, snapshot.Readiness{A: true}, true, false},
		{"A sees opponent flag", PlayerA, snapshot.Readiness{B: true}, false, true},
		{"B sees own flag", PlayerB, snapshot.Readiness{B: true}, true, false},
		{"B sees opponent flag", PlayerB, snapshot.Readiness{A: true}, false, true},
		{"both", PlayerB, snapshot.Readiness{A: true, B: true}, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.role)
			s.ApplyReadiness(tc.ready)
			if s.LocalReady != tc.local || s.RemoteReady != tc.other {
				t.Errorf("local/remote = %v/%v, expected %v/%v", s.LocalReady, s.RemoteReady, tc.local, tc.other)
			}
		})
	}
}

func TestScored(t *testing.T) {
	if role, ok := Scored(snapshot.Score{A: 1, B: 1}, snapshot.Score{A: 2, B: 1}); !ok || role != PlayerA {
		t.Errorf("Scored = %v/%v, expected PlayerA", role, ok)
	}
	if role, ok := Scored(snapshot.Score{}, snapshot.Score{B: 1}); !ok || role != PlayerB {
		t.Errorf("Scored = %v/%v, expected PlayerB", role, ok)
	}
	if _, ok := Scored(snapshot.Score{A: 3, B: 2}, snapshot.Score{}); ok {
		t.Error("a reset to 0-0 is not a point")
	}
}

func TestNewSession(t *testing.T) {
	a, b := New(PlayerA), New(PlayerA)
	if a.ID == b.ID {
		t.Error("sessions should get distinct IDs")
	}
	if a.Connected() || a.Connection.String() != "Disconnected" {
		t.Error("new session should start disconnected")
	}
}
