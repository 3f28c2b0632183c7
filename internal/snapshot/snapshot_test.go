package snapshot

import (
	"sync"
	"testing"

	"github.com/vovakirdan/termpong/internal/core"
)

func TestDefault(t *testing.T) {
	snap := Default(core.DefaultTable())

	if snap.Ball != (Ball{X: 450, Y: 250}) {
		t.Errorf("ball = %+v, expected table centre", snap.Ball)
	}
	if snap.PaddleA.Y != 200 || snap.PaddleB.Y != 200 {
		t.Errorf("paddles = %v/%v, expected 200/200", snap.PaddleA.Y, snap.PaddleB.Y)
	}
	if snap.Score != (Score{}) || snap.Running || snap.Ready != (Readiness{}) {
		t.Errorf("default snapshot should be idle at 0-0, got %+v", snap)
	}
}

func TestStoreReplaceIsWholesale(t *testing.T) {
	store := NewStore(Default(core.DefaultTable()))

	next := Snapshot{
		Ball:    Ball{X: 10, Y: 20},
		PaddleA: Paddle{Y: 0},
		PaddleB: Paddle{Y: 400},
		Score:   Score{A: 2, B: 1},
		Running: true,
		Ready:   Readiness{A: true},
	}
	store.Replace(next)

	if got := store.Load(); got != next {
		t.Errorf("Load() = %+v, expected %+v", got, next)
	}
}

func TestStoreLoadReturnsCopy(t *testing.T) {
	store := NewStore(Default(core.DefaultTable()))

	snap := store.Load()
	snap.Score.A = 99

	if store.Load().Score.A != 0 {
		t.Error("mutating a loaded snapshot must not affect the store")
	}
}

func TestStoreMarkRunning(t *testing.T) {
	store := NewStore(Snapshot{Score: Score{A: 3, B: 4}})
	store.MarkRunning()

	got := store.Load()
	if !got.Running {
		t.Error("MarkRunning should set Running")
	}
	if got.Score != (Score{A: 3, B: 4}) {
		t.Errorf("MarkRunning must keep the rest of the snapshot, got %+v", got)
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	store := NewStore(Snapshot{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := store.Load()
				// Both fields are written together by every Replace below.
				if snap.Score.A != snap.Score.B {
					t.Errorf("torn snapshot: %+v", snap)
					return
				}
			}
		}()
	}
	for j := 0; j < 1000; j++ {
		store.Replace(Snapshot{Score: Score{A: j, B: j}})
	}
	wg.Wait()
}

func TestScoreTotal(t *testing.T) {
	if got := (Score{A: 2, B: 5}).Total(); got != 7 {
		t.Errorf("Total() = %d, expected 7", got)
	}
}
