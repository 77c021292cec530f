package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"gridsnake/game/types"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	e := NewEngine(EngineConfig{GridSize: 20, Rand: rand.New(rand.NewSource(11))})
	return NewSession(e, types.SpeedNormal)
}

func TestSessionArmsTickerWithGameState(t *testing.T) {
	s := newTestSession(t)
	if s.Ticking() {
		t.Fatal("ticker armed before start")
	}

	s.Start()
	if !s.Ticking() {
		t.Fatal("ticker not armed after start")
	}

	s.TogglePause()
	if s.Ticking() || s.Snapshot().State != types.Paused {
		t.Fatal("pause must disarm the ticker")
	}
	s.TogglePause()
	if !s.Ticking() {
		t.Fatal("resume must re-arm the ticker")
	}

	s.engine.snake.Body[0] = types.Point{X: 0, Y: 0}
	s.Turn(types.Left)
	if snap := s.Tick(); snap.State != types.Ended {
		t.Fatalf("state = %v, want ended", snap.State)
	}
	if s.Ticking() {
		t.Error("ended game must disarm the ticker")
	}

	s.Restart()
	if !s.Ticking() || s.Snapshot().State != types.Running {
		t.Error("restart must re-arm the ticker")
	}
}

func TestSessionStartDoesNotInterruptRound(t *testing.T) {
	s := newTestSession(t)
	first := s.Start()
	s.Turn(types.Up)
	s.Tick()

	again := s.Start()
	if again.RoundID != first.RoundID {
		t.Error("Start during a round reset the game")
	}
	if s.Restart().RoundID == first.RoundID {
		t.Error("Restart kept the old round")
	}
}

func TestSessionSetSpeedKeepsState(t *testing.T) {
	s := newTestSession(t)
	s.Start()
	s.Turn(types.Right)
	before := s.Tick()

	if err := s.SetSpeed(types.SpeedTurbo); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	after := s.Snapshot()
	if after.Snake[0] != before.Snake[0] || after.Score != before.Score || after.State != before.State {
		t.Errorf("speed change altered state: %+v -> %+v", before, after)
	}
	if s.Speed() != types.SpeedTurbo || s.ticker.Interval() != types.SpeedTurbo.Interval() {
		t.Errorf("speed %v interval %v", s.Speed(), s.ticker.Interval())
	}

	if err := s.SetSpeed(types.Speed(42)); !errors.Is(err, types.ErrUnknownSpeed) {
		t.Errorf("SetSpeed(42) = %v, want ErrUnknownSpeed", err)
	}
}

func TestSessionPublishesSnapshots(t *testing.T) {
	s := newTestSession(t)
	var got []types.RunState
	s.Subscribe(func(snap Snapshot) { got = append(got, snap.State) })

	s.Start()
	s.Tick()
	s.TogglePause()
	s.TogglePause()

	want := []types.RunState{types.Running, types.Running, types.Paused, types.Running}
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("published %v, want %v", got, want)
		}
	}
}

func TestSessionRunDrivesTicks(t *testing.T) {
	s := newTestSession(t)
	if err := s.SetSpeed(types.SpeedTurbo); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	ticks := 0
	s.Subscribe(func(Snapshot) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.Start()
	s.Turn(types.Up)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := ticks
		mu.Unlock()
		if n >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d snapshots published", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
}
