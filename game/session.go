package game

import (
	"context"
	"fmt"
	"sync"

	"gridsnake/game/types"
	"gridsnake/scheduler"
)

// Session runs one Engine in real time. Ticks and inputs are serialised
// through a single mutex, so an input landing between two ticks is applied
// atomically and takes effect on the next step.
type Session struct {
	mu     sync.Mutex
	engine *Engine
	ticker *scheduler.Ticker
	speed  types.Speed

	subscribers []func(Snapshot)
}

func NewSession(engine *Engine, speed types.Speed) *Session {
	if !speed.Valid() {
		speed = types.DefaultSpeed
	}
	return &Session{
		engine: engine,
		ticker: scheduler.NewTicker(speed.Interval()),
		speed:  speed,
	}
}

// Run drives the session until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	return s.ticker.Run(ctx, func() { s.Tick() })
}

// Subscribe registers a callback that receives every new snapshot. Callbacks
// run with the session locked and must not call back into it.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// OnEvent forwards engine lifecycle events to fn, with the same locking
// rules as Subscribe.
func (s *Session) OnEvent(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Subscribe(fn)
}

// Start begins a new round unless one is already in progress.
func (s *Session) Start() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.engine.State() {
	case types.Running, types.Paused:
		return s.engine.Snapshot()
	}
	return s.publish(s.engine.Reset())
}

// Restart abandons the current round and begins a new one.
func (s *Session) Restart() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publish(s.engine.Reset())
}

// Tick advances the engine one step. It is what the ticker calls.
func (s *Session) Tick() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publish(s.engine.Step())
}

// Turn buffers a direction change for the next tick.
func (s *Session) Turn(d types.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Turn(d)
}

func (s *Session) TogglePause() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.TogglePause() {
		return s.engine.Snapshot()
	}
	return s.publish(s.engine.Snapshot())
}

// SetSpeed switches the tick preset. Game state is untouched; a running
// ticker is re-armed with the new period.
func (s *Session) SetSpeed(sp types.Speed) error {
	if !sp.Valid() {
		return fmt.Errorf("%w: %d", types.ErrUnknownSpeed, int(sp))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if sp == s.speed {
		return nil
	}
	s.speed = sp
	s.ticker.SetInterval(sp.Interval())
	return nil
}

func (s *Session) Speed() types.Speed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Ticking reports whether the tick source is armed.
func (s *Session) Ticking() bool {
	return s.ticker.Running()
}

// publish keeps the ticker armed exactly while the engine is running and
// hands snap to subscribers. Callers hold s.mu.
func (s *Session) publish(snap Snapshot) Snapshot {
	running := snap.State == types.Running
	if running != s.ticker.Running() {
		if running {
			s.ticker.Start()
		} else {
			s.ticker.Stop()
		}
	}
	for _, fn := range s.subscribers {
		fn(snap)
	}
	return snap
}
