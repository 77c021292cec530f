// Package scheduler provides the fixed-interval tick source that drives a
// game session. The engine never owns timing; a Ticker calls back into
// whoever owns the engine.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Ticker invokes a callback at a fixed period while started. Callbacks
// never overlap: they all run on the goroutine that called Run.
type Ticker struct {
	mu       sync.Mutex
	interval time.Duration
	running  bool

	rearm chan struct{}
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		interval: interval,
		rearm:    make(chan struct{}, 1),
	}
}

// Run blocks until ctx is done, calling fn once per period while the ticker
// is started.
func (t *Ticker) Run(ctx context.Context, fn func()) error {
	var (
		tk *time.Ticker
		c  <-chan time.Time
	)
	defer func() {
		if tk != nil {
			tk.Stop()
		}
	}()

	apply := func() {
		t.mu.Lock()
		running, interval := t.running, t.interval
		t.mu.Unlock()

		if !running {
			if tk != nil {
				tk.Stop()
			}
			c = nil
			return
		}
		if tk == nil {
			tk = time.NewTicker(interval)
		} else {
			tk.Reset(interval)
		}
		c = tk.C
	}
	apply()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.rearm:
			apply()
		case <-c:
			// A Stop issued between the tick firing and now must win.
			if t.Running() {
				fn()
			}
		}
	}
}

// Start arms the ticker. The first tick fires one full period later.
func (t *Ticker) Start() {
	t.mu.Lock()
	t.running = true
	t.mu.Unlock()
	t.signal()
}

// Stop disarms the ticker. Run keeps waiting for a later Start.
func (t *Ticker) Stop() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
	t.signal()
}

// SetInterval changes the period. A running ticker is re-armed with the new
// period immediately.
func (t *Ticker) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()
	t.signal()
}

func (t *Ticker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) signal() {
	select {
	case t.rearm <- struct{}{}:
	default:
	}
}
