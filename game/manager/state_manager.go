package manager

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"gridsnake/store"
)

// ScoreStore is the persistence slot the high score is read from and
// written back to.
type ScoreStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, score int) error
}

// StateManager owns the process-wide high score. It is shared by every
// engine in the process and is safe for concurrent use.
type StateManager struct {
	mu         sync.Mutex
	store      ScoreStore
	highScore  int
	memoryOnly bool
	logger     *log.Logger
}

// NewStateManager reads the stored high score once. A missing or
// unparseable value starts from 0; an unavailable store leaves the manager
// in memory-only mode for the rest of the session.
func NewStateManager(ctx context.Context, st ScoreStore, logger *log.Logger) *StateManager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sm := &StateManager{
		store:  st,
		logger: logger,
	}
	if st == nil {
		sm.memoryOnly = true
		return sm
	}

	score, err := st.Load(ctx)
	switch {
	case err == nil:
		sm.highScore = score
	case errors.Is(err, store.ErrNotFound):
	case errors.Is(err, store.ErrCorrupt):
		sm.logger.Printf("stored high score ignored: %v", err)
	default:
		sm.logger.Printf("high score store unavailable, keeping scores in memory: %v", err)
		sm.memoryOnly = true
	}
	return sm
}

func (sm *StateManager) HighScore() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.highScore
}

// MemoryOnly reports whether persistence has been abandoned for this session.
func (sm *StateManager) MemoryOnly() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.memoryOnly
}

// RecordFinalScore folds a finished game's score into the high score and
// writes it through when beaten. It returns the resulting high score.
func (sm *StateManager) RecordFinalScore(ctx context.Context, score int) (high int, newRecord bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if score <= sm.highScore {
		return sm.highScore, false
	}
	sm.highScore = score

	if !sm.memoryOnly {
		if err := sm.store.Save(ctx, score); err != nil {
			sm.logger.Printf("saving high score failed, keeping scores in memory: %v", err)
			sm.memoryOnly = true
		}
	}
	return sm.highScore, true
}
