package game

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"gridsnake/game/entity"
	"gridsnake/game/manager"
	"gridsnake/game/types"
)

// EngineConfig wires an Engine's dependencies. Zero values get defaults:
// a 20x20 grid, a time-seeded random source, a memory-only high score, a
// discarding logger and the wall clock.
type EngineConfig struct {
	GridSize int
	Rand     *rand.Rand
	Scores   *manager.StateManager
	Logger   *log.Logger
	Clock    func() time.Time
}

// Engine owns one game: grid, snake, food, direction, score and run state.
// It advances exactly one step per Step call and is not safe for
// concurrent use; Session serialises access for real-time play.
type Engine struct {
	grid      types.Grid
	collision *manager.CollisionManager
	food      *manager.FoodManager
	scores    *manager.StateManager
	logger    *log.Logger
	clock     func() time.Time

	snake     *entity.Snake
	foodPos   types.Point
	hasFood   bool
	direction types.Point
	pending   *types.Point
	score     int
	state     types.RunState
	outcome   Outcome

	roundID   string
	startedAt time.Time

	listeners []func(Event)
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.GridSize <= 0 {
		cfg.GridSize = types.DefaultGridSize
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Scores == nil {
		cfg.Scores = manager.NewStateManager(context.Background(), nil, cfg.Logger)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	grid := types.NewGrid(cfg.GridSize)
	return &Engine{
		grid:      grid,
		collision: manager.NewCollisionManager(grid),
		food:      manager.NewFoodManager(grid, cfg.Rand),
		scores:    cfg.Scores,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		snake:     &entity.Snake{},
		state:     types.NotStarted,
	}
}

// Subscribe registers a listener for lifecycle events.
func (e *Engine) Subscribe(fn func(Event)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) Grid() types.Grid { return e.grid }

func (e *Engine) State() types.RunState { return e.state }

func (e *Engine) Score() int { return e.score }

// Direction is the heading the next step will use, including a buffered turn.
func (e *Engine) Direction() types.Point {
	if e.pending != nil {
		return *e.pending
	}
	return e.direction
}

// Reset starts a fresh round from any state.
func (e *Engine) Reset() Snapshot {
	e.snake = entity.NewSnake(e.grid.Center())
	e.direction = types.Point{}
	e.pending = nil
	e.score = 0
	e.outcome = OutcomeNone
	e.roundID = uuid.New().String()
	e.startedAt = e.clock()
	e.state = types.Running

	e.emit(Event{Kind: EventStarted})

	if !e.placeFood() {
		e.finish(OutcomeBoardFull)
	}
	return e.Snapshot()
}

// SetDirection buffers a heading change for the next step. It returns false,
// changing nothing, when the game is not running, when p is not a unit
// vector, or when p shares an axis with the current heading (or with a turn
// already buffered for this tick).
func (e *Engine) SetDirection(p types.Point) bool {
	if e.state != types.Running || !p.IsUnit() {
		return false
	}
	if !acceptsTurn(e.direction, p) {
		return false
	}
	if e.pending != nil && !acceptsTurn(*e.pending, p) {
		return false
	}
	e.pending = &p
	return true
}

// Turn is SetDirection for a named direction.
func (e *Engine) Turn(d types.Direction) bool {
	return e.SetDirection(d.ToPoint())
}

// acceptsTurn rejects any request with a non-zero component on an axis the
// current heading already moves along. Idle accepts anything.
func acceptsTurn(current, requested types.Point) bool {
	if requested.X != 0 && current.X != 0 {
		return false
	}
	if requested.Y != 0 && current.Y != 0 {
		return false
	}
	return true
}

// Step advances the game by one tick.
func (e *Engine) Step() Snapshot {
	if e.state != types.Running {
		e.outcome = OutcomeNone
		return e.Snapshot()
	}

	if e.pending != nil {
		e.direction = *e.pending
		e.pending = nil
	}
	if e.direction.IsIdle() {
		e.outcome = OutcomeNone
		return e.Snapshot()
	}

	newHead := e.snake.GetHead().Add(e.direction)
	ate := e.hasFood && newHead == e.foodPos

	next := e.snake.Clone()
	next.Advance(newHead, ate)

	switch e.collision.Check(newHead, next.Tail()) {
	case manager.WallCollision:
		e.finish(OutcomeWall)
		return e.Snapshot()
	case manager.SelfCollision:
		e.finish(OutcomeSelf)
		return e.Snapshot()
	}

	e.snake = next
	if !ate {
		e.outcome = OutcomeMoved
		return e.Snapshot()
	}

	e.score++
	e.outcome = OutcomeAte
	e.emit(Event{Kind: EventAte})
	if !e.placeFood() {
		e.finish(OutcomeBoardFull)
	}
	return e.Snapshot()
}

// Pause stops a running game. Steps are no-ops until Resume.
func (e *Engine) Pause() bool {
	if e.state != types.Running {
		return false
	}
	e.state = types.Paused
	e.emit(Event{Kind: EventPaused})
	return true
}

func (e *Engine) Resume() bool {
	if e.state != types.Paused {
		return false
	}
	e.state = types.Running
	e.emit(Event{Kind: EventResumed})
	return true
}

// TogglePause flips between Running and Paused; it does nothing before the
// first reset or after the game ended.
func (e *Engine) TogglePause() bool {
	switch e.state {
	case types.Running:
		return e.Pause()
	case types.Paused:
		return e.Resume()
	default:
		return false
	}
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		RoundID:   e.roundID,
		GridSize:  e.grid.Size,
		Snake:     e.snake.Segments(),
		Food:      e.foodPos,
		HasFood:   e.hasFood,
		Direction: e.direction,
		Score:     e.score,
		HighScore: e.scores.HighScore(),
		State:     e.state,
		Outcome:   e.outcome,
	}
}

func (e *Engine) placeFood() bool {
	food, err := e.food.PlaceFood(e.snake)
	if err != nil {
		if !errors.Is(err, manager.ErrBoardFull) {
			e.logger.Printf("round %s: food placement: %v", e.roundID, err)
		}
		e.hasFood = false
		return false
	}
	e.foodPos = food
	e.hasFood = true
	return true
}

func (e *Engine) finish(reason Outcome) {
	e.state = types.Ended
	e.outcome = reason
	e.pending = nil

	high, record := e.scores.RecordFinalScore(context.Background(), e.score)
	e.logger.Printf("round %s ended (%s): score %d, high score %d, %s",
		e.roundID, reason, e.score, high, e.clock().Sub(e.startedAt).Round(time.Second))
	e.emit(Event{Kind: EventEnded, Reason: reason, NewRecord: record})
}

func (e *Engine) emit(ev Event) {
	ev.RoundID = e.roundID
	ev.Score = e.score
	ev.HighScore = e.scores.HighScore()
	ev.StartedAt = e.startedAt
	ev.At = e.clock()
	for _, fn := range e.listeners {
		fn(ev)
	}
}
