package game

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"gridsnake/game/entity"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/store"
)

var (
	right = types.Point{X: 1, Y: 0}
	left  = types.Point{X: -1, Y: 0}
	up    = types.Point{X: 0, Y: -1}
	down  = types.Point{X: 0, Y: 1}
)

func newTestEngine(t *testing.T, size int, seed uint64) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		GridSize: size,
		Rand:     rand.New(rand.NewSource(seed)),
	})
}

// place puts the engine into a running position without going through Reset.
func place(e *Engine, body []types.Point, dir types.Point, food types.Point) {
	e.snake = &entity.Snake{Body: append([]types.Point(nil), body...)}
	e.direction = dir
	e.pending = nil
	e.foodPos = food
	e.hasFood = true
	e.state = types.Running
}

func TestNewEngineNotStarted(t *testing.T) {
	e := newTestEngine(t, 0, 1)
	snap := e.Snapshot()
	if snap.State != types.NotStarted {
		t.Errorf("state = %v, want not_started", snap.State)
	}
	if snap.GridSize != types.DefaultGridSize {
		t.Errorf("grid size = %d, want %d", snap.GridSize, types.DefaultGridSize)
	}
	if e.Step().Outcome != OutcomeNone {
		t.Error("Step before Reset should be a no-op")
	}
	if e.Turn(types.Right) {
		t.Error("Turn before Reset should be rejected")
	}
}

func TestResetInitialState(t *testing.T) {
	e := newTestEngine(t, 20, 3)
	snap := e.Reset()

	if len(snap.Snake) != 1 || snap.Snake[0] != (types.Point{X: 10, Y: 10}) {
		t.Fatalf("snake = %v, want [(10,10)]", snap.Snake)
	}
	if !snap.Direction.IsIdle() {
		t.Errorf("direction = %v, want idle", snap.Direction)
	}
	if snap.Score != 0 || snap.State != types.Running {
		t.Errorf("score %d state %v, want 0 running", snap.Score, snap.State)
	}
	if !snap.HasFood || snap.Food == snap.Snake[0] {
		t.Errorf("food %v (has %v) must be placed off the snake", snap.Food, snap.HasFood)
	}
	if snap.RoundID == "" {
		t.Error("round ID not assigned")
	}

	prev := snap.RoundID
	if e.Reset().RoundID == prev {
		t.Error("Reset should start a new round")
	}
}

func TestFirstMoveFromIdle(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	e.Reset()
	e.foodPos = types.Point{X: 0, Y: 0}

	if !e.SetDirection(right) {
		t.Fatal("idle snake should accept any first direction")
	}
	snap := e.Step()

	if len(snap.Snake) != 1 || snap.Snake[0] != (types.Point{X: 11, Y: 10}) {
		t.Errorf("snake = %v, want [(11,10)]", snap.Snake)
	}
	if snap.Food != (types.Point{X: 0, Y: 0}) {
		t.Errorf("food moved to %v", snap.Food)
	}
	if snap.Score != 0 || snap.Outcome != OutcomeMoved {
		t.Errorf("score %d outcome %v, want 0 moved", snap.Score, snap.Outcome)
	}
}

func TestEatGrowsSnake(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	place(e, []types.Point{{X: 5, Y: 5}}, right, types.Point{X: 6, Y: 5})

	snap := e.Step()

	want := []types.Point{{X: 6, Y: 5}, {X: 5, Y: 5}}
	if len(snap.Snake) != 2 || snap.Snake[0] != want[0] || snap.Snake[1] != want[1] {
		t.Fatalf("snake = %v, want %v", snap.Snake, want)
	}
	if snap.Score != 1 || snap.Outcome != OutcomeAte {
		t.Errorf("score %d outcome %v, want 1 ate", snap.Score, snap.Outcome)
	}
	if !snap.HasFood || snap.Food == want[0] || snap.Food == want[1] {
		t.Errorf("new food %v must avoid the snake", snap.Food)
	}
}

func TestWallCollisionKeepsLastBody(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	body := []types.Point{{X: 0, Y: 5}, {X: 1, Y: 5}}
	place(e, body, left, types.Point{X: 10, Y: 10})
	e.score = 4

	snap := e.Step()

	if snap.State != types.Ended || snap.Outcome != OutcomeWall {
		t.Fatalf("state %v outcome %v, want ended wall", snap.State, snap.Outcome)
	}
	if snap.Score != 4 {
		t.Errorf("score changed to %d", snap.Score)
	}
	if len(snap.Snake) != 2 || snap.Snake[0] != body[0] || snap.Snake[1] != body[1] {
		t.Errorf("snake = %v, want last valid body %v", snap.Snake, body)
	}

	if e.Step().Snake[0] != body[0] {
		t.Error("Step after the game ended must not move the snake")
	}
}

func TestSelfCollisionEndsRound(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	body := []types.Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}}
	place(e, body, down, types.Point{X: 0, Y: 0})

	snap := e.Step()

	if snap.State != types.Ended || snap.Outcome != OutcomeSelf {
		t.Fatalf("state %v outcome %v, want ended self", snap.State, snap.Outcome)
	}
	if len(snap.Snake) != 3 || snap.Snake[0] != body[0] {
		t.Errorf("snake = %v, want unchanged %v", snap.Snake, body)
	}
}

func TestReverseTurnRejected(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	place(e, []types.Point{{X: 5, Y: 5}, {X: 4, Y: 5}}, right, types.Point{X: 0, Y: 0})

	if e.SetDirection(left) {
		t.Fatal("reversal accepted")
	}
	if e.Direction() != right {
		t.Errorf("direction = %v, want right", e.Direction())
	}
	if head := e.Step().Snake[0]; head != (types.Point{X: 6, Y: 5}) {
		t.Errorf("head = %v, want (6,5)", head)
	}
}

func TestSetDirectionRejectsSameAxisAndNonUnit(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	place(e, []types.Point{{X: 5, Y: 5}}, right, types.Point{X: 0, Y: 0})

	for _, p := range []types.Point{right, left, {X: 1, Y: 1}, {X: 2, Y: 0}, {}} {
		if e.SetDirection(p) {
			t.Errorf("SetDirection(%v) accepted while moving right", p)
		}
	}
	if !e.SetDirection(up) {
		t.Error("perpendicular turn rejected")
	}
}

func TestPendingTurnCannotBeReversedBeforeStep(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	body := []types.Point{{X: 5, Y: 5}, {X: 4, Y: 5}}
	place(e, body, right, types.Point{X: 0, Y: 0})

	if !e.SetDirection(up) {
		t.Fatal("up rejected")
	}
	// down would reverse the buffered turn; left would reverse the current one.
	if e.SetDirection(down) || e.SetDirection(left) {
		t.Fatal("reversal of the buffered turn accepted")
	}
	if e.Direction() != up {
		t.Errorf("effective direction = %v, want up", e.Direction())
	}
	if e.Snapshot().Direction != right {
		t.Error("snapshot direction must stay on the applied heading until Step")
	}

	snap := e.Step()
	if snap.State != types.Running || snap.Snake[0] != (types.Point{X: 5, Y: 4}) {
		t.Errorf("after step: state %v head %v, want running (5,4)", snap.State, snap.Snake[0])
	}
}

func TestTailCellIsFreeWhenNotGrowing(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	body := []types.Point{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}}
	place(e, body, down, types.Point{X: 0, Y: 0})

	snap := e.Step()
	if snap.State != types.Running {
		t.Fatalf("moving into the vacated tail cell ended the game: %v", snap.Outcome)
	}
	if snap.Snake[0] != (types.Point{X: 5, Y: 6}) {
		t.Errorf("head = %v, want (5,6)", snap.Snake[0])
	}
}

func TestIdleStepIsNoop(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	before := e.Reset()
	after := e.Step()
	if after.Snake[0] != before.Snake[0] || after.Outcome != OutcomeNone {
		t.Errorf("idle step moved the snake: %v -> %v (%v)", before.Snake, after.Snake, after.Outcome)
	}
}

func TestPauseGatesStepAndInput(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	place(e, []types.Point{{X: 5, Y: 5}}, right, types.Point{X: 0, Y: 0})

	if !e.Pause() {
		t.Fatal("Pause from running rejected")
	}
	if e.Pause() {
		t.Error("second Pause should be rejected")
	}
	if snap := e.Step(); snap.Snake[0] != (types.Point{X: 5, Y: 5}) || snap.State != types.Paused {
		t.Errorf("paused step changed state: %+v", snap)
	}
	if e.SetDirection(up) {
		t.Error("direction accepted while paused")
	}

	if !e.TogglePause() || e.State() != types.Running {
		t.Fatal("TogglePause should resume")
	}
	if head := e.Step().Snake[0]; head != (types.Point{X: 6, Y: 5}) {
		t.Errorf("head = %v after resume, want (6,5)", head)
	}
}

func TestPauseIgnoredWhenNotRunning(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	if e.TogglePause() || e.Resume() {
		t.Error("pause toggled before the first reset")
	}
	place(e, []types.Point{{X: 0, Y: 0}}, left, types.Point{X: 5, Y: 5})
	e.Step()
	if e.State() != types.Ended {
		t.Fatal("expected ended")
	}
	if e.TogglePause() || e.State() != types.Ended {
		t.Error("pause toggled after the game ended")
	}
}

func TestBoardFullEndsRound(t *testing.T) {
	e := newTestEngine(t, 2, 1)
	place(e, []types.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, down, types.Point{X: 0, Y: 1})

	snap := e.Step()
	if snap.State != types.Ended || snap.Outcome != OutcomeBoardFull {
		t.Fatalf("state %v outcome %v, want ended board_full", snap.State, snap.Outcome)
	}
	if snap.HasFood {
		t.Error("board-full snapshot must report no food")
	}
	if snap.Score != 1 || len(snap.Snake) != 4 {
		t.Errorf("score %d len %d, want 1 and 4", snap.Score, len(snap.Snake))
	}
}

func TestResetOnSingleCellGridIsBoardFull(t *testing.T) {
	e := newTestEngine(t, 1, 1)
	snap := e.Reset()
	if snap.State != types.Ended || snap.Outcome != OutcomeBoardFull {
		t.Errorf("state %v outcome %v, want ended board_full", snap.State, snap.Outcome)
	}
}

func TestEventsAndHighScore(t *testing.T) {
	scores := manager.NewStateManager(context.Background(), store.NewMemoryStore(), nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	e := NewEngine(EngineConfig{
		GridSize: 20,
		Rand:     rand.New(rand.NewSource(5)),
		Scores:   scores,
		Clock:    func() time.Time { return now },
	})

	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })

	e.Reset()
	place(e, []types.Point{{X: 1, Y: 0}}, left, types.Point{X: 0, Y: 0})
	e.Step()
	now = now.Add(3 * time.Second)
	e.Step()

	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	want := []EventKind{EventStarted, EventAte, EventEnded}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}

	end := events[2]
	if end.Reason != OutcomeWall || end.Score != 1 || end.HighScore != 1 || !end.NewRecord {
		t.Errorf("end event = %+v", end)
	}
	if end.Duration() != 3*time.Second {
		t.Errorf("duration = %v, want 3s", end.Duration())
	}
	if e.Snapshot().HighScore != 1 {
		t.Errorf("snapshot high score = %d, want 1", e.Snapshot().HighScore)
	}

	// A worse second game leaves the record alone.
	events = nil
	e.Reset()
	place(e, []types.Point{{X: 0, Y: 3}}, left, types.Point{X: 9, Y: 9})
	e.Step()
	last := events[len(events)-1]
	if last.NewRecord || last.HighScore != 1 {
		t.Errorf("second game end = %+v, want high score 1 and no record", last)
	}
}

func TestRoundEndLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	e := NewEngine(EngineConfig{
		GridSize: 10,
		Rand:     rand.New(rand.NewSource(3)),
		Logger:   log.New(&buf, "", 0),
		Clock:    func() time.Time { return now },
	})

	e.Reset()
	place(e, []types.Point{{X: 0, Y: 4}}, left, types.Point{X: 9, Y: 9})
	now = now.Add(2 * time.Second)
	e.Step()

	out := buf.String()
	if n := strings.Count(out, "ended"); n != 1 {
		t.Fatalf("round end logged %d times:\n%s", n, out)
	}
	if !strings.Contains(out, "ended (wall): score 0, high score 0, 2s") {
		t.Errorf("log line = %q", out)
	}
}

func TestSameSeedSameGame(t *testing.T) {
	a := newTestEngine(t, 20, 42)
	b := newTestEngine(t, 20, 42)
	if a.Reset().Food != b.Reset().Food {
		t.Fatal("same seed placed food differently")
	}
}

// TestRandomPlayInvariants drives games with random inputs and checks the
// invariants that must hold after every step.
func TestRandomPlayInvariants(t *testing.T) {
	moves := []types.Point{up, down, left, right}
	input := rand.New(rand.NewSource(2024))

	for game := 0; game < 50; game++ {
		e := newTestEngine(t, 8, uint64(game))
		e.Reset()
		high := e.Snapshot().HighScore

		for step := 0; step < 500 && e.State() == types.Running; step++ {
			prevDir := e.Snapshot().Direction
			prev := e.Snapshot()
			req := moves[input.Intn(len(moves))]
			accepted := e.SetDirection(req)
			if accepted && ((req.X != 0 && prevDir.X != 0) || (req.Y != 0 && prevDir.Y != 0)) {
				t.Fatalf("game %d: same-axis turn %v accepted while heading %v", game, req, prevDir)
			}

			snap := e.Step()
			if snap.HighScore < high {
				t.Fatalf("game %d: high score decreased %d -> %d", game, high, snap.HighScore)
			}
			high = snap.HighScore

			if snap.State == types.Ended {
				if snap.Score != prev.Score && snap.Outcome != OutcomeBoardFull {
					t.Fatalf("game %d: collision changed score", game)
				}
				break
			}

			seen := make(map[types.Point]bool, len(snap.Snake))
			for _, p := range snap.Snake {
				if !types.NewGrid(8).Contains(p) {
					t.Fatalf("game %d: segment %v outside grid", game, p)
				}
				if seen[p] {
					t.Fatalf("game %d: duplicate segment %v", game, p)
				}
				seen[p] = true
			}
			if snap.HasFood && seen[snap.Food] {
				t.Fatalf("game %d: food %v on snake", game, snap.Food)
			}
			if len(snap.Snake) != snap.Score+1 {
				t.Fatalf("game %d: length %d with score %d", game, len(snap.Snake), snap.Score)
			}
			if snap.Outcome == OutcomeMoved && len(snap.Snake) != len(prev.Snake) {
				t.Fatalf("game %d: length changed without eating", game)
			}
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	e := newTestEngine(t, 20, 1)
	snap := e.Reset()
	snap.Snake[0] = types.Point{X: -5, Y: -5}
	if e.Snapshot().Snake[0] == snap.Snake[0] {
		t.Error("mutating a snapshot changed the engine")
	}
}
