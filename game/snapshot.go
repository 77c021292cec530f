package game

import (
	"fmt"
	"time"

	"gridsnake/game/types"
)

// Outcome describes what the most recent step did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeMoved
	OutcomeAte
	OutcomeWall
	OutcomeSelf
	OutcomeBoardFull
)

var outcomeNames = [...]string{
	OutcomeNone:      "none",
	OutcomeMoved:     "moved",
	OutcomeAte:       "ate",
	OutcomeWall:      "wall",
	OutcomeSelf:      "self",
	OutcomeBoardFull: "board_full",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	for i, name := range outcomeNames {
		if name == string(b) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// Snapshot is the observable state handed to renderers after every
// operation. It shares no memory with the engine.
type Snapshot struct {
	RoundID   string         `json:"round_id"`
	GridSize  int            `json:"grid_size"`
	Snake     []types.Point  `json:"snake"`
	Food      types.Point    `json:"food"`
	HasFood   bool           `json:"has_food"`
	Direction types.Point    `json:"direction"`
	Score     int            `json:"score"`
	HighScore int            `json:"high_score"`
	State     types.RunState `json:"state"`
	Outcome   Outcome        `json:"outcome"`
}

// Head returns the head segment, or false before the first reset.
func (s Snapshot) Head() (types.Point, bool) {
	if len(s.Snake) == 0 {
		return types.Point{}, false
	}
	return s.Snake[0], true
}

// EventKind identifies an engine lifecycle event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventAte
	EventPaused
	EventResumed
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventAte:
		return "ate"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventEnded:
		return "ended"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered synchronously to engine subscribers. Listeners must not
// call back into the engine.
type Event struct {
	Kind      EventKind
	RoundID   string
	Score     int
	HighScore int
	// NewRecord is set on EventEnded when the final score beat the high score.
	NewRecord bool
	// Reason is the terminal outcome for EventEnded.
	Reason    Outcome
	StartedAt time.Time
	At        time.Time
}

// Duration is the time elapsed since the round started.
func (e Event) Duration() time.Duration {
	if e.StartedAt.IsZero() {
		return 0
	}
	return e.At.Sub(e.StartedAt)
}
