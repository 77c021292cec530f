package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Game constants
const (
	DefaultGridSize = 20 // Side length of the square playing field
	MinGridSize     = 2
	MaxGridSize     = 200
)

var (
	ErrUnknownDirection = errors.New("unknown direction")
	ErrUnknownSpeed     = errors.New("unknown speed")
	ErrUnknownRunState  = errors.New("unknown run state")
)

// Point is a grid coordinate or a unit movement vector.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// IsIdle reports whether p is the zero vector.
func (p Point) IsIdle() bool {
	return p.X == 0 && p.Y == 0
}

// IsUnit reports whether p is one of the four orthogonal unit vectors.
func (p Point) IsUnit() bool {
	return (p.X == 0 && (p.Y == 1 || p.Y == -1)) ||
		(p.Y == 0 && (p.X == 1 || p.X == -1))
}

// Grid represents the square playing field. Coordinates are in [0, Size).
type Grid struct {
	Size int
}

func NewGrid(size int) Grid {
	return Grid{Size: size}
}

func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

func (g Grid) Cells() int {
	return g.Size * g.Size
}

func (g Grid) Center() Point {
	return Point{X: g.Size / 2, Y: g.Size / 2}
}

// Direction is a named cardinal direction
type Direction int

const (
	None Direction = iota
	Up
	Right
	Down
	Left
)

var directionNames = map[Direction]string{
	None:  "none",
	Up:    "up",
	Right: "right",
	Down:  "down",
	Left:  "left",
}

// ToPoint converts a Direction into its movement vector
func (d Direction) ToPoint() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{X: 0, Y: 0}
	}
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// DirectionOf maps a movement vector back to its named direction.
func DirectionOf(p Point) Direction {
	switch p {
	case Point{X: 0, Y: -1}:
		return Up
	case Point{X: 1, Y: 0}:
		return Right
	case Point{X: 0, Y: 1}:
		return Down
	case Point{X: -1, Y: 0}:
		return Left
	default:
		return None
	}
}

func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if d != None && name == key {
			return d, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// RunState is the engine's current phase.
type RunState int

const (
	NotStarted RunState = iota
	Running
	Paused
	Ended
)

var runStateNames = [...]string{
	NotStarted: "not_started",
	Running:    "running",
	Paused:     "paused",
	Ended:      "ended",
}

func (s RunState) String() string {
	if s >= 0 && int(s) < len(runStateNames) {
		return runStateNames[s]
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

func (s RunState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(runStateNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRunState, int(s))
	}
	return []byte(runStateNames[s]), nil
}

func (s *RunState) UnmarshalText(b []byte) error {
	for i, name := range runStateNames {
		if name == string(b) {
			*s = RunState(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRunState, b)
}

// Speed is one of the fixed tick interval presets.
type Speed int

const (
	SpeedSlow Speed = iota
	SpeedNormal
	SpeedFast
	SpeedTurbo
)

const DefaultSpeed = SpeedNormal

var speedPresets = [...]struct {
	name     string
	interval time.Duration
}{
	SpeedSlow:   {"slow", 400 * time.Millisecond},
	SpeedNormal: {"normal", 300 * time.Millisecond},
	SpeedFast:   {"fast", 200 * time.Millisecond},
	SpeedTurbo:  {"turbo", 100 * time.Millisecond},
}

// Speeds lists every preset from slowest to fastest.
func Speeds() []Speed {
	return []Speed{SpeedSlow, SpeedNormal, SpeedFast, SpeedTurbo}
}

func (s Speed) Valid() bool {
	return s >= 0 && int(s) < len(speedPresets)
}

// Interval is the tick period for the preset. Unknown values fall back to
// the default preset.
func (s Speed) Interval() time.Duration {
	if !s.Valid() {
		return speedPresets[DefaultSpeed].interval
	}
	return speedPresets[s].interval
}

func (s Speed) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Speed(%d)", int(s))
	}
	return speedPresets[s].name
}

func (s Speed) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpeed, int(s))
	}
	return []byte(speedPresets[s].name), nil
}

func (s *Speed) UnmarshalText(b []byte) error {
	v, err := ParseSpeed(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseSpeed(name string) (Speed, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, p := range speedPresets {
		if p.name == key {
			return Speed(i), nil
		}
	}
	return DefaultSpeed, fmt.Errorf("%w: %q", ErrUnknownSpeed, name)
}
