// Package input turns key presses and protocol messages into game actions
// and applies them to a session. It has no rendering dependencies so every
// front-end can share it.
package input

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"gridsnake/game"
	"gridsnake/game/types"
)

var ErrUnknownAction = errors.New("unknown action")

type Kind int

const (
	KindNone Kind = iota
	KindTurn
	KindPause
	KindRestart
	KindStart
	KindMute
	KindSpeed
	KindQuit
)

type Action struct {
	Kind      Kind
	Direction types.Direction
	Speed     types.Speed
}

func Turn(d types.Direction) Action { return Action{Kind: KindTurn, Direction: d} }

func SetSpeed(s types.Speed) Action { return Action{Kind: KindSpeed, Speed: s} }

var (
	Pause   = Action{Kind: KindPause}
	Restart = Action{Kind: KindRestart}
	Start   = Action{Kind: KindStart}
	Mute    = Action{Kind: KindMute}
	Quit    = Action{Kind: KindQuit}
)

// SpeedKey maps the digit keys 1-4 to the speed presets, slowest first.
func SpeedKey(digit rune) (Action, bool) {
	i := int(digit - '1')
	presets := types.Speeds()
	if i < 0 || i >= len(presets) {
		return Action{}, false
	}
	return SetSpeed(presets[i]), true
}

// Parse decodes the action names used by the web protocol: a direction
// (up, down, left, right), pause, restart, start, mute or speed. speed is
// only read for the speed action.
func Parse(name, speed string) (Action, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "pause":
		return Pause, nil
	case "restart":
		return Restart, nil
	case "start":
		return Start, nil
	case "mute":
		return Mute, nil
	case "speed":
		sp, err := types.ParseSpeed(speed)
		if err != nil {
			return Action{}, err
		}
		return SetSpeed(sp), nil
	default:
		d, err := types.ParseDirection(n)
		if err != nil || d == types.None {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		return Turn(d), nil
	}
}

// Muter is the part of the sound system the controller drives.
type Muter interface {
	ToggleMute() bool
}

// Controller applies actions to one session.
type Controller struct {
	session *game.Session
	sound   Muter
	logger  *log.Logger
}

// NewController binds a session. sound may be nil when the front-end has no
// local audio.
func NewController(session *game.Session, sound Muter, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{session: session, sound: sound, logger: logger}
}

// Handle applies a and reports whether the front-end should quit.
func (c *Controller) Handle(a Action) (quit bool) {
	switch a.Kind {
	case KindTurn:
		if c.session.Snapshot().State == types.NotStarted {
			c.session.Start()
		}
		c.session.Turn(a.Direction)
	case KindPause:
		c.session.TogglePause()
	case KindRestart:
		c.session.Restart()
	case KindStart:
		c.session.Start()
	case KindMute:
		if c.sound != nil {
			muted := c.sound.ToggleMute()
			c.logger.Printf("sound muted: %v", muted)
		}
	case KindSpeed:
		if err := c.session.SetSpeed(a.Speed); err != nil {
			c.logger.Printf("speed change: %v", err)
		}
	case KindQuit:
		return true
	}
	return false
}
