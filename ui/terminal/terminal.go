// Package terminal is the text-mode front-end, drawn with tcell.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gdamore/tcell/v2"

	"gridsnake/game"
	"gridsnake/game/types"
	"gridsnake/stats"
	"gridsnake/ui/input"
)

// Each grid cell is two columns wide so the board looks square.
const cellWidth = 2

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSnake   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHead    = tcell.StyleDefault.Foreground(tcell.ColorLightGreen).Bold(true)
	styleFood    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHigh    = tcell.StyleDefault.Foreground(tcell.ColorGold)
	styleOverlay = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

const (
	runeBody = '█'
	runeFood = '●'
)

// SoundState reports the mute switch for the status line.
type SoundState interface {
	Muted() bool
}

type App struct {
	screen     tcell.Screen
	session    *game.Session
	controller *input.Controller
	sound      SoundState
	stats      *stats.GameStats
	logger     *log.Logger
}

func NewApp(screen tcell.Screen, session *game.Session, controller *input.Controller, sound SoundState, st *stats.GameStats, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &App{
		screen:     screen,
		session:    session,
		controller: controller,
		sound:      sound,
		stats:      st,
		logger:     logger,
	}
}

// Run takes over the terminal until Q/Esc is pressed or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer a.screen.Fini()
	a.screen.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Ticks arrive on the session goroutine; bounce them through the event
	// queue so all drawing happens here.
	a.session.Subscribe(func(game.Snapshot) {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})

	errc := make(chan error, 1)
	go func() { errc <- a.session.Run(ctx) }()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.Draw(a.session.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return a.wait(cancel, errc)
		case ev, ok := <-events:
			if !ok {
				return a.wait(cancel, errc)
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if act, ok := KeyAction(ev); ok && a.controller.Handle(act) {
					return a.wait(cancel, errc)
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
			a.Draw(a.session.Snapshot())
		}
	}
}

func (a *App) wait(cancel context.CancelFunc, errc <-chan error) error {
	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// KeyAction maps a key press to a game action.
func KeyAction(ev *tcell.EventKey) (input.Action, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.Turn(types.Up), true
	case tcell.KeyDown:
		return input.Turn(types.Down), true
	case tcell.KeyLeft:
		return input.Turn(types.Left), true
	case tcell.KeyRight:
		return input.Turn(types.Right), true
	case tcell.KeyEnter:
		return input.Start, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return input.Quit, true
	case tcell.KeyRune:
	default:
		return input.Action{}, false
	}

	switch r := ev.Rune(); r {
	case 'w', 'W':
		return input.Turn(types.Up), true
	case 's', 'S':
		return input.Turn(types.Down), true
	case 'a', 'A':
		return input.Turn(types.Left), true
	case 'd', 'D':
		return input.Turn(types.Right), true
	case ' ':
		return input.Pause, true
	case 'r', 'R':
		return input.Restart, true
	case 'm', 'M':
		return input.Mute, true
	case 'q', 'Q':
		return input.Quit, true
	default:
		return input.SpeedKey(r)
	}
}

// Draw renders snap: a bordered board at the top-left, a status block under
// it and an overlay when the game is not running.
func (a *App) Draw(snap game.Snapshot) {
	s := a.screen
	s.Clear()

	n := snap.GridSize
	right := 1 + n*cellWidth
	bottom := 1 + n

	for x := 1; x < right; x++ {
		s.SetContent(x, 0, '─', nil, styleBorder)
		s.SetContent(x, bottom, '─', nil, styleBorder)
	}
	for y := 1; y < bottom; y++ {
		s.SetContent(0, y, '│', nil, styleBorder)
		s.SetContent(right, y, '│', nil, styleBorder)
	}
	s.SetContent(0, 0, '┌', nil, styleBorder)
	s.SetContent(right, 0, '┐', nil, styleBorder)
	s.SetContent(0, bottom, '└', nil, styleBorder)
	s.SetContent(right, bottom, '┘', nil, styleBorder)

	if snap.HasFood {
		a.setCell(snap.Food, runeFood, styleFood)
	}
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		style := styleSnake
		if i == 0 {
			style = styleHead
		}
		a.setCell(snap.Snake[i], runeBody, style)
	}

	y := bottom + 1
	a.text(0, y, fmt.Sprintf("Score: %d", snap.Score), styleDefault)
	a.text(14, y, fmt.Sprintf("High Score: %d", snap.HighScore), styleHigh)
	y++

	sound := "on"
	if a.sound != nil && a.sound.Muted() {
		sound = "off"
	}
	a.text(0, y, fmt.Sprintf("Speed: %s  Sound: %s", a.session.Speed(), sound), styleHint)
	y++

	if a.stats != nil {
		sum := a.stats.Summary()
		a.text(0, y, fmt.Sprintf("Games: %d  Avg: %.2f  Median: %.1f  Best: %d",
			sum.GamesPlayed, sum.AverageScore, sum.MedianScore, sum.MaxScore), styleHint)
		y++
	}
	a.text(0, y, "arrows/wasd move  space pause  r restart  m mute  1-4 speed  q quit", styleHint)

	a.drawOverlay(snap, right, bottom)
	s.Show()
}

func (a *App) drawOverlay(snap game.Snapshot, right, bottom int) {
	var title, hint string
	switch snap.State {
	case types.NotStarted:
		title, hint = "SNAKE", "enter to start"
	case types.Paused:
		title, hint = "PAUSED", "space to resume"
	case types.Ended:
		title = "GAME OVER"
		if snap.Outcome == game.OutcomeBoardFull {
			title = "BOARD CLEARED"
		}
		hint = fmt.Sprintf("score %d, r to restart", snap.Score)
	default:
		return
	}
	mid := bottom / 2
	a.text((right-len(title))/2, mid, title, styleOverlay)
	a.text((right-len(hint))/2, mid+1, hint, styleHint)
}

func (a *App) setCell(p types.Point, r rune, style tcell.Style) {
	x := 1 + p.X*cellWidth
	for i := 0; i < cellWidth; i++ {
		a.screen.SetContent(x+i, 1+p.Y, r, nil, style)
	}
}

func (a *App) text(x, y int, s string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
