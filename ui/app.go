// Package ui is the desktop front-end: a raylib window that draws session
// snapshots and feeds key presses back to the session.
package ui

import (
	"context"
	"errors"
	"io"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"gridsnake/game"
	"gridsnake/game/types"
	"gridsnake/stats"
	"gridsnake/ui/input"
)

const (
	windowWidth  = 1280
	windowHeight = 800
	windowTitle  = "Snake"
)

type binding struct {
	key    int32
	action input.Action
}

var keyBindings = []binding{
	{rl.KeyUp, input.Turn(types.Up)},
	{rl.KeyW, input.Turn(types.Up)},
	{rl.KeyDown, input.Turn(types.Down)},
	{rl.KeyS, input.Turn(types.Down)},
	{rl.KeyLeft, input.Turn(types.Left)},
	{rl.KeyA, input.Turn(types.Left)},
	{rl.KeyRight, input.Turn(types.Right)},
	{rl.KeyD, input.Turn(types.Right)},
	{rl.KeySpace, input.Pause},
	{rl.KeyR, input.Restart},
	{rl.KeyEnter, input.Start},
	{rl.KeyM, input.Mute},
	{rl.KeyOne, input.SetSpeed(types.SpeedSlow)},
	{rl.KeyTwo, input.SetSpeed(types.SpeedNormal)},
	{rl.KeyThree, input.SetSpeed(types.SpeedFast)},
	{rl.KeyFour, input.SetSpeed(types.SpeedTurbo)},
	{rl.KeyQ, input.Quit},
}

// SoundState reports the mute switch for the HUD.
type SoundState interface {
	Muted() bool
}

type App struct {
	session    *game.Session
	controller *input.Controller
	sound      SoundState
	renderer   *Renderer
	logger     *log.Logger
}

func NewApp(session *game.Session, controller *input.Controller, sound SoundState, st *stats.GameStats, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &App{
		session:    session,
		controller: controller,
		sound:      sound,
		renderer:   NewRenderer(st),
		logger:     logger,
	}
}

// Run opens the window and blocks until it is closed, Q is pressed or ctx
// is done. It must be called from the main goroutine.
func (a *App) Run(ctx context.Context) error {
	rl.InitWindow(windowWidth, windowHeight, windowTitle)
	rl.SetWindowState(rl.FlagWindowResizable)
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- a.session.Run(ctx) }()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if a.handleKeys() {
			break
		}
		a.renderer.Draw(a.session.Snapshot(), a.hud())
	}

	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) handleKeys() (quit bool) {
	for _, b := range keyBindings {
		if rl.IsKeyPressed(b.key) && a.controller.Handle(b.action) {
			return true
		}
	}
	return false
}

func (a *App) hud() HUD {
	h := HUD{Speed: a.session.Speed()}
	if a.sound != nil {
		h.Muted = a.sound.Muted()
	}
	return h
}
