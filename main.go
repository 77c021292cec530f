package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/exp/rand"

	"gridsnake/audio"
	"gridsnake/config"
	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/metrics"
	"gridsnake/stats"
	"gridsnake/store"
	"gridsnake/ui"
	"gridsnake/ui/input"
	"gridsnake/ui/terminal"
	"gridsnake/web"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.New(os.Stderr, "[snake] ", log.LstdFlags).Printf("%v", err)
		os.Exit(1)
	}
}

func run(parent context.Context, args []string) error {
	fs := flag.NewFlagSet("gridsnake", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to a YAML config file (optional)")
		gridSize   = fs.Int("grid", types.DefaultGridSize, "grid side length in cells")
		speed      = fs.String("speed", types.DefaultSpeed.String(), "tick speed: slow, normal, fast or turbo")
		seed       = fs.Uint64("seed", 0, "food placement seed (0 = random)")
		frontend   = fs.String("frontend", config.FrontendDesktop, "front-end: desktop, terminal or web")
		storeKind  = fs.String("store", store.DriverFile, "high score store: file, sqlite or memory")
		storePath  = fs.String("store-path", "data/highscore.txt", "high score file or database path")
		mute       = fs.Bool("mute", false, "start with sound muted")
		noAudio    = fs.Bool("no-audio", false, "disable the audio device")
		addr       = fs.String("addr", ":8080", "web front-end listen address")
		logPath    = fs.String("log", "", "log file (terminal front-end defaults to gridsnake.log)")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Flags given on the command line win over the file.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "grid":
			cfg.GridSize = *gridSize
		case "speed":
			sp, err := types.ParseSpeed(*speed)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Speed = sp
		case "seed":
			cfg.Seed = *seed
		case "frontend":
			cfg.Frontend = *frontend
		case "store":
			cfg.Store.Driver = *storeKind
		case "store-path":
			cfg.Store.Path = *storePath
		case "mute":
			cfg.Audio.Muted = *mute
		case "no-audio":
			cfg.Audio.Enabled = !*noAudio
		case "addr":
			cfg.Web.Addr = *addr
		}
	})
	if flagErr != nil {
		return fmt.Errorf("flags: %w", flagErr)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logOut := io.Writer(os.Stderr)
	if *logPath == "" && cfg.Frontend == config.FrontendTerminal {
		*logPath = "gridsnake.log"
	}
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := log.New(logOut, "[snake] ", log.LstdFlags)

	ctx, cancel := signalContext(parent)
	defer cancel()

	if cfg.Store.Driver != store.DriverMemory {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			logger.Printf("high score directory: %v", err)
		}
	}
	var scores *manager.StateManager
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		logger.Printf("high score store unavailable, keeping scores in memory: %v", err)
		scores = manager.NewStateManager(ctx, nil, logger)
	} else {
		defer st.Close()
		scores = manager.NewStateManager(ctx, st, logger)
	}

	gameStats := stats.NewGameStats()
	defer func() {
		sum := gameStats.Summary()
		logger.Printf("played %d games, best %d, high score %d", sum.GamesPlayed, sum.MaxScore, scores.HighScore())
	}()

	if cfg.Frontend == config.FrontendWeb {
		var m *metrics.Metrics
		if cfg.Web.Metrics {
			m = metrics.New()
		}
		srv := web.NewServer(web.Config{
			GridSize: cfg.GridSize,
			Speed:    cfg.Speed,
			Seed:     cfg.Seed,
			Scores:   scores,
			Metrics:  m,
			Stats:    gameStats,
			Logger:   log.New(logOut, "[web] ", log.LstdFlags),
		})
		if err := srv.ListenAndServe(ctx, cfg.Web.Addr); err != nil {
			return fmt.Errorf("web: %w", err)
		}
		return nil
	}

	rngSeed := cfg.Seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}
	engine := game.NewEngine(game.EngineConfig{
		GridSize: cfg.GridSize,
		Rand:     rand.New(rand.NewSource(rngSeed)),
		Scores:   scores,
		Logger:   logger,
	})
	session := game.NewSession(engine, cfg.Speed)
	session.OnEvent(gameStats.HandleEvent)

	// The interfaces stay nil when there is no sound manager.
	var (
		muter     input.Muter
		uiSound   ui.SoundState
		termSound terminal.SoundState
	)
	if cfg.Audio.Enabled {
		sound := audio.NewSoundManager(cfg.Audio.Volume, cfg.Audio.Muted, log.New(logOut, "[audio] ", log.LstdFlags))
		if err := sound.Initialize(); err != nil {
			logger.Printf("audio disabled: %v", err)
		}
		defer sound.Close()
		session.OnEvent(sound.HandleEvent)
		muter, uiSound, termSound = sound, sound, sound
	}
	controller := input.NewController(session, muter, logger)

	switch cfg.Frontend {
	case config.FrontendTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		app := terminal.NewApp(screen, session, controller, termSound, gameStats, logger)
		if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("terminal: %w", err)
		}
	default:
		app := ui.NewApp(session, controller, uiSound, gameStats, logger)
		if err := app.Run(ctx); err != nil {
			return fmt.Errorf("desktop: %w", err)
		}
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}
