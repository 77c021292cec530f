// Package web serves the browser front-end: a static canvas page and a
// websocket endpoint that gives every connection its own game session.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/exp/rand"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/metrics"
	"gridsnake/stats"
	"gridsnake/ui/input"
)

//go:embed static
var staticFiles embed.FS

const (
	writeTimeout       = 5 * time.Second
	defaultReadTimeout = 60 * time.Second
	outQueue           = 16
)

// Config wires a Server. Scores is shared by every connection; Metrics and
// Stats are optional.
type Config struct {
	GridSize int
	Speed    types.Speed
	// Seed makes food placement reproducible: connection n uses Seed+n.
	// Zero seeds from the clock.
	Seed    uint64
	Scores  *manager.StateManager
	Metrics *metrics.Metrics
	Stats   *stats.GameStats
	Logger  *log.Logger
	// ReadTimeout drops a connection that answers neither messages nor
	// pings for this long. Pings go out at 9/10 of it. Default 60s.
	ReadTimeout time.Duration
}

type Server struct {
	cfg      Config
	log      *log.Logger
	conns    atomic.Uint64
	upgrader websocket.Upgrader
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if !cfg.Speed.Valid() {
		cfg.Speed = types.DefaultSpeed
	}
	if cfg.Scores == nil {
		cfg.Scores = manager.NewStateManager(context.Background(), nil, cfg.Logger)
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	return &Server{
		cfg: cfg,
		log: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", gzhttp.GzipHandler(http.FileServer(http.FS(static))))
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.cfg.Metrics != nil {
		mux.Handle("/metrics", gzhttp.GzipHandler(s.cfg.Metrics.Handler()))
	}
	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Printf("web front-end listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) newSession() *game.Session {
	n := s.conns.Add(1)
	seed := s.cfg.Seed + n
	if s.cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e := game.NewEngine(game.EngineConfig{
		GridSize: s.cfg.GridSize,
		Rand:     rand.New(rand.NewSource(seed)),
		Scores:   s.cfg.Scores,
		Logger:   s.log,
	})
	return game.NewSession(e, s.cfg.Speed)
}

func (s *Server) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := s.newSession()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SessionOpened()
		defer s.cfg.Metrics.SessionClosed()
		session.OnEvent(s.cfg.Metrics.HandleEvent)
	}
	if s.cfg.Stats != nil {
		session.OnEvent(s.cfg.Stats.HandleEvent)
	}

	id := uuid.New().String()
	welcome := WelcomeMsg{
		Type:      TypeWelcome,
		SessionID: id,
		GridSize:  session.Snapshot().GridSize,
		Speed:     session.Speed(),
		Speeds:    types.Speeds(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return
	}
	// Subscribers run under the session lock, so the speed they report is
	// tracked here instead of read back from the session.
	var speed atomic.Int32
	speed.Store(int32(session.Speed()))
	if err := writeJSON(conn, s.snapshotMsg(session.Snapshot(), session.Speed())); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Pongs extend the read deadline so an idle paused game stays connected.
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	out := make(chan []byte, outQueue)
	// A slow client drops intermediate frames rather than stalling the
	// session; the next snapshot carries the full state anyway.
	session.Subscribe(func(snap game.Snapshot) {
		b, err := json.Marshal(s.snapshotMsg(snap, types.Speed(speed.Load())))
		if err != nil {
			s.log.Printf("session %s: encode snapshot: %v", id, err)
			return
		}
		select {
		case out <- b:
		default:
		}
	})

	go func() {
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Printf("session %s: %v", id, err)
		}
	}()

	// Writer goroutine.
	go func() {
		ping := time.NewTicker(s.cfg.ReadTimeout * 9 / 10)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					cancel()
					return
				}
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	s.log.Printf("session %s connected from %s", id, r.RemoteAddr)
	controller := input.NewController(session, nil, s.log)

	// Reader loop.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		act, bad := decodeInput(msg)
		if bad != nil {
			b, err := json.Marshal(bad)
			if err != nil {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			continue
		}
		controller.Handle(act)
		if act.Kind == input.KindSpeed {
			sp := session.Speed()
			speed.Store(int32(sp))
			b, err := json.Marshal(s.snapshotMsg(session.Snapshot(), sp))
			if err != nil {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
		}
	}
	cancel()
	s.log.Printf("session %s closed", id)
}

func (s *Server) snapshotMsg(snap game.Snapshot, speed types.Speed) SnapshotMsg {
	msg := SnapshotMsg{Type: TypeSnapshot, Speed: speed, Snapshot: snap}
	if s.cfg.Stats != nil {
		msg.Stats = s.cfg.Stats.Summary()
	}
	return msg
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
