package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"gridsnake/game"
)

func TestHandleEvent(t *testing.T) {
	m := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m.HandleEvent(game.Event{Kind: game.EventStarted, HighScore: 3})
	m.HandleEvent(game.Event{Kind: game.EventAte, Score: 1})
	m.HandleEvent(game.Event{Kind: game.EventAte, Score: 2})
	m.HandleEvent(game.Event{Kind: game.EventPaused})
	m.HandleEvent(game.Event{
		Kind:      game.EventEnded,
		Reason:    game.OutcomeWall,
		Score:     2,
		HighScore: 3,
		StartedAt: start,
		At:        start.Add(4 * time.Second),
	})
	m.HandleEvent(game.Event{Kind: game.EventStarted, HighScore: 3})
	m.HandleEvent(game.Event{Kind: game.EventEnded, Reason: game.OutcomeSelf, Score: 7, HighScore: 7})

	if got := testutil.ToFloat64(m.gamesStarted); got != 2 {
		t.Errorf("games started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.foodEaten); got != 2 {
		t.Errorf("food eaten = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.gamesEnded.WithLabelValues("wall")); got != 1 {
		t.Errorf("wall endings = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.gamesEnded.WithLabelValues("self")); got != 1 {
		t.Errorf("self endings = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.highScore); got != 7 {
		t.Errorf("high score = %v, want 7", got)
	}
	if n := testutil.CollectAndCount(m.finalScore); n != 1 {
		t.Errorf("final score collectors = %d", n)
	}
}

func TestActiveSessions(t *testing.T) {
	m := New()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.HandleEvent(game.Event{Kind: game.EventStarted})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "snake_games_started_total 1") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
