// Package stats keeps per-process statistics about finished games. Nothing
// is persisted; only the high score outlives the process.
package stats

import (
	"sort"
	"sync"
	"time"

	"gridsnake/game"
)

// GroupSize is the number of records folded into one record of the next
// compression level, which keeps memory bounded on long sessions.
const GroupSize = 100

// GameStats holds every finished game, single or grouped.
type GameStats struct {
	Games []GameRecord
	mutex sync.RWMutex
}

// GameRecord is one game (CompressionIndex 0) or a group of games.
type GameRecord struct {
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Score            int       `json:"score"`
	Reason           string    `json:"reason,omitempty"`
	CompressionIndex int       `json:"compressionIndex"`
	GamesCount       int       `json:"gamesCount"`
	AverageScore     float64   `json:"averageScore"`
	MedianScore      float64   `json:"medianScore"`
	MaxScore         int       `json:"maxScore"`
	MinScore         int       `json:"minScore"`
	AverageDuration  float64   `json:"averageDuration"`
	MaxDuration      float64   `json:"maxDuration"`
	MinDuration      float64   `json:"minDuration"`
}

// Summary is the aggregate the front-ends draw.
type Summary struct {
	GamesPlayed     int     `json:"games_played"`
	AverageScore    float64 `json:"average_score"`
	MedianScore     float64 `json:"median_score"`
	MaxScore        int     `json:"max_score"`
	AverageDuration float64 `json:"average_duration"`
	MaxDuration     float64 `json:"max_duration"`
}

func NewGameStats() *GameStats {
	return &GameStats{
		Games: make([]GameRecord, 0),
	}
}

// HandleEvent records finished games. Subscribe it to an engine or session.
func (s *GameStats) HandleEvent(ev game.Event) {
	if ev.Kind != game.EventEnded {
		return
	}
	s.addGame(ev.Score, ev.Reason.String(), ev.StartedAt, ev.At)
}

func (s *GameStats) addGame(score int, reason string, startTime, endTime time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	duration := endTime.Sub(startTime).Seconds()
	s.Games = append(s.Games, GameRecord{
		StartTime:       startTime,
		EndTime:         endTime,
		Score:           score,
		Reason:          reason,
		GamesCount:      1,
		AverageScore:    float64(score),
		MedianScore:     float64(score),
		MaxScore:        score,
		MinScore:        score,
		AverageDuration: duration,
		MaxDuration:     duration,
		MinDuration:     duration,
	})

	s.groupGames()
}

// groupGames folds every full run of GroupSize records sharing a
// compression level into one record of the next level.
func (s *GameStats) groupGames() {
	for level := 0; ; level++ {
		var records []GameRecord
		for _, g := range s.Games {
			if g.CompressionIndex == level {
				records = append(records, g)
			}
		}
		if len(records) < GroupSize {
			break
		}

		var grouped []GameRecord
		for i := 0; i < len(records); i += GroupSize {
			end := i + GroupSize
			if end > len(records) {
				grouped = append(grouped, records[i:]...)
				break
			}
			grouped = append(grouped, mergeRecords(records[i:end], level+1))
		}

		remaining := make([]GameRecord, 0, len(s.Games))
		for _, g := range s.Games {
			if g.CompressionIndex != level {
				remaining = append(remaining, g)
			}
		}
		s.Games = append(remaining, grouped...)
	}

	sort.SliceStable(s.Games, func(i, j int) bool {
		return s.Games[i].StartTime.Before(s.Games[j].StartTime)
	})
}

func mergeRecords(group []GameRecord, level int) GameRecord {
	out := GameRecord{
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
		MaxDuration:      group[0].MaxDuration,
		MinDuration:      group[0].MinDuration,
	}

	var totalScore, totalDuration float64
	var medians []float64
	for _, g := range group {
		out.MaxScore = max(out.MaxScore, g.MaxScore)
		out.MinScore = min(out.MinScore, g.MinScore)
		out.MaxDuration = max(out.MaxDuration, g.MaxDuration)
		out.MinDuration = min(out.MinDuration, g.MinDuration)
		if g.StartTime.Before(out.StartTime) {
			out.StartTime = g.StartTime
		}
		if g.EndTime.After(out.EndTime) {
			out.EndTime = g.EndTime
		}
		totalScore += g.AverageScore * float64(g.GamesCount)
		totalDuration += g.AverageDuration * float64(g.GamesCount)
		out.GamesCount += g.GamesCount
		for i := 0; i < g.GamesCount; i++ {
			medians = append(medians, g.MedianScore)
		}
	}

	out.AverageScore = totalScore / float64(out.GamesCount)
	out.AverageDuration = totalDuration / float64(out.GamesCount)
	out.MedianScore = median(medians)
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}
	return values[n/2]
}

// records returns a copy of the recorded games.
func (s *GameStats) records() []GameRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]GameRecord, len(s.Games))
	copy(out, s.Games)
	return out
}

func (s *GameStats) averageScore() float64 {
	var total float64
	var games int
	for _, g := range s.Games {
		total += g.AverageScore * float64(g.GamesCount)
		games += g.GamesCount
	}
	if games == 0 {
		return 0
	}
	return total / float64(games)
}

func (s *GameStats) medianScore() float64 {
	var all []float64
	for _, g := range s.Games {
		for i := 0; i < g.GamesCount; i++ {
			all = append(all, g.MedianScore)
		}
	}
	return median(all)
}

func (s *GameStats) maxScore() int {
	best := 0
	for _, g := range s.Games {
		best = max(best, g.MaxScore)
	}
	return best
}

func (s *GameStats) gamesPlayed() int {
	total := 0
	for _, g := range s.Games {
		total += g.GamesCount
	}
	return total
}

func (s *GameStats) averageDuration() float64 {
	var total float64
	var games int
	for _, g := range s.Games {
		total += g.AverageDuration * float64(g.GamesCount)
		games += g.GamesCount
	}
	if games == 0 {
		return 0
	}
	return total / float64(games)
}

func (s *GameStats) maxDuration() float64 {
	var best float64
	for _, g := range s.Games {
		best = max(best, g.MaxDuration)
	}
	return best
}

// Summary computes every aggregate under a single lock.
func (s *GameStats) Summary() Summary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return Summary{
		GamesPlayed:     s.gamesPlayed(),
		AverageScore:    s.averageScore(),
		MedianScore:     s.medianScore(),
		MaxScore:        s.maxScore(),
		AverageDuration: s.averageDuration(),
		MaxDuration:     s.maxDuration(),
	}
}

// RecentScores returns up to n of the latest scores, oldest first, for the
// score history graph. Grouped records contribute their average.
func (s *GameStats) RecentScores(n int) []float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	start := 0
	if len(s.Games) > n {
		start = len(s.Games) - n
	}
	out := make([]float64, 0, len(s.Games)-start)
	for _, g := range s.Games[start:] {
		out = append(out, g.AverageScore)
	}
	return out
}
