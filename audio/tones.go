package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

const (
	EatFrequency = 800.0
	EatDuration  = 100 * time.Millisecond
	eatGainStart = 0.1
	eatGainEnd   = 0.01
)

// NewEatTone returns the short sine blip played when food is eaten. Its gain
// falls exponentially from 0.1 to 0.01 over the tone.
func NewEatTone(sr beep.SampleRate) (beep.Streamer, error) {
	sine, err := generators.SineTone(sr, EatFrequency)
	if err != nil {
		return nil, err
	}
	n := sr.N(EatDuration)
	return beep.Take(n, &expRamp{
		streamer: sine,
		from:     eatGainStart,
		to:       eatGainEnd,
		total:    n,
	}), nil
}

// expRamp scales a stream by a gain moving exponentially from `from` to `to`
// over total samples, then holding at `to`.
type expRamp struct {
	streamer beep.Streamer
	from, to float64
	total    int
	pos      int
}

func (r *expRamp) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = r.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := r.gain()
		samples[i][0] *= g
		samples[i][1] *= g
		r.pos++
	}
	return n, ok
}

func (r *expRamp) gain() float64 {
	if r.total <= 0 || r.pos >= r.total {
		return r.to
	}
	frac := float64(r.pos) / float64(r.total)
	return r.from * math.Pow(r.to/r.from, frac)
}

func (r *expRamp) Err() error { return r.streamer.Err() }

// melody is the background tune: an endless arpeggio of plucked notes.
// It never drains, so it can sit in a mixer behind a Ctrl.
type melody struct {
	sr        beep.SampleRate
	notes     []float64
	noteLen   int
	pos       int
	amplitude float64
}

var backgroundNotes = []float64{
	261.63, 329.63, 392.00, 523.25, // C E G C
	220.00, 261.63, 329.63, 440.00, // A C E A
	174.61, 220.00, 261.63, 349.23, // F A C F
	196.00, 246.94, 293.66, 392.00, // G B D G
}

func newMelody(sr beep.SampleRate) *melody {
	return &melody{
		sr:        sr,
		notes:     backgroundNotes,
		noteLen:   sr.N(180 * time.Millisecond),
		amplitude: 0.05,
	}
}

func (m *melody) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		idx := (m.pos / m.noteLen) % len(m.notes)
		within := m.pos % m.noteLen
		t := float64(within) / float64(m.sr)

		env := math.Exp(-6 * float64(within) / float64(m.noteLen))
		v := m.amplitude * env * math.Sin(2*math.Pi*m.notes[idx]*t)

		samples[i][0] = v
		samples[i][1] = v
		m.pos++
	}
	return len(samples), true
}

func (m *melody) Err() error { return nil }

// rewind restarts the tune from its first note.
func (m *melody) rewind() { m.pos = 0 }
