// Package audio plays the eat tone and background music. Audio is optional:
// every method is safe to call when the device failed to initialise.
package audio

import (
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"gridsnake/game"
)

const sampleRate = beep.SampleRate(44100)

// SoundManager owns the speaker, a mixer for one-shot effects and the
// background music control.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	master      *effects.Volume
	music       *beep.Ctrl
	tune        *melody
	muted       bool
	wantMusic   bool
	zeroVolume  bool
	initialized bool
	logger      *log.Logger
}

// NewSoundManager prepares the mixing graph. volume is a linear factor in
// [0, 1]; zero is silent.
func NewSoundManager(volume float64, muted bool, logger *log.Logger) *SoundManager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	mixer := &beep.Mixer{}
	tune := newMelody(sampleRate)
	sm := &SoundManager{
		mixer:      mixer,
		master:     newVolume(mixer, volume),
		music:      &beep.Ctrl{Streamer: tune, Paused: true},
		tune:       tune,
		muted:      muted,
		zeroVolume: volume <= 0,
		logger:     logger,
	}
	sm.master.Silent = sm.muted || sm.zeroVolume
	return sm
}

func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(math.Min(vol, 1))}
}

// Initialize opens the audio device. A failure leaves the manager silent.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	sm.mixer.Add(sm.music)
	speaker.Play(sm.master)
	sm.initialized = true
	return nil
}

// Close stops all sound and releases the device.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// locked runs fn with the speaker's stream lock held when audio is live.
// Callers hold sm.mu.
func (sm *SoundManager) locked(fn func()) {
	if sm.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

// PlayEat plays the eat tone unless muted.
func (sm *SoundManager) PlayEat() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return
	}
	tone, err := NewEatTone(sampleRate)
	if err != nil {
		sm.logger.Printf("eat tone: %v", err)
		return
	}
	sm.locked(func() { sm.mixer.Add(tone) })
}

// StartMusic plays the background tune from the beginning.
func (sm *SoundManager) StartMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.locked(func() {
		sm.tune.rewind()
		sm.wantMusic = true
		sm.music.Paused = sm.muted
	})
}

func (sm *SoundManager) PauseMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.locked(func() {
		sm.wantMusic = false
		sm.music.Paused = true
	})
}

// ResumeMusic continues the tune where it was paused.
func (sm *SoundManager) ResumeMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.locked(func() {
		sm.wantMusic = true
		sm.music.Paused = sm.muted
	})
}

// StopMusic pauses the tune and rewinds it for the next round.
func (sm *SoundManager) StopMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.locked(func() {
		sm.wantMusic = false
		sm.music.Paused = true
		sm.tune.rewind()
	})
}

// ToggleMute flips the mute switch and returns the new state. Unmuting
// brings the music back only if a round is in progress.
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.muted = !sm.muted
	sm.locked(func() {
		sm.master.Silent = sm.muted || sm.zeroVolume
		sm.music.Paused = sm.muted || !sm.wantMusic
	})
	return sm.muted
}

func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// MusicPlaying reports whether the background tune is audible.
func (sm *SoundManager) MusicPlaying() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	var playing bool
	sm.locked(func() { playing = !sm.music.Paused })
	return playing
}

// HandleEvent maps game lifecycle events to sound.
func (sm *SoundManager) HandleEvent(ev game.Event) {
	switch ev.Kind {
	case game.EventStarted:
		sm.StartMusic()
	case game.EventAte:
		sm.PlayEat()
	case game.EventPaused:
		sm.PauseMusic()
	case game.EventResumed:
		sm.ResumeMusic()
	case game.EventEnded:
		sm.StopMusic()
	}
}
