// Package audio plays short non-speech cues (earcons) alongside speech.
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

// Cue names an earcon.
type Cue string

const (
	// CueAttention marks a high-priority announcement.
	CueAttention Cue = "attention"
	// CueQueueCleared confirms the output queue was flushed.
	CueQueueCleared Cue = "queue_cleared"
	// CueModeSwitch marks a change of active mode.
	CueModeSwitch Cue = "mode_switch"
)

const sampleRate = beep.SampleRate(44100)

// tone is one segment of an earcon.
type tone struct {
	freq     float64
	duration time.Duration
}

// cues defines each earcon as a short tone sequence. Kept under 200ms
// total so cues never delay the speech that follows them.
var cues = map[Cue][]tone{
	CueAttention:    {{880, 60 * time.Millisecond}, {1320, 90 * time.Millisecond}},
	CueQueueCleared: {{660, 50 * time.Millisecond}, {440, 80 * time.Millisecond}},
	CueModeSwitch:   {{523, 70 * time.Millisecond}},
}

// Player renders earcons through the system mixer. Speaker setup happens
// lazily on first play so a daemon with earcons disabled never touches
// the audio device.
type Player struct {
	mu      sync.Mutex
	once    sync.Once
	initErr error
	enabled bool
	volume  float64
}

// NewPlayer creates an earcon player.
func NewPlayer(enabled bool, volume float64) *Player {
	return &Player{enabled: enabled, volume: volume}
}

// SetEnabled toggles earcon playback.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// SetVolume sets playback volume (0.0 to 1.0).
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = vol
}

// Play renders the named cue asynchronously. Unknown cues and mixer
// failures only log.
func (p *Player) Play(cue Cue) {
	p.mu.Lock()
	enabled, volume := p.enabled, p.volume
	p.mu.Unlock()
	if !enabled {
		return
	}

	seq, ok := cues[cue]
	if !ok {
		slog.Warn("Earcon: unknown cue", "cue", cue)
		return
	}

	p.once.Do(func() {
		p.initErr = speaker.Init(sampleRate, sampleRate.N(20*time.Millisecond))
	})
	if p.initErr != nil {
		slog.Warn("Earcon: mixer unavailable", "error", p.initErr)
		return
	}

	streamer, err := buildStreamer(seq, volume)
	if err != nil {
		slog.Warn("Earcon: cue build failed", "cue", cue, "error", err)
		return
	}
	speaker.Play(streamer)
}

// buildStreamer assembles the tone sequence into one volume-wrapped
// streamer.
func buildStreamer(seq []tone, volume float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(seq))
	for _, t := range seq {
		s, err := generators.SineTone(sampleRate, t.freq)
		if err != nil {
			return nil, fmt.Errorf("tone %0.f Hz: %w", t.freq, err)
		}
		parts = append(parts, beep.Take(sampleRate.N(t.duration), s))
	}
	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   volumeToPower(volume),
		Silent:   volume <= 0.01,
	}, nil
}
