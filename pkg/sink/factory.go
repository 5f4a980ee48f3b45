package sink

import (
	"log/slog"

	"uivox/pkg/config"
)

// NewSpeaker builds the speech sink selected in the config. An unavailable
// engine degrades to the stub sink instead of failing startup; the user
// loses speech, not the whole pipeline.
func NewSpeaker(cfg *config.SpeechConfig) Sink {
	switch cfg.Engine {
	case "sapi":
		s, err := NewSAPISpeaker(cfg.VoiceID, cfg.Rate)
		if err != nil {
			slog.Warn("Speech engine unavailable, using stub", "engine", cfg.Engine, "error", err)
			return NewStub("speech")
		}
		return s
	case "stub", "":
		return NewStub("speech")
	default:
		slog.Warn("Unknown speech engine, using stub", "engine", cfg.Engine)
		return NewStub("speech")
	}
}
