package config

import (
	"context"
	"strconv"
	"time"

	"uivox/pkg/store"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	// Announcement pipeline
	DedupWindow(ctx context.Context) time.Duration
	DrainInterval(ctx context.Context) time.Duration

	// Speech
	SpeechRate(ctx context.Context) int
	SpeechVoice(ctx context.Context) string

	// Earcons
	EarconEnabled(ctx context.Context) bool
	EarconVolume(ctx context.Context) float64

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

func (p *UnifiedProvider) DedupWindow(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyDedupWindow, time.Duration(p.base.Announce.DedupWindow))
}

func (p *UnifiedProvider) DrainInterval(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyDrainInterval, time.Duration(p.base.Queue.DrainInterval))
}

func (p *UnifiedProvider) SpeechRate(ctx context.Context) int {
	return p.getInt(ctx, KeySpeechRate, p.base.Speech.Rate)
}

func (p *UnifiedProvider) SpeechVoice(ctx context.Context) string {
	return p.getString(ctx, KeySpeechVoice, p.base.Speech.VoiceID)
}

func (p *UnifiedProvider) EarconEnabled(ctx context.Context) bool {
	return p.getBool(ctx, KeyEarconEnabled, p.base.Earcon.Enabled)
}

func (p *UnifiedProvider) EarconVolume(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyEarconVolume, p.base.Earcon.Volume)
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getInt(ctx context.Context, key string, fallback int) int {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if i, err := strconv.Atoi(val); err == nil {
				return i
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val == "true"
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil {
				return dur
			}
		}
	}
	return fallback
}
