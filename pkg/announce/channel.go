package announce

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"uivox/pkg/sink"
	"uivox/pkg/textproc"
	"uivox/pkg/tracker"
)

// DefaultDedupWindow is how long an identical announcement is suppressed.
const DefaultDedupWindow = 500 * time.Millisecond

// nothingToRepeat is spoken when RepeatLast finds an empty buffer.
const nothingToRepeat = "Nothing to repeat"

// Delivery describes one text handed to a sink, for observers such as the
// caption stream.
type Delivery struct {
	ID       string    `json:"id"`
	Channel  string    `json:"channel"`
	Category Category  `json:"category"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// Observer receives a notification for every attempted delivery.
type Observer interface {
	Delivered(d Delivery)
}

// Channel pairs dedup/repeat logic with one delivery sink. The speech
// channel and the clipboard-queue channel are two independent instances;
// each deduplicates on its own.
type Channel struct {
	mu   sync.Mutex
	name string
	norm *textproc.Normalizer
	sink sink.Sink

	dedupWindow time.Duration
	now         func() time.Time
	tracker     *tracker.Tracker
	observer    Observer

	lastDeliveredText string
	lastDeliveredAt   time.Time

	repeatSpeaker  string
	repeatRaw      string
	repeatCategory Category
	hasRepeat      bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithDedupWindow overrides the duplicate suppression window.
func WithDedupWindow(d time.Duration) Option {
	return func(c *Channel) { c.dedupWindow = d }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// WithTracker attaches delivery counters.
func WithTracker(t *tracker.Tracker) Option {
	return func(c *Channel) { c.tracker = t }
}

// WithObserver attaches a delivery observer.
func WithObserver(o Observer) Option {
	return func(c *Channel) { c.observer = o }
}

// NewChannel creates a channel delivering through the given sink.
func NewChannel(name string, norm *textproc.Normalizer, s sink.Sink, opts ...Option) *Channel {
	c := &Channel{
		name:        name,
		norm:        norm,
		sink:        s,
		dedupWindow: DefaultDedupWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Announce is Output without a speaker.
// SetDedupWindow changes the suppression window for later announcements.
func (c *Channel) SetDedupWindow(d time.Duration) {
	c.mu.Lock()
	c.dedupWindow = d
	c.mu.Unlock()
}

func (c *Channel) Announce(text string, category Category) {
	c.Output("", text, category)
}

// Output cleans, formats, deduplicates, and delivers one announcement.
// Empty or whitespace-only text is a no-op. Identical formatted text within
// the dedup window is suppressed without any state change.
func (c *Channel) Output(speaker, text string, category Category) {
	formatted := c.format(speaker, text, category)
	if formatted == "" {
		return
	}

	c.mu.Lock()
	now := c.now()
	if formatted == c.lastDeliveredText && now.Sub(c.lastDeliveredAt) < c.dedupWindow {
		c.mu.Unlock()
		slog.Debug("Announce: suppressed duplicate", "channel", c.name, "category", category.DisplayName())
		if c.tracker != nil {
			c.tracker.TrackSuppressed(c.name)
		}
		return
	}

	c.lastDeliveredText = formatted
	c.lastDeliveredAt = now

	// Raw text is stored so replacement-table updates affect later repeats.
	if category.IsRepeatable() {
		c.repeatSpeaker = speaker
		c.repeatRaw = text
		c.repeatCategory = category
		c.hasRepeat = true
	}
	c.mu.Unlock()

	c.deliver(formatted, category)
}

// RepeatLast re-formats and re-delivers the repeat buffer. It bypasses the
// dedup window entirely: an explicit repeat is always honored.
func (c *Channel) RepeatLast() {
	c.mu.Lock()
	if !c.hasRepeat {
		c.mu.Unlock()
		c.deliver(nothingToRepeat, CategorySystemMessage)
		return
	}
	speaker, raw, category := c.repeatSpeaker, c.repeatRaw, c.repeatCategory
	c.mu.Unlock()

	formatted := c.format(speaker, raw, category)
	if formatted == "" {
		c.deliver(nothingToRepeat, CategorySystemMessage)
		return
	}
	c.deliver(formatted, category)
}

// format cleans the raw text and applies the speaker prefix for dialogue.
func (c *Channel) format(speaker, text string, category Category) string {
	clean := c.norm.Clean(text)
	if clean == "" {
		return ""
	}
	if category == CategoryDialogue && speaker != "" {
		return speaker + ": " + clean
	}
	return clean
}

/// deliver hands the text to the sink. Sink failures are terminal here:
// logged, counted, never propagated.
func (c *Channel) deliver(text string, category Category) {
	id := uuid.NewString()
	if err := c.sink.Deliver(text); err != nil {
		slog.Warn("Announce: sink delivery failed", "channel", c.name, "sink", c.sink.Name(), "id", id, "error", err)
		if c.tracker != nil {
			c.tracker.TrackFailed(c.name)
		}
	} else {
		slog.Debug("Announce: delivered", "channel", c.name, "category", category.DisplayName(), "id", id)
		if c.tracker != nil {
			c.tracker.TrackDelivered(c.name)
		}
	}

	if c.observer != nil {
		c.observer.Delivered(Delivery{
			ID:       id,
			Channel:  c.name,
			Category: category,
			Text:     text,
			At:       c.now(),
		})
	}
}
