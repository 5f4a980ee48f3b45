package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"uivox/pkg/announce"
	"uivox/pkg/audio"
	"uivox/pkg/outqueue"
	"uivox/pkg/tracker"
)

// maxDelay bounds client-supplied delays so a typo cannot park an
// announcement for hours.
const maxDelay = 30 * time.Second

// AnnounceHandler serves the announcement endpoints.
type AnnounceHandler struct {
	channels  map[string]*announce.Channel
	defaultCh string
	scheduler *announce.Scheduler
	queue     *outqueue.Queue
	earcons   *audio.Player
	tracker   *tracker.Tracker
}

// NewAnnounceHandler creates the handler. channels maps names to their
// announcement channels; defaultCh is used when a request names none.
func NewAnnounceHandler(channels map[string]*announce.Channel, defaultCh string, sched *announce.Scheduler, queue *outqueue.Queue, earcons *audio.Player, tr *tracker.Tracker) *AnnounceHandler {
	return &AnnounceHandler{
		channels:  channels,
		defaultCh: defaultCh,
		scheduler: sched,
		queue:     queue,
		earcons:   earcons,
		tracker:   tr,
	}
}

type announceRequest struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker"`
	Category string `json:"category"`
	Channel  string `json:"channel"`
	DelayMS  int64  `json:"delay_ms"`
	Urgent   bool   `json:"urgent"`
}

// requestCategory resolves a request's category field. An omitted field
// means a plain system message.
func requestCategory(s string) (announce.Category, error) {
	if s == "" {
		return announce.CategorySystemMessage, nil
	}
	return announce.ParseCategory(s)
}

// channelFor resolves the channel named in a request.
func (h *AnnounceHandler) channelFor(name string) (*announce.Channel, bool) {
	if name == "" {
		name = h.defaultCh
	}
	ch, ok := h.channels[name]
	return ch, ok
}

// HandleAnnounce accepts one announcement for immediate delivery.
func (h *AnnounceHandler) HandleAnnounce(w http.ResponseWriter, r *http.Request) {
	var req announceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ch, ok := h.channelFor(req.Channel)
	if !ok {
		http.Error(w, "unknown channel", http.StatusBadRequest)
		return
	}
	category, err := requestCategory(req.Category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Urgent && h.earcons != nil {
		h.earcons.Play(audio.CueAttention)
	}

	ch.Output(req.Speaker, req.Text, category)
	w.WriteHeader(http.StatusAccepted)
}

// HandleDelayed schedules one announcement. A new request supersedes any
// pending one; delay_ms <= 0 fires immediately.
func (h *AnnounceHandler) HandleDelayed(w http.ResponseWriter, r *http.Request) {
	var req announceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	delay := time.Duration(req.DelayMS) * time.Millisecond
	if delay < 0 {
		delay = 0
	}
	if delay > maxDelay {
		http.Error(w, "delay too large", http.StatusBadRequest)
		return
	}

	category, err := requestCategory(req.Category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	speaker, text := req.Speaker, req.Text
	h.scheduler.Schedule(delay, func() (string, string) {
		return speaker, text
	}, category)
	w.WriteHeader(http.StatusAccepted)
}

// HandleDelayedCancel drops any pending delayed announcement.
func (h *AnnounceHandler) HandleDelayedCancel(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// HandleRepeat re-delivers the repeat buffer of the named channel.
func (h *AnnounceHandler) HandleRepeat(w http.ResponseWriter, r *http.Request) {
	var req announceRequest
	// An empty body targets the default channel.
	_ = json.NewDecoder(r.Body).Decode(&req)

	ch, ok := h.channelFor(req.Channel)
	if !ok {
		http.Error(w, "unknown channel", http.StatusBadRequest)
		return
	}

	ch.RepeatLast()
	if h.tracker != nil {
		name := req.Channel
		if name == "" {
			name = h.defaultCh
		}
		h.tracker.TrackRepeated(name)
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleQueueClear drops all pending queue items.
func (h *AnnounceHandler) HandleQueueClear(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		http.Error(w, "no queue configured", http.StatusNotFound)
		return
	}
	dropped := h.queue.Len()
	h.queue.Clear()
	h.scheduler.Cancel()
	if h.earcons != nil {
		h.earcons.Play(audio.CueQueueCleared)
	}
	slog.Info("API: queue cleared", "dropped", dropped)
	writeJSON(w, map[string]int{"dropped": dropped})
}
