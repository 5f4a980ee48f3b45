package api

import (
	"net/http"

	"uivox/pkg/mode"
	"uivox/pkg/outqueue"
	"uivox/pkg/tracker"
)

// StatsHandler reports delivery counters and pipeline state.
type StatsHandler struct {
	tracker *tracker.Tracker
	queue   *outqueue.Queue
	arbiter *mode.Arbiter
}

func NewStatsHandler(t *tracker.Tracker, q *outqueue.Queue, a *mode.Arbiter) *StatsHandler {
	return &StatsHandler{
		tracker: t,
		queue:   q,
		arbiter: a,
	}
}

type ChannelStatsDTO struct {
	Delivered  int64 `json:"delivered"`
	Suppressed int64 `json:"suppressed"`
	Failed     int64 `json:"failed"`
	Repeated   int64 `json:"repeated"`
}

type StatsResponse struct {
	Channels map[string]ChannelStatsDTO `json:"channels"`
	QueueLen int                        `json:"queue_len"`
	Mode     string                     `json:"mode"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Channels: make(map[string]ChannelStatsDTO),
	}

	for name, stats := range h.tracker.Snapshot() {
		resp.Channels[name] = ChannelStatsDTO{
			Delivered:  stats.Delivered,
			Suppressed: stats.Suppressed,
			Failed:     stats.Failed,
			Repeated:   stats.Repeated,
		}
	}

	if h.queue != nil {
		resp.QueueLen = h.queue.Len()
	}
	if h.arbiter != nil {
		resp.Mode = h.arbiter.Active()
	}

	writeJSON(w, resp)
}
