package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uivox/pkg/announce"
	"uivox/pkg/mode"
	"uivox/pkg/outqueue"
	"uivox/pkg/textproc"
	"uivox/pkg/tracker"
)

type memorySink struct {
	mu  sync.Mutex
	got []string
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Deliver(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, text)
	return nil
}

func (m *memorySink) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.got))
	copy(out, m.got)
	return out
}

type fixture struct {
	announceH *AnnounceHandler
	modeH     *ModeHandler
	stats     *StatsHandler
	sink      *memorySink
	queue     *outqueue.Queue
	flags     *mode.FlagSet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	target := &memorySink{}
	norm := textproc.New()
	tr := tracker.New()
	ch := announce.NewChannel("speech", norm, target,
		announce.WithDedupWindow(0), announce.WithTracker(tr))
	sched := announce.NewScheduler(ch)
	queue := outqueue.New(target, time.Millisecond)

	flags := mode.NewFlagSet()
	fallback := mode.NewFallback(ch)
	arbiter, err := mode.FromConfig([]string{"menu", "dialogue"}, flags, ch, fallback)
	require.NoError(t, err)

	return &fixture{
		announceH: NewAnnounceHandler(map[string]*announce.Channel{"speech": ch}, "speech", sched, queue, nil, tr),
		modeH:     NewModeHandler(flags, arbiter, fallback),
		stats:     NewStatsHandler(tr, queue, arbiter),
		sink:      target,
		queue:     queue,
		flags:     flags,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleAnnounce(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.announceH.HandleAnnounce, map[string]any{
		"speaker": "Phoenix", "text": "Objection!", "category": "dialogue",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Phoenix: Objection!"}, f.sink.all())
}

func TestHandleAnnounce_UnknownChannel(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.announceH.HandleAnnounce, map[string]any{
		"text": "hi", "channel": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnnounce_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.announceH.HandleAnnounce, map[string]any{
		"text": "hi", "category": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.sink.all())
}

func TestHandleAnnounce_DefaultCategory(t *testing.T) {
	f := newFixture(t)
	// No category field: treated as a plain system message, so a speaker
	// never becomes a prefix.
	rec := postJSON(t, f.announceH.HandleAnnounce, map[string]any{
		"speaker": "Phoenix", "text": "Saved",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Saved"}, f.sink.all())
}

func TestHandleAnnounce_BadBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	f.announceH.HandleAnnounce(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDelayed(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.announceH.HandleDelayed, map[string]any{
		"text": "Saved", "category": "system_message", "delay_ms": 1,
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return len(f.sink.all()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Saved", f.sink.all()[0])
}

func TestHandleDelayed_SpeakerPrefixOnlyForDialogue(t *testing.T) {
	f := newFixture(t)

	rec := postJSON(t, f.announceH.HandleDelayed, map[string]any{
		"speaker": "Edgeworth", "text": "Objection!", "category": "dialogue", "delay_ms": 1,
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool {
		return len(f.sink.all()) == 1
	}, time.Second, 5*time.Millisecond)

	rec = postJSON(t, f.announceH.HandleDelayed, map[string]any{
		"speaker": "Edgeworth", "text": "Court Record", "category": "system_message", "delay_ms": 1,
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool {
		return len(f.sink.all()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"Edgeworth: Objection!", "Court Record"}, f.sink.all())
}

func TestHandleDelayed_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.announceH.HandleDelayed, map[string]any{
		"text": "hi", "category": "bogus", "delay_ms": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, f.sink.all())
}

func TestHandleDelayedCancel(t *testing.T) {
	f := newFixture(t)
	postJSON(t, f.announceH.HandleDelayed, map[string]any{
		"text": "never", "delay_ms": 20,
	})

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	f.announceH.HandleDelayedCancel(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, f.sink.all())
}

func TestHandleDelayed_RejectsHugeDelay(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.announceH.HandleDelayed, map[string]any{
		"text": "late", "delay_ms": int64(time.Hour / time.Millisecond),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRepeat_EmptyBuffer(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	f.announceH.HandleRepeat(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Nothing to repeat"}, f.sink.all())
}

func TestHandleQueueClear(t *testing.T) {
	f := newFixture(t)
	f.queue.Enqueue("a")
	f.queue.Enqueue("b")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	f.announceH.HandleQueueClear(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["dropped"])
	assert.Equal(t, 0, f.queue.Len())
}

func TestHandleFlagsAndMode(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.modeH.HandleFlags, map[string]any{
		"flags": map[string]bool{"menu_open": true},
		"texts": map[string]string{"menu_selection": "Court Record"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	getRec := httptest.NewRecorder()
	f.modeH.HandleMode(getRec, req)
	assert.Equal(t, http.StatusOK, getRec.Code)

	var resp struct {
		Mode  string          `json:"mode"`
		Flags map[string]bool `json:"flags"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &resp))
	assert.Equal(t, "menu", resp.Mode)
	assert.True(t, resp.Flags["menu_open"])
}

func TestHandleInput_RoutesToActiveHandler(t *testing.T) {
	f := newFixture(t)
	f.flags.Apply(map[string]bool{"dialogue_active": true},
		map[string]string{"dialogue_text": "Hold it!"})

	rec := postJSON(t, f.modeH.HandleInput, map[string]any{"key": "where"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Hold it!"}, f.sink.all())
}

func TestHandleInput_MissingKey(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.modeH.HandleInput, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCoarse(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.modeH.HandleCoarse, map[string]any{"mode": "investigation"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// No flags set, so input falls through to the fallback handler.
	postJSON(t, f.modeH.HandleInput, map[string]any{"key": "where"})
	// Fallback only announces on AnnounceState; "where" is not routed there.
	// Verify via mode classification instead.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	getRec := httptest.NewRecorder()
	f.modeH.HandleMode(getRec, req)
	var resp struct {
		Mode string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &resp))
	assert.Equal(t, mode.Unknown, resp.Mode)
}

func TestStatsHandler(t *testing.T) {
	f := newFixture(t)
	postJSON(t, f.announceH.HandleAnnounce, map[string]any{"text": "one"})
	f.queue.Enqueue("pending")

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	f.stats.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Channels["speech"].Delivered)
	assert.Equal(t, 1, resp.QueueLen)
}

func TestCaptionHub_DropsSlowClient(t *testing.T) {
	h := NewCaptionHub()
	c := &captionClient{send: make(chan announce.Delivery, 1)}
	h.clients[c] = struct{}{}

	h.Delivered(announce.Delivery{Text: "first"})
	assert.Equal(t, 1, h.ClientCount())

	// Buffer full: the client is dropped instead of blocking delivery.
	h.Delivered(announce.Delivery{Text: "second"})
	assert.Equal(t, 0, h.ClientCount())

	_, open := <-c.send
	assert.True(t, open, "buffered delivery still readable")
	_, open = <-c.send
	assert.False(t, open, "channel closed after drop")
}
