package announce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"uivox/pkg/textproc"
)

func newTestScheduler(t *testing.T) (*Scheduler, *recordingSink) {
	t.Helper()
	rs := &recordingSink{}
	ch := NewChannel("test", textproc.New(), rs)
	return NewScheduler(ch), rs
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func produceText(text string) func() (string, string) {
	return func() (string, string) { return "", text }
}

func TestScheduler_Fires(t *testing.T) {
	s, rs := newTestScheduler(t)

	s.Schedule(10*time.Millisecond, produceText("delayed"), CategorySystemMessage)

	waitFor(t, time.Second, func() bool { return len(rs.delivered()) == 1 })
	assert.Equal(t, []string{"delayed"}, rs.delivered())
}

func TestScheduler_Supersession(t *testing.T) {
	s, rs := newTestScheduler(t)

	var firstCalled atomic.Bool
	s.Schedule(200*time.Millisecond, func() (string, string) {
		firstCalled.Store(true)
		return "", "first"
	}, CategorySystemMessage)
	s.Schedule(10*time.Millisecond, produceText("second"), CategorySystemMessage)

	waitFor(t, time.Second, func() bool { return len(rs.delivered()) == 1 })
	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, []string{"second"}, rs.delivered())
	assert.False(t, firstCalled.Load(), "superseded producer must never run")
}

func TestScheduler_Cancel(t *testing.T) {
	s, rs := newTestScheduler(t)

	s.Schedule(30*time.Millisecond, produceText("never"), CategorySystemMessage)
	s.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rs.delivered())
}

func TestScheduler_CancelThenSchedule(t *testing.T) {
	s, rs := newTestScheduler(t)

	s.Schedule(30*time.Millisecond, produceText("dropped"), CategorySystemMessage)
	s.Cancel()
	s.Schedule(10*time.Millisecond, produceText("kept"), CategorySystemMessage)

	waitFor(t, time.Second, func() bool { return len(rs.delivered()) == 1 })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"kept"}, rs.delivered())
}

func TestScheduler_EmptyProduceDeliversNothing(t *testing.T) {
	s, rs := newTestScheduler(t)

	var called atomic.Bool
	s.Schedule(10*time.Millisecond, func() (string, string) {
		called.Store(true)
		return "", ""
	}, CategorySystemMessage)

	waitFor(t, time.Second, func() bool { return called.Load() })
	assert.Empty(t, rs.delivered())
}

func TestScheduler_ProduceRunsAtFireTime(t *testing.T) {
	s, rs := newTestScheduler(t)

	// Text does not exist at schedule time; it appears before the fire.
	var text atomic.Value
	text.Store("")
	s.Schedule(50*time.Millisecond, func() (string, string) {
		v, _ := text.Load().(string)
		return "", v
	}, CategorySystemMessage)
	text.Store("late arrival")

	waitFor(t, time.Second, func() bool { return len(rs.delivered()) == 1 })
	assert.Equal(t, []string{"late arrival"}, rs.delivered())
}

func TestScheduler_SpeakerFormatsPerCategory(t *testing.T) {
	s, rs := newTestScheduler(t)

	// Dialogue gets the speaker prefix; other categories drop it.
	s.Schedule(10*time.Millisecond, func() (string, string) {
		return "Phoenix", "Objection!"
	}, CategoryDialogue)
	waitFor(t, time.Second, func() bool { return len(rs.delivered()) == 1 })

	s.Schedule(10*time.Millisecond, func() (string, string) {
		return "Phoenix", "Court Record"
	}, CategorySystemMessage)
	waitFor(t, time.Second, func() bool { return len(rs.delivered()) == 2 })

	assert.Equal(t, []string{"Phoenix: Objection!", "Court Record"}, rs.delivered())
}
