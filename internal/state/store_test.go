package state

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerd/internal/model"
)

// manualScheduler queues flushes so tests control when the deferred
// notification tick runs.
type manualScheduler struct {
	queued []func()
}

func (m *manualScheduler) Schedule(run func()) { m.queued = append(m.queued, run) }

func (m *manualScheduler) tick() {
	runs := m.queued
	m.queued = nil
	for _, r := range runs {
		r()
	}
}

func newTestStore() (*Store, *manualScheduler) {
	sched := &manualScheduler{}
	return New(WithScheduler(sched)), sched
}

func TestSetVisibleBeforeFlush(t *testing.T) {
	s, _ := newTestStore()

	s.Set(KeyCurrentTime, float64(42))

	require.Equal(t, float64(42), s.Get(KeyCurrentTime))
}

func TestNoOpSetSchedulesNothing(t *testing.T) {
	s, sched := newTestStore()
	notified := 0
	s.Subscribe(KeyVolume, func(any) { notified++ })

	// Volume already defaults to 1.
	s.Set(KeyVolume, float64(1))

	assert.Empty(t, sched.queued)
	sched.tick()
	assert.Zero(t, notified)
}

func TestBurstCoalescesToOneNotification(t *testing.T) {
	s, sched := newTestStore()
	timeNotifies, durationNotifies, wildcardNotifies := 0, 0, 0
	s.Subscribe(KeyCurrentTime, func(any) { timeNotifies++ })
	s.Subscribe(KeyDuration, func(any) { durationNotifies++ })
	s.SubscribeAll(func([]Key) { wildcardNotifies++ })

	s.Set(KeyCurrentTime, float64(1))
	s.Set(KeyCurrentTime, float64(2))
	s.Set(KeyCurrentTime, float64(3))
	s.Set(KeyDuration, float64(60))
	s.Batch(map[Key]any{KeyCurrentTime: float64(4), KeyDuration: float64(61)})

	require.Len(t, sched.queued, 1, "one burst must schedule exactly one flush")
	sched.tick()

	assert.Equal(t, 1, timeNotifies)
	assert.Equal(t, 1, durationNotifies)
	assert.Equal(t, 1, wildcardNotifies)
	assert.Equal(t, float64(4), s.Get(KeyCurrentTime))
}

func TestDefaultSchedulerCoalescesSynchronousBurst(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := New()
		var notifies atomic.Int32
		s.SubscribeAll(func([]Key) { notifies.Add(1) })

		for n := 0; n < 200; n++ {
			s.Set(KeyCurrentTime, float64(n+1))
		}

		deadline := time.Now().Add(time.Second)
		for notifies.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		// Give a stray second flush time to show up before counting.
		time.Sleep(10 * time.Millisecond)
		if got := notifies.Load(); got != 1 {
			t.Fatalf("iteration %d: one synchronous burst produced %d wildcard notifications, want 1", i, got)
		}
		require.Equal(t, float64(200), s.Get(KeyCurrentTime))
	}
}

func TestWildcardReceivesChangedKeys(t *testing.T) {
	s, sched := newTestStore()
	var got []Key
	s.SubscribeAll(func(changed []Key) { got = changed })

	s.Batch(map[Key]any{
		KeyBuffered:       model.Ranges{{Start: 0, End: 10}},
		KeyBufferedAmount: float64(10),
	})
	sched.tick()

	require.Equal(t, []Key{KeyBuffered, KeyBufferedAmount}, got)
}

func TestFlushIdempotent(t *testing.T) {
	s, sched := newTestStore()
	notified := 0
	s.SubscribeAll(func([]Key) { notified++ })

	s.Set(KeyPaused, false)
	sched.tick()
	require.Equal(t, 1, notified)

	s.Flush()
	s.Flush()
	assert.Equal(t, 1, notified, "flush with nothing pending must notify zero additional times")
}

func TestResetRestoresDefaultsSynchronously(t *testing.T) {
	s, _ := newTestStore()
	wildcardNotifies := 0
	s.SubscribeAll(func([]Key) { wildcardNotifies++ })

	s.Set(KeyVolume, float64(0.25))
	s.Set(KeyLoadingStatus, model.LoadingLoaded)

	s.Reset()

	assert.Equal(t, 1, wildcardNotifies, "reset notifies wildcard exactly once, synchronously")
	for k, want := range Defaults() {
		assert.Equal(t, want, s.Get(k), "key %s", k)
	}
}

func TestResetDiscardsPendingBurst(t *testing.T) {
	s, sched := newTestStore()
	keyNotifies := 0
	s.Subscribe(KeyVolume, func(any) { keyNotifies++ })

	s.Set(KeyVolume, float64(0.5))
	s.Reset()
	// The flush scheduled before the reset still runs, but the burst is gone.
	sched.tick()

	assert.Zero(t, keyNotifies)
}

func TestUnsubscribe(t *testing.T) {
	s, sched := newTestStore()
	notified := 0
	off := s.Subscribe(KeyMuted, func(any) { notified++ })
	off()

	s.Set(KeyMuted, true)
	sched.tick()

	assert.Zero(t, notified)
}

func TestSubscriberSeesFinalValue(t *testing.T) {
	s, sched := newTestStore()
	var got any
	s.Subscribe(KeyCurrentTime, func(v any) { got = v })

	s.Set(KeyCurrentTime, float64(5))
	s.Set(KeyCurrentTime, float64(9))
	sched.tick()

	assert.Equal(t, float64(9), got)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestStore()
	snap := s.Snapshot()
	snap[KeyVolume] = float64(0)

	assert.Equal(t, float64(1), s.Get(KeyVolume))
}
