// Package state holds the single source of truth for everything a player
// observes. Writes are visible to reads immediately; subscriber notification
// is coalesced so a synchronous burst of mutations produces one callback per
// changed key plus one wildcard callback.
package state

import (
	"reflect"
	"runtime"
	"sort"
	"sync"
)

// Listener receives the new value of one subscribed key.
type Listener func(value any)

// WildcardListener receives the sorted set of keys changed in one burst.
type WildcardListener func(changed []Key)

// Scheduler defers a flush until after the current synchronous unit of work.
// The store schedules at most one run at a time.
type Scheduler interface {
	Schedule(run func())
}

type SchedulerFunc func(run func())

func (f SchedulerFunc) Schedule(run func()) { f(run) }

type keyedEntry struct {
	id uint64
	fn Listener
}

type wildcardEntry struct {
	id uint64
	fn WildcardListener
}

type Store struct {
	mu        sync.Mutex
	data      map[Key]any
	changed   map[Key]struct{}
	pending   bool
	writes    uint64
	scheduler Scheduler

	nextID   uint64
	keyed    map[Key][]keyedEntry
	wildcard []wildcardEntry
}

type Option func(*Store)

func WithScheduler(s Scheduler) Option {
	return func(st *Store) { st.scheduler = s }
}

func New(opts ...Option) *Store {
	s := &Store{
		data:    Defaults(),
		changed: make(map[Key]struct{}),
		keyed:   make(map[Key][]keyedEntry),
	}
	for _, o := range opts {
		o(s)
	}
	if s.scheduler == nil {
		s.scheduler = newFlushQueue(s)
	}
	return s
}

// Get returns the current value of key. Mutations are always visible here
// synchronously, independent of notification timing.
func (s *Store) Get(key Key) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

// Snapshot returns a copy of the full state. Contained slices are shared and
// immutable by convention.
func (s *Store) Snapshot() map[Key]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Key]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Set writes one key. Writing a value equal to the current one is a no-op and
// never schedules a notification.
func (s *Store) Set(key Key, value any) {
	s.Batch(map[Key]any{key: value})
}

// Batch writes several keys under the same no-op-per-key rule and schedules at
// most one flush for the burst.
func (s *Store) Batch(partial map[Key]any) {
	s.mu.Lock()
	dirty := false
	for k, v := range partial {
		if reflect.DeepEqual(s.data[k], v) {
			continue
		}
		s.data[k] = v
		s.changed[k] = struct{}{}
		dirty = true
	}
	if dirty {
		s.writes++
	}
	schedule := dirty && !s.pending
	if schedule {
		s.pending = true
	}
	sched := s.scheduler
	s.mu.Unlock()

	if schedule {
		sched.Schedule(s.Flush)
	}
}

// Flush notifies each changed key's subscribers once, then wildcard
// subscribers once, and clears pending state. Calling it with nothing pending
// is a no-op.
func (s *Store) Flush() {
	s.mu.Lock()
	s.pending = false
	if len(s.changed) == 0 {
		s.mu.Unlock()
		return
	}
	changed := s.changed
	s.changed = make(map[Key]struct{})

	keys := make([]Key, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	type call struct {
		fn  Listener
		val any
	}
	var calls []call
	for _, k := range keys {
		for _, e := range s.keyed[k] {
			calls = append(calls, call{fn: e.fn, val: s.data[k]})
		}
	}
	wild := make([]wildcardEntry, len(s.wildcard))
	copy(wild, s.wildcard)
	s.mu.Unlock()

	for _, c := range calls {
		c.fn(c.val)
	}
	for _, e := range wild {
		e.fn(keys)
	}
}

// settleRounds bounds how long the default scheduler waits for a write burst
// to go quiet; a continuous stream of writes cannot starve notification.
const settleRounds = 128

// flushQueue is the default scheduler: a single worker goroutine runs every
// deferred flush in order, and before notifying it waits for the write burst
// that scheduled the flush to go quiet. New writes arriving while the worker
// wakes merge into the same pending change set, so one synchronous burst of
// mutations is reported in one notification cycle.
type flushQueue struct {
	st   *Store
	runs chan func()
}

func newFlushQueue(st *Store) *flushQueue {
	q := &flushQueue{st: st, runs: make(chan func(), 1)}
	go q.loop()
	return q
}

// Schedule never blocks: the store schedules at most one run at a time.
func (q *flushQueue) Schedule(run func()) {
	select {
	case q.runs <- run:
	default:
	}
}

func (q *flushQueue) loop() {
	for run := range q.runs {
		q.st.settle()
		run()
	}
}

// settle yields until the write counter has been stable for two consecutive
// rounds, bounded by settleRounds.
func (s *Store) settle() {
	s.mu.Lock()
	prev := s.writes
	s.mu.Unlock()

	stable := 0
	for i := 0; i < settleRounds; i++ {
		runtime.Gosched()
		s.mu.Lock()
		cur := s.writes
		s.mu.Unlock()
		if cur != prev {
			prev = cur
			stable = 0
			continue
		}
		stable++
		if stable >= 2 {
			return
		}
	}
}

// Subscribe registers a listener for one key and returns its unsubscribe
// func.
func (s *Store) Subscribe(key Key, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.keyed[key] = append(s.keyed[key], keyedEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.keyed[key]
		for i, e := range list {
			if e.id == id {
				s.keyed[key] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers a wildcard listener notified once per flush with the
// changed key set.
func (s *Store) SubscribeAll(fn WildcardListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.wildcard = append(s.wildcard, wildcardEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.wildcard {
			if e.id == id {
				s.wildcard = append(s.wildcard[:i:i], s.wildcard[i+1:]...)
				return
			}
		}
	}
}

// Reset restores the default snapshot and synchronously notifies wildcard
// subscribers exactly once. It is a hard reset: the deferred queue is
// bypassed and any pending burst is discarded.
func (s *Store) Reset() {
	s.mu.Lock()
	s.data = Defaults()
	s.changed = make(map[Key]struct{})

	keys := make([]Key, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	wild := make([]wildcardEntry, len(s.wildcard))
	copy(wild, s.wildcard)
	s.mu.Unlock()

	for _, e := range wild {
		e.fn(keys)
	}
}
