package audio

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"go-pianoroll/debug"
)

// Scheduling defaults: fill about 100ms ahead every 25ms
const (
	defaultLookahead = 100 * time.Millisecond
	defaultFillEvery = 25 * time.Millisecond
)

// queued is a callback waiting for its wall-clock time
type queued struct {
	at    Ticks
	when  time.Time
	bpm   float64
	src   Schedulable
	fire  func(Cue)
	order uint64
}

type eventQueue []*queued

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if !q[i].when.Equal(q[j].when) {
		return q[i].when.Before(q[j].when)
	}
	return q[i].order < q[j].order
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(*queued)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Transport is the playback clock. A fill loop pulls events from every
// part a little ahead of the playhead; a dispatch loop sleeps until each
// event is due and invokes its callback on the dispatch goroutine.
type Transport struct {
	mu      sync.Mutex
	bpm     float64
	parts   []Schedulable
	playing bool
	t0      time.Time // wall time of tick0
	tick0   Ticks
	filled  Ticks // events before this tick are already queued
	fired   Ticks // events before this tick have been dispatched
	queue   eventQueue
	order   uint64

	now       func() time.Time
	lookahead time.Duration
	fillEvery time.Duration
	interrupt chan struct{}
}

// NewTransport creates a stopped transport at bpm
func NewTransport(bpm float64) *Transport {
	return &Transport{
		bpm:       bpm,
		now:       time.Now,
		lookahead: defaultLookahead,
		fillEvery: defaultFillEvery,
		interrupt: make(chan struct{}, 1),
	}
}

// SetClock replaces the wall clock the transport reads. Call it before Start.
func (t *Transport) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Run drives the fill and dispatch loops until ctx is done
func (t *Transport) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.dispatchLoop(ctx)
	}()
	t.fillLoop(ctx)
	wg.Wait()
}

// Start begins playback from tick 0
func (t *Transport) Start() {
	t.mu.Lock()
	if t.playing {
		t.mu.Unlock()
		return
	}
	t.playing = true
	t.t0 = t.now()
	t.tick0 = 0
	t.filled = 0
	t.fired = 0
	t.queue = nil
	t.mu.Unlock()

	debug.Log("transport", "start bpm=%.1f", t.BPM())
	t.fill(t.now())
	t.wake()
}

// Stop halts playback and drops everything queued
func (t *Transport) Stop() {
	t.mu.Lock()
	if !t.playing {
		t.mu.Unlock()
		return
	}
	t.playing = false
	t.queue = nil
	t.filled = 0
	t.fired = 0
	t.tick0 = 0
	t.mu.Unlock()
	debug.Log("transport", "stop")
}

// Playing reports whether the transport is running
func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// BPM returns the tempo
func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// SetBPM changes tempo. While playing the position is kept and anything
// already queued is rescheduled at the new tempo.
func (t *Transport) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	t.mu.Lock()
	if !t.playing {
		t.bpm = bpm
		t.mu.Unlock()
		return
	}
	now := t.now()
	pos := t.positionLocked(now)
	t.tick0 = pos
	t.t0 = now
	t.bpm = bpm
	t.queue = nil
	t.filled = t.resumeLocked(pos)
	t.mu.Unlock()

	t.fill(now)
	t.wake()
}

// Position returns the playhead in ticks (0 when stopped)
func (t *Transport) Position() Ticks {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return t.tick0
	}
	return t.positionLocked(t.now())
}

// resumeLocked is the first tick that may still be queued again from pos.
// Anything before fired has already reached its callback.
func (t *Transport) resumeLocked(pos Ticks) Ticks {
	return max(pos, t.fired)
}

func (t *Transport) positionLocked(now time.Time) Ticks {
	return t.tick0 + FromDuration(now.Sub(t.t0), t.bpm)
}

func (t *Transport) timeOfLocked(at Ticks) time.Time {
	return t.t0.Add((at - t.tick0).Duration(t.bpm))
}

// Add registers a part. While playing, events between the playhead and
// the fill horizon are queued right away.
func (t *Transport) Add(s Schedulable) {
	t.mu.Lock()
	t.parts = append(t.parts, s)
	if t.playing {
		from := t.resumeLocked(t.positionLocked(t.now()))
		t.pushLocked(s, s.Window(from, t.filled))
	}
	t.mu.Unlock()
	t.wake()
}

// Remove unregisters a part and drops its queued events
func (t *Transport) Remove(s Schedulable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(s)
}

// Replace swaps old for s in one step so playback has no gap
func (t *Transport) Replace(old, s Schedulable) {
	t.mu.Lock()
	if old != nil {
		t.removeLocked(old)
	}
	t.mu.Unlock()
	if s != nil {
		t.Add(s)
	}
}

// Parts returns the number of registered parts
func (t *Transport) Parts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.parts)
}

func (t *Transport) removeLocked(s Schedulable) {
	for i, p := range t.parts {
		if p == s {
			t.parts = append(t.parts[:i], t.parts[i+1:]...)
			break
		}
	}
	kept := t.queue[:0]
	for _, q := range t.queue {
		if q.src != s {
			kept = append(kept, q)
		}
	}
	t.queue = kept
	heap.Init(&t.queue)
}

func (t *Transport) pushLocked(src Schedulable, evs []Scheduled) {
	for _, e := range evs {
		t.order++
		heap.Push(&t.queue, &queued{
			at:    e.At,
			when:  t.timeOfLocked(e.At),
			bpm:   t.bpm,
			src:   src,
			fire:  e.Fire,
			order: t.order,
		})
	}
}

// fill queues events up to the lookahead horizon. Returns how many were added.
func (t *Transport) fill(now time.Time) int {
	t.mu.Lock()
	horizon := t.positionLocked(now) + FromDuration(t.lookahead, t.bpm)
	if !t.playing || horizon <= t.filled {
		t.mu.Unlock()
		return 0
	}
	before := len(t.queue)
	for _, p := range t.parts {
		t.pushLocked(p, p.Window(t.filled, horizon))
	}
	t.filled = horizon
	added := len(t.queue) - before
	t.mu.Unlock()

	if added > 0 {
		debug.LogEvery(50, "transport", "fill horizon=%d added=%d", horizon, added)
	}
	return added
}

// due pops every event whose time has come
func (t *Transport) due(now time.Time) []*queued {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*queued
	for len(t.queue) > 0 && !t.queue[0].when.After(now) {
		q := heap.Pop(&t.queue).(*queued)
		t.fired = max(t.fired, q.at+1)
		out = append(out, q)
	}
	return out
}

func (t *Transport) next() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return time.Time{}, false
	}
	return t.queue[0].when, true
}

func (t *Transport) wake() {
	select {
	case t.interrupt <- struct{}{}:
	default:
	}
}

func (t *Transport) fillLoop(ctx context.Context) {
	ticker := time.NewTicker(t.fillEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.fill(t.now()) > 0 {
				t.wake()
			}
		}
	}
}

func (t *Transport) dispatchLoop(ctx context.Context) {
	for {
		for _, ev := range t.due(t.now()) {
			ev.fire(Cue{Time: ev.when, BPM: ev.bpm})
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		if when, ok := t.next(); ok {
			timer = time.NewTimer(when.Sub(t.now()))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-t.interrupt:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}
