package audio

import (
	"sort"
	"sync"
	"time"
)

// PartEvent is one entry of a part: a value due at a time
type PartEvent[T any] struct {
	Time  Ticks
	Value T
}

// Cue is handed to part callbacks: the wall-clock time the event is due
// and the tempo it was scheduled at.
type Cue struct {
	Time time.Time
	BPM  float64
}

// Duration converts a musical length to wall-clock time at the cue's tempo
func (c Cue) Duration(t Ticks) time.Duration {
	return t.Duration(c.BPM)
}

// Scheduled is a single callback invocation produced by a Schedulable
type Scheduled struct {
	At   Ticks
	Fire func(Cue)
}

// Schedulable is anything the Transport can pull events from
type Schedulable interface {
	// Window returns the events due in [from, to)
	Window(from, to Ticks) []Scheduled
}

// Part is a time-indexed callback schedule. Configure Loop, LoopStart and
// LoopEnd before handing the part to a Transport.
type Part[T any] struct {
	mu       sync.RWMutex
	events   []PartEvent[T]
	callback func(Cue, T)

	Loop      bool
	LoopStart Ticks
	LoopEnd   Ticks
}

// NewPart creates a part invoking callback for each event
func NewPart[T any](callback func(Cue, T), events ...PartEvent[T]) *Part[T] {
	p := &Part[T]{callback: callback}
	for _, e := range events {
		p.Add(e.Time, e.Value)
	}
	return p
}

// Add schedules v at t. Events stay ordered by time; equal times keep
// insertion order.
func (p *Part[T]) Add(t Ticks, v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > t })
	p.events = append(p.events, PartEvent[T]{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = PartEvent[T]{Time: t, Value: v}
}

// Events returns a copy of the events in time order
func (p *Part[T]) Events() []PartEvent[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]PartEvent[T](nil), p.events...)
}

// Len returns the number of events
func (p *Part[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.events)
}

// Window implements Schedulable. Looping parts repeat the events in
// [LoopStart, LoopEnd) forever; events before LoopStart play once.
func (p *Part[T]) Window(from, to Ticks) []Scheduled {
	if to <= from {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []Scheduled
	emit := func(at Ticks, v T) {
		out = append(out, Scheduled{At: at, Fire: func(c Cue) {
			if p.callback != nil {
				p.callback(c, v)
			}
		}})
	}

	loopLen := p.LoopEnd - p.LoopStart
	if !p.Loop || loopLen <= 0 {
		for _, e := range p.events {
			if e.Time >= from && e.Time < to {
				emit(e.Time, e.Value)
			}
		}
		return out
	}

	for _, e := range p.events {
		if e.Time < p.LoopStart && e.Time >= from && e.Time < to {
			emit(e.Time, e.Value)
		}
	}

	k := Ticks(0)
	if from > p.LoopStart {
		k = (from - p.LoopStart) / loopLen
	}
	for base := p.LoopStart + k*loopLen; base < to; base += loopLen {
		for _, e := range p.events {
			if e.Time < p.LoopStart || e.Time >= p.LoopEnd {
				continue
			}
			at := base + (e.Time - p.LoopStart)
			if at >= from && at < to {
				emit(at, e.Value)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}
