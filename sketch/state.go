package sketch

import (
	"sync"

	"go-pianoroll/music"
)

// geometryKey is every input Derive reads. Geometry is recomputed only
// when this changes.
type geometryKey struct {
	stepsPerQuarter int
	quartersPerBar  int
	numBars         int
	qpm             float64
	midiMin         int
	midiMax         int
	win             Window
}

// State is the single owner of the editable sequence, the player config
// and the window size. Derived geometry is recomputed synchronously on
// every mutation that touches its inputs, and subscribers are notified.
type State struct {
	mu  sync.RWMutex
	seq music.Sequence
	cfg music.PlayerConfig
	win Window

	geo    Geometry
	key    geometryKey
	hasGeo bool

	recomputes int // number of Derive calls, for observers and tests

	subs   map[int]func(Geometry)
	nextID int

	// notified after any mutation, geometry-affecting or not
	onChange []func()
}

// NewState creates state with the given starting values
func NewState(seq music.Sequence, cfg music.PlayerConfig) *State {
	s := &State{
		seq:  seq.Clone(),
		cfg:  cfg,
		subs: make(map[int]func(Geometry)),
	}
	s.recompute()
	return s
}

// NewDefaultState creates state with the default melody and config
func NewDefaultState() *State {
	return NewState(music.DefaultSequence(), music.DefaultPlayerConfig())
}

func (s *State) currentKey() geometryKey {
	return geometryKey{
		stepsPerQuarter: s.seq.StepsPerQuarter,
		quartersPerBar:  s.seq.QuartersPerBar,
		numBars:         s.seq.NumBars,
		qpm:             s.seq.QPM,
		midiMin:         s.cfg.MidiMin,
		midiMax:         s.cfg.MidiMax,
		win:             s.win,
	}
}

// recompute derives geometry if inputs changed. Caller holds mu.
func (s *State) recompute() bool {
	k := s.currentKey()
	if s.hasGeo && k == s.key {
		return false
	}
	s.geo = Derive(s.seq, s.cfg, s.win)
	s.key = k
	s.hasGeo = true
	s.recomputes++
	return true
}

// mutate applies fn under the write lock, recomputes, then notifies
// outside the lock so callbacks may read state.
func (s *State) mutate(fn func()) {
	s.mu.Lock()
	fn()
	changed := s.recompute()
	geo := s.geo
	var subs []func(Geometry)
	if changed {
		for _, f := range s.subs {
			subs = append(subs, f)
		}
	}
	onChange := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	for _, f := range subs {
		f(geo)
	}
	for _, f := range onChange {
		f()
	}
}

// Subscribe registers fn to receive geometry whenever it is recomputed.
// Returns an unsubscribe func.
func (s *State) Subscribe(fn func(Geometry)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnChange registers fn to run after every mutation
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Geometry returns the current derived geometry
func (s *State) Geometry() Geometry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geo
}

// Recomputes returns how many times geometry has been derived
func (s *State) Recomputes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recomputes
}

// Sequence returns a copy of the sequence
func (s *State) Sequence() music.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq.Clone()
}

// Config returns a copy of the player config
func (s *State) Config() music.PlayerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Snapshot returns consistent copies of everything at once
func (s *State) Snapshot() (music.Sequence, music.PlayerConfig, Geometry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq.Clone(), s.cfg, s.geo
}

// Update gives fn direct access to sequence and config. Use for edits
// that touch several fields at once.
func (s *State) Update(fn func(seq *music.Sequence, cfg *music.PlayerConfig)) {
	s.mutate(func() { fn(&s.seq, &s.cfg) })
}

// SetWindow records a new raw window size
func (s *State) SetWindow(width, height float64) {
	s.mutate(func() { s.win = Window{Width: width, Height: height} })
}

// SetTempo sets quarter notes per minute
func (s *State) SetTempo(qpm float64) {
	s.mutate(func() { s.seq.QPM = qpm })
}

// SetStepsPerQuarter sets the grid subdivision
func (s *State) SetStepsPerQuarter(n int) {
	s.mutate(func() { s.seq.StepsPerQuarter = n })
}

// SetQuartersPerBar sets the time signature numerator
func (s *State) SetQuartersPerBar(n int) {
	s.mutate(func() { s.seq.QuartersPerBar = n })
}

// SetNumBars sets the number of bars
func (s *State) SetNumBars(n int) {
	s.mutate(func() { s.seq.NumBars = n })
}

// SetPitchRange sets the visible pitch range. lo > hi is accepted and
// yields an empty pitch list.
func (s *State) SetPitchRange(lo, hi int) {
	s.mutate(func() {
		s.cfg.MidiMin = lo
		s.cfg.MidiMax = hi
	})
}

// SetTemp sets the generation temperature
func (s *State) SetTemp(t float64) {
	s.mutate(func() { s.cfg.Temp = t })
}

// SetClicks enables or disables the click track
func (s *State) SetClicks(on bool) {
	s.mutate(func() { s.cfg.Clicks = on })
}

// SetRecording arms or disarms recording
func (s *State) SetRecording(on bool) {
	s.mutate(func() { s.cfg.Recording = on })
}

// AddNote inserts a note, keeping notes ordered by start
func (s *State) AddNote(n music.Note) {
	s.mutate(func() {
		s.seq.Notes = append(s.seq.Notes, n)
		s.seq.SortNotes()
	})
}

// RemoveNote deletes the note at index i. Out of range is a no-op.
func (s *State) RemoveNote(i int) {
	s.mutate(func() {
		if i < 0 || i >= len(s.seq.Notes) {
			return
		}
		s.seq.Notes = append(s.seq.Notes[:i], s.seq.Notes[i+1:]...)
	})
}

// ReplaceNotes swaps in a whole new note list
func (s *State) ReplaceNotes(notes []music.Note) {
	s.mutate(func() {
		s.seq.Notes = append([]music.Note(nil), notes...)
		s.seq.SortNotes()
	})
}

// ReplaceSequence swaps in a whole sequence, e.g. after loading a file
func (s *State) ReplaceSequence(seq music.Sequence) {
	s.mutate(func() { s.seq = seq.Clone() })
}

// AppendContinuation splices generated notes after offset
func (s *State) AppendContinuation(cont music.Sequence, offset float64) {
	s.mutate(func() { s.seq.Append(cont, offset) })
}
