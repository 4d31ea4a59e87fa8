package markov

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go-pianoroll/debug"
	"go-pianoroll/music"
)

// ErrNotInitialized is returned when generating before Initialize
var ErrNotInitialized = errors.New("markov: model not initialized")

// Seed state used when the melody to continue is empty
const (
	defaultPitch    = 60
	defaultDuration = 2
)

// Model continues melodies with first-order Markov chains over pitch
// intervals and note durations. The checkpoint is loaded on Initialize.
type Model struct {
	source string

	mu   sync.Mutex
	ckpt *Checkpoint
	rng  *rand.Rand
}

// New creates an uninitialized model loading from source (see LoadCheckpoint)
func New(source string) *Model {
	return NewWithRand(source, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand is New with a caller-supplied random source
func NewWithRand(source string, rng *rand.Rand) *Model {
	return &Model{source: source, rng: rng}
}

// FromCheckpoint returns a ready model
func FromCheckpoint(c *Checkpoint, rng *rand.Rand) *Model {
	return &Model{source: c.Name, ckpt: c, rng: rng}
}

// IsInitialized reports whether a checkpoint is loaded
func (m *Model) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ckpt != nil
}

// Initialize loads the checkpoint. Loading again replaces it.
func (m *Model) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	c, err := LoadCheckpoint(m.source)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.ckpt = c
	m.mu.Unlock()
	debug.Log("markov", "loaded checkpoint %q in %s", c.Name, debug.Since(start))
	return nil
}

// Checkpoint returns the loaded checkpoint, nil before Initialize
func (m *Model) Checkpoint() *Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ckpt
}

// ContinueSequence generates steps steps of melody following seed. The
// returned notes start at step 0 of the continuation; callers place them
// after the seed. temp scales sampling: weights are raised to 1/temp, so
// low values favor the likeliest transition and temp <= 0 always picks it.
func (m *Model) ContinueSequence(ctx context.Context, seed music.QSeq, steps int, temp float64) (music.QSeq, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ckpt == nil {
		return music.QSeq{}, ErrNotInitialized
	}
	if steps < 0 {
		return music.QSeq{}, fmt.Errorf("markov: negative step count %d", steps)
	}

	out := music.QSeq{
		QuantizationInfo:    seed.QuantizationInfo,
		Tempos:              append([]music.Tempo(nil), seed.Tempos...),
		TotalQuantizedSteps: steps,
	}

	pitch, interval, dur := seedState(seed)
	intervalsSeen := m.ckpt.Intervals.marginal()
	durationsSeen := m.ckpt.Durations.marginal()

	for pos := 0; pos < steps; {
		if err := ctx.Err(); err != nil {
			return music.QSeq{}, err
		}

		row, ok := m.ckpt.Intervals[interval]
		if !ok {
			row = intervalsSeen
		}
		interval = m.sample(row, temp, 0)
		pitch = clampPitch(pitch + interval)

		drow, ok := m.ckpt.Durations[dur]
		if !ok {
			drow = durationsSeen
		}
		dur = m.sample(drow, temp, defaultDuration)
		if dur < 1 {
			dur = 1
		}
		length := dur
		if pos+length > steps {
			length = steps - pos
		}

		out.Notes = append(out.Notes, music.QNote{
			Pitch:              pitch,
			QuantizedStartStep: pos,
			QuantizedEndStep:   pos + length,
		})
		pos += length
	}
	return out, nil
}

// seedState picks up the chain from the last note of the seed
func seedState(seed music.QSeq) (pitch, interval, dur int) {
	notes := append([]music.QNote(nil), seed.Notes...)
	if len(notes) == 0 {
		return defaultPitch, 0, defaultDuration
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].QuantizedStartStep < notes[j].QuantizedStartStep
	})
	last := notes[len(notes)-1]
	pitch = last.Pitch
	dur = last.QuantizedEndStep - last.QuantizedStartStep
	if len(notes) > 1 {
		interval = foldInterval(last.Pitch - notes[len(notes)-2].Pitch)
	}
	return pitch, interval, dur
}

// sample draws a value from row with weights raised to 1/temp. Empty rows
// return fallback.
func (m *Model) sample(row map[int]float64, temp float64, fallback int) int {
	keys := make([]int, 0, len(row))
	for k, w := range row {
		if w > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return fallback
	}
	sort.Ints(keys)

	if temp <= 0 {
		best := keys[0]
		for _, k := range keys[1:] {
			if row[k] > row[best] {
				best = k
			}
		}
		return best
	}

	// normalize by the heaviest weight so small temperatures cannot overflow
	peak := 0.0
	for _, k := range keys {
		peak = math.Max(peak, row[k])
	}
	weights := make([]float64, len(keys))
	var total float64
	for i, k := range keys {
		weights[i] = math.Pow(row[k]/peak, 1/temp)
		total += weights[i]
	}
	r := m.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return keys[i]
		}
	}
	return keys[len(keys)-1]
}

func clampPitch(p int) int {
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return p
}
