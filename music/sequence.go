package music

import "sort"

// Sequence holds the melody plus the grid it lives on
type Sequence struct {
	Notes           []Note  `json:"notes"`
	QPM             float64 `json:"qpm"`             // quarter notes per minute
	StepsPerQuarter int     `json:"stepsPerQuarter"` // grid subdivision
	QuartersPerBar  int     `json:"quartersPerBar"`  // time signature numerator
	NumBars         int     `json:"numBars"`
}

// PlayerConfig holds the UI-facing player settings
type PlayerConfig struct {
	Clicks    bool    `json:"clicks"`
	Recording bool    `json:"recording"`
	MidiMin   int     `json:"midiMin"`
	MidiMax   int     `json:"midiMax"`
	Temp      float64 `json:"temp"`
}

// Visible pitch range defaults
const (
	DefaultMidiMin = 48
	DefaultMidiMax = 83
)

// DefaultSequence returns the starting melody: C E G over two bars of 4/4
func DefaultSequence() Sequence {
	return Sequence{
		Notes: []Note{
			{Midi: 60, Start: 0, End: 4},
			{Midi: 64, Start: 4, End: 8},
			{Midi: 67, Start: 8, End: 10},
		},
		QPM:             120,
		StepsPerQuarter: 4,
		QuartersPerBar:  4,
		NumBars:         2,
	}
}

// DefaultPlayerConfig returns the starting player settings
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		Clicks:    true,
		Recording: false,
		MidiMin:   DefaultMidiMin,
		MidiMax:   DefaultMidiMax,
		Temp:      1.0,
	}
}

// NumSteps returns stepsPerQuarter * quartersPerBar * numBars
func (s Sequence) NumSteps() int {
	return s.StepsPerQuarter * s.QuartersPerBar * s.NumBars
}

// StepsPerSecond converts the step grid to wall-clock rate
func (s Sequence) StepsPerSecond() float64 {
	return float64(s.StepsPerQuarter) * s.QPM / 60
}

// EndStep returns the latest note end, or 0 for an empty sequence
func (s Sequence) EndStep() float64 {
	end := 0.0
	for _, n := range s.Notes {
		if n.End > end {
			end = n.End
		}
	}
	return end
}

// Clone returns a deep copy (notes slice is not shared)
func (s Sequence) Clone() Sequence {
	c := s
	c.Notes = make([]Note, len(s.Notes))
	copy(c.Notes, s.Notes)
	return c
}

// SortNotes orders notes by start step, keeping insertion order for ties
func (s *Sequence) SortNotes() {
	sort.SliceStable(s.Notes, func(i, j int) bool {
		return s.Notes[i].Start < s.Notes[j].Start
	})
}

// NoteAt returns the index of the note covering (step, midi), or -1
func (s Sequence) NoteAt(step float64, midi int) int {
	for i, n := range s.Notes {
		if n.Covers(step, midi) {
			return i
		}
	}
	return -1
}

// Append splices a generated continuation onto the sequence. Continuation
// notes are relative to their own step 0, so they are shifted by offset.
// Bars are grown until every note is back on the grid.
func (s *Sequence) Append(cont Sequence, offset float64) {
	for _, n := range cont.Notes {
		n.Start += offset
		n.End += offset
		s.Notes = append(s.Notes, n)
	}
	s.SortNotes()

	if s.StepsPerQuarter*s.QuartersPerBar <= 0 {
		return
	}
	for float64(s.NumSteps()) < s.EndStep() {
		s.NumBars++
	}
}
