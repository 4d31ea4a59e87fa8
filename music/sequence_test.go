package music

import "testing"

func TestNumSteps(t *testing.T) {
	seq := Sequence{
		Notes:           []Note{{Midi: 60, Start: 0, End: 4}},
		QPM:             120,
		StepsPerQuarter: 4,
		QuartersPerBar:  4,
		NumBars:         2,
	}
	if got := seq.NumSteps(); got != 32 {
		t.Fatalf("NumSteps = %d, want 32", got)
	}
	seq.NumBars = 3
	if got := seq.NumSteps(); got != 48 {
		t.Fatalf("NumSteps after bar change = %d, want 48", got)
	}
}

func TestStepsPerSecond(t *testing.T) {
	seq := DefaultSequence()
	if got := seq.StepsPerSecond(); got != 8 {
		t.Fatalf("StepsPerSecond = %v, want 8", got)
	}
}

func TestCloneDoesNotShareNotes(t *testing.T) {
	seq := DefaultSequence()
	c := seq.Clone()
	c.Notes[0].Midi = 10
	if seq.Notes[0].Midi != 60 {
		t.Fatalf("clone mutated original: %d", seq.Notes[0].Midi)
	}
}

func TestAppendShiftsAndGrowsBars(t *testing.T) {
	seq := DefaultSequence()
	cont := Sequence{Notes: []Note{
		{Midi: 72, Start: 0, End: 2},
		{Midi: 74, Start: 2, End: 30},
	}}
	seq.Append(cont, 10)

	if len(seq.Notes) != 5 {
		t.Fatalf("notes = %d, want 5", len(seq.Notes))
	}
	last := seq.Notes[4]
	if last.Midi != 74 || last.Start != 12 || last.End != 40 {
		t.Fatalf("last note = %+v", last)
	}
	if seq.NumBars != 3 {
		t.Fatalf("NumBars = %d, want 3", seq.NumBars)
	}
}

func TestNoteAt(t *testing.T) {
	seq := DefaultSequence()
	cases := []struct {
		step float64
		midi int
		want int
	}{
		{0, 60, 0},
		{3.5, 60, 0},
		{4, 60, -1},
		{4, 64, 1},
		{9, 67, 2},
		{9, 60, -1},
	}
	for _, tc := range cases {
		if got := seq.NoteAt(tc.step, tc.midi); got != tc.want {
			t.Errorf("NoteAt(%v, %d) = %d, want %d", tc.step, tc.midi, got, tc.want)
		}
	}
}
