package sequencer

import (
	"go-pianoroll/music"
	"go-pianoroll/sketch"
)

// Bar count limits for the editor
const (
	MinBars = 1
	MaxBars = 16
)

// EditVertSteps are the transpose amounts: semitone, octave
var EditVertSteps = []int{1, 12}

// Cell is a position on the piano-roll grid
type Cell struct {
	Step int
	Midi int
}

// Editor edits the sequence in a State through a grid cursor. All edits
// go through State mutators so geometry and listeners stay in sync.
type Editor struct {
	state    *sketch.State
	Cursor   Cell
	EditVert int // index into EditVertSteps
}

// NewEditor creates an editor with the cursor on the first step at middle C
// (or the nearest visible pitch)
func NewEditor(state *sketch.State) *Editor {
	e := &Editor{state: state, Cursor: Cell{Step: 0, Midi: 60}}
	e.clampCursor()
	return e
}

// State returns the edited state
func (e *Editor) State() *sketch.State { return e.state }

// Selected returns the index of the note under the cursor, or -1
func (e *Editor) Selected() int {
	return e.state.Sequence().NoteAt(float64(e.Cursor.Step)+0.5, e.Cursor.Midi)
}

func (e *Editor) clampCursor() {
	seq, cfg := e.state.Sequence(), e.state.Config()
	if n := seq.NumSteps(); e.Cursor.Step >= n {
		e.Cursor.Step = n - 1
	}
	if e.Cursor.Step < 0 {
		e.Cursor.Step = 0
	}
	if cfg.MidiMin > cfg.MidiMax {
		return
	}
	if e.Cursor.Midi > cfg.MidiMax {
		e.Cursor.Midi = cfg.MidiMax
	}
	if e.Cursor.Midi < cfg.MidiMin {
		e.Cursor.Midi = cfg.MidiMin
	}
}

// MoveCursor shifts the cursor, clamped to the grid
func (e *Editor) MoveCursor(dStep, dMidi int) {
	e.Cursor.Step += dStep
	e.Cursor.Midi += dMidi
	e.clampCursor()
}

// ToggleAt removes the note covering (step, midi) or adds a one-step note there
func (e *Editor) ToggleAt(step, midi int) {
	seq := e.state.Sequence()
	if step < 0 || step >= seq.NumSteps() {
		return
	}
	if i := seq.NoteAt(float64(step)+0.5, midi); i >= 0 {
		e.state.RemoveNote(i)
		return
	}
	e.state.AddNote(music.Note{Midi: midi, Start: float64(step), End: float64(step + 1)})
}

// Click toggles the note in the grid cell under p and moves the cursor there.
// Points outside the grid are ignored.
func (e *Editor) Click(p sketch.Point) bool {
	step, midi, ok := e.state.Geometry().CellAt(p)
	if !ok {
		return false
	}
	e.Cursor = Cell{Step: step, Midi: midi}
	e.ToggleAt(step, midi)
	return true
}

// editSelected applies fn to the note under the cursor
func (e *Editor) editSelected(fn func(n *music.Note, numSteps int)) {
	i := e.Selected()
	if i < 0 {
		return
	}
	e.state.Update(func(seq *music.Sequence, _ *music.PlayerConfig) {
		if i >= len(seq.Notes) {
			return
		}
		fn(&seq.Notes[i], seq.NumSteps())
		seq.SortNotes()
	})
}

// Resize changes the length of the note under the cursor by delta steps.
// Notes keep at least one step and stay on the grid.
func (e *Editor) Resize(delta int) {
	e.editSelected(func(n *music.Note, numSteps int) {
		end := n.End + float64(delta)
		if end < n.Start+1 {
			end = n.Start + 1
		}
		if end > float64(numSteps) {
			end = float64(numSteps)
		}
		n.End = end
	})
}

// Shift moves the note under the cursor in time and the cursor with it
func (e *Editor) Shift(delta int) {
	i := e.Selected()
	if i < 0 {
		return
	}
	moved := false
	e.editSelected(func(n *music.Note, numSteps int) {
		d := float64(delta)
		if n.Start+d < 0 || n.End+d > float64(numSteps) {
			return
		}
		n.Start += d
		n.End += d
		moved = true
	})
	if moved {
		e.MoveCursor(delta, 0)
	}
}

// Transpose moves the note under the cursor by semitones and follows it
func (e *Editor) Transpose(semitones int) {
	i := e.Selected()
	if i < 0 {
		return
	}
	moved := false
	e.editSelected(func(n *music.Note, _ int) {
		p := n.Midi + semitones
		if p < 0 || p > 127 {
			return
		}
		n.Midi = p
		moved = true
	})
	if moved {
		e.MoveCursor(0, semitones)
	}
}

// Delete removes the note under the cursor
func (e *Editor) Delete() {
	if i := e.Selected(); i >= 0 {
		e.state.RemoveNote(i)
	}
}

// SetBars changes the bar count within MinBars..MaxBars
func (e *Editor) SetBars(n int) {
	if n < MinBars {
		n = MinBars
	}
	if n > MaxBars {
		n = MaxBars
	}
	e.state.SetNumBars(n)
	e.clampCursor()
}

// ScrollPitch moves the visible pitch window by semitones, keeping it in 0..127
func (e *Editor) ScrollPitch(semitones int) {
	cfg := e.state.Config()
	lo, hi := cfg.MidiMin+semitones, cfg.MidiMax+semitones
	if lo < 0 || hi > 127 {
		return
	}
	e.state.SetPitchRange(lo, hi)
	e.MoveCursor(0, semitones)
}

// JumpNote moves the cursor to the next (dir > 0) or previous note in
// time order, wrapping around
func (e *Editor) JumpNote(dir int) {
	seq := e.state.Sequence()
	if len(seq.Notes) == 0 {
		return
	}
	cur := e.Selected()
	var next int
	switch {
	case cur < 0 && dir > 0:
		next = 0
		for next < len(seq.Notes) && seq.Notes[next].Start < float64(e.Cursor.Step) {
			next++
		}
		next %= len(seq.Notes)
	case cur < 0:
		next = len(seq.Notes) - 1
		for next >= 0 && seq.Notes[next].Start >= float64(e.Cursor.Step) {
			next--
		}
		if next < 0 {
			next = len(seq.Notes) - 1
		}
	default:
		next = (cur + dir + len(seq.Notes)) % len(seq.Notes)
	}
	n := seq.Notes[next]
	e.Cursor = Cell{Step: int(n.Start), Midi: n.Midi}
	e.clampCursor()
}

// HandleKey applies an editing key. Returns false for keys the editor
// does not own.
func (e *Editor) HandleKey(key string) bool {
	editV := EditVertSteps[e.EditVert]
	seq := e.state.Sequence()

	switch key {
	case "left":
		e.MoveCursor(-1, 0)
	case "right":
		e.MoveCursor(1, 0)
	case "up":
		e.MoveCursor(0, 1)
	case "down":
		e.MoveCursor(0, -1)

	case "enter":
		e.ToggleAt(e.Cursor.Step, e.Cursor.Midi)
	case "backspace", "delete":
		e.Delete()

	case "shift+right":
		e.Resize(1)
	case "shift+left":
		e.Resize(-1)
	case "ctrl+right":
		e.Shift(1)
	case "ctrl+left":
		e.Shift(-1)
	case "shift+up":
		e.Transpose(editV)
	case "shift+down":
		e.Transpose(-editV)
	case "v":
		e.EditVert = (e.EditVert + 1) % len(EditVertSteps)

	case "[":
		e.SetBars(seq.NumBars - 1)
	case "]":
		e.SetBars(seq.NumBars + 1)
	case "pgup":
		e.ScrollPitch(12)
	case "pgdown":
		e.ScrollPitch(-12)

	case "tab":
		e.JumpNote(1)
	case "shift+tab":
		e.JumpNote(-1)

	case "c":
		e.state.ReplaceNotes(nil)

	default:
		return false
	}
	return true
}
