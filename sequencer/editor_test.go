package sequencer

import (
	"testing"

	"go-pianoroll/music"
	"go-pianoroll/sketch"
)

func newTestEditor() *Editor {
	return NewEditor(sketch.NewDefaultState())
}

func notes(e *Editor) []music.Note {
	return e.State().Sequence().Notes
}

func TestEditorToggle(t *testing.T) {
	e := newTestEditor()
	if e.Cursor != (Cell{Step: 0, Midi: 60}) {
		t.Fatalf("cursor = %+v", e.Cursor)
	}
	if e.Selected() != 0 {
		t.Fatalf("selected = %d, want 0", e.Selected())
	}

	e.HandleKey("enter")
	if len(notes(e)) != 2 || e.Selected() != -1 {
		t.Fatalf("after remove: notes=%v selected=%d", notes(e), e.Selected())
	}
	e.HandleKey("enter")
	if got := notes(e)[0]; got != (music.Note{Midi: 60, Start: 0, End: 1}) {
		t.Fatalf("added note = %+v", got)
	}

	e.ToggleAt(-1, 60)
	e.ToggleAt(32, 60)
	if len(notes(e)) != 3 {
		t.Fatalf("off-grid toggles changed notes: %v", notes(e))
	}
}

func TestEditorResize(t *testing.T) {
	e := newTestEditor()
	e.HandleKey("shift+right")
	if notes(e)[0].End != 5 {
		t.Fatalf("end = %v, want 5", notes(e)[0].End)
	}
	for i := 0; i < 10; i++ {
		e.HandleKey("shift+left")
	}
	if notes(e)[0].End != 1 {
		t.Fatalf("end = %v, want 1", notes(e)[0].End)
	}

	e.Cursor = Cell{Step: 8, Midi: 67}
	e.Resize(100)
	if n := notes(e)[2]; n.End != 32 {
		t.Fatalf("end = %v, want clamp to 32", n.End)
	}
}

func TestEditorShift(t *testing.T) {
	e := newTestEditor()
	e.HandleKey("ctrl+right")
	if n := notes(e)[0]; n.Start != 1 || n.End != 5 || e.Cursor.Step != 1 {
		t.Fatalf("note = %+v cursor = %+v", n, e.Cursor)
	}
	e.HandleKey("ctrl+left")
	e.HandleKey("ctrl+left")
	if n := notes(e)[0]; n.Start != 0 || e.Cursor.Step != 0 {
		t.Fatalf("note = %+v cursor = %+v", n, e.Cursor)
	}
}

func TestEditorTranspose(t *testing.T) {
	e := newTestEditor()
	e.HandleKey("shift+up")
	if notes(e)[0].Midi != 61 || e.Cursor.Midi != 61 {
		t.Fatalf("midi = %d cursor = %+v", notes(e)[0].Midi, e.Cursor)
	}
	e.HandleKey("v")
	e.HandleKey("shift+up")
	if notes(e)[0].Midi != 73 || e.Selected() != 0 {
		t.Fatalf("midi = %d selected = %d", notes(e)[0].Midi, e.Selected())
	}
	e.HandleKey("shift+down")
	if notes(e)[0].Midi != 61 {
		t.Fatalf("midi = %d", notes(e)[0].Midi)
	}
}

func TestEditorCursorClamp(t *testing.T) {
	e := newTestEditor()
	e.MoveCursor(-5, 0)
	if e.Cursor.Step != 0 {
		t.Fatalf("step = %d", e.Cursor.Step)
	}
	e.MoveCursor(100, 100)
	if e.Cursor != (Cell{Step: 31, Midi: 83}) {
		t.Fatalf("cursor = %+v", e.Cursor)
	}
	e.MoveCursor(0, -100)
	if e.Cursor.Midi != 48 {
		t.Fatalf("midi = %d", e.Cursor.Midi)
	}
}

func TestEditorBars(t *testing.T) {
	e := newTestEditor()
	e.HandleKey("]")
	if got := e.State().Sequence().NumBars; got != 3 {
		t.Fatalf("bars = %d", got)
	}
	e.Cursor.Step = 40
	for i := 0; i < 5; i++ {
		e.HandleKey("[")
	}
	if got := e.State().Sequence().NumBars; got != MinBars {
		t.Fatalf("bars = %d", got)
	}
	if e.Cursor.Step != 15 {
		t.Fatalf("cursor step = %d, want 15", e.Cursor.Step)
	}
	e.SetBars(100)
	if got := e.State().Sequence().NumBars; got != MaxBars {
		t.Fatalf("bars = %d", got)
	}
}

func TestEditorScrollPitch(t *testing.T) {
	e := newTestEditor()
	e.HandleKey("pgup")
	cfg := e.State().Config()
	if cfg.MidiMin != 60 || cfg.MidiMax != 95 || e.Cursor.Midi != 72 {
		t.Fatalf("range %d..%d cursor %+v", cfg.MidiMin, cfg.MidiMax, e.Cursor)
	}
	for i := 0; i < 10; i++ {
		e.HandleKey("pgup")
	}
	if cfg := e.State().Config(); cfg.MidiMax > 127 {
		t.Fatalf("range %d..%d past the top", cfg.MidiMin, cfg.MidiMax)
	}
}

func TestEditorJumpNote(t *testing.T) {
	e := newTestEditor()
	e.HandleKey("tab")
	if e.Cursor != (Cell{Step: 4, Midi: 64}) {
		t.Fatalf("cursor = %+v", e.Cursor)
	}
	e.HandleKey("shift+tab")
	if e.Cursor != (Cell{Step: 0, Midi: 60}) {
		t.Fatalf("cursor = %+v", e.Cursor)
	}
	e.HandleKey("shift+tab")
	if e.Cursor != (Cell{Step: 8, Midi: 67}) {
		t.Fatalf("wrap: cursor = %+v", e.Cursor)
	}

	e.Cursor = Cell{Step: 2, Midi: 50}
	e.JumpNote(1)
	if e.Cursor.Step != 4 {
		t.Fatalf("from empty cell: cursor = %+v", e.Cursor)
	}
}

func TestEditorClearAndUnknown(t *testing.T) {
	e := newTestEditor()
	if e.HandleKey("q") {
		t.Fatal("editor claimed an unknown key")
	}
	e.HandleKey("c")
	if len(notes(e)) != 0 {
		t.Fatalf("notes = %v", notes(e))
	}
	e.HandleKey("tab")
	e.HandleKey("delete")
}

func TestEditorClick(t *testing.T) {
	e := newTestEditor()
	e.State().SetWindow(800, 600)
	geo := e.State().Geometry()

	y, ok := geo.YScale.Scale(50)
	if !ok {
		t.Fatal("pitch 50 not on the scale")
	}
	p := sketch.Point{X: geo.XScale.Scale(2.5), Y: y + geo.YScale.Bandwidth()/2}
	if !e.Click(p) {
		t.Fatal("click inside the grid ignored")
	}
	if e.Cursor != (Cell{Step: 2, Midi: 50}) {
		t.Fatalf("cursor = %+v", e.Cursor)
	}
	if i := e.State().Sequence().NoteAt(2.5, 50); i < 0 {
		t.Fatal("click did not add a note")
	}

	e.Click(p)
	if i := e.State().Sequence().NoteAt(2.5, 50); i >= 0 {
		t.Fatal("second click did not remove the note")
	}

	if e.Click(sketch.Point{X: -399, Y: 0}) {
		t.Fatal("click in the margin accepted")
	}
}
