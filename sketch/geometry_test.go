package sketch

import (
	"math"
	"testing"

	"go-pianoroll/music"
)

func TestPitchRange(t *testing.T) {
	cases := []struct {
		name   string
		lo, hi int
		want   int
	}{
		{"default", 48, 83, 36},
		{"single", 60, 60, 1},
		{"inverted", 70, 60, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PitchRange(tc.lo, tc.hi)
			if len(got) != tc.want {
				t.Fatalf("len = %d, want %d", len(got), tc.want)
			}
			for i, m := range got {
				if m != tc.lo+i {
					t.Fatalf("got[%d] = %d, want %d", i, m, tc.lo+i)
				}
			}
		})
	}
}

func TestDeriveDefaults(t *testing.T) {
	g := Derive(music.DefaultSequence(), music.DefaultPlayerConfig(), Window{Width: 800, Height: 600})

	if g.NumSteps != 32 {
		t.Fatalf("NumSteps = %d, want 32", g.NumSteps)
	}
	if g.NumNotes != 36 || g.MidiNotes[0] != 48 || g.MidiNotes[35] != 83 {
		t.Fatalf("MidiNotes = %d entries [%d..%d]", g.NumNotes, g.MidiNotes[0], g.MidiNotes[len(g.MidiNotes)-1])
	}
	if g.WinPos != (Point{X: -400, Y: -300}) {
		t.Fatalf("WinPos = %+v", g.WinPos)
	}
	if g.GridDim != (Dim{Width: 800 - 72, Height: 600 - 72}) {
		t.Fatalf("GridDim = %+v", g.GridDim)
	}
	if g.GridPos != (Point{X: -364, Y: -264}) {
		t.Fatalf("GridPos = %+v", g.GridPos)
	}
	if g.StepsPerSecond != 8 {
		t.Fatalf("StepsPerSecond = %v", g.StepsPerSecond)
	}

	if x := g.XScale.Scale(0); x != g.GridPos.X {
		t.Fatalf("x(0) = %v, want %v", x, g.GridPos.X)
	}
	if x := g.XScale.Scale(32); x != g.GridPos.X+g.GridDim.Width {
		t.Fatalf("x(32) = %v", x)
	}

	// lowest pitch sits at the bottom
	lowY, ok := g.YScale.Scale(48)
	if !ok {
		t.Fatal("48 not in band scale")
	}
	highY, _ := g.YScale.Scale(83)
	if lowY <= highY {
		t.Fatalf("expected low pitch below high pitch: low=%v high=%v", lowY, highY)
	}
	bottom := g.GridPos.Y + g.GridDim.Height
	if !near(lowY+g.YScale.Bandwidth(), bottom) {
		t.Fatalf("low band ends at %v, want %v", lowY+g.YScale.Bandwidth(), bottom)
	}
	if !near(highY, g.GridPos.Y) {
		t.Fatalf("high band starts at %v, want %v", highY, g.GridPos.Y)
	}
}

func TestDeriveInvertedRange(t *testing.T) {
	cfg := music.DefaultPlayerConfig()
	cfg.MidiMin, cfg.MidiMax = 80, 50
	g := Derive(music.DefaultSequence(), cfg, Window{Width: 100, Height: 100})
	if g.NumNotes != 0 || len(g.MidiNotes) != 0 {
		t.Fatalf("expected empty pitch list, got %v", g.MidiNotes)
	}
	if g.YScale.Bandwidth() != 0 {
		t.Fatalf("bandwidth = %v, want 0", g.YScale.Bandwidth())
	}
	if _, ok := g.YScale.Scale(60); ok {
		t.Fatal("empty band scale should not map 60")
	}
}

func TestCellAt(t *testing.T) {
	cfg := music.DefaultPlayerConfig()
	cfg.MidiMin, cfg.MidiMax = 60, 63
	// grid 32 wide, 4 tall after margins
	g := Derive(music.DefaultSequence(), cfg, Window{Width: 32 + 2*Margin, Height: 4 + 2*Margin})

	step, midi, ok := g.CellAt(Point{X: g.GridPos.X + 5.5, Y: g.GridPos.Y + 0.5})
	if !ok || step != 5 || midi != 63 {
		t.Fatalf("CellAt top row = (%d, %d, %v), want (5, 63, true)", step, midi, ok)
	}
	step, midi, ok = g.CellAt(Point{X: g.GridPos.X + 0.5, Y: g.GridPos.Y + 3.5})
	if !ok || step != 0 || midi != 60 {
		t.Fatalf("CellAt bottom row = (%d, %d, %v), want (0, 60, true)", step, midi, ok)
	}
	if _, _, ok := g.CellAt(Point{X: g.WinPos.X, Y: g.WinPos.Y}); ok {
		t.Fatal("margin should be outside the grid")
	}
}

func TestLinearScaleDegenerate(t *testing.T) {
	s := NewLinearScale(0, 0, 10, 20)
	if got := s.Scale(5); got != 10 {
		t.Fatalf("Scale = %v, want 10", got)
	}
	s = NewLinearScale(0, 10, 5, 5)
	if got := s.Invert(5); got != 0 {
		t.Fatalf("Invert = %v, want 0", got)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
