package sketch

import "go-pianoroll/music"

// Window is the raw drawable size reported by the UI
type Window struct {
	Width  float64
	Height float64
}

// Point is a pixel position. The origin is the window center.
type Point struct {
	X, Y float64
}

// Dim is a pixel extent
type Dim struct {
	Width, Height float64
}

// Geometry holds every value derived from the sequence, player config and
// window size. It is never mutated independently; call Derive again.
type Geometry struct {
	NumSteps  int
	MidiNotes []int
	NumNotes  int

	WinDim  Dim
	WinPos  Point
	GridDim Dim
	GridPos Point

	XScale LinearScale // step -> x
	YScale BandScale   // pitch -> y band

	StepsPerSecond float64
}

// Derive computes layout and scales. Pure; malformed input (inverted pitch
// range, tiny windows) yields empty or degenerate values, never an error.
func Derive(seq music.Sequence, cfg music.PlayerConfig, win Window) Geometry {
	g := Geometry{
		NumSteps:  seq.NumSteps(),
		MidiNotes: PitchRange(cfg.MidiMin, cfg.MidiMax),
		WinDim:    Dim{Width: win.Width, Height: win.Height},
	}
	g.NumNotes = len(g.MidiNotes)

	g.WinPos = Point{X: -win.Width / 2, Y: -win.Height / 2}
	g.GridDim = Dim{
		Width:  win.Width - 2*Margin,
		Height: win.Height - 2*Margin,
	}
	g.GridPos = Point{X: g.WinPos.X + Margin, Y: g.WinPos.Y + Margin}

	g.XScale = NewLinearScale(0, float64(g.NumSteps), g.GridPos.X, g.GridPos.X+g.GridDim.Width)
	// lowest pitch at the bottom of the grid
	g.YScale = NewBandScale(g.MidiNotes, g.GridPos.Y+g.GridDim.Height, g.GridPos.Y)

	g.StepsPerSecond = seq.StepsPerSecond()
	return g
}

// PitchRange returns the inclusive integer range [lo, hi], empty if lo > hi
func PitchRange(lo, hi int) []int {
	if lo > hi {
		return []int{}
	}
	out := make([]int, 0, hi-lo+1)
	for m := lo; m <= hi; m++ {
		out = append(out, m)
	}
	return out
}

// CellAt maps a pixel position back to (step, pitch). ok is false outside
// the grid.
func (g Geometry) CellAt(p Point) (step int, midi int, ok bool) {
	if g.NumSteps <= 0 {
		return 0, 0, false
	}
	x := g.XScale.Invert(p.X)
	if x < 0 || x >= float64(g.NumSteps) {
		return 0, 0, false
	}
	midi, ok = g.YScale.Invert(p.Y)
	if !ok {
		return 0, 0, false
	}
	return int(x), midi, true
}
