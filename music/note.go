package music

// Note is a single pitched event on the step grid
type Note struct {
	Midi  int     `json:"midi"`
	Start float64 `json:"start"` // in steps
	End   float64 `json:"end"`   // in steps
}

// Duration returns End - Start. Zero or negative for malformed notes.
func (n Note) Duration() float64 {
	return n.End - n.Start
}

// Valid reports whether the note has positive length
func (n Note) Valid() bool {
	return n.Start < n.End
}

// Covers reports whether the note sounds at the given step and pitch
func (n Note) Covers(step float64, midi int) bool {
	return n.Midi == midi && n.Start <= step && step < n.End
}
