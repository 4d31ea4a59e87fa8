package sketch

import "go-pianoroll/music"

// Layout constants
const (
	Margin  = 36 // inset between window edge and grid, in pixels/cells
	MidiMin = music.DefaultMidiMin
	MidiMax = music.DefaultMidiMax
)
