package midi

// KeyboardToMidi maps the home row of a computer keyboard to pitches 60..69
var KeyboardToMidi = map[string]int{
	"a": 60,
	"s": 61,
	"d": 62,
	"f": 63,
	"g": 64,
	"h": 65,
	"j": 66,
	"k": 67,
	"l": 68,
	";": 69,
}

// KeyToMidi looks up a key, optionally shifted by whole octaves
func KeyToMidi(key string, octave int) (int, bool) {
	p, ok := KeyboardToMidi[key]
	if !ok {
		return 0, false
	}
	p += 12 * octave
	if p < 0 || p > 127 {
		return 0, false
	}
	return p, true
}
