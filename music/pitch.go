package music

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// PitchName converts a MIDI number to scientific pitch notation (60 = "C4")
func PitchName(midi int) string {
	pc := ((midi % 12) + 12) % 12
	octave := floorDiv(midi, 12) - 1
	return noteNames[pc] + strconv.Itoa(octave)
}

// PitchClass returns the note name without octave
func PitchClass(midi int) string {
	return noteNames[((midi%12)+12)%12]
}

// ParsePitch converts a name like "C#4", "Bb3" or "A-1" back to a MIDI number
func ParsePitch(name string) (int, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0, fmt.Errorf("invalid pitch name %q", name)
	}
	base, ok := letterOffsets[byte(strings.ToUpper(name[:1])[0])]
	if !ok {
		return 0, fmt.Errorf("invalid pitch letter in %q", name)
	}
	rest := name[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		base++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		base--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in %q: %w", name, err)
	}
	return (octave+1)*12 + base, nil
}

// Frequency returns the equal-tempered frequency in Hz (A4 = 440)
func Frequency(midi int) float64 {
	return 440 * math.Pow(2, float64(midi-69)/12)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
