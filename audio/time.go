package audio

import (
	"math"
	"time"
)

// PPQ is the transport resolution in ticks per quarter note
const PPQ = 192

// Ticks is a position or length in transport ticks
type Ticks int64

// Sixteenths converts a count of 16th notes to ticks
func Sixteenths(n float64) Ticks {
	return Ticks(math.Round(n * PPQ / 4))
}

// Quarters converts a count of quarter notes to ticks
func Quarters(n float64) Ticks {
	return Ticks(math.Round(n * PPQ))
}

// Measures converts a count of bars to ticks
func Measures(n float64, quartersPerBar int) Ticks {
	return Quarters(n * float64(quartersPerBar))
}

// Duration converts ticks to wall-clock time at bpm. Non-positive bpm
// yields zero.
func (t Ticks) Duration(bpm float64) time.Duration {
	if bpm <= 0 {
		return 0
	}
	quarters := float64(t) / PPQ
	return time.Duration(quarters * 60 / bpm * float64(time.Second))
}

// FromDuration converts wall-clock time to ticks at bpm
func FromDuration(d time.Duration, bpm float64) Ticks {
	if bpm <= 0 {
		return 0
	}
	return Ticks(d.Seconds() * bpm / 60 * PPQ)
}
