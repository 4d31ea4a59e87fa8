package audio

import (
	"time"

	"go-pianoroll/music"
)

// Sampler is a pitched instrument the transport can trigger
type Sampler interface {
	// TriggerAttackRelease plays note (e.g. "C4") for dur starting at at.
	// Called from the transport's dispatch goroutine: must not block.
	TriggerAttackRelease(note string, dur time.Duration, at time.Time)
}

// DrumPlayer plays a one-shot sample
type DrumPlayer interface {
	Start(at time.Time)
}

// DrumKit looks up one-shot players by name ("hatClosed", "kick", ...)
type DrumKit interface {
	Player(name string) DrumPlayer
}

// ClickDrum is the sample the metronome plays
const ClickDrum = "hatClosed"

// TonePattern maps every note to a (time, note) pair with time equal to
// the note's start in 16th notes. Input order is preserved.
func TonePattern(seq music.Sequence) []PartEvent[music.Note] {
	out := make([]PartEvent[music.Note], len(seq.Notes))
	for i, n := range seq.Notes {
		out[i] = PartEvent[music.Note]{Time: Sixteenths(n.Start), Value: n}
	}
	return out
}

// GetPart returns an empty part whose callback plays notes on samp. The
// duration is End - Start in 16ths; non-positive lengths are passed to the
// sampler unchanged.
func GetPart(samp Sampler) *Part[music.Note] {
	return NewPart(func(c Cue, n music.Note) {
		dur := Sixteenths(n.End - n.Start)
		samp.TriggerAttackRelease(music.PitchName(n.Midi), c.Duration(dur), c.Time)
	})
}

// NotePart is GetPart filled with the sequence's TonePattern
func NotePart(samp Sampler, seq music.Sequence) *Part[music.Note] {
	p := GetPart(samp)
	for _, e := range TonePattern(seq) {
		p.Add(e.Time, e.Value)
	}
	return p
}

// GetClickPart returns a one-bar metronome: a click on each of four
// quarters, looping every measure until removed from the transport.
func GetClickPart(kit DrumKit) *Part[string] {
	pattern := []PartEvent[string]{
		{Time: Quarters(0), Value: ClickDrum},
		{Time: Quarters(1), Value: ClickDrum},
		{Time: Quarters(2), Value: ClickDrum},
		{Time: Quarters(3), Value: ClickDrum},
	}
	part := NewPart(func(c Cue, drum string) {
		if p := kit.Player(drum); p != nil {
			p.Start(c.Time)
		}
	}, pattern...)
	part.Loop = true
	part.LoopStart = 0
	part.LoopEnd = Measures(1, 4)
	return part
}

// Silent is a Sampler and DrumKit that plays nothing
type Silent struct{}

func (Silent) TriggerAttackRelease(string, time.Duration, time.Time) {}

func (Silent) Player(string) DrumPlayer { return nil }
