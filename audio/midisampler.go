package audio

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianoroll/debug"
	"go-pianoroll/music"
)

// Sender writes a MIDI message to an output port
type Sender func(gomidi.Message) error

// GM drum channel (10, zero-based)
const drumChannel = 9

// GMDrums maps drum names to General MIDI percussion notes
var GMDrums = map[string]uint8{
	"kick":      36,
	"rimshot":   37,
	"snare":     38,
	"clap":      39,
	"hatClosed": 42,
	"hatOpen":   46,
	"crash":     49,
	"ride":      51,
	"cowbell":   56,
}

// MIDISampler plays notes on an external MIDI synth. Note-on and note-off
// are sent from timers so the caller never blocks.
type MIDISampler struct {
	send     Sender
	channel  uint8
	velocity uint8
}

// NewMIDISampler plays on a zero-based MIDI channel
func NewMIDISampler(send Sender, channel uint8) *MIDISampler {
	return &MIDISampler{send: send, channel: channel, velocity: 100}
}

// TriggerAttackRelease implements Sampler. Unparseable or out-of-range
// pitches are logged and dropped. A non-positive dur sends note-off right
// after note-on.
func (s *MIDISampler) TriggerAttackRelease(note string, dur time.Duration, at time.Time) {
	key, err := music.ParsePitch(note)
	if err != nil || key < 0 || key > 127 {
		debug.Log("audio", "drop note %q: %v", note, err)
		return
	}
	if dur < 0 {
		dur = 0
	}
	k := uint8(key)
	ch := s.channel
	on := gomidi.NoteOn(ch, k, s.velocity)
	off := gomidi.NoteOff(ch, k)

	delay := time.Until(at)
	if delay <= 0 {
		s.emit(on)
		time.AfterFunc(dur, func() { s.emit(off) })
		return
	}
	time.AfterFunc(delay, func() {
		s.emit(on)
		time.AfterFunc(dur, func() { s.emit(off) })
	})
}

func (s *MIDISampler) emit(msg gomidi.Message) {
	if s.send == nil {
		return
	}
	if err := s.send(msg); err != nil {
		debug.Error("audio", err, "midi send")
	}
}

// MIDIDrums is a DrumKit on the GM percussion channel
type MIDIDrums struct {
	send Sender
}

// NewMIDIDrums creates a drum kit sending to send
func NewMIDIDrums(send Sender) *MIDIDrums {
	return &MIDIDrums{send: send}
}

// Player implements DrumKit. Unknown names return nil.
func (d *MIDIDrums) Player(name string) DrumPlayer {
	note, ok := GMDrums[name]
	if !ok {
		return nil
	}
	return midiDrum{s: &MIDISampler{send: d.send, channel: drumChannel, velocity: 90}, note: note}
}

type midiDrum struct {
	s    *MIDISampler
	note uint8
}

func (m midiDrum) Start(at time.Time) {
	m.s.TriggerAttackRelease(music.PitchName(int(m.note)), 30*time.Millisecond, at)
}
