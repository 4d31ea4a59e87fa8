package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"go-pianoroll/debug"
	"go-pianoroll/music"
)

// DefaultSampleRate for the software synth
const DefaultSampleRate beep.SampleRate = 44100

// Envelope times for synth voices
const (
	attackTime  = 5 * time.Millisecond
	releaseTime = 80 * time.Millisecond
)

// Synth is a small software instrument mixed into one beep stream. It
// satisfies both Sampler (sine voices) and DrumKit (noise hats, sine kick).
type Synth struct {
	sr     beep.SampleRate
	mixer  *beep.Mixer
	mu     sync.Mutex // guards mixer until Open hands it to the speaker
	opened bool
	gain   float64
}

// NewSynth creates a synth that renders but is not yet connected to a device
func NewSynth(sr beep.SampleRate) *Synth {
	return &Synth{sr: sr, mixer: &beep.Mixer{}, gain: 0.25}
}

// Open starts the system audio device and plays the mix through it
func (s *Synth) Open() error {
	if err := speaker.Init(s.sr, s.sr.N(time.Second/20)); err != nil {
		return err
	}
	s.mu.Lock()
	s.opened = true
	s.mu.Unlock()
	speaker.Play(s.mixer)
	debug.Log("audio", "synth opened at %d Hz", s.sr)
	return nil
}

// Close stops the audio device
func (s *Synth) Close() {
	s.mu.Lock()
	opened := s.opened
	s.opened = false
	s.mu.Unlock()
	if opened {
		speaker.Clear()
	}
}

// Streamer exposes the mix for offline rendering (not needed after Open)
func (s *Synth) Streamer() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.mixer.Stream(samples)
	})
}

// Voices returns the number of sounding voices
func (s *Synth) Voices() int {
	s.lock()
	defer s.unlock()
	return s.mixer.Len()
}

func (s *Synth) lock() {
	s.mu.Lock()
	if s.opened {
		speaker.Lock()
	}
}

func (s *Synth) unlock() {
	if s.opened {
		speaker.Unlock()
	}
	s.mu.Unlock()
}

func (s *Synth) add(at time.Time, voice beep.Streamer) {
	delay := time.Until(at)
	if delay > 0 {
		voice = beep.Seq(beep.Silence(s.sr.N(delay)), voice)
	}
	s.lock()
	s.mixer.Add(voice)
	s.unlock()
}

// TriggerAttackRelease implements Sampler
func (s *Synth) TriggerAttackRelease(note string, dur time.Duration, at time.Time) {
	midi, err := music.ParsePitch(note)
	if err != nil {
		debug.Log("audio", "drop note %q: %v", note, err)
		return
	}
	if dur < 0 {
		dur = 0
	}
	s.add(at, sineVoice(s.sr, music.Frequency(midi), dur, s.gain))
}

// Player implements DrumKit
func (s *Synth) Player(name string) DrumPlayer {
	switch name {
	case "kick":
		return synthDrum{s: s, voice: func() beep.Streamer { return kickVoice(s.sr, s.gain*2) }}
	case "hatClosed", "hatOpen", "snare", "clap":
		decay := 40 * time.Millisecond
		if name != "hatClosed" {
			decay = 150 * time.Millisecond
		}
		return synthDrum{s: s, voice: func() beep.Streamer { return noiseVoice(s.sr, decay, s.gain) }}
	}
	return nil
}

type synthDrum struct {
	s     *Synth
	voice func() beep.Streamer
}

func (d synthDrum) Start(at time.Time) {
	d.s.add(at, d.voice())
}

// sineVoice renders a sine with a short linear attack, a sustain of dur
// and a linear release.
func sineVoice(sr beep.SampleRate, freq float64, dur time.Duration, gain float64) beep.Streamer {
	attack := sr.N(attackTime)
	hold := sr.N(dur)
	release := sr.N(releaseTime)
	total := hold + release
	step := 2 * math.Pi * freq / float64(sr)
	var pos int
	var phase float64

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			env := 1.0
			if pos < attack {
				env = float64(pos) / float64(attack)
			}
			if pos >= hold {
				env *= 1 - float64(pos-hold)/float64(release)
			}
			v := math.Sin(phase) * env * gain
			samples[i][0], samples[i][1] = v, v
			phase += step
			pos++
			n++
		}
		return n, true
	})
}

// noiseVoice is white noise with an exponential decay
func noiseVoice(sr beep.SampleRate, decay time.Duration, gain float64) beep.Streamer {
	total := sr.N(decay * 4)
	tau := float64(sr.N(decay))
	var pos int
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			v := (rand.Float64()*2 - 1) * math.Exp(-float64(pos)/tau) * gain
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}

// kickVoice is a sine sweeping from 150 Hz to 50 Hz
func kickVoice(sr beep.SampleRate, gain float64) beep.Streamer {
	total := sr.N(200 * time.Millisecond)
	var pos int
	var phase float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(total)
			freq := 50 + 100*(1-t)
			v := math.Sin(phase) * (1 - t) * gain
			samples[i][0], samples[i][1] = v, v
			phase += 2 * math.Pi * freq / float64(sr)
			pos++
			n++
		}
		return n, true
	})
}
