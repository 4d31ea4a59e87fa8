package audio

import (
	"testing"
	"time"
)

func render(t *testing.T, s *Synth, n int) float64 {
	t.Helper()
	st := s.Streamer()
	buf := make([][2]float64, 512)
	var energy float64
	for done := 0; done < n; done += len(buf) {
		n, _ := st.Stream(buf)
		for _, smp := range buf[:n] {
			energy += smp[0] * smp[0]
		}
	}
	return energy
}

func TestSynthRendersNote(t *testing.T) {
	s := NewSynth(DefaultSampleRate)
	s.TriggerAttackRelease("A4", 20*time.Millisecond, time.Now())
	if s.Voices() != 1 {
		t.Fatalf("voices = %d, want 1", s.Voices())
	}
	if e := render(t, s, 2048); e == 0 {
		t.Fatal("note rendered silence")
	}

	// 20ms hold plus 80ms release is well under half a second
	render(t, s, int(DefaultSampleRate)/2)
	if s.Voices() != 0 {
		t.Fatalf("voices = %d after release", s.Voices())
	}
}

func TestSynthDrums(t *testing.T) {
	s := NewSynth(DefaultSampleRate)
	if s.Player("theremin") != nil {
		t.Fatal("unknown drum returned a player")
	}
	for _, name := range []string{"kick", ClickDrum, "snare"} {
		s.Player(name).Start(time.Now())
	}
	if s.Voices() != 3 {
		t.Fatalf("voices = %d, want 3", s.Voices())
	}
	if e := render(t, s, 2048); e == 0 {
		t.Fatal("drums rendered silence")
	}
}

func TestSynthDropsBadPitch(t *testing.T) {
	s := NewSynth(DefaultSampleRate)
	s.TriggerAttackRelease("not a note", time.Second, time.Now())
	if s.Voices() != 0 {
		t.Fatalf("voices = %d, want 0", s.Voices())
	}
}
