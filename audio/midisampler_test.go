package audio

import (
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (c *captureSender) Send(msg gomidi.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureSender) wait(t *testing.T, n int) []gomidi.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.msgs) >= n {
			out := append([]gomidi.Message(nil), c.msgs...)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages", n)
	return nil
}

func TestMIDISamplerSendsOnAndOff(t *testing.T) {
	out := &captureSender{}
	s := NewMIDISampler(out.Send, 2)
	s.TriggerAttackRelease("A4", 10*time.Millisecond, time.Now())

	msgs := out.wait(t, 2)
	var ch, key, vel uint8
	if !msgs[0].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("first message = %v, want note on", msgs[0])
	}
	if ch != 2 || key != 69 || vel == 0 {
		t.Fatalf("note on ch=%d key=%d vel=%d", ch, key, vel)
	}
	if !msgs[1].GetNoteOff(&ch, &key, &vel) || key != 69 {
		t.Fatalf("second message = %v, want note off 69", msgs[1])
	}
}

func TestMIDISamplerDropsBadPitch(t *testing.T) {
	out := &captureSender{}
	s := NewMIDISampler(out.Send, 0)
	s.TriggerAttackRelease("H2", time.Millisecond, time.Now())
	s.TriggerAttackRelease("C12", time.Millisecond, time.Now())
	time.Sleep(20 * time.Millisecond)
	out.mu.Lock()
	defer out.mu.Unlock()
	if len(out.msgs) != 0 {
		t.Fatalf("sent %d messages for invalid pitches", len(out.msgs))
	}
}

func TestMIDIDrums(t *testing.T) {
	out := &captureSender{}
	kit := NewMIDIDrums(out.Send)
	if kit.Player("theremin") != nil {
		t.Fatal("unknown drum returned a player")
	}
	kit.Player(ClickDrum).Start(time.Now())

	msgs := out.wait(t, 1)
	var ch, key, vel uint8
	if !msgs[0].GetNoteOn(&ch, &key, &vel) || ch != drumChannel || key != GMDrums[ClickDrum] {
		t.Fatalf("click = %v", msgs[0])
	}
}
