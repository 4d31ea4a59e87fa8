package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestParseEvent(t *testing.T) {
	cases := []struct {
		name string
		msg  gomidi.Message
		want Event
		ok   bool
	}{
		{"note on", gomidi.NoteOn(1, 60, 100), Event{Type: NoteOn, Channel: 1, Note: 60, Velocity: 100}, true},
		{"zero velocity on", gomidi.NoteOn(0, 62, 0), Event{Type: NoteOff, Note: 62}, true},
		{"note off", gomidi.NoteOff(2, 64), Event{Type: NoteOff, Channel: 2, Note: 64}, true},
		{"cc", gomidi.ControlChange(0, 64, 127), Event{Type: CC, Note: 64, Velocity: 127}, true},
		{"pitch bend", gomidi.Pitchbend(0, 100), Event{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseEvent(tc.msg)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ParseEvent = %+v, %v; want %+v, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestEventMessage(t *testing.T) {
	ev := Event{Type: NoteOn, Channel: 3, Note: 67, Velocity: 90}
	back, ok := ParseEvent(ev.Message())
	if !ok || back != ev {
		t.Fatalf("round trip = %+v", back)
	}
	if (Event{Type: 0x42}).Message() != nil {
		t.Fatal("unknown type produced a message")
	}
}

func TestKeyboardFeed(t *testing.T) {
	kb, err := NewKeyboardController("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	kb.Feed(gomidi.NoteOn(0, 60, 80))
	kb.Feed(gomidi.ControlChange(0, 1, 10))
	kb.Feed(gomidi.NoteOff(0, 60))

	on := <-kb.NoteEvents()
	off := <-kb.NoteEvents()
	if !on.On || on.Note != 60 || on.Velocity != 80 {
		t.Fatalf("on = %+v", on)
	}
	if off.On || off.Note != 60 {
		t.Fatalf("off = %+v", off)
	}

	kb.Close()
	kb.Feed(gomidi.NoteOn(0, 61, 80)) // after close: dropped, no panic
	if _, open := <-kb.NoteEvents(); open {
		t.Fatal("channel still open after Close")
	}
	kb.Close()
}

func TestKeyboardDropsWhenFull(t *testing.T) {
	kb, _ := NewKeyboardController("test", nil)
	for i := 0; i < 100; i++ {
		kb.Feed(gomidi.NoteOn(0, 60, 80))
	}
	if n := len(kb.NoteEvents()); n != cap(kb.noteChan) {
		t.Fatalf("buffered = %d, want %d", n, cap(kb.noteChan))
	}
}

type fakePorts struct {
	mu    sync.Mutex
	names []string
	fail  map[string]bool
}

func (f *fakePorts) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func (f *fakePorts) set(names ...string) {
	f.mu.Lock()
	f.names = names
	f.mu.Unlock()
}

func (f *fakePorts) connect(name string) (Controller, error) {
	if f.fail[name] {
		return nil, errors.New("busy")
	}
	return NewKeyboardController(name, nil)
}

func newFakeManager(ports *fakePorts, ignore ...string) *DeviceManager {
	dm := NewDeviceManager(ignore...)
	dm.listIns = ports.list
	dm.connect = ports.connect
	return dm
}

func TestDeviceManagerScan(t *testing.T) {
	ports := &fakePorts{fail: map[string]bool{"Busy Port": true}}
	dm := newFakeManager(ports, "go-pianoroll")
	ctx := context.Background()

	ports.set("Keystation 49", "Midi Through Port-0", "go-pianoroll out", "Busy Port")
	dm.scan(ctx)

	ev := <-dm.Events()
	if ev.Type != DeviceConnected || ev.ID != "Keystation 49" || ev.Controller == nil {
		t.Fatalf("event = %+v", ev)
	}
	if got := dm.Controllers(); len(got) != 1 {
		t.Fatalf("controllers = %v", got)
	}
	if len(dm.Keyboards()) != 1 {
		t.Fatal("keyboard not listed")
	}

	// rescanning an unchanged port list is quiet
	dm.scan(ctx)
	select {
	case ev := <-dm.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	ports.set()
	dm.scan(ctx)
	ev = <-dm.Events()
	if ev.Type != DeviceDisconnected || ev.ID != "Keystation 49" {
		t.Fatalf("event = %+v", ev)
	}
	if len(dm.Controllers()) != 0 {
		t.Fatal("controller kept after disconnect")
	}
}

func TestDeviceManagerRunClosesOnCancel(t *testing.T) {
	ports := &fakePorts{names: []string{"Keys"}}
	dm := newFakeManager(ports)
	dm.pollRate = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go dm.Run(ctx)

	ev := <-dm.Events()
	if ev.Type != DeviceConnected {
		t.Fatalf("event = %+v", ev)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-dm.Events():
			if !open {
				if _, ok := <-ev.Controller.NoteEvents(); ok {
					t.Fatal("controller left open")
				}
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed")
		}
	}
}

func TestKeyToMidi(t *testing.T) {
	cases := []struct {
		key    string
		octave int
		want   int
		ok     bool
	}{
		{"a", 0, 60, true},
		{";", 0, 69, true},
		{"h", -1, 53, true},
		{"a", 6, 0, false},
		{"z", 0, 0, false},
	}
	for _, tc := range cases {
		got, ok := KeyToMidi(tc.key, tc.octave)
		if got != tc.want || ok != tc.ok {
			t.Errorf("KeyToMidi(%q, %d) = %d, %v", tc.key, tc.octave, got, ok)
		}
	}
	if len(KeyboardToMidi) != 10 {
		t.Fatalf("keys = %d", len(KeyboardToMidi))
	}
}
