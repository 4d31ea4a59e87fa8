package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Event is a channel voice message as the piano roll sees it
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Message converts the event to a wire message. Unknown types yield nil.
func (e Event) Message() gomidi.Message {
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	case CC:
		return gomidi.ControlChange(e.Channel, e.Note, e.Velocity)
	}
	return nil
}

// ParseEvent decodes note and controller messages. A note-on with zero
// velocity is reported as NoteOff.
func ParseEvent(msg gomidi.Message) (Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			return Event{Type: NoteOff, Channel: ch, Note: key}, true
		}
		return Event{Type: NoteOn, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return Event{Type: NoteOff, Channel: ch, Note: key, Velocity: vel}, true
	case msg.GetControlChange(&ch, &key, &vel):
		return Event{Type: CC, Channel: ch, Note: key, Velocity: vel}, true
	}
	return Event{}, false
}
