package music

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Resolution used when writing standard MIDI files
const ticksPerQuarter = 960

const defaultVelocity = 100

type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// WriteSMF writes the sequence as a two-track standard MIDI file: a tempo
// track and a note track on channel 1.
func WriteSMF(w io.Writer, seq Sequence) error {
	spq := seq.StepsPerQuarter
	if spq <= 0 {
		return fmt.Errorf("invalid stepsPerQuarter %d", spq)
	}
	ticksPerStep := float64(ticksPerQuarter) / float64(spq)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(uint8(seq.QuartersPerBar), 4))
	tempo.Add(0, smf.MetaTempo(seq.QPM))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	var msgs []timedMessage
	for _, n := range seq.Notes {
		if !n.Valid() || n.Midi < 0 || n.Midi > 127 {
			continue
		}
		key := uint8(n.Midi)
		msgs = append(msgs,
			timedMessage{tick: uint32(math.Round(n.Start * ticksPerStep)), msg: midi.NoteOn(0, key, defaultVelocity)},
			timedMessage{tick: uint32(math.Round(n.End * ticksPerStep)), off: true, msg: midi.NoteOff(0, key)},
		)
	}
	// note-offs first so back-to-back notes on one key retrigger
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var notes smf.Track
	var last uint32
	for _, m := range msgs {
		notes.Add(m.tick-last, m.msg)
		last = m.tick
	}
	end := uint32(float64(seq.NumSteps()) * ticksPerStep)
	if end < last {
		end = last
	}
	notes.Close(end - last)
	if err := s.Add(notes); err != nil {
		return fmt.Errorf("add note track: %w", err)
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

// ReadSMF reads a standard MIDI file onto a 16th-note grid. All tracks and
// channels are merged. The first tempo and meter found win.
func ReadSMF(r io.Reader) (Sequence, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return Sequence{}, fmt.Errorf("read smf: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || mt == 0 {
		return Sequence{}, fmt.Errorf("unsupported smf time format %v", s.TimeFormat)
	}

	seq := Sequence{
		QPM:             120,
		StepsPerQuarter: 4,
		QuartersPerBar:  4,
		NumBars:         1,
	}
	ticksPerStep := float64(mt) / float64(seq.StepsPerQuarter)

	tempoSet, meterSet := false, false
	for _, tr := range s.Tracks {
		var abs uint32
		pending := make(map[uint8]uint32)
		for _, ev := range tr {
			abs += ev.Delta

			var bpm float64
			if !tempoSet && ev.Message.GetMetaTempo(&bpm) {
				seq.QPM = bpm
				tempoSet = true
				continue
			}
			var num, denom uint8
			if !meterSet && ev.Message.GetMetaMeter(&num, &denom) {
				if num > 0 {
					seq.QuartersPerBar = int(num)
				}
				meterSet = true
				continue
			}

			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				pending[key] = abs
			case ev.Message.GetNoteOff(&ch, &key, &vel), ev.Message.GetNoteOn(&ch, &key, &vel):
				start, ok := pending[key]
				if !ok {
					continue
				}
				delete(pending, key)
				seq.Notes = append(seq.Notes, Note{
					Midi:  int(key),
					Start: math.Round(float64(start)/ticksPerStep*100) / 100,
					End:   math.Round(float64(abs)/ticksPerStep*100) / 100,
				})
			}
		}
	}

	seq.SortNotes()
	stepsPerBar := seq.StepsPerQuarter * seq.QuartersPerBar
	if end := int(math.Ceil(seq.EndStep())); end > stepsPerBar {
		seq.NumBars = (end + stepsPerBar - 1) / stepsPerBar
	}
	return seq, nil
}
