package music

import "math"

// QNote is a note in the quantized form the continuation model speaks
type QNote struct {
	Pitch              int `json:"pitch"`
	QuantizedStartStep int `json:"quantizedStartStep"`
	QuantizedEndStep   int `json:"quantizedEndStep"`
}

// QuantizationInfo records the grid a QSeq was quantized against
type QuantizationInfo struct {
	StepsPerQuarter int `json:"stepsPerQuarter"`
}

// Tempo is a tempo change at a time in seconds
type Tempo struct {
	Time float64 `json:"time"`
	QPM  float64 `json:"qpm"`
}

// QSeq is the quantized sequence exchanged with the continuation model.
// It is produced and consumed only at that boundary.
type QSeq struct {
	Notes               []QNote          `json:"notes"`
	QuantizationInfo    QuantizationInfo `json:"quantizationInfo"`
	Tempos              []Tempo          `json:"tempos"`
	TotalQuantizedSteps int              `json:"totalQuantizedSteps"`
}

// Quantize snaps every note to whole steps. Notes never collapse: a note
// rounding to zero length keeps one step. TotalQuantizedSteps is the end of
// the last note, so a continuation picks up right after the melody.
func Quantize(seq Sequence) QSeq {
	q := QSeq{
		Notes:            make([]QNote, 0, len(seq.Notes)),
		QuantizationInfo: QuantizationInfo{StepsPerQuarter: seq.StepsPerQuarter},
		Tempos:           []Tempo{{Time: 0, QPM: seq.QPM}},
	}
	for _, n := range seq.Notes {
		start := int(math.Round(n.Start))
		end := int(math.Round(n.End))
		if end <= start {
			end = start + 1
		}
		q.Notes = append(q.Notes, QNote{
			Pitch:              n.Midi,
			QuantizedStartStep: start,
			QuantizedEndStep:   end,
		})
		if end > q.TotalQuantizedSteps {
			q.TotalQuantizedSteps = end
		}
	}
	return q
}

// FromQuantized converts a model result back to a Sequence. Grid fields the
// QSeq does not carry (time signature) come from template; bars are sized to
// hold TotalQuantizedSteps.
func FromQuantized(q QSeq, template Sequence) Sequence {
	seq := Sequence{
		Notes:           make([]Note, 0, len(q.Notes)),
		QPM:             template.QPM,
		StepsPerQuarter: template.StepsPerQuarter,
		QuartersPerBar:  template.QuartersPerBar,
		NumBars:         1,
	}
	if len(q.Tempos) > 0 && q.Tempos[0].QPM > 0 {
		seq.QPM = q.Tempos[0].QPM
	}
	if q.QuantizationInfo.StepsPerQuarter > 0 {
		seq.StepsPerQuarter = q.QuantizationInfo.StepsPerQuarter
	}
	for _, n := range q.Notes {
		seq.Notes = append(seq.Notes, Note{
			Midi:  n.Pitch,
			Start: float64(n.QuantizedStartStep),
			End:   float64(n.QuantizedEndStep),
		})
	}

	stepsPerBar := seq.StepsPerQuarter * seq.QuartersPerBar
	total := q.TotalQuantizedSteps
	if end := int(math.Ceil(seq.EndStep())); end > total {
		total = end
	}
	if stepsPerBar > 0 && total > stepsPerBar {
		seq.NumBars = (total + stepsPerBar - 1) / stepsPerBar
	}
	return seq
}
