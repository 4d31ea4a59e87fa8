package music

import "testing"

func TestQuantize(t *testing.T) {
	seq := DefaultSequence()
	seq.Notes = append(seq.Notes, Note{Midi: 70, Start: 10.4, End: 10.6})

	q := Quantize(seq)
	if len(q.Notes) != 4 {
		t.Fatalf("notes = %d, want 4", len(q.Notes))
	}
	if q.QuantizationInfo.StepsPerQuarter != 4 {
		t.Fatalf("stepsPerQuarter = %d", q.QuantizationInfo.StepsPerQuarter)
	}
	if len(q.Tempos) != 1 || q.Tempos[0].QPM != 120 {
		t.Fatalf("tempos = %+v", q.Tempos)
	}
	short := q.Notes[3]
	if short.QuantizedStartStep != 10 || short.QuantizedEndStep != 11 {
		t.Fatalf("short note = %+v, want 10..11", short)
	}
	if q.TotalQuantizedSteps != 11 {
		t.Fatalf("total = %d, want 11", q.TotalQuantizedSteps)
	}
}

func TestFromQuantizedSizesBars(t *testing.T) {
	template := DefaultSequence()
	q := QSeq{
		Notes: []QNote{
			{Pitch: 62, QuantizedStartStep: 0, QuantizedEndStep: 4},
			{Pitch: 65, QuantizedStartStep: 16, QuantizedEndStep: 20},
		},
		QuantizationInfo:    QuantizationInfo{StepsPerQuarter: 4},
		Tempos:              []Tempo{{QPM: 90}},
		TotalQuantizedSteps: 20,
	}
	seq := FromQuantized(q, template)
	if seq.QPM != 90 {
		t.Fatalf("qpm = %v, want 90", seq.QPM)
	}
	if seq.NumBars != 2 {
		t.Fatalf("bars = %d, want 2", seq.NumBars)
	}
	if seq.Notes[1].Start != 16 || seq.Notes[1].End != 20 {
		t.Fatalf("note = %+v", seq.Notes[1])
	}
}
