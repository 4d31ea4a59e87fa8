package music

import (
	"bytes"
	"testing"
)

func TestSMFRoundTrip(t *testing.T) {
	seq := DefaultSequence()
	seq.QPM = 100
	seq.QuartersPerBar = 3

	var buf bytes.Buffer
	if err := WriteSMF(&buf, seq); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSMF(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got.QPM < 99.9 || got.QPM > 100.1 {
		t.Fatalf("qpm = %v, want 100", got.QPM)
	}
	if got.QuartersPerBar != 3 {
		t.Fatalf("quartersPerBar = %d, want 3", got.QuartersPerBar)
	}
	if len(got.Notes) != len(seq.Notes) {
		t.Fatalf("notes = %d, want %d", len(got.Notes), len(seq.Notes))
	}
	for i, n := range seq.Notes {
		if got.Notes[i] != n {
			t.Errorf("note %d = %+v, want %+v", i, got.Notes[i], n)
		}
	}
}

func TestWriteSMFRejectsBadGrid(t *testing.T) {
	seq := DefaultSequence()
	seq.StepsPerQuarter = 0
	if err := WriteSMF(&bytes.Buffer{}, seq); err == nil {
		t.Fatal("expected error for zero stepsPerQuarter")
	}
}
