package music

import (
	"math"
	"testing"
)

func TestPitchName(t *testing.T) {
	cases := map[int]string{
		60:  "C4",
		61:  "C#4",
		69:  "A4",
		48:  "C3",
		83:  "B5",
		0:   "C-1",
		127: "G9",
	}
	for midi, want := range cases {
		if got := PitchName(midi); got != want {
			t.Errorf("PitchName(%d) = %q, want %q", midi, got, want)
		}
	}
}

func TestParsePitch(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"C4", 60},
		{"C#4", 61},
		{"Db4", 61},
		{"A-1", 9},
		{"b3", 59},
	}
	for _, tc := range cases {
		got, err := ParsePitch(tc.name)
		if err != nil {
			t.Fatalf("ParsePitch(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("ParsePitch(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
	for _, bad := range []string{"", "H4", "C", "C#x"} {
		if _, err := ParsePitch(bad); err == nil {
			t.Errorf("ParsePitch(%q) should fail", bad)
		}
	}
}

func TestPitchNameRoundTrip(t *testing.T) {
	for m := 0; m < 128; m++ {
		got, err := ParsePitch(PitchName(m))
		if err != nil || got != m {
			t.Fatalf("round trip %d -> %q -> %d (%v)", m, PitchName(m), got, err)
		}
	}
}

func TestFrequency(t *testing.T) {
	if got := Frequency(69); got != 440 {
		t.Fatalf("A4 = %v", got)
	}
	if got := Frequency(60); math.Abs(got-261.6256) > 0.001 {
		t.Fatalf("C4 = %v", got)
	}
}
