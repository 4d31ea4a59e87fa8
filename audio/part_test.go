package audio

import "testing"

func TestPartAddKeepsOrder(t *testing.T) {
	p := NewPart[string](nil)
	p.Add(20, "c")
	p.Add(10, "a")
	p.Add(10, "b")
	evs := p.Events()
	want := []string{"a", "b", "c"}
	for i, e := range evs {
		if e.Value != want[i] {
			t.Fatalf("events = %+v", evs)
		}
	}
}

func TestPartWindow(t *testing.T) {
	p := NewPart[int](nil,
		PartEvent[int]{Time: 0, Value: 0},
		PartEvent[int]{Time: 50, Value: 1},
		PartEvent[int]{Time: 100, Value: 2},
	)

	cases := []struct {
		name     string
		loop     bool
		from, to Ticks
		want     []Ticks
	}{
		{"once all", false, 0, 200, []Ticks{0, 50, 100}},
		{"once half-open", false, 50, 100, []Ticks{50}},
		{"once empty", false, 100, 100, nil},
		{"loop second pass", true, 120, 260, []Ticks{120, 170, 220, 240}},
		{"loop mid window", true, 130, 180, []Ticks{170}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p.Loop = tc.loop
			p.LoopStart = 0
			p.LoopEnd = 120
			got := p.Window(tc.from, tc.to)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i].At != tc.want[i] {
					t.Fatalf("event %d at %d, want %d", i, got[i].At, tc.want[i])
				}
			}
		})
	}
}

func TestPartFireWithoutCallback(t *testing.T) {
	p := NewPart[int](nil, PartEvent[int]{Time: 0, Value: 1})
	for _, ev := range p.Window(0, 1) {
		ev.Fire(Cue{})
	}
}
