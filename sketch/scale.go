package sketch

import "math"

// LinearScale maps a continuous domain onto a continuous range
type LinearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinearScale creates a scale mapping [d0, d1] onto [r0, r1]
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the input extent
func (s LinearScale) Domain() (float64, float64) { return s.d0, s.d1 }

// Range returns the output extent
func (s LinearScale) Range() (float64, float64) { return s.r0, s.r1 }

// Scale maps a domain value to the range. Values outside the domain
// extrapolate. A zero-width domain maps everything to the range start.
func (s LinearScale) Scale(x float64) float64 {
	if s.d1 == s.d0 {
		return s.r0
	}
	t := (x - s.d0) / (s.d1 - s.d0)
	return s.r0 + t*(s.r1-s.r0)
}

// Invert maps a range value back to the domain
func (s LinearScale) Invert(y float64) float64 {
	if s.r1 == s.r0 {
		return s.d0
	}
	t := (y - s.r0) / (s.r1 - s.r0)
	return s.d0 + t*(s.d1-s.d0)
}

// BandScale maps discrete values to equal-width bands across a range.
// The range may run backwards (r0 > r1), which puts the first domain
// value at the high end.
type BandScale struct {
	domain []int
	index  map[int]int
	r0, r1 float64
}

// NewBandScale creates a band scale over domain spanning [r0, r1]
func NewBandScale(domain []int, r0, r1 float64) BandScale {
	idx := make(map[int]int, len(domain))
	for i, v := range domain {
		if _, dup := idx[v]; !dup {
			idx[v] = i
		}
	}
	return BandScale{domain: domain, index: idx, r0: r0, r1: r1}
}

// Domain returns the band values in order
func (s BandScale) Domain() []int { return s.domain }

// Range returns the output extent
func (s BandScale) Range() (float64, float64) { return s.r0, s.r1 }

// step returns the signed distance between band starts
func (s BandScale) step() float64 {
	if len(s.domain) == 0 {
		return 0
	}
	return (s.r1 - s.r0) / float64(len(s.domain))
}

// Bandwidth returns the width of one band (always non-negative)
func (s BandScale) Bandwidth() float64 {
	return math.Abs(s.step())
}

// Scale returns the start of the band for v. The band start is the lower
// coordinate of the band, so with a reversed range it is r0 - (i+1)*bandwidth.
func (s BandScale) Scale(v int) (float64, bool) {
	i, ok := s.index[v]
	if !ok {
		return 0, false
	}
	step := s.step()
	start := s.r0 + float64(i)*step
	if step < 0 {
		start += step
	}
	return start, true
}

// Invert returns the domain value whose band contains y
func (s BandScale) Invert(y float64) (int, bool) {
	step := s.step()
	if step == 0 {
		return 0, false
	}
	i := int(math.Floor((y - s.r0) / step))
	if i < 0 || i >= len(s.domain) {
		return 0, false
	}
	return s.domain[i], true
}
