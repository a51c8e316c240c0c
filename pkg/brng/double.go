package brng

import "math"

const twoPow53 = 9007199254740992.0

// Float64 draws a uniform double in [0, 1) with 53 bits of precision.
//
// Generators with native double output return their [1, 2) draw minus
// one. Other 64-bit generators use the top 53 bits of one draw. 32-bit
// generators combine two draws, keeping 27 bits of the first and 26 of
// the second.
func Float64(g Generator) float64 {
	d := g.Descriptor()
	switch {
	case d.NativeDouble:
		return math.Float64frombits(g.Next()) - 1
	case d.WordSize == 32:
		a := g.Next() >> 5
		b := g.Next() >> 6
		return float64(a*67108864+b) / twoPow53
	}
	return float64(g.Next()>>11) / twoPow53
}

// DrawsPerDouble is the number of raw draws Float64 consumes for d.
func (d *Descriptor) DrawsPerDouble() int {
	if d.WordSize == 32 && !d.NativeDouble {
		return 2
	}
	return 1
}
