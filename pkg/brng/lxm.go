package brng

import "math/bits"

const (
	lxmMul = 2862933555777941757
	lxmAdd = 3037000493
)

var lxmDefaultX = [4]uint64{
	0x5C572D54940C542E, 0x2710CDA3D55747B4,
	0x631BD5B8C716B444, 0xD76F337C89CCCBAF,
}

// lxm combines a 64-bit LCG with a xoshiro256 state through the splitmix
// finaliser (L64X256MixRandom).
type lxm struct {
	x   [4]uint64
	lcg uint64
}

func newLXM() engine { return &lxm{} }

func (l *lxm) layout() []slot {
	return []slot{u64s("x", l.x[:]), u64("lcg", &l.lcg)}
}

// seed takes the LCG state first, then up to four xoshiro words. Missing
// xoshiro words keep their fixed defaults.
func (l *lxm) seed(seeds []uint64) error {
	l.lcg = seeds[0]
	l.x = lxmDefaultX
	copy(l.x[:], seeds[1:])
	if l.x == [4]uint64{} {
		l.x[3] = 1
	}
	return nil
}

func (l *lxm) next() uint64 {
	z := l.x[0] + l.lcg
	l.lcg = l.lcg*lxmMul + lxmAdd

	x := &l.x
	t := x[1] << 17
	x[2] ^= x[0]
	x[3] ^= x[1]
	x[1] ^= x[2]
	x[0] ^= x[3]
	x[2] ^= t
	x[3] = bits.RotateLeft64(x[3], 45)

	return mix64(z)
}
