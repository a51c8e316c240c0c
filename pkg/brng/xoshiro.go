package brng

import "math/bits"

// xoScrambler selects the output function of the xoroshiro and xoshiro
// families.
type xoScrambler int

const (
	xoPlus xoScrambler = iota
	xoPlusPlus
	xoStarStar
)

func starStar(x uint64) uint64 { return bits.RotateLeft64(x*5, 7) * 9 }

// xoroshiro128 outputs from the current state, then steps it.
type xoroshiro128 struct {
	scrambler xoScrambler
	s0, s1    uint64
}

func newXoroshiro128(sc xoScrambler) func() engine {
	return func() engine { return &xoroshiro128{scrambler: sc} }
}

func (x *xoroshiro128) layout() []slot {
	return []slot{u64("s0", &x.s0), u64("s1", &x.s1)}
}

// seed expands a single word with splitmix64 and takes two words as the
// state, replacing an all-zero state.
func (x *xoroshiro128) seed(seeds []uint64) error {
	if len(seeds) == 1 {
		sm := splitMix64{state: seeds[0]}
		x.s0, x.s1 = sm.next(), sm.next()
	} else {
		x.s0, x.s1 = seeds[0], seeds[1]
	}
	if x.s0 == 0 && x.s1 == 0 {
		x.s1 = 1
	}
	return nil
}

func (x *xoroshiro128) next() uint64 {
	s0, s1 := x.s0, x.s1
	var out uint64
	a, b, c := 24, 16, 37
	switch x.scrambler {
	case xoPlus:
		out = s0 + s1
	case xoPlusPlus:
		out = bits.RotateLeft64(s0+s1, 17) + s0
		a, b, c = 49, 21, 28
	case xoStarStar:
		out = starStar(s0)
	}

	s1 ^= s0
	x.s0 = bits.RotateLeft64(s0, a) ^ s1 ^ (s1 << b)
	x.s1 = bits.RotateLeft64(s1, c)
	return out
}

// xoshiro256 outputs from the current state, then steps it.
type xoshiro256 struct {
	scrambler xoScrambler
	s         [4]uint64
}

func newXoshiro256(sc xoScrambler) func() engine {
	return func() engine { return &xoshiro256{scrambler: sc} }
}

func (x *xoshiro256) layout() []slot { return []slot{u64s("s", x.s[:])} }

// seed accepts one word, expanded with fixed offsets and warmed up by 16
// steps, or the four state words.
func (x *xoshiro256) seed(seeds []uint64) error {
	switch len(seeds) {
	case 1:
		v := seeds[0]
		x.s = [4]uint64{
			0x01d353e5f3993bb0 + v, 0x7b9c0df6cb193b20 * (v + 1),
			0xfdfcaa91110765b6 - v, 0x2d24cbe0ef44dcd2 * (v - 1),
		}
	case 4:
		copy(x.s[:], seeds)
	default:
		return InvalidSeed.New("xoshiro256 takes 1 or 4 seed words, got %d", len(seeds))
	}
	if x.s == [4]uint64{} {
		x.s[3] = 1
	}
	if len(seeds) == 1 {
		for i := 0; i < 16; i++ {
			x.step()
		}
	}
	return nil
}

func (x *xoshiro256) output() uint64 {
	s := &x.s
	switch x.scrambler {
	case xoPlus:
		return s[0] + s[3]
	case xoPlusPlus:
		return bits.RotateLeft64(s[0]+s[3], 23) + s[0]
	default:
		return starStar(s[1])
	}
}

func (x *xoshiro256) step() {
	s := &x.s
	t := s[1] << 17
	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)
}

func (x *xoshiro256) next() uint64 {
	out := x.output()
	x.step()
	return out
}

// xoshiro512 outputs from the current state, then steps it.
type xoshiro512 struct {
	scrambler xoScrambler
	s         [8]uint64
}

func newXoshiro512(sc xoScrambler) func() engine {
	return func() engine { return &xoshiro512{scrambler: sc} }
}

func (x *xoshiro512) layout() []slot { return []slot{u64s("s", x.s[:])} }

func (x *xoshiro512) seed(seeds []uint64) error {
	switch len(seeds) {
	case 1:
		v := seeds[0]
		x.s = [8]uint64{
			0x1ced436497db2a59 + v, 0x75474f85d8a6892c * (v + 1),
			0xa0fef4b8094c9c86 - v, 0x748fa1a9bb555169 * (v - 1),
			0xd7a59a6d64e66858 + v, 0xf03b7efdb73db601 * (v + 1),
			0xfab342a99dd71962 - v, 0x8a6921456faa6b54 * (v - 1),
		}
	case 8:
		copy(x.s[:], seeds)
	default:
		return InvalidSeed.New("xoshiro512 takes 1 or 8 seed words, got %d", len(seeds))
	}
	if x.s == [8]uint64{} {
		x.s[7] = 1
	}
	if len(seeds) == 1 {
		for i := 0; i < 16; i++ {
			x.step()
		}
	}
	return nil
}

func (x *xoshiro512) next() uint64 {
	s := &x.s
	var out uint64
	switch x.scrambler {
	case xoPlus:
		out = s[0] + s[2]
	case xoPlusPlus:
		out = bits.RotateLeft64(s[0]+s[2], 17) + s[2]
	default:
		out = starStar(s[1])
	}
	x.step()
	return out
}

func (x *xoshiro512) step() {
	s := &x.s
	t := s[1] << 11
	s[2] ^= s[0]
	s[5] ^= s[1]
	s[1] ^= s[2]
	s[7] ^= s[3]
	s[3] ^= s[4]
	s[4] ^= s[5]
	s[0] ^= s[6]
	s[6] ^= s[7]
	s[6] ^= t
	s[7] = bits.RotateLeft64(s[7], 21)
}
