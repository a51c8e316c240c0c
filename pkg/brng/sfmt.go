package brng

import "math"

// SFMT19937 parameters. The state is 156 128-bit words stored as 624
// 32-bit words, least significant first.
const (
	sfmtN    = 156
	sfmtN32  = sfmtN * 4
	sfmtPos1 = 122
	sfmtSL1  = 18
	sfmtSL2  = 1 // bytes
	sfmtSR1  = 11
	sfmtSR2  = 1 // bytes
)

var (
	sfmtMask   = [4]uint32{0xdfffffef, 0xddfecb7f, 0xbffaffff, 0xbffffff6}
	sfmtParity = [4]uint32{0x00000001, 0x00000000, 0x00000000, 0x13c9e684}
)

type sfmt19937 struct {
	state [sfmtN32]uint32
	idx   int
}

func newSFMT19937() engine { return &sfmt19937{} }

func (s *sfmt19937) layout() []slot {
	return []slot{u32s("state", s.state[:]), index("idx", &s.idx, sfmtN32)}
}

func (s *sfmt19937) seed(seeds []uint64) error {
	if seeds[0] > math.MaxUint32 {
		return InvalidSeed.New("sfmt19937 seed %d does not fit in 32 bits", seeds[0])
	}
	s.state[0] = uint32(seeds[0])
	for i := 1; i < sfmtN32; i++ {
		prev := s.state[i-1]
		s.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	s.idx = sfmtN32
	s.certifyPeriod()
	return nil
}

// certifyPeriod flips one bit of the first word when the state would fall
// outside the full period.
func (s *sfmt19937) certifyPeriod() {
	var inner uint32
	for i := 0; i < 4; i++ {
		inner ^= s.state[i] & sfmtParity[i]
	}
	for i := 16; i > 0; i >>= 1 {
		inner ^= inner >> i
	}
	if inner&1 == 1 {
		return
	}
	for i := 0; i < 4; i++ {
		work := uint32(1)
		for j := 0; j < 32; j++ {
			if work&sfmtParity[i] != 0 {
				s.state[i] ^= work
				return
			}
			work <<= 1
		}
	}
}

func (s *sfmt19937) next() uint64 {
	if s.idx >= sfmtN32 {
		s.regenerate()
		s.idx = 0
	}
	v := s.state[s.idx]
	s.idx++
	return uint64(v)
}

func (s *sfmt19937) regenerate() {
	r1, r2 := sfmtN-2, sfmtN-1
	for i := 0; i < sfmtN; i++ {
		b := i + sfmtPos1
		if b >= sfmtN {
			b -= sfmtN
		}
		s.recursion(i, b, r1, r2)
		r1, r2 = r2, i
	}
}

// recursion computes word r from words r (a), b, c and d.
func (s *sfmt19937) recursion(r, b, c, d int) {
	x := s.shift128(r, true)
	y := s.shift128(c, false)
	for k := 0; k < 4; k++ {
		s.state[4*r+k] ^= x[k] ^ ((s.state[4*b+k] >> sfmtSR1) & sfmtMask[k]) ^
			y[k] ^ (s.state[4*d+k] << sfmtSL1)
	}
}

// shift128 shifts 128-bit word w left by SL2 or right by SR2 bytes.
func (s *sfmt19937) shift128(w int, left bool) [4]uint32 {
	in := s.state[4*w : 4*w+4]
	hi := uint64(in[3])<<32 | uint64(in[2])
	lo := uint64(in[1])<<32 | uint64(in[0])

	var oh, ol uint64
	if left {
		oh = hi<<(sfmtSL2*8) | lo>>(64-sfmtSL2*8)
		ol = lo << (sfmtSL2 * 8)
	} else {
		oh = hi >> (sfmtSR2 * 8)
		ol = lo>>(sfmtSR2*8) | hi<<(64-sfmtSR2*8)
	}
	return [4]uint32{uint32(ol), uint32(ol >> 32), uint32(oh), uint32(oh >> 32)}
}
