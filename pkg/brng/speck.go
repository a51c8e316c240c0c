package brng

import "math/bits"

const speckRounds = 34

// speck128 encrypts a 128-bit counter with Speck128/256 and returns both
// halves of each ciphertext block.
type speck128 struct {
	rk  [speckRounds]uint64
	ctr [2]uint64
	idx int
	out [2]uint64
}

func newSpeck128() engine { return &speck128{} }

func (s *speck128) layout() []slot {
	return []slot{u64s("round_keys", s.rk[:]), u64s("counter", s.ctr[:]), index("idx", &s.idx, 1)}
}

func (s *speck128) seed(seeds []uint64) error {
	var k [4]uint64
	copy(k[:], seeds)
	a, b, c, d := k[0], k[1], k[2], k[3]
	for i := uint64(0); i < 33; i += 3 {
		s.rk[i] = a
		b = (bits.RotateLeft64(b, -8) + a) ^ i
		a = bits.RotateLeft64(a, 3) ^ b
		s.rk[i+1] = a
		c = (bits.RotateLeft64(c, -8) + a) ^ (i + 1)
		a = bits.RotateLeft64(a, 3) ^ c
		s.rk[i+2] = a
		d = (bits.RotateLeft64(d, -8) + a) ^ (i + 2)
		a = bits.RotateLeft64(a, 3) ^ d
	}
	s.rk[33] = a

	s.ctr = [2]uint64{}
	s.idx = 0
	s.encrypt()
	return nil
}

func (s *speck128) restore() { s.encrypt() }

func (s *speck128) encrypt() {
	x, y := s.ctr[0], s.ctr[1]
	for _, k := range s.rk {
		y = (bits.RotateLeft64(y, -8) + x) ^ k
		x = bits.RotateLeft64(x, 3) ^ y
	}
	s.out = [2]uint64{x, y}
}

func (s *speck128) next() uint64 {
	v := s.out[s.idx]
	s.idx++
	if s.idx == 2 {
		s.idx = 0
		s.ctr[0]++
		if s.ctr[0] == 0 {
			s.ctr[1]++
		}
		s.encrypt()
	}
	return v
}
