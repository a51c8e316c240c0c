package brng

import "math/bits"

// sfc64 is Chris Doty-Humphrey's small fast chaotic generator with a
// 64-bit counter.
type sfc64 struct {
	a, b, c, counter uint64
	p, q, r          int
}

func newSFC64(p, q, r int) func() engine {
	return func() engine { return &sfc64{p: p, q: q, r: r} }
}

func (s *sfc64) layout() []slot {
	return []slot{u64("a", &s.a), u64("b", &s.b), u64("c", &s.c), u64("counter", &s.counter)}
}

// seed takes either one word (a = b = c) or a, b and c.
func (s *sfc64) seed(seeds []uint64) error {
	switch len(seeds) {
	case 1:
		s.a, s.b, s.c = seeds[0], seeds[0], seeds[0]
	default:
		s.a, s.b = seeds[0], seeds[1]
		s.c = 0
		if len(seeds) > 2 {
			s.c = seeds[2]
		}
	}
	s.counter = 1
	for i := 0; i < 12; i++ {
		s.next()
	}
	return nil
}

func (s *sfc64) next() uint64 {
	tmp := s.a + s.b + s.counter
	s.counter++
	s.a = s.b ^ (s.b >> s.q)
	s.b = s.c + (s.c << s.r)
	s.c = bits.RotateLeft64(s.c, s.p) + tmp
	return tmp
}
