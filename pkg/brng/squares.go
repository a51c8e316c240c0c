package brng

import "math/bits"

// squares is Widynski's counter-based middle-square generator. The output
// for counter ctr is computed, then ctr is incremented.
type squares struct {
	word int
	key  uint64
	ctr  uint64
}

func newSquares(word int) func() engine {
	return func() engine { return &squares{word: word} }
}

func (s *squares) layout() []slot {
	return []slot{u64("key", &s.key), u64("counter", &s.ctr)}
}

func (s *squares) seed(seeds []uint64) error {
	s.key = seeds[0]
	s.ctr = 0
	return nil
}

func (s *squares) next() uint64 {
	y := s.ctr * s.key
	z := y + s.key
	s.ctr++

	x := y*y + y
	x = bits.RotateLeft64(x, 32)
	x = x*x + z
	x = bits.RotateLeft64(x, 32)
	x = x*x + y
	x = bits.RotateLeft64(x, 32)
	if s.word == 32 {
		return (x*x + z) >> 32
	}
	x = x*x + z
	t := x
	x = bits.RotateLeft64(x, 32)
	return t ^ ((x*x + y) >> 32)
}
