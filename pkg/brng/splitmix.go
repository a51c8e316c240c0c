package brng

const splitMixGamma = 0x9e3779b97f4a7c15

// splitMix64 is Vigna's SplitMix64. It also expands single seed words for
// xoroshiro128.
type splitMix64 struct {
	state uint64
}

func newSplitMix64() engine { return &splitMix64{} }

func (s *splitMix64) layout() []slot { return []slot{u64("state", &s.state)} }

func (s *splitMix64) seed(seeds []uint64) error {
	s.state = seeds[0]
	return nil
}

func (s *splitMix64) next() uint64 {
	s.state += splitMixGamma
	return mix64(s.state)
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
