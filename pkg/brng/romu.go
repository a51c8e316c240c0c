package brng

import "math/bits"

const romuMult = 15241094284759029579

type romuKind int

const (
	romuQuad romuKind = iota
	romuTrio
	romuDuo
	romuDuoJr
)

// romu covers the 64-bit Romu family. Seed words go into the state
// unchanged; missing words are zero.
type romu struct {
	kind  romuKind
	state [4]uint64
}

func newRomu(kind romuKind) func() engine {
	return func() engine { return &romu{kind: kind} }
}

func (r *romu) size() int {
	switch r.kind {
	case romuQuad:
		return 4
	case romuTrio:
		return 3
	default:
		return 2
	}
}

func (r *romu) layout() []slot {
	return []slot{u64s("state", r.state[:r.size()])}
}

func (r *romu) seed(seeds []uint64) error {
	r.state = [4]uint64{}
	copy(r.state[:r.size()], seeds)
	return nil
}

func (r *romu) next() uint64 {
	s := &r.state
	switch r.kind {
	case romuQuad:
		w, x, y, z := s[0], s[1], s[2], s[3]
		s[0] = romuMult * z
		s[1] = z + bits.RotateLeft64(w, 52)
		s[2] = y - x
		s[3] = bits.RotateLeft64(y+w, 19)
		return x
	case romuTrio:
		x, y, z := s[0], s[1], s[2]
		s[0] = romuMult * z
		s[1] = bits.RotateLeft64(y-x, 12)
		s[2] = bits.RotateLeft64(z-y, 44)
		return x
	case romuDuo:
		x, y := s[0], s[1]
		s[0] = romuMult * y
		s[1] = bits.RotateLeft64(y, 36) + bits.RotateLeft64(y, 15) - x
		return x
	default:
		x, y := s[0], s[1]
		s[0] = romuMult * y
		s[1] = bits.RotateLeft64(y-x, 27)
		return x
	}
}
