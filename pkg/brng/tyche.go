package brng

import (
	"math"
	"math/bits"
)

// tyche is the ChaCha quarter-round based generator. The openrand form
// runs the inverse round and outputs a instead of b.
type tyche struct {
	a, b, c, d uint32
	openRand   bool
}

func newTyche(openRand bool) func() engine {
	return func() engine { return &tyche{openRand: openRand} }
}

func (t *tyche) layout() []slot {
	return []slot{u32("a", &t.a), u32("b", &t.b), u32("c", &t.c), u32("d", &t.d)}
}

// seed takes the 64-bit seed and an optional 32-bit stream index.
func (t *tyche) seed(seeds []uint64) error {
	s := seeds[0]
	var idx uint64
	if len(seeds) > 1 {
		idx = seeds[1]
		if idx > math.MaxUint32 {
			return InvalidSeed.New("tyche index %d does not fit in 32 bits", idx)
		}
	}
	if t.openRand {
		s ^= 0xAAAAAAAA
	}
	t.a = uint32(s >> 32)
	t.b = uint32(s)
	t.c = 2654435769
	t.d = 1367130551 ^ uint32(idx)
	for i := 0; i < 20; i++ {
		t.mix()
	}
	return nil
}

func (t *tyche) mix() {
	if t.openRand {
		t.b = bits.RotateLeft32(t.b, 7) ^ t.c
		t.c -= t.d
		t.d = bits.RotateLeft32(t.d, 8) ^ t.a
		t.a -= t.b
		t.b = bits.RotateLeft32(t.b, 12) ^ t.c
		t.c -= t.d
		t.d = bits.RotateLeft32(t.d, 16) ^ t.a
		t.a -= t.b
		return
	}
	t.a += t.b
	t.d = bits.RotateLeft32(t.d^t.a, 16)
	t.c += t.d
	t.b = bits.RotateLeft32(t.b^t.c, 12)
	t.a += t.b
	t.d = bits.RotateLeft32(t.d^t.a, 8)
	t.c += t.d
	t.b = bits.RotateLeft32(t.b^t.c, 7)
}

func (t *tyche) next() uint64 {
	t.mix()
	if t.openRand {
		return uint64(t.a)
	}
	return uint64(t.b)
}
