package brng

import "math/bits"

const threefryParity = 0x1BD11BDAA9FC1A22

var threefryRot = [8][2]int{
	{14, 16}, {52, 57}, {23, 40}, {5, 37},
	{25, 33}, {46, 12}, {58, 22}, {32, 32},
}

// threefry4x64 is Threefry4x64-20.
type threefry4x64 struct {
	key [4]uint64
	counterBlock
}

func newThreefry4x64() engine { return &threefry4x64{} }

func (t *threefry4x64) layout() []slot {
	return []slot{u64s("key", t.key[:]), u64s("counter", t.ctr[:]), index("idx", &t.idx, 4)}
}

func (t *threefry4x64) seed(seeds []uint64) error {
	t.key = [4]uint64{}
	copy(t.key[:], seeds)
	t.counterBlock = counterBlock{idx: 4}
	return nil
}

func (t *threefry4x64) restore() {
	if t.idx < 4 {
		t.buf = t.block(t.previous())
	}
}

func (t *threefry4x64) next() uint64 { return t.draw(t.block) }

func (t *threefry4x64) block(ctr [4]uint64) [4]uint64 {
	var ks [5]uint64
	ks[4] = threefryParity
	for i, k := range t.key {
		ks[i] = k
		ks[4] ^= k
	}

	var x [4]uint64
	for i := range x {
		x[i] = ctr[i] + ks[i]
	}
	for r := 0; r < 20; r++ {
		rot := threefryRot[r%8]
		if r%2 == 0 {
			x[0] += x[1]
			x[1] = bits.RotateLeft64(x[1], rot[0]) ^ x[0]
			x[2] += x[3]
			x[3] = bits.RotateLeft64(x[3], rot[1]) ^ x[2]
		} else {
			x[0] += x[3]
			x[3] = bits.RotateLeft64(x[3], rot[0]) ^ x[0]
			x[2] += x[1]
			x[1] = bits.RotateLeft64(x[1], rot[1]) ^ x[2]
		}
		if r%4 == 3 {
			s := uint64(r/4 + 1)
			for i := range x {
				x[i] += ks[(s+uint64(i))%5]
			}
			x[3] += s
		}
	}
	return x
}
