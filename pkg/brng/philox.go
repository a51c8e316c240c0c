package brng

import "math/bits"

const (
	philoxM0 = 0xD2E7470EE14C6C93
	philoxM1 = 0xCA5A826395121157
	philoxW0 = 0x9E3779B97F4A7C15
	philoxW1 = 0xBB67AE8584CAA73B
)

// counterBlock holds the four-word output block shared by the counter
// based generators. ctr is the counter of the next block to compute and
// idx == 4 means the current block is used up.
type counterBlock struct {
	ctr [4]uint64
	idx int
	buf [4]uint64
}

func (b *counterBlock) increment() {
	for i := range b.ctr {
		b.ctr[i]++
		if b.ctr[i] != 0 {
			return
		}
	}
}

// previous returns the counter of the block currently held in buf.
func (b *counterBlock) previous() [4]uint64 {
	c := b.ctr
	for i := range c {
		c[i]--
		if c[i] != ^uint64(0) {
			break
		}
	}
	return c
}

func (b *counterBlock) draw(compute func(ctr [4]uint64) [4]uint64) uint64 {
	if b.idx == 4 {
		b.buf = compute(b.ctr)
		b.increment()
		b.idx = 0
	}
	v := b.buf[b.idx]
	b.idx++
	return v
}

// philox4x64 is Philox4x64-10.
type philox4x64 struct {
	key [2]uint64
	counterBlock
}

func newPhilox4x64() engine { return &philox4x64{} }

func (p *philox4x64) layout() []slot {
	return []slot{u64s("key", p.key[:]), u64s("counter", p.ctr[:]), index("idx", &p.idx, 4)}
}

func (p *philox4x64) seed(seeds []uint64) error {
	p.key = [2]uint64{}
	copy(p.key[:], seeds)
	p.counterBlock = counterBlock{idx: 4}
	return nil
}

func (p *philox4x64) restore() {
	if p.idx < 4 {
		p.buf = p.block(p.previous())
	}
}

func (p *philox4x64) next() uint64 { return p.draw(p.block) }

func (p *philox4x64) block(x [4]uint64) [4]uint64 {
	k0, k1 := p.key[0], p.key[1]
	for r := 0; r < 10; r++ {
		hi0, lo0 := bits.Mul64(philoxM0, x[0])
		hi1, lo1 := bits.Mul64(philoxM1, x[2])
		x = [4]uint64{hi1 ^ x[1] ^ k0, lo1, hi0 ^ x[3] ^ k1, lo0}
		k0 += philoxW0
		k1 += philoxW1
	}
	return x
}
