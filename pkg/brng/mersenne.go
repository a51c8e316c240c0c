package brng

import "math"

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff

	mt64N         = 312
	mt64M         = 156
	mt64MatrixA   = 0xb5026f5aa96619e9
	mt64UpperMask = 0xffffffff80000000
	mt64LowerMask = 0x7fffffff
)

// mt19937 is the 32-bit Mersenne Twister. State: key then pos, where
// pos == 624 means the key must be twisted before the next draw.
type mt19937 struct {
	key [mtN]uint32
	pos int
}

func newMT19937() engine { return &mt19937{} }

func (m *mt19937) layout() []slot {
	return []slot{u32s("key", m.key[:]), index("pos", &m.pos, mtN)}
}

func (m *mt19937) seed(seeds []uint64) error {
	if seeds[0] > math.MaxUint32 {
		return InvalidSeed.New("mt19937 seed %d does not fit in 32 bits", seeds[0])
	}
	m.key[0] = uint32(seeds[0])
	for i := 1; i < mtN; i++ {
		prev := m.key[i-1]
		m.key[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	m.pos = mtN
	return nil
}

func (m *mt19937) twist() {
	for i := 0; i < mtN; i++ {
		y := (m.key[i] & mtUpperMask) | (m.key[(i+1)%mtN] & mtLowerMask)
		v := m.key[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtMatrixA
		}
		m.key[i] = v
	}
	m.pos = 0
}

func (m *mt19937) next() uint64 {
	if m.pos >= mtN {
		m.twist()
	}
	y := m.key[m.pos]
	m.pos++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return uint64(y)
}

// mt64 is the 64-bit Mersenne Twister, laid out like mt19937.
type mt64 struct {
	key [mt64N]uint64
	pos int
}

func newMT64() engine { return &mt64{} }

func (m *mt64) layout() []slot {
	return []slot{u64s("key", m.key[:]), index("pos", &m.pos, mt64N)}
}

func (m *mt64) seed(seeds []uint64) error {
	m.key[0] = seeds[0]
	for i := 1; i < mt64N; i++ {
		prev := m.key[i-1]
		m.key[i] = 6364136223846793005*(prev^(prev>>62)) + uint64(i)
	}
	m.pos = mt64N
	return nil
}

func (m *mt64) twist() {
	for i := 0; i < mt64N; i++ {
		y := (m.key[i] & mt64UpperMask) | (m.key[(i+1)%mt64N] & mt64LowerMask)
		v := m.key[(i+mt64M)%mt64N] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mt64MatrixA
		}
		m.key[i] = v
	}
	m.pos = 0
}

func (m *mt64) next() uint64 {
	if m.pos >= mt64N {
		m.twist()
	}
	y := m.key[m.pos]
	m.pos++

	y ^= (y >> 29) & 0x5555555555555555
	y ^= (y << 17) & 0x71d67fffeda60000
	y ^= (y << 37) & 0xfff7eee000000000
	y ^= y >> 43
	return y
}
