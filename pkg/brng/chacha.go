package brng

import "math/bits"

var chachaConstants = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// chacha runs the ChaCha block function in counter mode and returns the
// 32-bit keystream words in order. ctr is a 128-bit word counter
// (low word first); the block counter is ctr >> 4.
type chacha struct {
	rounds int
	key    [8]uint32
	ctr    [2]uint64
	block  [16]uint32
}

func newChaCha(rounds int) func() engine {
	return func() engine { return &chacha{rounds: rounds} }
}

func (c *chacha) layout() []slot {
	return []slot{u32s("key", c.key[:]), u64s("counter", c.ctr[:])}
}

// seed takes up to four words: two key words and two stream words.
func (c *chacha) seed(seeds []uint64) error {
	var w [4]uint64
	copy(w[:], seeds)
	for i, s := range w {
		c.key[2*i] = uint32(s)
		c.key[2*i+1] = uint32(s >> 32)
	}
	c.ctr = [2]uint64{}
	c.generate()
	return nil
}

func (c *chacha) restore() { c.generate() }

func (c *chacha) next() uint64 {
	out := c.block[c.ctr[0]&15]
	refill := c.ctr[0]&15 == 15
	c.ctr[0]++
	if c.ctr[0] == 0 {
		c.ctr[1]++
	}
	if refill {
		c.generate()
	}
	return uint64(out)
}

func (c *chacha) generate() {
	var in [16]uint32
	copy(in[:4], chachaConstants[:])
	copy(in[4:12], c.key[:])
	lo := c.ctr[0]>>4 | c.ctr[1]<<60
	hi := c.ctr[1] >> 4
	in[12] = uint32(lo)
	in[13] = uint32(lo >> 32)
	in[14] = uint32(hi)
	in[15] = uint32(hi >> 32)

	x := in
	for i := 1; i < c.rounds; i += 2 {
		quarterRound(&x, 0, 4, 8, 12)
		quarterRound(&x, 1, 5, 9, 13)
		quarterRound(&x, 2, 6, 10, 14)
		quarterRound(&x, 3, 7, 11, 15)
		quarterRound(&x, 0, 5, 10, 15)
		quarterRound(&x, 1, 6, 11, 12)
		quarterRound(&x, 2, 7, 8, 13)
		quarterRound(&x, 3, 4, 9, 14)
	}
	if c.rounds%2 == 1 {
		quarterRound(&x, 0, 5, 10, 15)
		quarterRound(&x, 1, 6, 11, 12)
		quarterRound(&x, 2, 7, 8, 13)
		quarterRound(&x, 3, 4, 9, 14)
	}
	for i := range x {
		c.block[i] = x[i] + in[i]
	}
}

func quarterRound(x *[16]uint32, a, b, c, d int) {
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 16)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 12)
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 8)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 7)
}
