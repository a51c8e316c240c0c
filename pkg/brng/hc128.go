package brng

import "math/bits"

// hc128 is the HC-128 stream cipher keystream. idx counts the 1024-step
// cycle; steps 0..511 update P, steps 512..1023 update Q.
type hc128 struct {
	p   [512]uint32
	q   [512]uint32
	idx int
}

func newHC128() engine { return &hc128{} }

func (h *hc128) layout() []slot {
	return []slot{u32s("p", h.p[:]), u32s("q", h.q[:]), index("idx", &h.idx, 1023)}
}

// seed builds the 128-bit key from the first two words and the 128-bit IV
// from the remaining two.
func (h *hc128) seed(seeds []uint64) error {
	var s [4]uint64
	copy(s[:], seeds)
	key := [4]uint32{uint32(s[0]), uint32(s[0] >> 32), uint32(s[1]), uint32(s[1] >> 32)}
	iv := [4]uint32{uint32(s[2]), uint32(s[2] >> 32), uint32(s[3]), uint32(s[3] >> 32)}

	var w [1280]uint32
	for i := 0; i < 4; i++ {
		w[i], w[i+4] = key[i], key[i]
		w[i+8], w[i+12] = iv[i], iv[i]
	}
	for i := 16; i < len(w); i++ {
		w[i] = hcF2(w[i-2]) + w[i-7] + hcF1(w[i-15]) + w[i-16] + uint32(i)
	}
	copy(h.p[:], w[256:768])
	copy(h.q[:], w[768:1280])

	for j := 0; j < 512; j++ {
		h.p[j] = (h.p[j] + h.g1(j)) ^ h.h1(h.p[(j-12)&511])
	}
	for j := 0; j < 512; j++ {
		h.q[j] = (h.q[j] + h.g2(j)) ^ h.h2(h.q[(j-12)&511])
	}
	h.idx = 0
	return nil
}

func (h *hc128) next() uint64 {
	j := h.idx & 511
	var out uint32
	if h.idx < 512 {
		h.p[j] += h.g1(j)
		out = h.h1(h.p[(j-12)&511]) ^ h.p[j]
	} else {
		h.q[j] += h.g2(j)
		out = h.h2(h.q[(j-12)&511]) ^ h.q[j]
	}
	h.idx = (h.idx + 1) & 1023
	return uint64(out)
}

func (h *hc128) g1(j int) uint32 {
	x, y, z := h.p[(j-3)&511], h.p[(j-10)&511], h.p[(j+1)&511]
	return (bits.RotateLeft32(x, -10) ^ bits.RotateLeft32(z, -23)) + bits.RotateLeft32(y, -8)
}

func (h *hc128) g2(j int) uint32 {
	x, y, z := h.q[(j-3)&511], h.q[(j-10)&511], h.q[(j+1)&511]
	return (bits.RotateLeft32(x, 10) ^ bits.RotateLeft32(z, 23)) + bits.RotateLeft32(y, 8)
}

func (h *hc128) h1(x uint32) uint32 { return h.q[x&0xff] + h.q[256+(x>>16)&0xff] }

func (h *hc128) h2(x uint32) uint32 { return h.p[x&0xff] + h.p[256+(x>>16)&0xff] }

func hcF1(x uint32) uint32 {
	return bits.RotateLeft32(x, -7) ^ bits.RotateLeft32(x, -18) ^ (x >> 3)
}

func hcF2(x uint32) uint32 {
	return bits.RotateLeft32(x, -17) ^ bits.RotateLeft32(x, -19) ^ (x >> 10)
}
