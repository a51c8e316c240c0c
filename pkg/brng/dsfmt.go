package brng

import "math"

// dSFMT19937 parameters. The state is 191 128-bit words stored as 382
// 64-bit words, each holding an IEEE double in [1, 2).
const (
	dsfmtN    = 191
	dsfmtN64  = dsfmtN * 2
	dsfmtPos1 = 117
	dsfmtSL1  = 19
	dsfmtSR   = 12

	dsfmtMask1 = 0x000ffafffffffb3f
	dsfmtMask2 = 0x000ffdfffc90fffd
	dsfmtFix1  = 0x90014964b32f4329
	dsfmtFix2  = 0x3b8d12ac548a7c7a
	dsfmtPcv1  = 0x3d84e1ac0dc82880
	dsfmtPcv2  = 0x0000000000000001

	dsfmtLowMask = 0x000fffffffffffff
	dsfmtHighOne = 0x3ff0000000000000
)

// dsfmt19937 is the double precision SIMD-oriented Mersenne Twister. Each
// draw is the bit pattern of a double in [1, 2); lung is the 128-bit
// carry word of the recursion.
type dsfmt19937 struct {
	state [dsfmtN64]uint64
	lung  [2]uint64
	idx   int
}

func newDSFMT19937() engine { return &dsfmt19937{} }

func (d *dsfmt19937) layout() []slot {
	return []slot{u64s("state", d.state[:]), u64s("lung", d.lung[:]), index("idx", &d.idx, dsfmtN64)}
}

// nativeDouble marks draws as [1, 2) doubles for Float64.
func (d *dsfmt19937) nativeDouble() {}

func (d *dsfmt19937) seed(seeds []uint64) error {
	if seeds[0] > math.MaxUint32 {
		return InvalidSeed.New("dsfmt19937 seed %d does not fit in 32 bits", seeds[0])
	}

	// 32-bit initialisation over the state and the lung, low half first.
	var w [2*dsfmtN64 + 4]uint32
	w[0] = uint32(seeds[0])
	for i := 1; i < len(w); i++ {
		prev := w[i-1]
		w[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	for k := range d.state {
		v := uint64(w[2*k]) | uint64(w[2*k+1])<<32
		d.state[k] = v&dsfmtLowMask | dsfmtHighOne
	}
	for k := range d.lung {
		j := dsfmtN64 + k
		d.lung[k] = uint64(w[2*j]) | uint64(w[2*j+1])<<32
	}

	d.certifyPeriod()
	d.idx = dsfmtN64
	return nil
}

func (d *dsfmt19937) certifyPeriod() {
	inner := (d.lung[0]^dsfmtFix1)&dsfmtPcv1 ^ (d.lung[1]^dsfmtFix2)&dsfmtPcv2
	for i := 32; i > 0; i >>= 1 {
		inner ^= inner >> i
	}
	if inner&1 == 0 {
		d.lung[1] ^= 1
	}
}

func (d *dsfmt19937) next() uint64 {
	if d.idx >= dsfmtN64 {
		d.regenerate()
		d.idx = 0
	}
	v := d.state[d.idx]
	d.idx++
	return v
}

func (d *dsfmt19937) regenerate() {
	l0, l1 := d.lung[0], d.lung[1]
	for i := 0; i < dsfmtN; i++ {
		j := i + dsfmtPos1
		if j >= dsfmtN {
			j -= dsfmtN
		}
		a0, a1 := d.state[2*i], d.state[2*i+1]
		b0, b1 := d.state[2*j], d.state[2*j+1]

		t0 := a0<<dsfmtSL1 ^ l1>>32 ^ l1<<32 ^ b0
		t1 := a1<<dsfmtSL1 ^ l0>>32 ^ l0<<32 ^ b1
		d.state[2*i] = t0>>dsfmtSR ^ t0&dsfmtMask1 ^ a0
		d.state[2*i+1] = t1>>dsfmtSR ^ t1&dsfmtMask2 ^ a1
		l0, l1 = t0, t1
	}
	d.lung[0], d.lung[1] = l0, l1
}
