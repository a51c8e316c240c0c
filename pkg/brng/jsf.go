package brng

import "math/bits"

const jsfFill = 0xcafe5eed00000001

// jsf64 is Bob Jenkins' small fast generator. r == 0 selects the
// two-rotation form.
type jsf64 struct {
	a, b, c, d uint64
	p, q, r    int
}

func newJSF64(p, q, r int) func() engine {
	return func() engine { return &jsf64{p: p, q: q, r: r} }
}

func (j *jsf64) layout() []slot {
	return []slot{u64("a", &j.a), u64("b", &j.b), u64("c", &j.c), u64("d", &j.d)}
}

func (j *jsf64) seed(seeds []uint64) error {
	w := fill4(seeds, jsfFill)
	j.a, j.b, j.c, j.d = w[0], w[1], w[2], w[3]
	for i := 0; i < 20; i++ {
		j.next()
	}
	return nil
}

func (j *jsf64) next() uint64 {
	e := j.a - bits.RotateLeft64(j.b, j.p)
	j.a = j.b ^ bits.RotateLeft64(j.c, j.q)
	if j.r != 0 {
		j.b = j.c + bits.RotateLeft64(j.d, j.r)
	} else {
		j.b = j.c + j.d
	}
	j.c = j.d + e
	j.d = e + j.a
	return j.d
}

// arbee is the jsf variant with an added counter; it also seeds efiix64.
type arbee struct {
	a, b, c, d, i uint64
}

func newArbee() engine { return &arbee{} }

func newArbeeSeeded(s1, s2, s3, s4 uint64, rounds int) *arbee {
	g := &arbee{a: s1, b: s2, c: s3, d: s4, i: 1}
	for n := 0; n < rounds; n++ {
		g.next()
	}
	return g
}

func (g *arbee) layout() []slot {
	return []slot{u64("a", &g.a), u64("b", &g.b), u64("c", &g.c), u64("d", &g.d), u64("i", &g.i)}
}

func (g *arbee) seed(seeds []uint64) error {
	w := fill4(seeds, jsfFill)
	*g = *newArbeeSeeded(w[0], w[1], w[2], w[3], 20)
	return nil
}

func (g *arbee) next() uint64 {
	e := g.a + bits.RotateLeft64(g.b, 45)
	g.a = g.b ^ bits.RotateLeft64(g.c, 13)
	g.b = g.c + bits.RotateLeft64(g.d, 37)
	g.c = g.d + e + g.i
	g.i++
	g.d = e + g.a
	return g.d
}

// fill4 pads seeds to four words with def.
func fill4(seeds []uint64, def uint64) [4]uint64 {
	w := [4]uint64{def, def, def, def}
	copy(w[:], seeds)
	return w
}
