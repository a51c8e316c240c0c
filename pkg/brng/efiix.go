package brng

import "math/bits"

const (
	efiixIterSize = 32
	efiixIndSize  = 16
	efiixRot      = 25
)

// efiix64 is the indirection/iteration table generator (efiix64x48).
// Snapshot order: a, b, c, i, iteration_table, indirection_table.
type efiix64 struct {
	a, b, c, i uint64
	iter       [efiixIterSize]uint64
	ind        [efiixIndSize]uint64
}

func newEFIIX64() engine { return &efiix64{} }

func (e *efiix64) layout() []slot {
	return []slot{
		u64("a", &e.a),
		u64("b", &e.b),
		u64("c", &e.c),
		u64("i", &e.i),
		u64s("iteration_table", e.iter[:]),
		u64s("indirection_table", e.ind[:]),
	}
}

func (e *efiix64) seed(seeds []uint64) error {
	s := seeds[0]
	seeder := newArbeeSeeded(s, s, s, s, 12)

	for k := range e.ind {
		e.ind[k] = seeder.next()
	}
	e.i = seeder.next()
	for j := uint64(0); j < efiixIterSize; j++ {
		e.iter[(j+e.i)%efiixIterSize] = seeder.next()
	}
	e.a = seeder.next()
	e.b = seeder.next()
	e.c = seeder.next()
	for j := 0; j < 64; j++ {
		e.next()
	}

	seeder.next()
	s1 := s + seeder.next()
	s2 := s + seeder.next()
	s3 := s + seeder.next()
	rekey := newArbeeSeeded(s1^e.a, s2^e.b, s3^e.c, ^s, 12)
	for k := range e.ind {
		e.ind[k] ^= rekey.next()
	}
	for j := 0; j < efiixIterSize+16; j++ {
		e.next()
	}
	return nil
}

func (e *efiix64) next() uint64 {
	iterated := e.iter[e.i%efiixIterSize]
	indirect := e.ind[e.c%efiixIndSize]
	e.ind[e.c%efiixIndSize] = iterated + e.a
	e.iter[e.i%efiixIterSize] = indirect

	old := e.a ^ e.b
	e.a = e.b + e.i
	e.i++
	e.b = e.c + indirect
	e.c = old + bits.RotateLeft64(e.c, efiixRot)
	return e.b ^ iterated
}
