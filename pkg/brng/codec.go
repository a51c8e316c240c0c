package brng

import (
	"fmt"
	"math"
)

// Kind is the element type of a state field.
type Kind int

const (
	Uint32 Kind = iota
	Uint64
	// Index is a position inside a buffer; it is bounded by Field.Max.
	Index
)

func (k Kind) String() string {
	switch k {
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Index:
		return "index"
	default:
		return "unknown"
	}
}

// Field describes one named field of a generator's state.
type Field struct {
	Name string
	Kind Kind
	Len  int
	// Max is the largest accepted value of an Index field.
	Max int
}

// slot binds a Field to the storage of a live engine. Exactly one of the
// pointer or slice members is set.
type slot struct {
	name string
	kind Kind
	p64  *uint64
	a64  []uint64
	p32  *uint32
	a32  []uint32
	pi   *int
	max  int
}

func u64(name string, p *uint64) slot { return slot{name: name, kind: Uint64, p64: p} }

func u64s(name string, a []uint64) slot { return slot{name: name, kind: Uint64, a64: a} }

func u32(name string, p *uint32) slot { return slot{name: name, kind: Uint32, p32: p} }

func u32s(name string, a []uint32) slot { return slot{name: name, kind: Uint32, a32: a} }

func index(name string, p *int, limit int) slot {
	return slot{name: name, kind: Index, pi: p, max: limit}
}

func (s slot) len() int {
	switch {
	case s.a64 != nil:
		return len(s.a64)
	case s.a32 != nil:
		return len(s.a32)
	default:
		return 1
	}
}

func (s slot) get(i int) uint64 {
	switch {
	case s.p64 != nil:
		return *s.p64
	case s.a64 != nil:
		return s.a64[i]
	case s.p32 != nil:
		return uint64(*s.p32)
	case s.a32 != nil:
		return uint64(s.a32[i])
	default:
		return uint64(*s.pi)
	}
}

// check returns a description of why v cannot be stored at element i,
// or the empty string.
func (s slot) check(i int, v uint64) string {
	switch s.kind {
	case Uint32:
		if v > math.MaxUint32 {
			return fmt.Sprintf("%s[%d] = %d does not fit in 32 bits", s.name, i, v)
		}
	case Index:
		if v > uint64(s.max) {
			return fmt.Sprintf("%s = %d is out of range [0, %d]", s.name, v, s.max)
		}
	}
	return ""
}

func (s slot) set(i int, v uint64) {
	switch {
	case s.p64 != nil:
		*s.p64 = v
	case s.a64 != nil:
		s.a64[i] = v
	case s.p32 != nil:
		*s.p32 = uint32(v)
	case s.a32 != nil:
		s.a32[i] = uint32(v)
	default:
		*s.pi = int(v)
	}
}

func fieldsOf(slots []slot) []Field {
	fields := make([]Field, len(slots))
	for i, s := range slots {
		fields[i] = Field{Name: s.name, Kind: s.kind, Len: s.len(), Max: s.max}
	}
	return fields
}

func encodeSlots(slots []slot) []uint64 {
	n := 0
	for _, s := range slots {
		n += s.len()
	}
	words := make([]uint64, 0, n)
	for _, s := range slots {
		for i := 0; i < s.len(); i++ {
			words = append(words, s.get(i))
		}
	}
	return words
}

// decodeSlots validates every word before writing any of them, so a
// failed decode leaves the engine untouched.
func decodeSlots(d *Descriptor, slots []slot, words []uint64) error {
	if want := d.StateLen(); len(words) != want {
		return MalformedState.New("%s: got %d state words, want %d", d, len(words), want)
	}

	off := 0
	for _, s := range slots {
		for i := 0; i < s.len(); i++ {
			if msg := s.check(i, words[off]); msg != "" {
				return MalformedState.New("%s: %s", d, msg)
			}
			off++
		}
	}

	off = 0
	for _, s := range slots {
		for i := 0; i < s.len(); i++ {
			s.set(i, words[off])
			off++
		}
	}
	return nil
}
