package brng

import (
	"sort"
	"strings"
)

// Descriptor is the immutable description of one algorithm variant: its
// word size, state layout and seeding arity.
type Descriptor struct {
	Name     string
	Variant  string
	WordSize int
	Fields   []Field

	// MinSeeds and MaxSeeds bound the number of seed words Seed accepts.
	MinSeeds int
	MaxSeeds int
	// DefaultSeeds is used when Seed is called without arguments.
	DefaultSeeds []uint64
	// NativeDouble is set when every draw is the bit pattern of a double
	// in [1, 2).
	NativeDouble bool

	factory func() engine
}

// String returns "name" or "name/variant".
func (d *Descriptor) String() string {
	if d.Variant == "" {
		return d.Name
	}
	return d.Name + "/" + d.Variant
}

// StateLen is the number of words in a snapshot of this algorithm.
func (d *Descriptor) StateLen() int {
	n := 0
	for _, f := range d.Fields {
		n += f.Len
	}
	return n
}

// Offset returns the position of the named field inside a snapshot.
func (d *Descriptor) Offset(name string) (off int, f Field, ok bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return off, f, true
		}
		off += f.Len
	}
	return 0, Field{}, false
}

// Locate maps a snapshot word position to its field and element index.
func (d *Descriptor) Locate(pos int) (f Field, elem int, ok bool) {
	for _, f := range d.Fields {
		if pos < f.Len {
			return f, pos, true
		}
		pos -= f.Len
	}
	return Field{}, 0, false
}

// algorithm groups the variants registered under one name.
type algorithm struct {
	name     string
	variants map[string]*Descriptor
	// first registered variant, used for an empty variant request
	fallback *Descriptor
}

type entry struct {
	name     string
	variant  string
	word     int
	minSeeds int
	maxSeeds int
	defaults []uint64
	factory  func() engine
}

// entries lists every supported algorithm. The first variant of each name
// is its default.
var entries = []entry{
	{"mt19937", "", 32, 1, 1, []uint64{5489}, newMT19937},
	{"mt19937_64", "", 64, 1, 1, []uint64{5489}, newMT64},
	{"sfmt19937", "", 32, 1, 1, []uint64{5489}, newSFMT19937},
	{"dsfmt19937", "", 64, 1, 1, []uint64{5489}, newDSFMT19937},

	{"sfc64", "a", 64, 1, 3, []uint64{0xcafef00dbeef5eed}, newSFC64(24, 11, 3)},
	{"sfc64", "b", 64, 1, 3, []uint64{0xcafef00dbeef5eed}, newSFC64(25, 12, 3)},
	{"jsf64", "r", 64, 1, 4, []uint64{0xf1ea5eed}, newJSF64(7, 13, 37)},
	{"jsf64", "n", 64, 1, 4, []uint64{0xf1ea5eed}, newJSF64(39, 11, 0)},
	{"arbee", "", 64, 1, 4, []uint64{0xf1ea5eed}, newArbee},
	{"efiix64", "", 64, 1, 1, []uint64{5489}, newEFIIX64},
	{"romu", "quad", 64, 1, 4, []uint64{0x9f57c403d06c42fc}, newRomu(romuQuad)},
	{"romu", "trio", 64, 1, 3, []uint64{0x9f57c403d06c42fc}, newRomu(romuTrio)},
	{"romu", "duo", 64, 1, 2, []uint64{0x9f57c403d06c42fc}, newRomu(romuDuo)},
	{"romu", "duojr", 64, 1, 2, []uint64{0x9f57c403d06c42fc}, newRomu(romuDuoJr)},
	{"tyche", "default", 32, 1, 2, []uint64{5489}, newTyche(false)},
	{"tyche", "openrand", 32, 1, 2, []uint64{5489}, newTyche(true)},

	{"chacha", "20", 32, 1, 4, []uint64{0xb504f333f9de6484}, newChaCha(20)},
	{"chacha", "12", 32, 1, 4, []uint64{0xb504f333f9de6484}, newChaCha(12)},
	{"chacha", "8", 32, 1, 4, []uint64{0xb504f333f9de6484}, newChaCha(8)},
	{"speck128", "", 64, 1, 4, []uint64{0xb504f333f9de6484}, newSpeck128},
	{"hc128", "", 32, 1, 4, []uint64{5489}, newHC128},

	{"philox4x64", "", 64, 1, 2, []uint64{20111115}, newPhilox4x64},
	{"threefry4x64", "", 64, 1, 4, []uint64{20111115}, newThreefry4x64},
	{"squares", "64", 64, 1, 1, []uint64{0xb504f333f9de6484}, newSquares(64)},
	{"squares", "32", 32, 1, 1, []uint64{0xb504f333f9de6484}, newSquares(32)},

	{"xoroshiro128", "plus", 64, 1, 2, []uint64{0xc1f651c67c62c6e0, 0x30d89576f866ac9f}, newXoroshiro128(xoPlus)},
	{"xoroshiro128", "plusplus", 64, 1, 2, []uint64{0xc1f651c67c62c6e0, 0x30d89576f866ac9f}, newXoroshiro128(xoPlusPlus)},
	{"xoroshiro128", "starstar", 64, 1, 2, []uint64{0xc1f651c67c62c6e0, 0x30d89576f866ac9f}, newXoroshiro128(xoStarStar)},
	{"xoshiro256", "starstar", 64, 1, 4, []uint64{1}, newXoshiro256(xoStarStar)},
	{"xoshiro256", "plusplus", 64, 1, 4, []uint64{1}, newXoshiro256(xoPlusPlus)},
	{"xoshiro256", "plus", 64, 1, 4, []uint64{1}, newXoshiro256(xoPlus)},
	{"xoshiro512", "starstar", 64, 1, 8, []uint64{1}, newXoshiro512(xoStarStar)},
	{"xoshiro512", "plusplus", 64, 1, 8, []uint64{1}, newXoshiro512(xoPlusPlus)},
	{"xoshiro512", "plus", 64, 1, 8, []uint64{1}, newXoshiro512(xoPlus)},
	{"lxm", "", 64, 1, 5, []uint64{0x3EE517E67D1C29DE}, newLXM},
	{"splitmix64", "", 64, 1, 1, []uint64{0}, newSplitMix64},
}

// registry maps lower-case algorithm names to their variants.
var registry = buildRegistry(entries)

func buildRegistry(es []entry) map[string]*algorithm {
	reg := make(map[string]*algorithm)
	for _, e := range es {
		eng := e.factory()
		_, native := eng.(nativeDoubler)
		d := &Descriptor{
			Name:         e.name,
			Variant:      e.variant,
			WordSize:     e.word,
			Fields:       fieldsOf(eng.layout()),
			MinSeeds:     e.minSeeds,
			MaxSeeds:     e.maxSeeds,
			DefaultSeeds: e.defaults,
			NativeDouble: native,
			factory:      e.factory,
		}

		alg, exists := reg[e.name]
		if !exists {
			alg = &algorithm{name: e.name, variants: make(map[string]*Descriptor), fallback: d}
			reg[e.name] = alg
		}
		alg.variants[e.variant] = d
	}
	return reg
}

// Lookup returns the descriptor for name and variant. Names are matched
// case-insensitively; an empty variant selects the default variant.
func Lookup(name, variant string) (*Descriptor, error) {
	alg, exists := registry[strings.ToLower(name)]
	if !exists {
		return nil, UnknownAlgorithm.New("%q", name)
	}
	if variant == "" {
		return alg.fallback, nil
	}
	d, exists := alg.variants[strings.ToLower(variant)]
	if !exists {
		return nil, UnknownAlgorithm.New("%q has no variant %q (have %s)",
			name, variant, strings.Join(alg.variantNames(), ", "))
	}
	return d, nil
}

func (a *algorithm) variantNames() []string {
	var names []string
	for v := range a.variants {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

// List returns all registered algorithm names in sorted order.
func List() []string {
	var names []string
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns every registered descriptor in registration order.
func Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, registry[e.name].variants[e.variant])
	}
	return out
}
