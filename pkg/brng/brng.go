// Package brng implements deterministic bit generators behind a single
// capability set: seed, draw the next raw word, and capture or restore the
// full state as a flat sequence of integers.
//
// Every algorithm is reproduced bit for bit: 32-bit generators return
// values below 2^32 and all arithmetic wraps at the native width.
package brng

// Generator is a seeded bit generator. A Generator is owned by a single
// caller and is not safe for concurrent use.
type Generator interface {
	// Descriptor returns the algorithm description of the generator.
	Descriptor() *Descriptor

	// Seed re-initialises the generator from the given seed words. With no
	// arguments the descriptor's default seed is used. On error the
	// generator keeps its previous state.
	Seed(seeds ...uint64) error

	// Next returns the next raw output and advances the state one step.
	Next() uint64

	// State captures the current state.
	State() Snapshot

	// SetState restores a state previously captured with State.
	SetState(s Snapshot) error
}

// engine is the per-algorithm state machine. Seeding arity has already
// been checked against the descriptor when seed is called.
type engine interface {
	seed(seeds []uint64) error
	next() uint64
	layout() []slot
}

// restorer is implemented by engines that keep derived data (an output
// block) which must be recomputed after their state is decoded.
type restorer interface {
	restore()
}

// nativeDoubler is implemented by engines whose draws are already doubles
// in [1, 2).
type nativeDoubler interface {
	nativeDouble()
}

type generator struct {
	desc *Descriptor
	eng  engine
}

// New returns a generator for the algorithm name and variant seeded with
// seeds. It fails with UnknownAlgorithm or InvalidSeed, never returning a
// partially constructed generator.
func New(name, variant string, seeds ...uint64) (Generator, error) {
	d, err := Lookup(name, variant)
	if err != nil {
		return nil, err
	}
	return d.New(seeds...)
}

// New returns a generator for d seeded with seeds.
func (d *Descriptor) New(seeds ...uint64) (Generator, error) {
	g := &generator{desc: d, eng: d.factory()}
	if err := g.Seed(seeds...); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *generator) Descriptor() *Descriptor { return g.desc }

func (g *generator) Seed(seeds ...uint64) error {
	if len(seeds) == 0 {
		seeds = g.desc.DefaultSeeds
	}
	if len(seeds) < g.desc.MinSeeds || len(seeds) > g.desc.MaxSeeds {
		return InvalidSeed.New("%s takes %d to %d seed words, got %d",
			g.desc, g.desc.MinSeeds, g.desc.MaxSeeds, len(seeds))
	}

	eng := g.desc.factory()
	if err := eng.seed(seeds); err != nil {
		return err
	}
	g.eng = eng
	return nil
}

func (g *generator) Next() uint64 { return g.eng.next() }

func (g *generator) State() Snapshot {
	return Snapshot{Descriptor: g.desc, Words: encodeSlots(g.eng.layout())}
}

func (g *generator) SetState(s Snapshot) error {
	if s.Descriptor != g.desc {
		return MalformedState.New("snapshot of %s cannot restore %s", s.Descriptor, g.desc)
	}

	eng := g.desc.factory()
	if err := decodeSlots(g.desc, eng.layout(), s.Words); err != nil {
		return err
	}
	if r, ok := eng.(restorer); ok {
		r.restore()
	}
	g.eng = eng
	return nil
}

// Encode captures the state of g. It is equivalent to g.State().
func Encode(g Generator) Snapshot {
	return g.State()
}

// Decode builds a generator of the given algorithm whose state is words,
// laid out in the descriptor's field order.
func Decode(name, variant string, words []uint64) (Generator, error) {
	d, err := Lookup(name, variant)
	if err != nil {
		return nil, err
	}
	return d.Decode(words)
}

// Decode builds a generator of d whose state is words.
func (d *Descriptor) Decode(words []uint64) (Generator, error) {
	g := &generator{desc: d}
	if err := g.SetState(Snapshot{Descriptor: d, Words: words}); err != nil {
		return nil, err
	}
	return g, nil
}
