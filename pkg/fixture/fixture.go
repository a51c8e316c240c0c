// Package fixture produces reference fixtures from the generators in
// pkg/brng and reads and writes them as plain text files.
package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pkg.jsn.cam/brngfix/pkg/brng"
)

// checkEvery is the number of draws between context and progress checks.
const checkEvery = 4096

// Fixture is a reference run of one generator: the seed words it was
// created from, its initial state, its raw outputs in draw order and
// optionally the doubles of a second run from the same seed.
type Fixture struct {
	ID        uuid.UUID `json:"id"`
	Algorithm string    `json:"algorithm"`
	Variant   string    `json:"variant,omitempty"`
	Seeds     []uint64  `json:"seeds"`
	State     []uint64  `json:"state"`
	Outputs   []uint64  `json:"outputs"`
	Doubles   []float64 `json:"doubles,omitempty"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Descriptor looks up the algorithm descriptor of the fixture.
func (f *Fixture) Descriptor() (*brng.Descriptor, error) {
	return brng.Lookup(f.Algorithm, f.Variant)
}

// Iterations is the number of raw outputs in the fixture.
func (f *Fixture) Iterations() int { return len(f.Outputs) }

// Request describes a fixture run.
type Request struct {
	Algorithm string
	Variant   string
	// Seeds are the seed words; empty means the algorithm's default seed.
	Seeds      []uint64
	Iterations int
	// Doubles also records Iterations uniform doubles.
	Doubles bool

	// Progress, if set, is called with the number of draws done so far.
	Progress func(done, total int)
	Logger   *zerolog.Logger
}

func (r Request) total() int {
	if r.Doubles {
		return 2 * r.Iterations
	}
	return r.Iterations
}

// Run seeds a generator as described by req, captures its initial state
// and draws req.Iterations raw outputs. Doubles are drawn from a second
// generator seeded the same way. Run stops with ctx.Err() when ctx is
// cancelled.
func Run(ctx context.Context, req Request) (*Fixture, error) {
	log := zerolog.Nop()
	if req.Logger != nil {
		log = *req.Logger
	}

	if req.Iterations < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, req.Iterations)
	}

	d, err := brng.Lookup(req.Algorithm, req.Variant)
	if err != nil {
		return nil, err
	}
	seeds := req.Seeds
	if len(seeds) == 0 {
		seeds = d.DefaultSeeds
	}
	g, err := d.New(seeds...)
	if err != nil {
		return nil, err
	}

	f := &Fixture{
		ID:        uuid.New(),
		Algorithm: d.Name,
		Variant:   d.Variant,
		Seeds:     append([]uint64(nil), seeds...),
		State:     g.State().Words,
		Outputs:   make([]uint64, req.Iterations),
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
	}

	log.Debug().
		Str("algorithm", d.String()).
		Uints64("seeds", f.Seeds).
		Int("iterations", req.Iterations).
		Bool("doubles", req.Doubles).
		Msg("starting fixture run")

	start := time.Now()
	total := req.total()
	done := 0
	tick := func() error {
		done++
		if done%checkEvery != 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if req.Progress != nil {
			req.Progress(done, total)
		}
		return nil
	}

	for i := range f.Outputs {
		f.Outputs[i] = g.Next()
		if err := tick(); err != nil {
			log.Warn().Err(err).Int("done", done).Msg("fixture run cancelled")
			return nil, err
		}
	}

	if req.Doubles {
		dg, err := d.New(seeds...)
		if err != nil {
			return nil, err
		}
		f.Doubles = make([]float64, req.Iterations)
		for i := range f.Doubles {
			f.Doubles[i] = brng.Float64(dg)
			if err := tick(); err != nil {
				log.Warn().Err(err).Int("done", done).Msg("fixture run cancelled")
				return nil, err
			}
		}
	}

	if req.Progress != nil {
		req.Progress(total, total)
	}
	log.Info().
		Str("id", f.ID.String()).
		Str("algorithm", d.String()).
		Int("state_words", len(f.State)).
		Int("outputs", len(f.Outputs)).
		Dur("took", time.Since(start)).
		Msg("fixture run complete")
	return f, nil
}
