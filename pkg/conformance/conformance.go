// Package conformance checks a fixture against a live generator run.
package conformance

import (
	"fmt"
	"math"

	"pkg.jsn.cam/brngfix/pkg/brng"
	"pkg.jsn.cam/brngfix/pkg/fixture"
)

// Status is the outcome of a conformance check.
type Status int

const (
	Pass Status = iota
	StateMismatch
	OutputMismatch
	DoubleMismatch
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case StateMismatch:
		return "state mismatch"
	case OutputMismatch:
		return "output mismatch"
	case DoubleMismatch:
		return "double mismatch"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result reports the first divergence between a fixture and a live run.
//
// For StateMismatch, Index is the snapshot word position and Field and
// FieldIndex name the state field element at that position. For
// OutputMismatch and DoubleMismatch, Index is the draw index. Want is the
// fixture's value and Got the live value; a length difference is reported
// at the shorter length with the missing side set to zero.
type Result struct {
	Status     Status
	Index      int
	Field      string
	FieldIndex int
	Want       uint64
	Got        uint64
	WantDouble float64
	GotDouble  float64
}

// Passed reports whether the check found no divergence.
func (r Result) Passed() bool { return r.Status == Pass }

func (r Result) String() string {
	switch r.Status {
	case Pass:
		return "pass"
	case StateMismatch:
		return fmt.Sprintf("state mismatch at word %d (%s[%d]): want %d, got %d",
			r.Index, r.Field, r.FieldIndex, r.Want, r.Got)
	case DoubleMismatch:
		return fmt.Sprintf("double mismatch at index %d: want %v, got %v",
			r.Index, r.WantDouble, r.GotDouble)
	default:
		return fmt.Sprintf("%s at index %d: want %d, got %d", r.Status, r.Index, r.Want, r.Got)
	}
}

// Verify re-seeds a fresh generator from f.Seeds and compares its initial
// state, its raw outputs and, when f has them, its doubles against f. The
// first divergence ends the check. Errors are only returned when no
// generator can be built for f.
func Verify(f *fixture.Fixture) (Result, error) {
	d, err := f.Descriptor()
	if err != nil {
		return Result{}, err
	}
	g, err := d.New(f.Seeds...)
	if err != nil {
		return Result{}, err
	}

	if r := compareState(d, f.State, g.State().Words); !r.Passed() {
		return r, nil
	}
	if r := compareOutputs(g, f.Outputs); !r.Passed() {
		return r, nil
	}
	if len(f.Doubles) == 0 {
		return Result{Status: Pass}, nil
	}

	dg, err := d.New(f.Seeds...)
	if err != nil {
		return Result{}, err
	}
	return compareDoubles(dg, f.Doubles), nil
}

// VerifyFromState decodes f.State and compares the raw outputs of the
// decoded generator against f. Seeds and doubles are not checked, so
// fixtures seeded by other tools can still be checked for stream
// conformance. A state that does not decode is returned as an error.
func VerifyFromState(f *fixture.Fixture) (Result, error) {
	d, err := f.Descriptor()
	if err != nil {
		return Result{}, err
	}
	g, err := d.Decode(f.State)
	if err != nil {
		return Result{}, err
	}
	return compareOutputs(g, f.Outputs), nil
}

func compareState(d *brng.Descriptor, want, got []uint64) Result {
	pos, same := brng.DiffWords(want, got)
	if same {
		return Result{Status: Pass}
	}

	r := Result{Status: StateMismatch, Index: pos}
	if pos < len(want) {
		r.Want = want[pos]
	}
	if pos < len(got) {
		r.Got = got[pos]
	}
	if f, elem, ok := d.Locate(pos); ok {
		r.Field, r.FieldIndex = f.Name, elem
	}
	return r
}

func compareOutputs(g brng.Generator, want []uint64) Result {
	for i, w := range want {
		if v := g.Next(); v != w {
			return Result{Status: OutputMismatch, Index: i, Want: w, Got: v}
		}
	}
	return Result{Status: Pass}
}

func compareDoubles(g brng.Generator, want []float64) Result {
	for i, w := range want {
		if v := brng.Float64(g); math.Float64bits(v) != math.Float64bits(w) {
			return Result{Status: DoubleMismatch, Index: i, WantDouble: w, GotDouble: v}
		}
	}
	return Result{Status: Pass}
}
