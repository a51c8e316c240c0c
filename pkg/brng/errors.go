package brng

import "github.com/zeebo/errs"

// Error classes for generator construction and state decoding.
// Use Class.Has to test an error against one of them.
var (
	// UnknownAlgorithm is returned when a name or variant is not registered.
	UnknownAlgorithm = errs.Class("unknown algorithm")

	// InvalidSeed is returned for a wrong number of seed words or a seed
	// word outside the algorithm's accepted range.
	InvalidSeed = errs.Class("invalid seed")

	// MalformedState is returned when a snapshot does not match the
	// descriptor's field layout.
	MalformedState = errs.Class("malformed state")
)
