package fixture

import "errors"

// Sentinel errors for fixture files and runs
var (
	// Request errors
	ErrInvalidIterations = errors.New("invalid iteration count")

	// File errors
	ErrMissingFile     = errors.New("fixture file missing")
	ErrMalformedFile   = errors.New("malformed fixture file")
	ErrLengthMismatch  = errors.New("fixture length mismatch")
	ErrDigestMismatch  = errors.New("fixture digest mismatch")
	ErrInvalidManifest = errors.New("invalid manifest")

	// Version/compatibility errors
	ErrIncompatibleVersion = errors.New("incompatible fixture format version")
)
