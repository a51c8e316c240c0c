package fixture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"

	"pkg.jsn.cam/brngfix/pkg/brng"
)

// File name suffixes appended to a fixture prefix.
const (
	StateSuffix    = "_state.txt"
	ValuesSuffix   = "_vals.txt"
	DoublesSuffix  = "_double_vals.txt"
	ManifestSuffix = "_manifest.json"
)

// Manifest describes the text files of a fixture and how to check them.
type Manifest struct {
	ID         uuid.UUID `json:"id"`
	Algorithm  string    `json:"algorithm"`
	Variant    string    `json:"variant,omitempty"`
	Seeds      []uint64  `json:"seeds"`
	Iterations int       `json:"iterations"`
	Doubles    bool      `json:"doubles"`
	Version    string    `json:"version"`
	// Digest is the hex xxhash64 of the state, values and doubles files
	// in that order.
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

// Paths returns the files written for prefix. The doubles path is
// returned even when a fixture has no doubles.
func Paths(prefix string) (state, values, doubles, manifest string) {
	return prefix + StateSuffix, prefix + ValuesSuffix, prefix + DoublesSuffix, prefix + ManifestSuffix
}

// Write stores f as text files under prefix. The doubles file is only
// written when f carries doubles.
func Write(prefix string, f *Fixture) error {
	statePath, valsPath, doublesPath, manifestPath := Paths(prefix)

	stateData := formatUints(f.State)
	valsData := formatUints(f.Outputs)
	var doublesData []byte
	if len(f.Doubles) > 0 {
		doublesData = formatFloats(f.Doubles)
	}

	if err := writeFile(statePath, stateData); err != nil {
		return err
	}
	if err := writeFile(valsPath, valsData); err != nil {
		return err
	}
	if doublesData != nil {
		if err := writeFile(doublesPath, doublesData); err != nil {
			return err
		}
	}

	m := Manifest{
		ID:         f.ID,
		Algorithm:  f.Algorithm,
		Variant:    f.Variant,
		Seeds:      f.Seeds,
		Iterations: len(f.Outputs),
		Doubles:    doublesData != nil,
		Version:    f.Version,
		Digest:     digest(stateData, valsData, doublesData),
		CreatedAt:  f.CreatedAt,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return writeFile(manifestPath, append(data, '\n'))
}

// Read loads the fixture written under prefix. It checks the manifest's
// format version and the digest of the text files.
func Read(prefix string) (*Fixture, error) {
	statePath, valsPath, doublesPath, manifestPath := Paths(prefix)

	m, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	ok, err := IsCompatibleVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIncompatibleVersion, CompatibilityError(m.Version))
	}

	stateData, err := readFile(statePath)
	if err != nil {
		return nil, err
	}
	valsData, err := readFile(valsPath)
	if err != nil {
		return nil, err
	}
	var doublesData []byte
	if m.Doubles {
		if doublesData, err = readFile(doublesPath); err != nil {
			return nil, err
		}
	}
	if got := digest(stateData, valsData, doublesData); got != m.Digest {
		return nil, fmt.Errorf("%w: %s: manifest has %s, files hash to %s", ErrDigestMismatch, prefix, m.Digest, got)
	}

	f := &Fixture{
		ID:        m.ID,
		Algorithm: m.Algorithm,
		Variant:   m.Variant,
		Seeds:     m.Seeds,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
	}
	if f.State, err = parseUints(statePath, stateData); err != nil {
		return nil, err
	}
	if f.Outputs, err = parseUints(valsPath, valsData); err != nil {
		return nil, err
	}
	if len(f.Outputs) != m.Iterations {
		return nil, fmt.Errorf("%w: %s has %d values, manifest says %d", ErrLengthMismatch, valsPath, len(f.Outputs), m.Iterations)
	}
	if m.Doubles {
		if f.Doubles, err = parseFloats(doublesPath, doublesData); err != nil {
			return nil, err
		}
		if len(f.Doubles) != m.Iterations {
			return nil, fmt.Errorf("%w: %s has %d values, manifest says %d", ErrLengthMismatch, doublesPath, len(f.Doubles), m.Iterations)
		}
	}
	return f, nil
}

// ReadManifest loads and validates a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	if m.Algorithm == "" {
		return nil, fmt.Errorf("%w: %s: no algorithm", ErrInvalidManifest, path)
	}
	return &m, nil
}

// ReadBare loads a state file and a values file that were produced
// without a manifest. The fixture has no seeds, so only
// conformance.VerifyFromState can check it.
func ReadBare(statePath, valsPath, algorithm, variant string) (*Fixture, error) {
	d, err := brng.Lookup(algorithm, variant)
	if err != nil {
		return nil, err
	}

	stateData, err := readFile(statePath)
	if err != nil {
		return nil, err
	}
	valsData, err := readFile(valsPath)
	if err != nil {
		return nil, err
	}

	f := &Fixture{Algorithm: d.Name, Variant: d.Variant, Version: FormatVersion}
	if f.State, err = parseUints(statePath, stateData); err != nil {
		return nil, err
	}
	if f.Outputs, err = parseUints(valsPath, valsData); err != nil {
		return nil, err
	}
	return f, nil
}

func digest(parts ...[]byte) string {
	h := xxhash.New()
	for _, p := range parts {
		h.Write(p)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func formatUints(vs []uint64) []byte {
	var buf bytes.Buffer
	for _, v := range vs {
		buf.WriteString(strconv.FormatUint(v, 10))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func formatFloats(vs []float64) []byte {
	var buf bytes.Buffer
	for _, v := range vs {
		buf.WriteString(strconv.FormatFloat(v, 'g', 17, 64))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// parseUints reads one decimal integer per line. Blank lines are skipped.
func parseUints(path string, data []byte) ([]uint64, error) {
	var out []uint64
	err := eachLine(data, func(n int, line string) error {
		v, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", ErrMalformedFile, path, n, err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func parseFloats(path string, data []byte) ([]float64, error) {
	var out []float64
	err := eachLine(data, func(n int, line string) error {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil || math.IsNaN(v) {
			return fmt.Errorf("%w: %s:%d: bad double %q", ErrMalformedFile, path, n, line)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func eachLine(data []byte, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
