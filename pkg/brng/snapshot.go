package brng

import "fmt"

// Snapshot is a generator state at one point in time: the descriptor it
// belongs to and the state words in the descriptor's field order.
// A Snapshot must not be modified once captured.
type Snapshot struct {
	Descriptor *Descriptor
	Words      []uint64
}

// Field returns the words of the named field, or nil if the descriptor
// has no such field. A zero Snapshot has no fields.
func (s Snapshot) Field(name string) []uint64 {
	if s.Descriptor == nil {
		return nil
	}
	off, f, ok := s.Descriptor.Offset(name)
	if !ok || off+f.Len > len(s.Words) {
		return nil
	}
	return s.Words[off : off+f.Len]
}

// Equal reports whether both snapshots have the same descriptor and words.
// A snapshot without a descriptor is never equal to anything.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Descriptor == nil || o.Descriptor == nil {
		return false
	}
	_, same := s.Diff(o)
	return same && s.Descriptor == o.Descriptor
}

// Diff returns the position of the first word that differs between s and
// o. A length difference counts as a divergence at the shorter length.
func (s Snapshot) Diff(o Snapshot) (pos int, same bool) {
	return DiffWords(s.Words, o.Words)
}

// DiffWords returns the first position at which want and got differ.
func DiffWords(want, got []uint64) (pos int, same bool) {
	n := min(len(want), len(got))
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return i, false
		}
	}
	if len(want) != len(got) {
		return n, false
	}
	return 0, true
}

func (s Snapshot) String() string {
	if s.Descriptor == nil {
		return "empty state"
	}
	return fmt.Sprintf("%s state (%d words)", s.Descriptor, len(s.Words))
}
