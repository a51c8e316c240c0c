// Package archive keeps fixtures in a storage backend as compressed
// records with a separate index for listing.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pkg.jsn.cam/brngfix/pkg/fixture"
	"pkg.jsn.cam/brngfix/pkg/storage"
)

var (
	ErrNotFound     = errors.New("fixture not found in archive")
	ErrCorrupt      = errors.New("corrupt archive record")
	ErrUnknownCodec = errors.New("unknown codec")
)

var (
	fixturesBucket = []byte("fixtures")
	indexBucket    = []byte("index")
)

// Entry is the index record of one archived fixture.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Algorithm  string    `json:"algorithm"`
	Variant    string    `json:"variant,omitempty"`
	Seeds      []uint64  `json:"seeds"`
	Iterations int       `json:"iterations"`
	Doubles    bool      `json:"doubles"`
	Codec      Codec     `json:"codec"`
	// RawSize and StoredSize are the record sizes before and after
	// compression.
	RawSize    int       `json:"raw_size"`
	StoredSize int       `json:"stored_size"`
	Checksum   uint64    `json:"checksum"`
	CreatedAt  time.Time `json:"created_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Archive stores fixtures keyed by their ID.
type Archive struct {
	backend storage.Backend
	codec   Codec
	log     zerolog.Logger
}

// Option configures an Archive.
type Option func(*Archive)

// WithCodec sets the codec used for new records. The default is snappy.
func WithCodec(c Codec) Option {
	return func(a *Archive) { a.codec = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Archive) { a.log = l }
}

// New opens an archive on backend, creating its buckets if needed. The
// archive owns the backend and closes it in Close.
func New(backend storage.Backend, opts ...Option) (*Archive, error) {
	a := &Archive{backend: backend, codec: CodecSnappy, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}

	var missing bool
	err := backend.View(func(tx storage.Transaction) error {
		missing = tx.Bucket(fixturesBucket) == nil || tx.Bucket(indexBucket) == nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if missing {
		err = backend.Update(func(tx storage.Transaction) error {
			if err := tx.CreateBucket(fixturesBucket); err != nil {
				return err
			}
			return tx.CreateBucket(indexBucket)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create archive buckets: %w", err)
		}
	}
	return a, nil
}

// Put archives f, replacing any fixture with the same ID.
func (a *Archive) Put(f *fixture.Fixture) (Entry, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode fixture: %w", err)
	}
	rec, codec, err := encodeRecord(a.codec, raw)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:         f.ID,
		Algorithm:  f.Algorithm,
		Variant:    f.Variant,
		Seeds:      f.Seeds,
		Iterations: len(f.Outputs),
		Doubles:    len(f.Doubles) > 0,
		Codec:      codec,
		RawSize:    len(raw),
		StoredSize: len(rec),
		Checksum:   xxhash.Sum64(raw),
		CreatedAt:  f.CreatedAt,
		ArchivedAt: time.Now().UTC(),
	}
	idx, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode index entry: %w", err)
	}

	key := f.ID[:]
	err = a.backend.Update(func(tx storage.Transaction) error {
		if err := tx.Bucket(fixturesBucket).Put(key, rec); err != nil {
			return err
		}
		return tx.Bucket(indexBucket).Put(key, idx)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to archive fixture %s: %w", f.ID, err)
	}

	a.log.Debug().
		Str("id", f.ID.String()).
		Str("codec", codec.String()).
		Int("raw_size", e.RawSize).
		Int("stored_size", e.StoredSize).
		Msg("fixture archived")
	return e, nil
}

// Get returns the fixture archived under id.
func (a *Archive) Get(id uuid.UUID) (*fixture.Fixture, error) {
	var rec, idx []byte
	err := a.backend.View(func(tx storage.Transaction) error {
		rec = append([]byte(nil), tx.Bucket(fixturesBucket).Get(id[:])...)
		idx = append([]byte(nil), tx.Bucket(indexBucket).Get(id[:])...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 || len(idx) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var e Entry
	if err := json.Unmarshal(idx, &e); err != nil {
		return nil, fmt.Errorf("%w: index entry %s: %v", ErrCorrupt, id, err)
	}
	raw, err := decodeRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", id, err)
	}
	if sum := xxhash.Sum64(raw); sum != e.Checksum {
		return nil, fmt.Errorf("%w: fixture %s checksum %016x, index has %016x", ErrCorrupt, id, sum, e.Checksum)
	}

	var f fixture.Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: fixture %s: %v", ErrCorrupt, id, err)
	}
	return &f, nil
}

// List returns every index entry, oldest fixture first.
func (a *Archive) List() ([]Entry, error) {
	var entries []Entry
	err := a.backend.View(func(tx storage.Transaction) error {
		return tx.Bucket(indexBucket).ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("%w: index entry %x: %v", ErrCorrupt, k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Delete removes the fixture archived under id.
func (a *Archive) Delete(id uuid.UUID) error {
	err := a.backend.Update(func(tx storage.Transaction) error {
		idx := tx.Bucket(indexBucket)
		if idx.Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := tx.Bucket(fixturesBucket).Delete(id[:]); err != nil {
			return err
		}
		return idx.Delete(id[:])
	})
	if err != nil {
		return err
	}
	a.log.Debug().Str("id", id.String()).Msg("fixture deleted")
	return nil
}

// Close closes the underlying backend.
func (a *Archive) Close() error {
	return a.backend.Close()
}
