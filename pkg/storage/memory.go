package storage

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

type memBucket map[string][]byte

// MemoryBackend implements Backend with in-memory maps. Nothing is
// persisted. Update holds the write lock for the whole transaction and
// rolls every bucket back if the transaction fails.
type MemoryBackend struct {
	mu      sync.RWMutex
	buckets map[string]memBucket
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{buckets: make(map[string]memBucket)}
}

func (m *MemoryBackend) CreateBucket(name []byte) error {
	return m.Update(func(tx Transaction) error { return tx.CreateBucket(name) })
}

func (m *MemoryBackend) DeleteBucket(name []byte) error {
	return m.Update(func(tx Transaction) error { return tx.DeleteBucket(name) })
}

func (m *MemoryBackend) BucketExists(name []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.buckets[string(name)]
	return exists, nil
}

func (m *MemoryBackend) Put(bucket, key, value []byte) error {
	return m.Update(func(tx Transaction) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return b.Put(key, value)
	})
}

// Get returns a copy of the stored value.
func (m *MemoryBackend) Get(bucket, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bkt, exists := m.buckets[string(bucket)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	v, exists := bkt[string(key)]
	if !exists {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (m *MemoryBackend) Delete(bucket, key []byte) error {
	return m.Update(func(tx Transaction) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return b.Delete(key)
	})
}

func (m *MemoryBackend) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	return m.View(func(tx Transaction) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return b.ForEach(fn)
	})
}

func (m *MemoryBackend) Update(fn func(tx Transaction) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Buckets are copied on first write, so the saved map is the rollback
	// image.
	saved := maps.Clone(m.buckets)
	tx := &memoryTransaction{backend: m, writable: true, copied: make(map[string]bool)}
	if err := fn(tx); err != nil {
		m.buckets = saved
		return err
	}
	return nil
}

func (m *MemoryBackend) View(fn func(tx Transaction) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memoryTransaction{backend: m})
}

// Close is a no-op.
func (m *MemoryBackend) Close() error { return nil }

// memoryTransaction runs with the backend lock already held.
type memoryTransaction struct {
	backend  *MemoryBackend
	writable bool
	// buckets already copied in this transaction
	copied map[string]bool
}

func (t *memoryTransaction) CreateBucket(name []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	if _, exists := t.backend.buckets[string(name)]; !exists {
		t.backend.buckets[string(name)] = make(memBucket)
		t.copied[string(name)] = true
	}
	return nil
}

func (t *memoryTransaction) DeleteBucket(name []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	delete(t.backend.buckets, string(name))
	delete(t.copied, string(name))
	return nil
}

func (t *memoryTransaction) Bucket(name []byte) Bucket {
	if _, exists := t.backend.buckets[string(name)]; !exists {
		return nil
	}
	return &memoryBucket{tx: t, name: string(name)}
}

func (t *memoryTransaction) ForEachBucket(fn func(name []byte) error) error {
	for _, name := range slices.Sorted(maps.Keys(t.backend.buckets)) {
		if err := fn([]byte(name)); err != nil {
			return err
		}
	}
	return nil
}

// writeable returns the bucket map, copying it the first time it is
// written in this transaction.
func (t *memoryTransaction) writeable(name string) memBucket {
	bkt := t.backend.buckets[name]
	if !t.copied[name] {
		bkt = maps.Clone(bkt)
		t.backend.buckets[name] = bkt
		t.copied[name] = true
	}
	return bkt
}

type memoryBucket struct {
	tx   *memoryTransaction
	name string
}

func (b *memoryBucket) Put(key, value []byte) error {
	if !b.tx.writable {
		return ErrReadOnly
	}
	if len(key) == 0 {
		return fmt.Errorf("empty key in bucket %s", b.name)
	}
	b.tx.writeable(b.name)[string(key)] = slices.Clone(value)
	return nil
}

func (b *memoryBucket) Get(key []byte) []byte {
	return b.tx.backend.buckets[b.name][string(key)]
}

func (b *memoryBucket) Delete(key []byte) error {
	if !b.tx.writable {
		return ErrReadOnly
	}
	delete(b.tx.writeable(b.name), string(key))
	return nil
}

// ForEach visits a snapshot of the bucket's keys in sorted order, so fn
// may write to the bucket.
func (b *memoryBucket) ForEach(fn func(k, v []byte) error) error {
	bkt := b.tx.backend.buckets[b.name]
	for _, k := range slices.Sorted(maps.Keys(bkt)) {
		if err := fn([]byte(k), bkt[k]); err != nil {
			return err
		}
	}
	return nil
}
