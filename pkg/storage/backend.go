// Package storage provides the key/value backends the fixture archive is
// stored in. Keys and values are raw bytes grouped into named buckets.
package storage

import (
	"errors"
	"time"
)

var (
	// ErrBucketNotFound is returned by operations on a missing bucket.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrReadOnly is returned when writing inside a View transaction or to
	// a backend opened read-only.
	ErrReadOnly = errors.New("storage is read-only")
)

// MemoryPath selects the in-memory backend in Open.
const MemoryPath = ":memory:"

// Backend is a bucketed key/value store. Get returns nil, nil for a
// missing key. ForEach visits keys in ascending byte order.
type Backend interface {
	CreateBucket(name []byte) error
	DeleteBucket(name []byte) error
	BucketExists(name []byte) (bool, error)

	Put(bucket, key, value []byte) error
	Get(bucket, key []byte) ([]byte, error)
	Delete(bucket, key []byte) error
	ForEach(bucket []byte, fn func(k, v []byte) error) error

	// Update runs fn in a read-write transaction. If fn returns an error
	// none of its writes are kept.
	Update(fn func(tx Transaction) error) error
	// View runs fn in a read-only transaction.
	View(fn func(tx Transaction) error) error

	Close() error
}

// Transaction is the view of a backend inside Update or View.
type Transaction interface {
	CreateBucket(name []byte) error
	DeleteBucket(name []byte) error
	// Bucket returns nil if the bucket does not exist.
	Bucket(name []byte) Bucket
	ForEachBucket(fn func(name []byte) error) error
}

// Bucket is a single bucket inside a transaction. Values returned by Get
// and passed to ForEach are only valid until the transaction ends.
type Bucket interface {
	Put(key, value []byte) error
	Get(key []byte) []byte
	Delete(key []byte) error
	ForEach(fn func(k, v []byte) error) error
}

// Options configures Open.
type Options struct {
	// ReadOnly opens the database without write access.
	ReadOnly bool
	// Timeout bounds the wait for the database file lock. Zero waits
	// forever.
	Timeout time.Duration
}

// Open returns a backend for path: the memory backend for MemoryPath,
// otherwise a bbolt database file.
func Open(path string, opts Options) (Backend, error) {
	if path == MemoryPath {
		return NewMemoryBackend(), nil
	}
	return NewBboltBackend(path, opts)
}
