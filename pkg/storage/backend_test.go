package storage

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// backendTestSuite runs the shared behaviour checks against a Backend
// implementation.
func backendTestSuite(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("CreateBucket", func(t *testing.T) {
		backend := newBackend(t)

		if err := backend.CreateBucket([]byte("fixtures")); err != nil {
			t.Fatalf("CreateBucket failed: %v", err)
		}
		exists, err := backend.BucketExists([]byte("fixtures"))
		if err != nil {
			t.Fatalf("BucketExists failed: %v", err)
		}
		if !exists {
			t.Error("bucket should exist after creation")
		}

		// Idempotent
		if err := backend.CreateBucket([]byte("fixtures")); err != nil {
			t.Errorf("CreateBucket should be idempotent: %v", err)
		}
	})

	t.Run("DeleteBucket", func(t *testing.T) {
		backend := newBackend(t)

		backend.CreateBucket([]byte("fixtures"))
		if err := backend.DeleteBucket([]byte("fixtures")); err != nil {
			t.Fatalf("DeleteBucket failed: %v", err)
		}
		exists, _ := backend.BucketExists([]byte("fixtures"))
		if exists {
			t.Error("bucket should not exist after deletion")
		}

		// Idempotent
		if err := backend.DeleteBucket([]byte("fixtures")); err != nil {
			t.Errorf("DeleteBucket should be idempotent: %v", err)
		}
	})

	t.Run("PutAndGet", func(t *testing.T) {
		backend := newBackend(t)
		backend.CreateBucket([]byte("fixtures"))

		value := []byte{1, 2, 3, 0, 255}
		if err := backend.Put([]byte("fixtures"), []byte("mt19937"), value); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := backend.Get([]byte("fixtures"), []byte("mt19937"))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, value) {
			t.Errorf("Get returned %v, want %v", got, value)
		}

		// the stored value must not alias the caller's slice
		value[0] = 42
		got[1] = 42
		again, _ := backend.Get([]byte("fixtures"), []byte("mt19937"))
		if !bytes.Equal(again, []byte{1, 2, 3, 0, 255}) {
			t.Errorf("stored value changed to %v", again)
		}

		got, err = backend.Get([]byte("fixtures"), []byte("missing"))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != nil {
			t.Errorf("Get should return nil for a missing key, got %v", got)
		}
	})

	t.Run("MissingBucket", func(t *testing.T) {
		backend := newBackend(t)

		if err := backend.Put([]byte("nope"), []byte("k"), []byte("v")); !errors.Is(err, ErrBucketNotFound) {
			t.Errorf("Put: expected ErrBucketNotFound, got %v", err)
		}
		if _, err := backend.Get([]byte("nope"), []byte("k")); !errors.Is(err, ErrBucketNotFound) {
			t.Errorf("Get: expected ErrBucketNotFound, got %v", err)
		}
		if err := backend.Delete([]byte("nope"), []byte("k")); !errors.Is(err, ErrBucketNotFound) {
			t.Errorf("Delete: expected ErrBucketNotFound, got %v", err)
		}
		err := backend.ForEach([]byte("nope"), func(k, v []byte) error { return nil })
		if !errors.Is(err, ErrBucketNotFound) {
			t.Errorf("ForEach: expected ErrBucketNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		backend := newBackend(t)
		backend.CreateBucket([]byte("fixtures"))
		backend.Put([]byte("fixtures"), []byte("k"), []byte("v"))

		if err := backend.Delete([]byte("fixtures"), []byte("k")); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		got, _ := backend.Get([]byte("fixtures"), []byte("k"))
		if got != nil {
			t.Error("key should not exist after deletion")
		}
	})

	t.Run("ForEachOrdered", func(t *testing.T) {
		backend := newBackend(t)
		backend.CreateBucket([]byte("index"))

		for _, k := range []string{"sfc64", "arbee", "xoshiro256", "chacha", "mt19937"} {
			backend.Put([]byte("index"), []byte(k), []byte("v-"+k))
		}

		var keys []string
		err := backend.ForEach([]byte("index"), func(k, v []byte) error {
			if string(v) != "v-"+string(k) {
				t.Errorf("key %s has value %s", k, v)
			}
			keys = append(keys, string(k))
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach failed: %v", err)
		}
		want := []string{"arbee", "chacha", "mt19937", "sfc64", "xoshiro256"}
		if fmt.Sprint(keys) != fmt.Sprint(want) {
			t.Errorf("ForEach order = %v, want %v", keys, want)
		}
	})

	t.Run("Transactions", func(t *testing.T) {
		backend := newBackend(t)

		err := backend.Update(func(tx Transaction) error {
			if err := tx.CreateBucket([]byte("fixtures")); err != nil {
				return err
			}
			b := tx.Bucket([]byte("fixtures"))
			if b == nil {
				t.Fatal("bucket should not be nil")
			}
			return b.Put([]byte("k"), []byte("v"))
		})
		if err != nil {
			t.Fatalf("Update transaction failed: %v", err)
		}

		var got []byte
		err = backend.View(func(tx Transaction) error {
			b := tx.Bucket([]byte("fixtures"))
			if b == nil {
				t.Fatal("bucket should not be nil")
			}
			got = append([]byte{}, b.Get([]byte("k"))...)
			if tx.Bucket([]byte("missing")) != nil {
				t.Error("missing bucket should be nil")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View transaction failed: %v", err)
		}
		if !bytes.Equal(got, []byte("v")) {
			t.Errorf("got %s, want v", got)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		backend := newBackend(t)
		backend.CreateBucket([]byte("fixtures"))
		backend.Put([]byte("fixtures"), []byte("keep"), []byte("1"))

		boom := errors.New("boom")
		err := backend.Update(func(tx Transaction) error {
			b := tx.Bucket([]byte("fixtures"))
			b.Put([]byte("keep"), []byte("2"))
			b.Put([]byte("new"), []byte("3"))
			tx.CreateBucket([]byte("index"))
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Update returned %v, want boom", err)
		}

		got, _ := backend.Get([]byte("fixtures"), []byte("keep"))
		if string(got) != "1" {
			t.Errorf("keep = %s after rollback, want 1", got)
		}
		got, _ = backend.Get([]byte("fixtures"), []byte("new"))
		if got != nil {
			t.Errorf("new = %s after rollback, want nil", got)
		}
		if exists, _ := backend.BucketExists([]byte("index")); exists {
			t.Error("bucket created in a failed transaction should not exist")
		}
	})

	t.Run("ViewIsReadOnly", func(t *testing.T) {
		backend := newBackend(t)
		backend.CreateBucket([]byte("fixtures"))

		err := backend.View(func(tx Transaction) error {
			return tx.Bucket([]byte("fixtures")).Put([]byte("k"), []byte("v"))
		})
		if !errors.Is(err, ErrReadOnly) {
			t.Errorf("expected ErrReadOnly, got %v", err)
		}
	})

	t.Run("ForEachBucket", func(t *testing.T) {
		backend := newBackend(t)

		buckets := []string{"index", "fixtures", "meta"}
		for _, name := range buckets {
			backend.CreateBucket([]byte(name))
		}

		var collected []string
		err := backend.View(func(tx Transaction) error {
			return tx.ForEachBucket(func(name []byte) error {
				collected = append(collected, string(name))
				return nil
			})
		})
		if err != nil {
			t.Fatalf("ForEachBucket failed: %v", err)
		}
		if fmt.Sprint(collected) != "[fixtures index meta]" {
			t.Errorf("ForEachBucket = %v, want sorted bucket names", collected)
		}
	})
}
