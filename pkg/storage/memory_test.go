package storage

import "testing"

func TestMemoryBackend(t *testing.T) {
	backendTestSuite(t, func(t *testing.T) Backend {
		return NewMemoryBackend()
	})
}

func TestOpenMemory(t *testing.T) {
	b, err := Open(MemoryPath, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := b.(*MemoryBackend); !ok {
		t.Errorf("Open(%q) returned %T", MemoryPath, b)
	}
}
