package archive

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"pkg.jsn.cam/brngfix/pkg/conformance"
	"pkg.jsn.cam/brngfix/pkg/fixture"
	"pkg.jsn.cam/brngfix/pkg/storage"
)

func backends(t *testing.T) map[string]func(t *testing.T) storage.Backend {
	return map[string]func(t *testing.T) storage.Backend{
		"memory": func(t *testing.T) storage.Backend { return storage.NewMemoryBackend() },
		"bbolt": func(t *testing.T) storage.Backend {
			b, err := storage.NewBboltBackend(filepath.Join(t.TempDir(), "archive.db"), storage.Options{})
			if err != nil {
				t.Fatalf("failed to open bbolt: %v", err)
			}
			return b
		},
	}
}

func runFixture(t *testing.T, alg string, n int) *fixture.Fixture {
	t.Helper()
	f, err := fixture.Run(context.Background(), fixture.Request{Algorithm: alg, Iterations: n, Doubles: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return f
}

func TestCodecRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":      {},
		"short":      []byte("x"),
		"repetitive": bytes.Repeat([]byte("3499211612\n"), 500),
	}
	for _, c := range []Codec{CodecNone, CodecSnappy, CodecLZ4} {
		for name, raw := range inputs {
			t.Run(c.String()+"/"+name, func(t *testing.T) {
				rec, used, err := encodeRecord(c, raw)
				if err != nil {
					t.Fatalf("encode failed: %v", err)
				}
				if Codec(rec[0]) != used {
					t.Errorf("record header %d, codec %s", rec[0], used)
				}
				got, err := decodeRecord(rec)
				if err != nil {
					t.Fatalf("decode failed: %v", err)
				}
				if !bytes.Equal(got, raw) {
					t.Errorf("round trip changed %d bytes into %d", len(raw), len(got))
				}
			})
		}
	}
}

func TestCodecCompresses(t *testing.T) {
	raw := bytes.Repeat([]byte("14514284786278117030\n"), 200)
	for _, c := range []Codec{CodecSnappy, CodecLZ4} {
		rec, used, err := encodeRecord(c, raw)
		if err != nil {
			t.Fatalf("%s: encode failed: %v", c, err)
		}
		if used != c || len(rec) >= len(raw) {
			t.Errorf("%s: stored %d bytes with %s for %d raw", c, len(rec), used, len(raw))
		}
	}
}

func TestDecodeCorrupt(t *testing.T) {
	rec, _, err := encodeRecord(CodecSnappy, bytes.Repeat([]byte("abc"), 100))
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string][]byte{
		"short":     {byte(CodecSnappy)},
		"truncated": rec[:len(rec)/2],
		"length":    append([]byte{byte(CodecNone), 9}, "abc"...),
	}
	for name, bad := range tests {
		if _, err := decodeRecord(bad); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}

	if _, err := decodeRecord([]byte{7, 0}); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestDecodeRejectsOversizedLength(t *testing.T) {
	huge := binary.AppendUvarint(nil, 1<<40)
	snappyRec, _, err := encodeRecord(CodecSnappy, bytes.Repeat([]byte("abc"), 100))
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string][]byte{
		"lz4":             append(append([]byte{byte(CodecLZ4)}, huge...), 0x10, 'a'),
		"snappy":          append(append([]byte{byte(CodecSnappy)}, huge...), snappyRec[3:]...),
		"snappy-mismatch": append([]byte{byte(CodecSnappy), 10}, snappyRec[3:]...),
	}
	for name, bad := range tests {
		if _, err := decodeRecord(bad); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestParseCodec(t *testing.T) {
	for s, want := range map[string]Codec{"none": CodecNone, "Snappy": CodecSnappy, "lz4": CodecLZ4} {
		got, err := ParseCodec(s)
		if err != nil || got != want {
			t.Errorf("ParseCodec(%q) = %s, %v", s, got, err)
		}
	}
	if _, err := ParseCodec("zstd"); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestArchive(t *testing.T) {
	for name, open := range backends(t) {
		for _, codec := range []Codec{CodecNone, CodecSnappy, CodecLZ4} {
			t.Run(name+"/"+codec.String(), func(t *testing.T) {
				a, err := New(open(t), WithCodec(codec))
				if err != nil {
					t.Fatalf("New failed: %v", err)
				}
				defer a.Close()

				f1 := runFixture(t, "mt19937", 700)
				f2 := runFixture(t, "efiix64", 50)
				f2.CreatedAt = f1.CreatedAt.Add(time.Second)

				e, err := a.Put(f1)
				if err != nil {
					t.Fatalf("Put failed: %v", err)
				}
				if e.ID != f1.ID || e.Iterations != 700 || !e.Doubles {
					t.Errorf("unexpected entry %+v", e)
				}
				if _, err := a.Put(f2); err != nil {
					t.Fatalf("Put failed: %v", err)
				}

				got, err := a.Get(f1.ID)
				if err != nil {
					t.Fatalf("Get failed: %v", err)
				}
				if !reflect.DeepEqual(got.State, f1.State) || !reflect.DeepEqual(got.Outputs, f1.Outputs) ||
					!reflect.DeepEqual(got.Doubles, f1.Doubles) {
					t.Error("archived fixture differs from the original")
				}

				r, err := conformance.Verify(got)
				if err != nil {
					t.Fatalf("Verify failed: %v", err)
				}
				if !r.Passed() {
					t.Errorf("archived fixture does not verify: %s", r)
				}

				entries, err := a.List()
				if err != nil {
					t.Fatalf("List failed: %v", err)
				}
				if len(entries) != 2 || entries[0].ID != f1.ID || entries[1].ID != f2.ID {
					t.Errorf("List = %+v", entries)
				}

				if err := a.Delete(f1.ID); err != nil {
					t.Fatalf("Delete failed: %v", err)
				}
				if _, err := a.Get(f1.ID); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
				if err := a.Delete(f1.ID); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
				entries, _ = a.List()
				if len(entries) != 1 {
					t.Errorf("List after delete has %d entries", len(entries))
				}
			})
		}
	}
}

func TestArchiveDetectsCorruption(t *testing.T) {
	backend := storage.NewMemoryBackend()
	a, err := New(backend)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f := runFixture(t, "sfc64", 100)
	if _, err := a.Put(f); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, _, err := encodeRecord(CodecNone, []byte(`{"algorithm":"sfc64"}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Put(fixturesBucket, f.ID[:], rec); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Get(f.ID); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestArchiveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	open := func() *Archive {
		b, err := storage.Open(path, storage.Options{})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		a, err := New(b, WithCodec(CodecLZ4))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return a
	}

	a := open()
	f := runFixture(t, "philox4x64", 300)
	if _, err := a.Put(f); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	a.Close()

	a = open()
	defer a.Close()
	got, err := a.Get(f.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.ID != f.ID || !reflect.DeepEqual(got.Outputs, f.Outputs) {
		t.Error("fixture changed across reopen")
	}
	if _, err := a.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
