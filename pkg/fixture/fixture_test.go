package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pkg.jsn.cam/brngfix/pkg/brng"
)

func TestRunDeterministic(t *testing.T) {
	for _, d := range brng.Descriptors() {
		t.Run(d.String(), func(t *testing.T) {
			req := Request{Algorithm: d.Name, Variant: d.Variant, Iterations: 300, Doubles: true}
			a, err := Run(context.Background(), req)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			b, err := Run(context.Background(), req)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if !reflect.DeepEqual(a.State, b.State) {
				t.Error("initial state differs between runs")
			}
			if !reflect.DeepEqual(a.Outputs, b.Outputs) {
				t.Error("outputs differ between runs")
			}
			if !reflect.DeepEqual(a.Doubles, b.Doubles) {
				t.Error("doubles differ between runs")
			}
			if a.ID == b.ID {
				t.Error("runs should get distinct IDs")
			}
		})
	}
}

func TestRunMatchesGenerator(t *testing.T) {
	f, err := Run(context.Background(), Request{Algorithm: "mt19937", Seeds: []uint64{5489}, Iterations: 10, Doubles: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if f.Outputs[0] != 3499211612 {
		t.Errorf("first output = %d, want 3499211612", f.Outputs[0])
	}
	if len(f.State) != 625 {
		t.Errorf("state has %d words, want 625", len(f.State))
	}
	if f.Version != FormatVersion {
		t.Errorf("version = %s, want %s", f.Version, FormatVersion)
	}

	g, err := brng.New("mt19937", "", 5489)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i, want := range f.Doubles {
		if got := brng.Float64(g); got != want {
			t.Fatalf("double %d = %v, want %v", i, got, want)
		}
	}
}

func TestRunDefaults(t *testing.T) {
	f, err := Run(context.Background(), Request{Algorithm: "Romu", Iterations: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if f.Algorithm != "romu" || f.Variant != "quad" {
		t.Errorf("got %s/%s, want romu/quad", f.Algorithm, f.Variant)
	}
	if len(f.Seeds) != 1 || f.Seeds[0] != 0x9f57c403d06c42fc {
		t.Errorf("seeds = %v, want the default seed", f.Seeds)
	}
	if f.Doubles != nil {
		t.Error("doubles recorded without being requested")
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		check func(error) bool
	}{
		{"unknown algorithm", Request{Algorithm: "Unknown", Iterations: 1}, brng.UnknownAlgorithm.Has},
		{"unknown variant", Request{Algorithm: "sfc64", Variant: "z", Iterations: 1}, brng.UnknownAlgorithm.Has},
		{"seed arity", Request{Algorithm: "mt19937", Seeds: []uint64{1, 2}, Iterations: 1}, brng.InvalidSeed.Has},
		{"seed range", Request{Algorithm: "mt19937", Seeds: []uint64{1 << 32}, Iterations: 1}, brng.InvalidSeed.Has},
		{"negative iterations", Request{Algorithm: "mt19937", Iterations: -1}, func(err error) bool {
			return errors.Is(err, ErrInvalidIterations)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Run(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
			if f != nil {
				t.Error("expected no fixture on error")
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Request{Algorithm: "splitmix64", Iterations: 3 * checkEvery})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunProgress(t *testing.T) {
	var calls []int
	_, err := Run(context.Background(), Request{
		Algorithm:  "hc128",
		Iterations: 2*checkEvery + 5,
		Doubles:    true,
		Progress:   func(done, total int) { calls = append(calls, done) },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	total := 2 * (2*checkEvery + 5)
	if len(calls) == 0 || calls[len(calls)-1] != total {
		t.Fatalf("progress calls = %v, want last call at %d", calls, total)
	}
	for i := 1; i < len(calls); i++ {
		if calls[i] <= calls[i-1] {
			t.Fatalf("progress went backwards: %v", calls)
		}
	}
}

func TestWriteRead(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "efiix")
	f, err := Run(context.Background(), Request{Algorithm: "efiix64", Seeds: []uint64{1234}, Iterations: 100, Doubles: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := Write(prefix, f); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(prefix)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.ID != f.ID || got.Algorithm != f.Algorithm || !reflect.DeepEqual(got.Seeds, f.Seeds) {
		t.Errorf("header mismatch: got %+v", got)
	}
	if !reflect.DeepEqual(got.State, f.State) {
		t.Error("state mismatch after read")
	}
	if !reflect.DeepEqual(got.Outputs, f.Outputs) {
		t.Error("outputs mismatch after read")
	}
	if !reflect.DeepEqual(got.Doubles, f.Doubles) {
		t.Error("doubles mismatch after read")
	}
	if !got.CreatedAt.Equal(f.CreatedAt) {
		t.Errorf("created at = %v, want %v", got.CreatedAt, f.CreatedAt)
	}
}

func TestWriteWithoutDoubles(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "sfc")
	f, err := Run(context.Background(), Request{Algorithm: "sfc64", Iterations: 20})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := Write(prefix, f); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, _, doublesPath, _ := Paths(prefix)
	if _, err := os.Stat(doublesPath); !os.IsNotExist(err) {
		t.Errorf("doubles file should not exist: %v", err)
	}
	if _, err := Read(prefix); err != nil {
		t.Errorf("Read failed: %v", err)
	}
}

func TestReadDetectsTampering(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "mt")
	f, err := Run(context.Background(), Request{Algorithm: "mt19937", Iterations: 10})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := Write(prefix, f); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, valsPath, _, _ := Paths(prefix)
	fh, err := os.OpenFile(valsPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	fh.WriteString("1\n")
	fh.Close()

	if _, err := Read(prefix); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("expected ErrDigestMismatch, got %v", err)
	}
}

func TestReadRejectsVersion(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "mt")
	f, err := Run(context.Background(), Request{Algorithm: "mt19937", Iterations: 10})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := Write(prefix, f); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, _, _, manifestPath := Paths(prefix)
	m, err := ReadManifest(manifestPath)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	for _, v := range []string{"v2.0.0", "1.0"} {
		m.Version = v
		data, _ := json.Marshal(m)
		if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		_, err := Read(prefix)
		if err == nil {
			t.Fatalf("version %s: expected an error", v)
		}
		if v == "v2.0.0" && !errors.Is(err, ErrIncompatibleVersion) {
			t.Errorf("expected ErrIncompatibleVersion, got %v", err)
		}
		if v == "1.0" && !errors.Is(err, ErrInvalidManifest) {
			t.Errorf("expected ErrInvalidManifest, got %v", err)
		}
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nothing"))
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestReadBare(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.txt")
	valsPath := filepath.Join(dir, "vals.txt")

	if err := os.WriteFile(statePath, []byte("1\n2\n3\n4\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(valsPath, []byte("41943041\n58720359\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := ReadBare(statePath, valsPath, "xoshiro256", "plusplus")
	if err != nil {
		t.Fatalf("ReadBare failed: %v", err)
	}
	if !reflect.DeepEqual(f.State, []uint64{1, 2, 3, 4}) {
		t.Errorf("state = %v", f.State)
	}
	if len(f.Outputs) != 2 || f.Seeds != nil {
		t.Errorf("unexpected fixture %+v", f)
	}

	if err := os.WriteFile(valsPath, []byte("12\nnope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBare(statePath, valsPath, "xoshiro256", "plusplus"); !errors.Is(err, ErrMalformedFile) {
		t.Errorf("expected ErrMalformedFile, got %v", err)
	}

	if _, err := ReadBare(statePath, valsPath, "Unknown", ""); !brng.UnknownAlgorithm.Has(err) {
		t.Errorf("expected UnknownAlgorithm, got %v", err)
	}
}

func TestIsCompatibleVersion(t *testing.T) {
	tests := []struct {
		version string
		want    bool
		wantErr bool
	}{
		{"v1.0.0", true, false},
		{"v1.3.7", true, false},
		{"v0.9.0", false, false},
		{"v2.0.0", false, false},
		{"garbage", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := IsCompatibleVersion(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsCompatibleVersion(%s) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}
