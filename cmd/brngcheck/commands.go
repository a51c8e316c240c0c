package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"pkg.jsn.cam/brngfix/internal/logger"
	"pkg.jsn.cam/brngfix/pkg/archive"
	"pkg.jsn.cam/brngfix/pkg/brng"
	"pkg.jsn.cam/brngfix/pkg/conformance"
	"pkg.jsn.cam/brngfix/pkg/fixture"
	"pkg.jsn.cam/brngfix/pkg/storage"
)

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// parseFlags parses args into fs and sets up logging from the shared
// --log-level and --json-log flags.
func parseFlags(fs *flag.FlagSet, args []string, stderr io.Writer) error {
	fs.SetOutput(stderr)
	level := fs.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	jsonLog := fs.Bool("json-log", false, "Log JSON lines instead of console output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usagef("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if err := logger.Setup(*level, *jsonLog); err != nil {
		return usageError{msg: err.Error()}
	}
	return nil
}

func verifyCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	prefix := fs.String("prefix", "", "Fixture prefix written by brngfix")
	fromState := fs.Bool("from-state", false, "Decode the state file instead of re-seeding")
	statePath := fs.String("state", "", "State file of a fixture without manifest")
	valsPath := fs.String("vals", "", "Values file of a fixture without manifest")
	algorithm := fs.String("algorithm", "", "Algorithm of a fixture without manifest")
	variant := fs.String("variant", "", "Variant of a fixture without manifest")
	if err := parseFlags(fs, args, stderr); err != nil {
		return helpOK(err)
	}

	var (
		f    *fixture.Fixture
		err  error
		bare bool
	)
	switch {
	case *prefix != "":
		f, err = fixture.Read(*prefix)
	case *statePath != "" && *valsPath != "" && *algorithm != "":
		bare = true
		f, err = fixture.ReadBare(*statePath, *valsPath, *algorithm, *variant)
	default:
		return usagef("either --prefix or --state, --vals and --algorithm are required")
	}
	if err != nil {
		return err
	}

	log := logger.Log()
	log.Debug().Str("algorithm", f.Algorithm).Int("outputs", len(f.Outputs)).Bool("from_state", *fromState || bare).Msg("verifying fixture")

	start := time.Now()
	var r conformance.Result
	if *fromState || bare {
		r, err = conformance.VerifyFromState(f)
	} else {
		r, err = conformance.Verify(f)
	}
	if err != nil {
		return err
	}
	log.Debug().Dur("took", time.Since(start)).Str("result", r.Status.String()).Msg("verification done")

	name := f.Algorithm
	if f.Variant != "" {
		name += "/" + f.Variant
	}
	if !r.Passed() {
		return errMismatch{msg: fmt.Sprintf("%s: %s", name, r)}
	}
	fmt.Fprintf(stdout, "PASS %s: %s outputs", name, humanize.Comma(int64(len(f.Outputs))))
	if len(f.Doubles) > 0 && !*fromState {
		fmt.Fprintf(stdout, ", %s doubles", humanize.Comma(int64(len(f.Doubles))))
	}
	fmt.Fprintln(stdout)
	return nil
}

func listCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fields := fs.Bool("fields", false, "Print the state layout of every algorithm")
	if err := parseFlags(fs, args, stderr); err != nil {
		return helpOK(err)
	}

	fmt.Fprintf(stdout, "%-14s %-10s %-5s %-7s %-7s %s\n", "ALGORITHM", "VARIANT", "BITS", "SEEDS", "STATE", "DEFAULT SEED")
	fmt.Fprintln(stdout, "─────────────────────────────────────────────────────────────────────────────")
	for _, d := range brng.Descriptors() {
		variant := d.Variant
		if variant == "" {
			variant = "-"
		}
		fmt.Fprintf(stdout, "%-14s %-10s %-5d %-7s %-7d %s\n",
			d.Name, variant, d.WordSize,
			fmt.Sprintf("%d-%d", d.MinSeeds, d.MaxSeeds),
			d.StateLen(), formatSeeds(d.DefaultSeeds))

		if *fields {
			for _, f := range d.Fields {
				fmt.Fprintf(stdout, "    %-20s %-7s x%d\n", f.Name, f.Kind, f.Len)
			}
		}
	}
	return nil
}

func archiveCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	db := fs.String("db", "", "Archive database file")
	idFlag := fs.String("id", "", "Show the fixture with this ID")
	verify := fs.Bool("verify", false, "Verify the fixture selected with --id")
	export := fs.String("export", "", "Write the fixture selected with --id as text files under this prefix")
	del := fs.Bool("delete", false, "Delete the fixture selected with --id")
	if err := parseFlags(fs, args, stderr); err != nil {
		return helpOK(err)
	}
	if *db == "" {
		return usagef("--db is required")
	}
	if *idFlag == "" && (*verify || *export != "" || *del) {
		return usagef("--verify, --export and --delete need --id")
	}

	backend, err := storage.Open(*db, storage.Options{ReadOnly: !*del, Timeout: 5 * time.Second})
	if err != nil {
		return err
	}
	a, err := archive.New(backend, archive.WithLogger(*logger.Log()))
	if err != nil {
		backend.Close()
		return err
	}
	defer a.Close()

	if *idFlag == "" {
		return listArchive(a, stdout)
	}

	id, err := uuid.Parse(*idFlag)
	if err != nil {
		return usagef("invalid --id %q: %v", *idFlag, err)
	}
	if *del {
		if err := a.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Fixture deleted: %s\n", id)
		return nil
	}

	f, err := a.Get(id)
	if err != nil {
		return err
	}
	printFixture(stdout, f)

	if *export != "" {
		if err := fixture.Write(*export, f); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nExported to %s*\n", *export)
	}
	if *verify {
		r, err := conformance.Verify(f)
		if err != nil {
			return err
		}
		if !r.Passed() {
			return errMismatch{msg: fmt.Sprintf("%s: %s", id, r)}
		}
		fmt.Fprintf(stdout, "\nVerification: PASS\n")
	}
	return nil
}

func listArchive(a *archive.Archive, w io.Writer) error {
	entries, err := a.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No fixtures archived")
		return nil
	}

	var raw, stored int
	fmt.Fprintf(w, "%-36s %-24s %12s %-7s %10s %s\n", "FIXTURE ID", "ALGORITHM", "OUTPUTS", "CODEC", "SIZE", "CREATED")
	fmt.Fprintln(w, "──────────────────────────────────────────────────────────────────────────────────────────────────────────")
	for _, e := range entries {
		name := e.Algorithm
		if e.Variant != "" {
			name += "/" + e.Variant
		}
		fmt.Fprintf(w, "%-36s %-24s %12s %-7s %10s %s\n",
			e.ID, name, humanize.Comma(int64(e.Iterations)), e.Codec,
			humanize.Bytes(uint64(e.StoredSize)), humanize.Time(e.CreatedAt))
		raw += e.RawSize
		stored += e.StoredSize
	}
	fmt.Fprintf(w, "\n%d fixtures, %s stored (%s uncompressed)\n",
		len(entries), humanize.Bytes(uint64(stored)), humanize.Bytes(uint64(raw)))
	return nil
}

func printFixture(w io.Writer, f *fixture.Fixture) {
	name := f.Algorithm
	if f.Variant != "" {
		name += "/" + f.Variant
	}
	fmt.Fprintf(w, "Fixture Details:\n")
	fmt.Fprintf(w, "  ID:          %s\n", f.ID)
	fmt.Fprintf(w, "  Algorithm:   %s\n", name)
	fmt.Fprintf(w, "  Seeds:       %s\n", formatSeeds(f.Seeds))
	fmt.Fprintf(w, "  Version:     %s\n", f.Version)
	fmt.Fprintf(w, "  Created:     %s (%s)\n", f.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(f.CreatedAt))
	fmt.Fprintf(w, "  State words: %d\n", len(f.State))
	fmt.Fprintf(w, "  Outputs:     %s\n", humanize.Comma(int64(len(f.Outputs))))
	if len(f.Doubles) > 0 {
		fmt.Fprintf(w, "  Doubles:     %s\n", humanize.Comma(int64(len(f.Doubles))))
	}
	if n := min(len(f.Outputs), 5); n > 0 {
		fmt.Fprintf(w, "\nFirst outputs:\n")
		for i, v := range f.Outputs[:n] {
			fmt.Fprintf(w, "  [%d] %d\n", i, v)
		}
	}
}

func formatSeeds(seeds []uint64) string {
	parts := make([]string, len(seeds))
	for i, s := range seeds {
		parts[i] = fmt.Sprintf("%#x", s)
	}
	return strings.Join(parts, ",")
}

// helpOK turns a -h request into a successful exit.
func helpOK(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}
