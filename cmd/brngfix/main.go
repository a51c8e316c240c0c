// Command brngfix draws a reference fixture from one bit generator and
// writes it as text files, optionally archiving it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"pkg.jsn.cam/brngfix/internal/logger"
	"pkg.jsn.cam/brngfix/pkg/archive"
	"pkg.jsn.cam/brngfix/pkg/fixture"
	"pkg.jsn.cam/brngfix/pkg/storage"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type config struct {
	algorithm  string
	variant    string
	seeds      []uint64
	iterations int
	outPrefix  string
	doubles    bool
	archive    string
	codec      archive.Codec
	progress   bool
	logLevel   string
	jsonLog    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "brngfix: %v\n", err)
		return exitUsage
	}
	if err := logger.Setup(cfg.logLevel, cfg.jsonLog); err != nil {
		fmt.Fprintf(stderr, "brngfix: %v\n", err)
		return exitUsage
	}

	if err := generate(ctx, cfg, stdout, stderr); err != nil {
		logger.Log().Debug().Err(err).Msg("fixture generation failed")
		fmt.Fprintf(stderr, "brngfix: %v\n", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("brngfix", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &config{}
	var seed, codec string
	fs.StringVar(&cfg.algorithm, "algorithm", "", "Generator algorithm name (see brngcheck list)")
	fs.StringVar(&cfg.variant, "variant", "", "Algorithm variant; empty selects the default")
	fs.StringVar(&seed, "seed", "", "Seed words, comma separated (decimal or 0x hex); empty uses the default seed")
	fs.IntVar(&cfg.iterations, "iterations", -1, "Number of raw outputs to draw")
	fs.StringVar(&cfg.outPrefix, "out-prefix", "", "Path prefix of the fixture files")
	fs.BoolVar(&cfg.doubles, "doubles", false, "Also write uniform doubles from a second run")
	fs.StringVar(&cfg.archive, "archive", "", "Also store the fixture in this bbolt archive")
	fs.StringVar(&codec, "codec", "snappy", "Archive compression: snappy, lz4 or none")
	fs.BoolVar(&cfg.progress, "progress", false, "Show a progress bar on stderr")
	fs.StringVar(&cfg.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	fs.BoolVar(&cfg.jsonLog, "json-log", false, "Log JSON lines instead of console output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if cfg.algorithm == "" {
		return nil, errors.New("--algorithm is required")
	}
	if cfg.iterations < 0 {
		return nil, errors.New("--iterations is required and must not be negative")
	}
	if cfg.outPrefix == "" {
		return nil, errors.New("--out-prefix is required")
	}

	var err error
	if cfg.seeds, err = parseSeeds(seed); err != nil {
		return nil, err
	}
	if cfg.codec, err = archive.ParseCodec(codec); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseSeeds parses a comma separated list of unsigned 64-bit words.
func parseSeeds(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var seeds []uint64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", part, err)
		}
		seeds = append(seeds, v)
	}
	return seeds, nil
}

func generate(ctx context.Context, cfg *config, stdout, stderr io.Writer) error {
	log := logger.Log()
	req := fixture.Request{
		Algorithm:  cfg.algorithm,
		Variant:    cfg.variant,
		Seeds:      cfg.seeds,
		Iterations: cfg.iterations,
		Doubles:    cfg.doubles,
		Logger:     log,
	}

	var bar *progressbar.ProgressBar
	if cfg.progress {
		total := int64(cfg.iterations)
		if cfg.doubles {
			total *= 2
		}
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("drawing "+cfg.algorithm),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		req.Progress = func(done, _ int) { bar.Set64(int64(done)) }
	}

	f, err := fixture.Run(ctx, req)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := fixture.Write(cfg.outPrefix, f); err != nil {
		return err
	}
	log.Info().Str("prefix", cfg.outPrefix).Str("id", f.ID.String()).Msg("fixture written")

	var entry *archive.Entry
	if cfg.archive != "" {
		e, err := archiveFixture(cfg, f)
		if err != nil {
			return err
		}
		entry = &e
	}

	printSummary(stdout, cfg, f, entry)
	return nil
}

func archiveFixture(cfg *config, f *fixture.Fixture) (archive.Entry, error) {
	backend, err := storage.Open(cfg.archive, storage.Options{Timeout: 5 * time.Second})
	if err != nil {
		return archive.Entry{}, err
	}
	a, err := archive.New(backend, archive.WithCodec(cfg.codec), archive.WithLogger(*logger.Log()))
	if err != nil {
		backend.Close()
		return archive.Entry{}, err
	}
	defer a.Close()
	return a.Put(f)
}

func printSummary(w io.Writer, cfg *config, f *fixture.Fixture, entry *archive.Entry) {
	name := f.Algorithm
	if f.Variant != "" {
		name += "/" + f.Variant
	}
	seeds := make([]string, len(f.Seeds))
	for i, s := range f.Seeds {
		seeds[i] = strconv.FormatUint(s, 10)
	}

	fmt.Fprintf(w, "Fixture written:\n")
	fmt.Fprintf(w, "  ID:          %s\n", f.ID)
	fmt.Fprintf(w, "  Algorithm:   %s\n", name)
	fmt.Fprintf(w, "  Seeds:       %s\n", strings.Join(seeds, ","))
	fmt.Fprintf(w, "  State words: %s\n", humanize.Comma(int64(len(f.State))))
	fmt.Fprintf(w, "  Outputs:     %s\n", humanize.Comma(int64(len(f.Outputs))))
	if len(f.Doubles) > 0 {
		fmt.Fprintf(w, "  Doubles:     %s\n", humanize.Comma(int64(len(f.Doubles))))
	}

	statePath, valsPath, doublesPath, manifestPath := fixture.Paths(cfg.outPrefix)
	fmt.Fprintf(w, "\nFiles:\n")
	for _, p := range []string{statePath, valsPath, doublesPath, manifestPath} {
		if fi, err := os.Stat(p); err == nil {
			fmt.Fprintf(w, "  %-50s %s\n", p, humanize.Bytes(uint64(fi.Size())))
		}
	}

	if entry != nil {
		fmt.Fprintf(w, "\nArchived in %s (%s, %s -> %s)\n",
			cfg.archive, entry.Codec,
			humanize.Bytes(uint64(entry.RawSize)), humanize.Bytes(uint64(entry.StoredSize)))
	}
}
