package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/weiihann/matbench/matrix"
	"github.com/weiihann/matbench/sampler"
	"github.com/weiihann/matbench/workload"
)

var (
	// ErrIO is returned when the results file cannot be created or written.
	ErrIO = errors.New("harness: results file i/o failed")

	// ErrConfig is returned for an unusable Config.
	ErrConfig = errors.New("harness: invalid config")
)

// DefaultSizes are the matrix dimensions benchmarked when none are given.
func DefaultSizes() []int {
	return []int{128, 256, 512, 1024}
}

// DefaultRuns is the number of repetitions per size.
const DefaultRuns = 5

// DefaultOutputDir is where results land when no directory is given.
const DefaultOutputDir = "data/"

// Config holds the parameters of one benchmark run.
type Config struct {
	Sizes     []int
	Runs      int
	OutputDir string
	CSVName   string
	// Verify cross-checks the first product of each size against an
	// independent implementation, outside the timed section.
	Verify bool
}

// Validate reports whether the config can drive a run.
func (c Config) Validate() error {
	if len(c.Sizes) == 0 {
		return fmt.Errorf("no matrix sizes: %w", ErrConfig)
	}

	for _, n := range c.Sizes {
		if n < 0 {
			return fmt.Errorf("negative matrix size %d: %w", n, ErrConfig)
		}
	}

	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d: %w", c.Runs, ErrConfig)
	}

	return nil
}

// CSVPath returns the results file location.
func (c Config) CSVPath() string {
	name := c.CSVName
	if name == "" {
		name = DefaultCSVName
	}

	dir := c.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}

	return filepath.Join(dir, name)
}

// Runner executes the benchmark described by a Config.
type Runner struct {
	Config    Config
	Allocator *matrix.Allocator
	Generator *workload.Generator
	Sampler   sampler.Sampler
	// Out receives human-readable progress lines.
	Out    io.Writer
	Logger *slog.Logger
}

// NewRunner creates a Runner. The generator and sampler are owned by the
// runner for the duration of Run.
func NewRunner(
	cfg Config,
	alloc *matrix.Allocator,
	gen *workload.Generator,
	smp sampler.Sampler,
	out io.Writer,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Config:    cfg,
		Allocator: alloc,
		Generator: gen,
		Sampler:   smp,
		Out:       out,
		Logger:    logger,
	}
}

// Run benchmarks every configured size and returns the per-size averages.
// Any allocation or file error aborts the whole run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	csvPath := cfg.CSVPath()

	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %v: %w", err, ErrIO)
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", csvPath, err, ErrIO)
	}
	defer f.Close()

	sink, err := newCSVWriter(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrIO)
	}

	r.Logger.InfoContext(ctx, "results file opened",
		slog.String("path", csvPath),
		slog.Int64("seed", r.Generator.Seed()),
	)

	summary := &Summary{
		CSVPath: csvPath,
		Seed:    r.Generator.Seed(),
		Sizes:   make([]SizeSummary, 0, len(cfg.Sizes)),
	}

	for _, n := range cfg.Sizes {
		fmt.Fprintf(r.Out, "\nRunning benchmarks for matrix size %dx%d...\n", n, n)

		samples := make([]Sample, 0, cfg.Runs)

		for run := 1; run <= cfg.Runs; run++ {
			s, err := r.runOnce(n, run, cfg.Verify && run == 1)
			if err != nil {
				// Keep the rows that were completed before the abort.
				if flushErr := sink.flush(); flushErr != nil {
					r.Logger.WarnContext(ctx, "flush after abort failed",
						slog.String("error", flushErr.Error()))
				}

				return nil, fmt.Errorf("size %d run %d: %w", n, run, err)
			}

			if err := sink.write(s); err != nil {
				return nil, fmt.Errorf("%v: %w", err, ErrIO)
			}

			fmt.Fprintf(r.Out, "  Run %d/%d: %.5fs, %.5fMB\n",
				run, cfg.Runs, s.Seconds, s.MemoryMB)

			r.Logger.DebugContext(ctx, "run complete",
				slog.Int("size", n),
				slog.Int("run", run),
				slog.Float64("seconds", s.Seconds),
				slog.Float64("memory_mb", s.MemoryMB),
			)

			samples = append(samples, s)
		}

		summary.Sizes = append(summary.Sizes, Summarize(samples)...)
	}

	if err := sink.flush(); err != nil {
		return nil, fmt.Errorf("flush %s: %v: %w", csvPath, err, ErrIO)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %v: %w", csvPath, err, ErrIO)
	}

	r.Logger.InfoContext(ctx, "benchmark finished",
		slog.String("path", csvPath),
		slog.Int("sizes", len(cfg.Sizes)),
		slog.Int("runs", cfg.Runs),
	)

	return summary, nil
}

// runOnce performs one allocate, generate, multiply, free cycle.
func (r *Runner) runOnce(n, run int, verify bool) (Sample, error) {
	a, err := r.Allocator.Allocate(n)
	if err != nil {
		return Sample{}, fmt.Errorf("allocate A: %w", err)
	}
	defer r.Allocator.Free(a)

	b, err := r.Allocator.Allocate(n)
	if err != nil {
		return Sample{}, fmt.Errorf("allocate B: %w", err)
	}
	defer r.Allocator.Free(b)

	c, err := r.Allocator.Allocate(n)
	if err != nil {
		return Sample{}, fmt.Errorf("allocate C: %w", err)
	}
	defer r.Allocator.Free(c)

	if err := r.Generator.Generate(a, b); err != nil {
		return Sample{}, fmt.Errorf("generate: %w", err)
	}

	memBefore := r.Sampler.ResidentMemoryMB()
	start := r.Sampler.WallTime()

	if err := matrix.Multiply(a, b, c); err != nil {
		return Sample{}, fmt.Errorf("multiply: %w", err)
	}

	end := r.Sampler.WallTime()
	memAfter := r.Sampler.ResidentMemoryMB()

	if verify {
		if err := verifyProduct(a, b, c); err != nil {
			return Sample{}, err
		}
	}

	return Sample{
		Size:     n,
		Run:      run,
		Seconds:  max(end-start, 0),
		MemoryMB: max(memBefore, memAfter, 0),
	}, nil
}
