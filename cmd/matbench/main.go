// Package main provides the CLI entry point for matbench, a naive dense
// matrix multiplication benchmark.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/weiihann/matbench/harness"
	"github.com/weiihann/matbench/matrix"
	"github.com/weiihann/matbench/report"
	"github.com/weiihann/matbench/sampler"
	"github.com/weiihann/matbench/workload"
)

const bannerRule = "=================================================="

func main() {
	var level slog.LevelVar

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: &level,
	}))

	root := newRootCmd(logger, &level, os.Stdout)
	if err := root.Execute(); err != nil {
		logger.Error("matbench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar, stdout io.Writer) *cobra.Command {
	var (
		sizes        []int
		runs         int
		seed         int64
		csvName      string
		memorySource string
		budgetMB     uint64
		verify       bool
		outputJSON   bool
		logLevel     string
	)

	root := &cobra.Command{
		Use:   "matbench [output_dir]",
		Short: "Naive dense matrix multiplication benchmark",
		Long: `Matbench multiplies pseudo-random square matrices of increasing size
with the textbook O(n^3) algorithm, recording wall-clock time and resident
memory of every run to <output_dir>/c_benchmark_results.csv (default data/).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("parse --log-level: %w", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir := harness.DefaultOutputDir
			if len(args) == 1 {
				outputDir = args[0]
			}

			src, err := sampler.ParseSource(memorySource)
			if err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, stdout, runConfig{
				sizes:        sizes,
				runs:         runs,
				seed:         seed,
				outputDir:    outputDir,
				csvName:      csvName,
				memorySource: src,
				budgetMB:     budgetMB,
				verify:       verify,
				outputJSON:   outputJSON,
			})
		},
	}

	pflags := root.PersistentFlags()
	pflags.StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	flags := root.Flags()
	flags.IntSliceVar(&sizes, "sizes", harness.DefaultSizes(),
		"Matrix sizes to benchmark, in order")
	flags.IntVar(&runs, "runs", harness.DefaultRuns,
		"Repetitions per matrix size")
	flags.Int64Var(&seed, "seed", 0,
		"Random seed (0 = use current time)")
	flags.StringVar(&csvName, "csv-name", harness.DefaultCSVName,
		"Results file name inside the output directory")
	flags.StringVar(&memorySource, "memory", string(sampler.SourceRSS),
		"Memory metric: rss (current resident set) or peak (max resident set)")
	flags.Uint64Var(&budgetMB, "memory-budget-mb", 0,
		"Cap on live matrix storage in MB (0 = available system memory)")
	flags.BoolVar(&verify, "verify", false,
		"Check the first product of each size against gonum")
	flags.BoolVar(&outputJSON, "json", false,
		"Print averages as JSON instead of a table")

	root.AddCommand(newCompareCmd(logger, stdout))

	return root
}

func newCompareCmd(logger *slog.Logger, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [results_dir]",
		Short: "Compare results files from the C, Go, Java and Python benchmarks",
		Long: `Read every <language>_benchmark_results.csv found in results_dir
(default data/), average each matrix size and print a comparison table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := harness.DefaultOutputDir
			if len(args) == 1 {
				dir = args[0]
			}

			byLang, err := report.LoadDir(dir, logger)
			if err != nil {
				return err
			}

			return report.Compare(stdout, byLang)
		},
	}
}

type runConfig struct {
	sizes        []int
	runs         int
	seed         int64
	outputDir    string
	csvName      string
	memorySource sampler.Source
	budgetMB     uint64
	verify       bool
	outputJSON   bool
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	cfg runConfig,
) error {
	hcfg := harness.Config{
		Sizes:     cfg.sizes,
		Runs:      cfg.runs,
		OutputDir: cfg.outputDir,
		CSVName:   cfg.csvName,
		Verify:    cfg.verify,
	}

	if err := hcfg.Validate(); err != nil {
		return err
	}

	smp, err := sampler.New(cfg.memorySource, logger)
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	alloc := &matrix.Allocator{Limit: memoryBudget(ctx, logger, cfg.budgetMB)}
	gen := workload.NewGenerator(cfg.seed)

	// Progress goes to stderr when stdout carries JSON.
	progress := stdout
	if cfg.outputJSON {
		progress = os.Stderr
	}

	printBanner(progress, hcfg, sampler.Describe())

	logger.InfoContext(ctx, "starting benchmark",
		slog.Any("sizes", hcfg.Sizes),
		slog.Int("runs", hcfg.Runs),
		slog.Int64("seed", gen.Seed()),
		slog.String("memory", string(cfg.memorySource)),
		slog.Uint64("budget_bytes", alloc.Limit),
	)

	runner := harness.NewRunner(hcfg, alloc, gen, smp, progress, logger)

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.outputJSON {
		if err := report.AveragesJSON(stdout, summary); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else if err := report.Averages(stdout, summary.Sizes); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	fmt.Fprintln(progress, "\n"+bannerRule)
	fmt.Fprintf(progress, "Benchmark finished. Results saved at: %s\n", summary.CSVPath)
	fmt.Fprintln(progress, bannerRule)

	return nil
}

// memoryBudget resolves the allocator limit. An explicit budget wins;
// otherwise the OS-reported available memory is used, and if that cannot
// be read the allocator is left unlimited.
func memoryBudget(ctx context.Context, logger *slog.Logger, budgetMB uint64) uint64 {
	if budgetMB > 0 {
		return budgetMB * 1024 * 1024
	}

	avail, err := sampler.AvailableMemory()
	if err != nil {
		logger.WarnContext(ctx, "available memory unknown, not capping allocations",
			slog.String("error", err.Error()))

		return 0
	}

	return avail
}

func printBanner(w io.Writer, cfg harness.Config, host sampler.HostInfo) {
	sizes := make([]string, len(cfg.Sizes))
	for i, n := range cfg.Sizes {
		sizes[i] = fmt.Sprint(n)
	}

	fmt.Fprintln(w, bannerRule)
	fmt.Fprintln(w, "Go Matrix Multiplication Benchmark")
	fmt.Fprintln(w, bannerRule)
	fmt.Fprintf(w, "Matrix sizes: %s\n", strings.Join(sizes, ", "))
	fmt.Fprintf(w, "Runs per size: %d\n", cfg.Runs)
	fmt.Fprintf(w, "Output directory: %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "Host: %s\n", host)
}
