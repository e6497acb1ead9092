package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/weiihann/matbench/harness"
)

// ReadCSV parses a results file written by any of the benchmark
// implementations.
func ReadCSV(r io.Reader) ([]harness.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(harness.CSVHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if strings.Join(header, ",") != strings.Join(harness.CSVHeader, ",") {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var samples []harness.Sample

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		s, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		samples = append(samples, s)
	}

	return samples, nil
}

func parseRow(rec []string) (harness.Sample, error) {
	size, err := strconv.Atoi(rec[0])
	if err != nil {
		return harness.Sample{}, fmt.Errorf("matrix size: %w", err)
	}

	run, err := strconv.Atoi(rec[1])
	if err != nil {
		return harness.Sample{}, fmt.Errorf("run: %w", err)
	}

	secs, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return harness.Sample{}, fmt.Errorf("time: %w", err)
	}

	mem, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return harness.Sample{}, fmt.Errorf("memory: %w", err)
	}

	return harness.Sample{Size: size, Run: run, Seconds: secs, MemoryMB: mem}, nil
}

// LoadDir reads every known language's results file present in dir and
// returns the per-size averages keyed by language. Missing files are
// skipped with a warning.
func LoadDir(dir string, logger *slog.Logger) (map[string][]harness.SizeSummary, error) {
	out := make(map[string][]harness.SizeSummary)

	for _, lang := range harness.KnownLanguages() {
		path := harness.ResultsPath(dir, lang)

		samples, err := loadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("results file not found",
				slog.String("language", lang),
				slog.String("path", path),
			)

			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		logger.Info("loaded results",
			slog.String("language", lang),
			slog.Int("rows", len(samples)),
		)

		out[lang] = harness.Summarize(samples)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no results files in %s: %w", dir, ErrNoResults)
	}

	return out, nil
}

func loadFile(path string) ([]harness.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}
