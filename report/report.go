// Package report formats benchmark averages and compares result files
// produced by different implementations.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/weiihann/matbench/harness"
)

// ErrNoResults is returned when there is nothing to report.
var ErrNoResults = errors.New("report: no results")

// Averages writes the fixed-width table of per-size means.
func Averages(w io.Writer, sizes []harness.SizeSummary) error {
	if len(sizes) == 0 {
		return ErrNoResults
	}

	fmt.Fprintln(w, "\n===== AVERAGE RESULTS =====")
	fmt.Fprintf(w, "%-10s %-15s %-25s\n", "Size", "Avg Time (s)", "Avg Real Mem (MB)")

	for _, s := range sizes {
		fmt.Fprintf(w, "%-10d %-15.5f %-25.5f\n", s.Size, s.AvgSeconds, s.AvgMemoryMB)
	}

	return nil
}

// AveragesJSON writes the summary as JSON to w.
func AveragesJSON(w io.Writer, summary *harness.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(summary)
}

// Compare writes a markdown table with one row per (size, language) and
// each language's slowdown against the fastest at that size.
func Compare(w io.Writer, byLang map[string][]harness.SizeSummary) error {
	if len(byLang) == 0 {
		return ErrNoResults
	}

	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	fmt.Fprintln(w, "## Matrix Multiplication Comparison")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Size | Language | Avg Time | Avg Real Mem | Runs | Slowdown |")
	fmt.Fprintln(w, "|------|----------|----------|--------------|------|----------|")

	for _, size := range allSizes(byLang) {
		fastest := findFastest(byLang, size)

		for _, lang := range langs {
			s, ok := lookup(byLang[lang], size)
			if !ok {
				continue
			}

			slowdown := 1.0
			if fastest > 0 && s.AvgSeconds > 0 {
				slowdown = s.AvgSeconds / fastest
			}

			fmt.Fprintf(w, "| %d | %s | %s | %s | %d | %.2fx |\n",
				size,
				lang,
				formatSeconds(s.AvgSeconds),
				formatMB(s.AvgMemoryMB),
				s.Runs,
				slowdown,
			)
		}
	}

	return nil
}

func allSizes(byLang map[string][]harness.SizeSummary) []int {
	seen := make(map[int]bool)
	var sizes []int

	for _, summaries := range byLang {
		for _, s := range summaries {
			if !seen[s.Size] {
				seen[s.Size] = true
				sizes = append(sizes, s.Size)
			}
		}
	}

	sort.Ints(sizes)

	return sizes
}

func lookup(summaries []harness.SizeSummary, size int) (harness.SizeSummary, bool) {
	for _, s := range summaries {
		if s.Size == size {
			return s, true
		}
	}

	return harness.SizeSummary{}, false
}

func findFastest(byLang map[string][]harness.SizeSummary, size int) float64 {
	fastest := math.Inf(1)
	for _, summaries := range byLang {
		if s, ok := lookup(summaries, size); ok && s.AvgSeconds > 0 && s.AvgSeconds < fastest {
			fastest = s.AvgSeconds
		}
	}

	if math.IsInf(fastest, 1) {
		return 0
	}

	return fastest
}

func formatSeconds(s float64) string {
	if s < 1 {
		return fmt.Sprintf("%.2fms", s*1000)
	}

	return fmt.Sprintf("%.2fs", s)
}

func formatMB(mb float64) string {
	if mb == 0 {
		return "-"
	}
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}

	return fmt.Sprintf("%.1f MB", mb)
}
