package harness

import "path/filepath"

// DefaultCSVName is the results file written by this benchmark.
const DefaultCSVName = "c_benchmark_results.csv"

// KnownLanguages returns the implementations whose results files can be
// compared side by side.
func KnownLanguages() []string {
	return []string{"c", "go", "java", "python"}
}

// ResultsPath returns the expected results file for a language inside dir.
func ResultsPath(dir, lang string) string {
	return filepath.Join(dir, lang+"_benchmark_results.csv")
}
