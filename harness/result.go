// Package harness drives the matrix multiplication benchmark: it allocates
// operands, times each multiplication, and records one sample per run.
package harness

// Sample is a single timed multiplication.
type Sample struct {
	Size     int     `json:"size"`
	Run      int     `json:"run"`
	Seconds  float64 `json:"seconds"`
	MemoryMB float64 `json:"memory_mb"`
}

// SizeSummary holds the mean of all runs for one matrix size.
type SizeSummary struct {
	Size        int     `json:"size"`
	Runs        int     `json:"runs"`
	AvgSeconds  float64 `json:"avg_seconds"`
	AvgMemoryMB float64 `json:"avg_memory_mb"`
}

// Summary is the outcome of a completed benchmark run.
type Summary struct {
	CSVPath string        `json:"csv_path"`
	Seed    int64         `json:"seed"`
	Sizes   []SizeSummary `json:"sizes"`
}

// Summarize averages samples per size. Sizes appear in order of first
// occurrence.
func Summarize(samples []Sample) []SizeSummary {
	index := make(map[int]int)
	out := make([]SizeSummary, 0)

	for _, s := range samples {
		i, ok := index[s.Size]
		if !ok {
			i = len(out)
			index[s.Size] = i
			out = append(out, SizeSummary{Size: s.Size})
		}

		out[i].Runs++
		out[i].AvgSeconds += s.Seconds
		out[i].AvgMemoryMB += s.MemoryMB
	}

	for i := range out {
		out[i].AvgSeconds /= float64(out[i].Runs)
		out[i].AvgMemoryMB /= float64(out[i].Runs)
	}

	return out
}
