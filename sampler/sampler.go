// Package sampler reads the process-level timing and memory metrics
// recorded around each multiplication.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerMB = 1024 * 1024

// Sampler is the pair of probes the benchmark runner depends on.
type Sampler interface {
	// WallTime returns a monotonic timestamp in seconds.
	WallTime() float64
	// ResidentMemoryMB returns the process resident memory in megabytes.
	// A failed read yields 0.
	ResidentMemoryMB() float64
}

// Source selects which memory figure a sampler reports.
type Source string

const (
	// SourceRSS reports the current resident set size.
	SourceRSS Source = "rss"
	// SourcePeak reports the peak resident set size of the process.
	SourcePeak Source = "peak"
)

// ParseSource validates a memory source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceRSS, SourcePeak:
		return Source(s), nil
	default:
		return "", fmt.Errorf("unknown memory source %q (want rss or peak)", s)
	}
}

// New returns the sampler for the given memory source.
func New(src Source, logger *slog.Logger) (Sampler, error) {
	switch src {
	case SourceRSS, "":
		return NewProcess(logger)
	case SourcePeak:
		return NewPeak(logger), nil
	default:
		return nil, fmt.Errorf("unknown memory source %q", src)
	}
}

// clock measures seconds elapsed since its creation. time.Since reads the
// monotonic clock, so wall-clock adjustments do not affect it.
type clock struct {
	origin time.Time
}

func newClock() clock {
	return clock{origin: time.Now()}
}

func (c clock) WallTime() float64 {
	return time.Since(c.origin).Seconds()
}

// Process samples the current resident set size of this process.
type Process struct {
	clock
	proc   *process.Process
	logger *slog.Logger
}

// NewProcess creates a Process sampler for the running process.
func NewProcess(logger *slog.Logger) (*Process, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", os.Getpid(), err)
	}

	return &Process{
		clock:  newClock(),
		proc:   proc,
		logger: logger,
	}, nil
}

// ResidentMemoryMB returns the current RSS in megabytes.
func (p *Process) ResidentMemoryMB() float64 {
	info, err := p.proc.MemoryInfo()
	if err != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelDebug,
			"read rss failed", slog.String("error", err.Error()))

		return 0
	}

	return float64(info.RSS) / bytesPerMB
}

// Peak samples the peak resident set size reported by the kernel. On
// platforms without getrusage it falls back to the current RSS.
type Peak struct {
	clock
	logger *slog.Logger
}

// NewPeak creates a Peak sampler.
func NewPeak(logger *slog.Logger) *Peak {
	return &Peak{clock: newClock(), logger: logger}
}

// ResidentMemoryMB returns the peak RSS in megabytes.
func (p *Peak) ResidentMemoryMB() float64 {
	b, err := peakRSSBytes()
	if err != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelDebug,
			"read peak rss failed", slog.String("error", err.Error()))

		return 0
	}

	return float64(b) / bytesPerMB
}
