//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package sampler

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// peakRSSBytes falls back to the current RSS where getrusage is missing.
// On Windows this is the working set size.
func peakRSSBytes() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, fmt.Errorf("open process: %w", err)
	}

	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("memory info: %w", err)
	}

	return info.RSS, nil
}
