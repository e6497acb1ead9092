//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package sampler

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

func peakRSSBytes() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, fmt.Errorf("getrusage: %w", err)
	}

	maxrss := uint64(int64(ru.Maxrss))

	// Darwin reports bytes, everyone else kilobytes.
	if runtime.GOOS == "darwin" {
		return maxrss, nil
	}

	return maxrss * 1024, nil
}
