package sampler

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostInfo summarises the machine a benchmark ran on.
type HostInfo struct {
	OS          string  `json:"os"`
	Platform    string  `json:"platform,omitempty"`
	Arch        string  `json:"arch"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	LogicalCPUs int     `json:"logical_cpus,omitempty"`
	TotalMemMB  float64 `json:"total_mem_mb,omitempty"`
}

// String renders the host on one line for the run banner.
func (h HostInfo) String() string {
	s := h.OS + "/" + h.Arch
	if h.Platform != "" {
		s += " (" + h.Platform + ")"
	}
	if h.CPUModel != "" {
		s += fmt.Sprintf(", %s x%d", h.CPUModel, h.LogicalCPUs)
	}
	if h.TotalMemMB > 0 {
		s += fmt.Sprintf(", %.0f MB RAM", h.TotalMemMB)
	}

	return s
}

// Describe collects whatever host details are readable. Missing pieces
// are left empty.
func Describe() HostInfo {
	info := HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}

	if hi, err := host.Info(); err == nil {
		info.Platform = hi.Platform
		if hi.PlatformVersion != "" {
			info.Platform += " " + hi.PlatformVersion
		}
	}

	if ci, err := cpu.Info(); err == nil && len(ci) > 0 {
		info.CPUModel = ci[0].ModelName
	}

	if n, err := cpu.Counts(true); err == nil {
		info.LogicalCPUs = n
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemMB = float64(vm.Total) / bytesPerMB
	}

	return info
}

// AvailableMemory returns the bytes of memory the OS reports as available
// for new allocations.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}

	return vm.Available, nil
}
