package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Host is a snapshot of the machine the render runs on
type Host struct {
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
	AvailMemory  uint64
	UsedPercent  float64
}

// HostStats queries gopsutil; fields it cannot read stay at runtime defaults
func HostStats() Host {
	h := Host{LogicalCPUs: runtime.NumCPU(), PhysicalCPUs: runtime.NumCPU()}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		h.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemory = vm.Total
		h.AvailMemory = vm.Available
		h.UsedPercent = vm.UsedPercent
	}

	return h
}

// DefaultWorkers sizes the raster pool: one worker per logical CPU, but no
// more frames in flight than a quarter of free memory can hold
func DefaultWorkers(frameBytes int) int {
	return workersFor(HostStats(), frameBytes)
}

func workersFor(h Host, frameBytes int) int {
	n := h.LogicalCPUs
	if n < 1 {
		n = 1
	}
	if frameBytes > 0 && h.AvailMemory > 0 {
		// Каждый воркер держит кадр в работе и кадр в очереди
		byMem := int(h.AvailMemory / 4 / uint64(2*frameBytes))
		if byMem < n {
			n = byMem
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// MiB formats bytes for reports
func MiB(b uint64) float64 {
	return float64(b) / (1 << 20)
}
