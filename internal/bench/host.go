package bench

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo describes the machine a benchmark ran on. Fields the platform
// cannot report are left empty.
type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	CPUModel        string `json:"cpu_model"`
	LogicalCores    int    `json:"logical_cores"`
	MemoryTotal     uint64 `json:"memory_total"`
}

// CollectHost gathers host facts. Every probe is best effort; the first
// failure is returned alongside whatever was collected.
func CollectHost(ctx context.Context) (HostInfo, error) {
	var (
		info     HostInfo
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = h.Hostname
		info.OS = h.OS
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
		info.Arch = h.KernelArch
	} else {
		keep(err)
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil {
		if len(cpus) > 0 {
			info.CPUModel = cpus[0].ModelName
		}
	} else {
		keep(err)
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	} else {
		keep(err)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryTotal = vm.Total
	} else {
		keep(err)
	}

	return info, firstErr
}
