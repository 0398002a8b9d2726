// Package host describes the machine being measured: name, kernel, CPU
// model and memory, and whether its CPU exposes the AMD energy registers.
package host

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
	gohost "github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ja7ad/msrpower/pkg/types"
)

const (
	VendorAMD = "AuthenticAMD"

	// minFamily is family 17h (Zen), the first with RAPL energy MSRs.
	minFamily = 0x17
)

// ErrUnsupportedCPU indicates a CPU without AMD RAPL energy registers.
var ErrUnsupportedCPU = errors.New("host: cpu has no AMD RAPL energy registers")

// Info is a snapshot of host identity.
type Info struct {
	Hostname string
	Kernel   string
	Vendor   string
	Model    string
	Family   int
	Memory   types.Bytes
}

// Detect gathers Info via gopsutil.
func Detect() (Info, error) {
	hi, err := gohost.Info()
	if err != nil {
		return Info{}, fmt.Errorf("host info: %w", err)
	}
	cpus, err := cpu.Info()
	if err != nil {
		return Info{}, fmt.Errorf("cpu info: %w", err)
	}
	if len(cpus) == 0 {
		return Info{}, errors.New("cpu info: no cpus reported")
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Info{}, fmt.Errorf("memory info: %w", err)
	}

	// cpuinfo reports the family in decimal; non-x86 leaves it empty.
	family, _ := strconv.Atoi(cpus[0].Family)

	return Info{
		Hostname: hi.Hostname,
		Kernel:   hi.KernelVersion,
		Vendor:   cpus[0].VendorID,
		Model:    cpus[0].ModelName,
		Family:   family,
		Memory:   types.Bytes(vm.Total),
	}, nil
}

// CheckSupported returns ErrUnsupportedCPU unless the CPU is an AMD family
// 17h or later part.
func (i Info) CheckSupported() error {
	if i.Vendor != VendorAMD {
		return fmt.Errorf("%w: vendor %q", ErrUnsupportedCPU, i.Vendor)
	}
	if i.Family < minFamily {
		return fmt.Errorf("%w: family %#x predates Zen", ErrUnsupportedCPU, i.Family)
	}
	return nil
}
