//go:build linux

// Package topology discovers logical and physical CPU core layout from the
// kernel's sysfs CPU tree, collapsing SMT siblings onto one physical core.
package topology

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"k8s.io/utils/cpuset"

	"github.com/ja7ad/msrpower/pkg/system/util"
)

// DefaultRoot is where the kernel exposes CPU topology.
const DefaultRoot = "/sys/devices/system/cpu"

// Topology is the core layout of the single CPU package being measured.
//
// Invariants: PhysicalCores <= LogicalCores, and PhysicalCores == LogicalCores
// when SMT is disabled. len(Cores) == PhysicalCores.
type Topology struct {
	SMTEnabled    bool
	LogicalCores  uint32
	PhysicalCores uint32

	// Cores holds the canonical index of every physical core, ascending.
	// The index is the lowest logical cpu id among a core's SMT siblings (or
	// the logical id itself with SMT off). It is an internal indexing scheme,
	// not a hardware core id.
	Cores []int
}

// Discover reads smt/control, online and, when SMT is on, every logical
// cpu's topology/core_cpus_list under root.
func Discover(root string) (Topology, error) {
	control, err := util.ReadTrimmed(filepath.Join(root, "smt", "control"))
	if err != nil {
		return Topology{}, fmt.Errorf("%w: smt control: %w", ErrTopology, err)
	}
	smt := ParseSMTControl(control)

	online, err := util.ReadTrimmed(filepath.Join(root, "online"))
	if err != nil {
		return Topology{}, fmt.Errorf("%w: online cpus: %w", ErrTopology, err)
	}
	logical, err := ParseOnline(online)
	if err != nil {
		return Topology{}, err
	}

	var cores []int
	if smt {
		cores, err = PhysicalCores(root, logical)
		if err != nil {
			return Topology{}, err
		}
	} else {
		cores = make([]int, logical)
		for i := range cores {
			cores[i] = i
		}
	}

	return Topology{
		SMTEnabled:    smt,
		LogicalCores:  logical,
		PhysicalCores: uint32(len(cores)),
		Cores:         cores,
	}, nil
}

// ParseSMTControl reports whether the smt/control value means SMT is active.
// Only "on" does; "off", "forceoff", "notsupported" and "notimplemented" do not.
func ParseSMTControl(s string) bool {
	return strings.TrimSpace(s) == "on"
}

// ParseOnline parses the "<min>-<max>" online descriptor and returns max+1.
func ParseOnline(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		return 0, fmt.Errorf("%w: %q", ErrNonContiguous, s)
	}

	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return 0, fmt.Errorf("%w: online range %q has no '-' separator", ErrTopology, s)
	}
	minID, err := strconv.ParseUint(lo, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: online range %q: bad lower bound: %w", ErrTopology, s, err)
	}
	maxID, err := strconv.ParseUint(hi, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: online range %q: bad upper bound: %w", ErrTopology, s, err)
	}
	if maxID < minID {
		return 0, fmt.Errorf("%w: online range %q is inverted", ErrTopology, s)
	}
	if minID != 0 {
		return 0, fmt.Errorf("%w: %q", ErrNonContiguous, s)
	}
	if maxID == math.MaxUint32 {
		return 0, fmt.Errorf("%w: online range %q overflows", ErrTopology, s)
	}
	return uint32(maxID) + 1, nil
}

// PhysicalCores reads core_cpus_list for logical cpus [0, logical) and
// returns the distinct minimum sibling ids, ascending. Groups of any width
// collapse to one entry.
func PhysicalCores(root string, logical uint32) ([]int, error) {
	seen := make(map[int]struct{}, logical)
	for cpu := uint32(0); cpu < logical; cpu++ {
		path := filepath.Join(root, fmt.Sprintf("cpu%d", cpu), "topology", "core_cpus_list")
		list, err := util.ReadTrimmed(path)
		if err != nil {
			return nil, fmt.Errorf("%w: cpu%d siblings: %w", ErrTopology, cpu, err)
		}
		set, err := cpuset.Parse(list)
		if err != nil {
			return nil, fmt.Errorf("%w: cpu%d siblings %q: %w", ErrTopology, cpu, list, err)
		}
		if set.IsEmpty() {
			return nil, fmt.Errorf("%w: cpu%d has an empty sibling list", ErrTopology, cpu)
		}
		seen[set.List()[0]] = struct{}{}
	}

	cores := make([]int, 0, len(seen))
	for id := range seen {
		cores = append(cores, id)
	}
	slices.Sort(cores)
	return cores, nil
}

// SMTRatio is LogicalCores / PhysicalCores, the factor that folds per
// physical core figures back onto logical cores. It is 1 with SMT off.
func (t Topology) SMTRatio() float64 {
	if t.PhysicalCores == 0 {
		return 1
	}
	return float64(t.LogicalCores) / float64(t.PhysicalCores)
}
