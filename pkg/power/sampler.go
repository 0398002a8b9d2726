//go:build linux

// Package power turns two time-separated MSR energy samples into package and
// per-core wattage.
package power

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/ja7ad/msrpower/pkg/system/msr"
	"github.com/ja7ad/msrpower/pkg/system/topology"
	"github.com/ja7ad/msrpower/pkg/system/util"
	"github.com/ja7ad/msrpower/pkg/types"
)

// DefaultDuration is the sampling window used by the CLI when none is given.
const DefaultDuration = time.Second

// Sampler holds one EnergyMsr per physical core.
type Sampler struct {
	cores    []*msr.EnergyMsr // ascending physical-core index
	clock    clock.Clock
	logger   *slog.Logger
	parallel bool
}

// NewSampler builds an EnergyMsr for every physical core of topo.
func NewSampler(topo topology.Topology, applyOpts ...OptionFn) (*Sampler, error) {
	opts := DefaultOpts()
	for _, apply := range applyOpts {
		apply(&opts)
	}
	if len(topo.Cores) == 0 {
		return nil, ErrNoCores
	}

	cores := make([]*msr.EnergyMsr, 0, len(topo.Cores))
	for _, idx := range topo.Cores {
		if opts.readerFactory != nil {
			cores = append(cores, msr.NewWithReader(idx, opts.readerFactory(idx)))
			continue
		}
		cores = append(cores, msr.New(idx, opts.registerPath))
		opts.logger.Debug("register file", "core", idx, "path", fmt.Sprintf(opts.registerPath, idx))
	}

	return &Sampler{
		cores:    cores,
		clock:    opts.clock,
		logger:   opts.logger.With("service", "power-sampler"),
		parallel: opts.parallel,
	}, nil
}

// Cores returns the sampled physical-core indices, ascending.
func (s *Sampler) Cores() []int {
	out := make([]int, len(s.cores))
	for i, m := range s.cores {
		out[i] = m.Core()
	}
	return out
}

// Power samples every counter, sleeps for d, samples again and returns the
// average power over d. Any register failure aborts the whole reading.
func (s *Sampler) Power(d time.Duration) (Reading, error) {
	if d <= 0 {
		return Reading{}, fmt.Errorf("%w: sampling duration %s must be positive", ErrInvalidArgument, d)
	}

	before, err := s.Sample()
	if err != nil {
		return Reading{}, fmt.Errorf("first sample: %w", err)
	}

	s.clock.Sleep(d)

	after, err := s.Sample()
	if err != nil {
		return Reading{}, fmt.Errorf("second sample: %w", err)
	}

	return Rate(before, after, d)
}

// Sample captures the package counter (from the lowest-index core; it is
// package-wide) and every core counter.
func (s *Sampler) Sample() (EnergySample, error) {
	at := s.clock.Now()

	pkg, err := s.cores[0].PackageEnergy()
	if err != nil {
		return EnergySample{}, err
	}

	cores := make([]CoreEnergy, len(s.cores))
	if s.parallel {
		var g errgroup.Group
		for i, m := range s.cores {
			i, m := i, m
			g.Go(func() error {
				j, err := m.CoreEnergy()
				if err != nil {
					return err
				}
				cores[i] = CoreEnergy{Core: m.Core(), Energy: j}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return EnergySample{}, err
		}
	} else {
		for i, m := range s.cores {
			j, err := m.CoreEnergy()
			if err != nil {
				return EnergySample{}, err
			}
			cores[i] = CoreEnergy{Core: m.Core(), Energy: j}
		}
	}

	s.logger.Debug("energy sampled",
		"cores", len(cores),
		"package_j", pkg.Float(),
		"took", s.clock.Since(at))

	return EnergySample{At: at, Package: pkg, Cores: cores}, nil
}

// Rate converts two samples taken d apart into watts. Cores are paired by
// position; both samples must list the same cores in the same order.
func Rate(before, after EnergySample, d time.Duration) (Reading, error) {
	if d <= 0 {
		return Reading{}, fmt.Errorf("%w: sampling duration %s must be positive", ErrInvalidArgument, d)
	}
	if len(before.Cores) != len(after.Cores) {
		return Reading{}, fmt.Errorf("%w: samples cover %d and %d cores",
			ErrInvalidArgument, len(before.Cores), len(after.Cores))
	}

	pkg, ok := util.Delta(after.Package.Float(), before.Package.Float())
	if !ok {
		return Reading{}, fmt.Errorf("%w: package %s -> %s", ErrCounterWrapped, before.Package, after.Package)
	}

	cores := make([]CoreWatts, len(before.Cores))
	for i, b := range before.Cores {
		a := after.Cores[i]
		if a.Core != b.Core {
			return Reading{}, fmt.Errorf("%w: core order differs at position %d (%d vs %d)",
				ErrInvalidArgument, i, b.Core, a.Core)
		}
		delta, ok := util.Delta(a.Energy.Float(), b.Energy.Float())
		if !ok {
			return Reading{}, fmt.Errorf("%w: core %d %s -> %s", ErrCounterWrapped, b.Core, b.Energy, a.Energy)
		}
		cores[i] = CoreWatts{Core: b.Core, Watts: types.Joules(delta).Per(d)}
	}

	return Reading{
		Duration: d,
		Package:  types.Joules(pkg).Per(d),
		Cores:    cores,
	}, nil
}
