//go:build linux

package power

import (
	"log/slog"

	"k8s.io/utils/clock"

	"github.com/ja7ad/msrpower/pkg/system/msr"
)

// ReaderFactory returns the register reader of the physical core whose
// canonical index is core.
type ReaderFactory func(core int) msr.RegisterReader

type Opts struct {
	logger        *slog.Logger
	clock         clock.Clock
	registerPath  string
	parallel      bool
	readerFactory ReaderFactory
}

// DefaultOpts returns the options used when none are given: the default
// logger, the wall clock, /dev/cpu/%d/msr and sequential reads.
func DefaultOpts() Opts {
	return Opts{
		logger:       slog.Default(),
		clock:        clock.RealClock{},
		registerPath: msr.DefaultPathTemplate,
	}
}

// OptionFn sets one or more options in Opts.
type OptionFn func(*Opts)

// WithLogger sets the logger of the Sampler.
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Opts) {
		o.logger = logger
	}
}

// WithClock sets the clock used to sleep between samples.
func WithClock(c clock.Clock) OptionFn {
	return func(o *Opts) {
		o.clock = c
	}
}

// WithRegisterPath sets the register file path template, e.g. "/dev/cpu/%d/msr".
func WithRegisterPath(tmpl string) OptionFn {
	return func(o *Opts) {
		o.registerPath = tmpl
	}
}

// WithParallelReads reads the per-core counters of one sample concurrently.
func WithParallelReads(on bool) OptionFn {
	return func(o *Opts) {
		o.parallel = on
	}
}

// WithReaderFactory replaces register files with custom readers. It takes
// precedence over WithRegisterPath.
func WithReaderFactory(f ReaderFactory) OptionFn {
	return func(o *Opts) {
		o.readerFactory = f
	}
}
