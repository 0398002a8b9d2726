package power

import "errors"

var (
	// ErrInvalidArgument indicates a non-positive sampling duration, or
	// samples that cannot be paired.
	ErrInvalidArgument = errors.New("power: invalid argument")

	// ErrCounterWrapped indicates an energy counter decreased between the two
	// samples. The reading is discarded rather than reported as negative.
	ErrCounterWrapped = errors.New("power: energy counter wrapped during sampling")

	// ErrNoCores indicates the topology has no physical core to sample.
	ErrNoCores = errors.New("power: no physical cores")
)
