package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrTopology indicates a malformed or missing sysfs CPU descriptor.
	// Every error returned by this package wraps it.
	ErrTopology = errors.New("topology: malformed or missing cpu descriptor")

	// ErrNonContiguous indicates a fragmented online range such as "0-3,6-7"
	// (hot-unplugged cores), or one that does not start at cpu 0.
	ErrNonContiguous = fmt.Errorf("%w: non-contiguous online range is unsupported", ErrTopology)
)
