package types

import (
	"fmt"
	"time"
)

// Joules is an energy amount in joules.
type Joules float64

// Float returns the raw joule value.
func (j Joules) Float() float64 { return float64(j) }

func (j Joules) String() string { return fmt.Sprintf("%.2fJ", float64(j)) }

// Per returns the average power needed to spend j over d.
// d must be positive; callers validate it.
func (j Joules) Per(d time.Duration) Watts {
	return Watts(float64(j) / d.Seconds())
}

// Watts is a power figure in watts.
type Watts float64

// Float returns the raw watt value.
func (w Watts) Float() float64 { return float64(w) }

// String formats w with two decimals, e.g. "12.34W".
func (w Watts) String() string { return fmt.Sprintf("%.2fW", float64(w)) }

// Bytes is a memory size in bytes.
type Bytes uint64

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB, TB).
func (b Bytes) Humanized() string {
	units := []string{"KB", "MB", "GB", "TB"}
	if b < 1<<10 {
		return fmt.Sprintf("%d B", uint64(b))
	}
	v := float64(b) / (1 << 10)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}
