package power

import (
	"time"

	"github.com/ja7ad/msrpower/pkg/types"
)

// CoreEnergy is one physical core's counter value within a sample.
type CoreEnergy struct {
	Core   int
	Energy types.Joules
}

// EnergySample is every counter captured at a single instant. Cores is
// ordered by ascending physical-core index.
type EnergySample struct {
	At      time.Time
	Package types.Joules
	Cores   []CoreEnergy
}

// CoreWatts is one physical core's average power over a sampling window.
type CoreWatts struct {
	Core  int         `json:"core"`
	Watts types.Watts `json:"watts"`
}

// Reading is the power derived from two samples. Cores is ordered by
// ascending physical-core index.
type Reading struct {
	Duration time.Duration
	Package  types.Watts
	Cores    []CoreWatts
}

// CoreSum returns the unscaled sum of all per-core figures.
func (r Reading) CoreSum() types.Watts {
	var sum types.Watts
	for _, c := range r.Cores {
		sum += c.Watts
	}
	return sum
}
