//go:build linux

package util

import (
	"os"
	"strings"
)

// ReadTrimmed reads a small kernel-exposed text file (sysfs, procfs) and
// returns its content without the trailing newline and surrounding spaces.
func ReadTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Delta returns now-prev for a monotonically increasing accumulator.
// ok is false when now < prev (the counter wrapped or was reset); the
// returned delta is then 0 and must not be used as a measurement.
func Delta(now, prev float64) (delta float64, ok bool) {
	if now >= prev {
		return now - prev, true
	}
	return 0, false
}
