//go:build linux

// Package report shapes a power.Reading for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jszwec/csvutil"

	"github.com/ja7ad/msrpower/pkg/power"
	"github.com/ja7ad/msrpower/pkg/system/topology"
	"github.com/ja7ad/msrpower/pkg/types"
)

// Format selects an output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	CSV  Format = "csv"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, JSON, CSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or csv)", s)
}

// Summary is a Reading plus the topology facts needed to present it.
type Summary struct {
	Duration      float64           `json:"duration_sec"`
	SMTEnabled    bool              `json:"smt_enabled"`
	LogicalCores  uint32            `json:"logical_cores"`
	PhysicalCores uint32            `json:"physical_cores"`
	Package       types.Watts       `json:"package_w"`
	Cores         []power.CoreWatts `json:"cores"`
	CoresTotal    types.Watts       `json:"cores_total_w"`
}

// Summarize computes the cores total as the sum of per-core watts scaled by
// logical/physical cores. Each physical core's counter accounts for all of
// its SMT siblings, and the total is reported over logical cores.
func Summarize(r power.Reading, topo topology.Topology) Summary {
	return Summary{
		Duration:      r.Duration.Seconds(),
		SMTEnabled:    topo.SMTEnabled,
		LogicalCores:  topo.LogicalCores,
		PhysicalCores: topo.PhysicalCores,
		Package:       r.Package,
		Cores:         r.Cores,
		CoresTotal:    types.Watts(r.CoreSum().Float() * topo.SMTRatio()),
	}
}

// Write encodes s to w in format f.
func Write(w io.Writer, f Format, s Summary) error {
	switch f {
	case JSON:
		return WriteJSON(w, s)
	case CSV:
		return WriteCSV(w, s)
	default:
		return WriteText(w, s)
	}
}

// WriteText prints the package line, one line per physical core and the
// cores total, all with two decimals.
func WriteText(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "Package: %.2fW\n", s.Package.Float()); err != nil {
		return err
	}
	for _, c := range s.Cores {
		if _, err := fmt.Fprintf(w, "Core %d: %.2fW\n", c.Core, c.Watts.Float()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Cores Total: %.2fW\n", s.CoresTotal.Float())
	return err
}

// WriteJSON writes s as an indented JSON document.
func WriteJSON(w io.Writer, s Summary) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

type csvRow struct {
	Scope string `csv:"scope"`
	Core  string `csv:"core"`
	Watts string `csv:"watts"`
}

// WriteCSV writes one row for the package, one per core and one for the
// cores total, with a header.
func WriteCSV(w io.Writer, s Summary) error {
	rows := make([]csvRow, 0, len(s.Cores)+2)
	rows = append(rows, csvRow{Scope: "package", Watts: fmtWatts(s.Package)})
	for _, c := range s.Cores {
		rows = append(rows, csvRow{Scope: "core", Core: strconv.Itoa(c.Core), Watts: fmtWatts(c.Watts)})
	}
	rows = append(rows, csvRow{Scope: "cores_total", Watts: fmtWatts(s.CoresTotal)})

	b, err := csvutil.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func fmtWatts(w types.Watts) string {
	return strconv.FormatFloat(w.Float(), 'f', 2, 64)
}
