//go:build linux

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/msrpower/pkg/logger"
	"github.com/ja7ad/msrpower/pkg/power"
	"github.com/ja7ad/msrpower/pkg/report"
	"github.com/ja7ad/msrpower/pkg/system/host"
	"github.com/ja7ad/msrpower/pkg/system/msr"
	"github.com/ja7ad/msrpower/pkg/system/topology"
)

type opts struct {
	// sampling
	interval time.Duration
	parallel bool

	// system
	sysfs           string
	msrPath         string
	skipVendorCheck bool

	// outputs
	format     string
	outputPath string
	logLevel   string
	logFormat  string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "msrpower",
		Short: "AMD package and per-core power from RAPL energy MSRs",
		Long: `msrpower reads the AMD RAPL energy counters of every physical core
through /dev/cpu/N/msr, waits for the sampling interval, reads them again
and prints package, per-core and total core power in watts.

It needs root (or CAP_SYS_RAWIO) and the msr kernel module (modprobe msr).

Examples:
  sudo msrpower
  sudo msrpower -i 500ms --format json
  sudo msrpower -i 2s --format csv -o out/power.csv`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	root.Flags().DurationVarP(&o.interval, "interval", "i", power.DefaultDuration, "sampling interval between the two counter reads (e.g. 1s, 500ms)")
	root.Flags().BoolVar(&o.parallel, "parallel", false, "read per-core registers concurrently")
	root.Flags().StringVar(&o.sysfs, "sysfs", topology.DefaultRoot, "root of the sysfs cpu topology tree")
	root.Flags().StringVar(&o.msrPath, "msr-path", msr.DefaultPathTemplate, "register file path template (%d is the cpu id)")
	root.Flags().BoolVar(&o.skipVendorCheck, "skip-vendor-check", false, "do not refuse CPUs that are not AMD family 17h or later")
	root.Flags().StringVarP(&o.format, "format", "f", string(report.Text), "output format: text, json or csv")
	root.Flags().StringVarP(&o.outputPath, "output", "o", "", "also write the report to this file")
	root.Flags().StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.Flags().StringVar(&o.logFormat, "log-format", "text", "log format: text or json")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	if o.interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}
	log, err := logger.New(o.logLevel, o.logFormat, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	info, err := host.Detect()
	switch {
	case err != nil:
		slog.Warn("host detection failed, vendor not verified", "err", err)
	case !o.skipVendorCheck:
		if err := info.CheckSupported(); err != nil {
			return err
		}
	}
	if err == nil && format == report.Text {
		fmt.Printf(_console, info.Hostname, info.Kernel, info.Model, info.Memory.Humanized(),
			o.interval, time.Now().Format("2006-01-02 15:04:05"))
	}

	topo, err := topology.Discover(o.sysfs)
	if err != nil {
		return fmt.Errorf("topology: %w", err)
	}
	slog.Debug("topology discovered",
		"smt", topo.SMTEnabled,
		"logical", topo.LogicalCores,
		"physical", topo.PhysicalCores)

	sampler, err := power.NewSampler(topo,
		power.WithLogger(log),
		power.WithRegisterPath(o.msrPath),
		power.WithParallelReads(o.parallel),
	)
	if err != nil {
		return err
	}

	reading, err := sampler.Power(o.interval)
	if err != nil {
		if errors.Is(err, msr.ErrNoDevice) || errors.Is(err, msr.ErrPermission) {
			slog.Info("try: sudo modprobe msr && sudo msrpower")
		}
		return fmt.Errorf("sample: %w", err)
	}

	summary := report.Summarize(reading, topo)
	if err := report.Write(os.Stdout, format, summary); err != nil {
		return err
	}

	if o.outputPath != "" {
		if err := writeFile(o.outputPath, format, summary); err != nil {
			return fmt.Errorf("write %s: %w", o.outputPath, err)
		}
	}
	return nil
}

func writeFile(path string, format report.Format, s report.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Write(f, format, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

const _console = `msrpower - AMD RAPL power meter

       Host: %s
       Kernel: %s
       CPU: %s
       Mem: %s

Power over %s as of %s:

`
