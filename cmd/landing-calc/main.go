// landing-calc computes a B200 landing distance from the command line.
//
//	landing-calc -alt 2000 -oat 15 -weight 11500 -wind -10
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/unklstewy/b200-landing/internal/logging"
	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/report"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

// Exit codes
const (
	exitOK         = 0
	exitInput      = 2 // input outside limits or not charted
	exitTableError = 3 // tables missing or malformed
)

type options struct {
	configPath string
	tablesDir  string
	input      landing.Input
	jsonOutput bool
}

func main() {
	var opts options
	defaults := landing.DefaultInput()

	flag.StringVar(&opts.configPath, "config", "configs/config.yaml", "Path to configuration file")
	flag.StringVar(&opts.tablesDir, "tables", "", "Directory holding the table CSV files (default: built-in illustrative sample data, not POH figures)")
	flag.Float64Var(&opts.input.PressureAltitudeFt, "alt", defaults.PressureAltitudeFt, "Pressure altitude (ft)")
	flag.Float64Var(&opts.input.OATC, "oat", defaults.OATC, "Outside air temperature (°C)")
	flag.Float64Var(&opts.input.WeightLb, "weight", defaults.WeightLb, "Landing weight (lb)")
	flag.Float64Var(&opts.input.WindKt, "wind", defaults.WindKt, "Wind component (kt, negative for tailwind)")
	flag.BoolVar(&opts.jsonOutput, "json", false, "Print the full trace as JSON")
	flag.Parse()

	os.Exit(execute(opts, os.Stdout, os.Stderr))
}

// execute loads the configuration and logging, then runs one calculation.
// The log file is closed before the exit code is returned.
func execute(opts options, stdout, stderr io.Writer) int {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 1
	}

	logFile, err := logging.Setup(cfg.Logging, true)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to set up logging: %v\n", err)
		return 1
	}
	defer logFile.Close()

	code := run(cfg, opts, stdout, stderr)
	log.Printf("Calculation finished with exit code %d", code)
	return code
}

// run performs one calculation and returns the process exit code.
func run(cfg *config.Config, opts options, stdout, stderr io.Writer) int {
	if opts.tablesDir != "" {
		cfg.Tables.Dir = opts.tablesDir
	}

	if tables.IsSample(cfg.Tables) {
		fmt.Fprintf(stderr, "Warning: %s\n", tables.SampleNotice)
	}

	set, err := tables.LoadConfig(cfg.Tables)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitTableError
	}
	calc, err := landing.NewCalculator(set.Tables)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitTableError
	}

	trace, err := calc.WithLimits(cfg.Inputs.Limits).Run(opts.input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	if opts.jsonOutput {
		out := struct {
			Dataset string         `json:"dataset"`
			Summary report.Summary `json:"summary"`
		}{set.ID(), report.Summarize(trace)}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return exitOK
	}

	fmt.Fprint(stdout, report.Text(trace))
	return exitOK
}

func exitCode(err error) int {
	var (
		rangeErr *landing.InputRangeError
		colErr   *landing.UnknownColumnError
	)
	if errors.As(err, &rangeErr) || errors.As(err, &colErr) {
		return exitInput
	}
	return exitTableError
}
