// table-viewer browses the landing distance tables in the terminal and
// highlights the cells a calculation reads.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/unklstewy/b200-landing/internal/logging"
	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
)

var (
	// Version information (set by build flags)
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	tablesDir := flag.String("tables", "", "Directory holding the table CSV files (default: built-in illustrative sample data, not POH figures)")
	alt := flag.Float64("alt", 0, "Pressure altitude (ft)")
	oat := flag.Float64("oat", 0, "Outside air temperature (°C)")
	weight := flag.Float64("weight", 0, "Landing weight (lb)")
	wind := flag.Float64("wind", 0, "Wind component (kt, negative for tailwind)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("table-viewer version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *tablesDir != "" {
		cfg.Tables.Dir = *tablesDir
	}

	// Any input flag turns highlighting on; the rest come from the config defaults.
	var input *landing.Input
	flag.Visit(func(f *flag.Flag) {
		if input == nil && (f.Name == "alt" || f.Name == "oat" || f.Name == "weight" || f.Name == "wind") {
			in := cfg.Inputs.Defaults
			input = &in
		}
	})
	if input != nil {
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "alt":
				input.PressureAltitudeFt = *alt
			case "oat":
				input.OATC = *oat
			case "weight":
				input.WeightLb = *weight
			case "wind":
				input.WindKt = *wind
			}
		})
	}

	logFile, err := logging.Setup(cfg.Logging, false)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	// Mirror the standard logger into the log panel
	logs := NewLogManager(100)
	log.SetOutput(io.MultiWriter(logs, log.Writer()))
	log.SetFlags(0)

	app, err := NewApp(&AppConfig{Config: cfg, Input: input, Logs: logs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load tables: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}
