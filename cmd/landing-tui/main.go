// landing-tui is an interactive terminal calculator: each input is a slider
// and the four-step breakdown updates on every change.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unklstewy/b200-landing/internal/logging"
	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	tablesDir := flag.String("tables", "", "Directory holding the table CSV files (default: built-in illustrative sample data, not POH figures)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *tablesDir != "" {
		cfg.Tables.Dir = *tablesDir
	}

	set, err := tables.LoadConfig(cfg.Tables)
	if err != nil {
		log.Fatalf("Failed to load tables: %v", err)
	}
	calc, err := landing.NewCalculator(set.Tables)
	if err != nil {
		log.Fatalf("Failed to create calculator: %v", err)
	}
	calc = calc.WithLimits(cfg.Inputs.Limits)

	// Log to file only so output does not draw over the UI
	logFile, err := logging.Setup(cfg.Logging, false)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()
	log.Printf("Loaded tables (dataset %s)", set.ID())

	m := newModel(calc, set.ID(), cfg.Inputs.Defaults)
	if tables.IsSample(cfg.Tables) {
		log.Printf("Warning: %s", tables.SampleNotice)
		m.notice = tables.SampleNotice
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
