package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/report"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

func runWith(t *testing.T, opts options) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(config.DefaultConfig(), opts, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// TestRunText tests the plain-text report.
func TestRunText(t *testing.T) {
	code, out, errOut := runWith(t, options{input: landing.DefaultInput()})
	if code != exitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Estimated landing distance: 3,540 ft") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if !strings.Contains(errOut, tables.SampleNotice) {
		t.Errorf("Expected sample data warning, got %q", errOut)
	}
}

// TestRunTablesDirNoWarning tests that user tables are not flagged as sample data.
func TestRunTablesDirNoWarning(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pressureheight_oat.csv", "weightadjustment.csv", "windcomponent.csv", "obstacle.csv"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "tables", "data", name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		os.WriteFile(filepath.Join(dir, name), data, 0644)
	}

	code, _, errOut := runWith(t, options{input: landing.DefaultInput(), tablesDir: dir})
	if code != exitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut)
	}
	if strings.Contains(errOut, "Warning") {
		t.Errorf("Expected no warning for a tables directory, got %q", errOut)
	}
}

// TestExecuteWritesLogFile tests that the configured log file is written and
// released before the exit code is returned.
func TestExecuteWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "landing-calc.log")
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  file: "+logPath+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	defer log.SetOutput(os.Stderr)

	in := landing.DefaultInput()
	in.WeightLb = 11550
	var stdout, stderr bytes.Buffer
	code := execute(options{configPath: configPath, input: in}, &stdout, &stderr)
	if code != exitInput {
		t.Errorf("Expected exit %d, got %d", exitInput, code)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Expected log file, got: %v", err)
	}
	if !strings.Contains(string(data), "exit code 2") {
		t.Errorf("Expected exit code in log, got %q", data)
	}
}

// TestExecuteBadConfig tests that an unreadable config fails before running.
func TestExecuteBadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(configPath, []byte("{not json"), 0644)

	var stdout, stderr bytes.Buffer
	if code := execute(options{configPath: configPath}, &stdout, &stderr); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected no output, got %q", stdout.String())
	}
}

// TestRunJSON tests the JSON output.
func TestRunJSON(t *testing.T) {
	in := landing.Input{PressureAltitudeFt: 0, OATC: -5, WeightLb: 9000, WindKt: 30}
	code, out, _ := runWith(t, options{input: in, jsonOutput: true})
	if code != exitOK {
		t.Fatalf("Expected exit 0, got %d", code)
	}

	var resp struct {
		Dataset string         `json:"dataset"`
		Summary report.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if resp.Summary.LandingFt != 2280 || resp.Summary.WindDeltaFt != -430 {
		t.Errorf("Unexpected summary %+v", resp.Summary)
	}
	if len(resp.Dataset) != 16 {
		t.Errorf("Expected dataset fingerprint, got %q", resp.Dataset)
	}
}

// TestRunErrors tests exit codes.
func TestRunErrors(t *testing.T) {
	t.Run("Uncharted weight", func(t *testing.T) {
		in := landing.DefaultInput()
		in.WeightLb = 11550
		code, _, errOut := runWith(t, options{input: in})
		if code != exitInput {
			t.Errorf("Expected exit %d, got %d", exitInput, code)
		}
		if !strings.Contains(errOut, "11550 lb") {
			t.Errorf("Expected weight in error, got %q", errOut)
		}
	})

	t.Run("Out of range", func(t *testing.T) {
		in := landing.DefaultInput()
		in.OATC = 50
		if code, _, _ := runWith(t, options{input: in}); code != exitInput {
			t.Errorf("Expected exit %d, got %d", exitInput, code)
		}
	})

	t.Run("Missing tables", func(t *testing.T) {
		code, _, _ := runWith(t, options{input: landing.DefaultInput(), tablesDir: t.TempDir()})
		if code != exitTableError {
			t.Errorf("Expected exit %d, got %d", exitTableError, code)
		}
	})

	t.Run("Malformed table", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"pressureheight_oat.csv", "weightadjustment.csv", "windcomponent.csv", "obstacle.csv"} {
			data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "tables", "data", name))
			if err != nil {
				t.Fatalf("Failed to read %s: %v", name, err)
			}
			if name == "obstacle.csv" {
				data = []byte("0,35\n1000,1500\n")
			}
			os.WriteFile(filepath.Join(dir, name), data, 0644)
		}
		if code, _, _ := runWith(t, options{input: landing.DefaultInput(), tablesDir: dir}); code != exitTableError {
			t.Errorf("Expected exit %d, got %d", exitTableError, code)
		}
	})
}
