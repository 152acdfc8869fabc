package report

import (
	"strings"
	"testing"

	"github.com/unklstewy/b200-landing/pkg/landing"
)

func sampleTrace() *landing.Trace {
	return &landing.Trace{
		Input: landing.Input{PressureAltitudeFt: 2000, OATC: 15, WeightLb: 11500, WindKt: -20},
		Stages: []landing.StageTrace{
			{Stage: landing.StageBaseline, Output: 2214.6, Inputs: []landing.Quantity{
				{Name: "pressure altitude", Value: 2000, Unit: "ft"},
				{Name: "OAT", Value: 15, Unit: "°C"},
			}},
			{Stage: landing.StageWeight, Output: 2130, Inputs: []landing.Quantity{
				{Name: "baseline distance", Value: 2214.6, Unit: "ft"},
				{Name: "landing weight", Value: 11500, Unit: "lb"},
			}},
			{Stage: landing.StageWind, Delta: 1050.4, Output: 3180.4, Inputs: []landing.Quantity{
				{Name: "weight-adjusted distance", Value: 2130, Unit: "ft"},
				{Name: "wind", Value: -20, Unit: "kt"},
			}},
			{Stage: landing.StageObstacle, Column: 50, Output: 4940, Inputs: []landing.Quantity{
				{Name: "wind-adjusted distance", Value: 3180.4, Unit: "ft"},
			}},
		},
	}
}

// TestRoundFeet tests display rounding.
func TestRoundFeet(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{2214.4, 2214},
		{2214.5, 2215},
		{-84.5, -85},
		{-84.4, -84},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundFeet(tt.in); got != tt.want {
			t.Errorf("RoundFeet(%v): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

// TestFormatting tests distance and delta strings.
func TestFormatting(t *testing.T) {
	if got := Feet(3540.2); got != "3,540 ft" {
		t.Errorf("Expected 3,540 ft, got %s", got)
	}
	if got := SignedFeet(1050.4); got != "+1,050 ft" {
		t.Errorf("Expected +1,050 ft, got %s", got)
	}
	if got := SignedFeet(-430); got != "-430 ft" {
		t.Errorf("Expected -430 ft, got %s", got)
	}
	if got := SignedFeet(0.2); got != "+0 ft" {
		t.Errorf("Expected +0 ft, got %s", got)
	}
	if got := Number(-20); got != "-20" {
		t.Errorf("Expected -20, got %s", got)
	}
	if got := Number(12500); got != "12,500" {
		t.Errorf("Expected 12,500, got %s", got)
	}
}

// TestSummarize tests that summaries keep raw values and add rounded text.
func TestSummarize(t *testing.T) {
	s := Summarize(sampleTrace())

	if s.BaselineFt != 2214.6 {
		t.Errorf("Expected unrounded baseline 2214.6, got %v", s.BaselineFt)
	}
	if s.Display["baseline"] != "2,215 ft" {
		t.Errorf("Expected 2,215 ft, got %s", s.Display["baseline"])
	}
	if s.Display["wind_delta"] != "+1,050 ft" {
		t.Errorf("Expected +1,050 ft, got %s", s.Display["wind_delta"])
	}
	if s.LandingFt != 4940 {
		t.Errorf("Expected 4940, got %v", s.LandingFt)
	}
	if len(s.Stages) != 4 {
		t.Errorf("Expected 4 stages, got %d", len(s.Stages))
	}
}

// TestText tests the plain-text rendering.
func TestText(t *testing.T) {
	out := Text(sampleTrace())

	for _, want := range []string{
		"Step 1: Baseline Distance",
		"pressure altitude: 2,000 ft",
		"Baseline landing distance: 2,215 ft",
		"Step 3: Wind Adjustment",
		"wind: -20 kt",
		"Wind correction: +1,050 ft -> 3,180 ft",
		"Landing distance over 50 ft obstacle: 4,940 ft",
		"Estimated landing distance: 4,940 ft",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}
