// Package report formats landing distance traces for display. Distances are
// rounded to whole feet here and only here; the pipeline itself never rounds.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/unklstewy/b200-landing/pkg/landing"
)

// RoundFeet rounds a distance to the nearest foot, halves away from zero.
func RoundFeet(v float64) int64 {
	return int64(math.Round(v))
}

// Feet formats a distance as whole feet with thousands separators.
func Feet(v float64) string {
	return humanize.Comma(RoundFeet(v)) + " ft"
}

// SignedFeet formats a correction with an explicit sign.
func SignedFeet(v float64) string {
	n := RoundFeet(v)
	if n < 0 {
		return "-" + humanize.Comma(-n) + " ft"
	}
	return "+" + humanize.Comma(n) + " ft"
}

// Number formats an input value without trailing zeros.
func Number(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.Commaf(v)
}

// Summary is the display form of a trace.
type Summary struct {
	Input            landing.Input        `json:"input"`
	BaselineFt       float64              `json:"baseline_ft"`
	WeightAdjustedFt float64              `json:"weight_adjusted_ft"`
	WindDeltaFt      float64              `json:"wind_delta_ft"`
	WindAdjustedFt   float64              `json:"wind_adjusted_ft"`
	LandingFt        float64              `json:"landing_distance_ft"`
	Display          map[string]string    `json:"display"`
	Stages           []landing.StageTrace `json:"stages"`
}

// Summarize extracts the headline numbers from a complete trace.
func Summarize(tr *landing.Trace) Summary {
	s := Summary{Input: tr.Input, Stages: tr.Stages}
	if st, ok := tr.Stage(landing.StageBaseline); ok {
		s.BaselineFt = st.Output
	}
	if st, ok := tr.Stage(landing.StageWeight); ok {
		s.WeightAdjustedFt = st.Output
	}
	if st, ok := tr.Stage(landing.StageWind); ok {
		s.WindDeltaFt = st.Delta
		s.WindAdjustedFt = st.Output
	}
	s.LandingFt = tr.Result()
	s.Display = map[string]string{
		"baseline":         Feet(s.BaselineFt),
		"weight_adjusted":  Feet(s.WeightAdjustedFt),
		"wind_delta":       SignedFeet(s.WindDeltaFt),
		"wind_adjusted":    Feet(s.WindAdjustedFt),
		"landing_distance": Feet(s.LandingFt),
	}
	return s
}

// Step is one rendered step: a heading, the inputs line and the result line.
type Step struct {
	Title  string
	Inputs string
	Result string
}

// Steps renders each stage of a trace in the order it ran.
func Steps(tr *landing.Trace) []Step {
	steps := make([]Step, 0, len(tr.Stages))
	for i, st := range tr.Stages {
		step := Step{Title: fmt.Sprintf("Step %d: %s", i+1, stageTitle(st.Stage))}

		var in []string
		for _, q := range st.Inputs {
			in = append(in, fmt.Sprintf("%s: %s %s", q.Name, Number(q.Value), q.Unit))
		}
		step.Inputs = strings.Join(in, "  ")

		switch st.Stage {
		case landing.StageBaseline:
			step.Result = "Baseline landing distance: " + Feet(st.Output)
		case landing.StageWeight:
			step.Result = "Weight-adjusted distance: " + Feet(st.Output)
		case landing.StageWind:
			step.Result = fmt.Sprintf("Wind correction: %s -> %s", SignedFeet(st.Delta), Feet(st.Output))
		case landing.StageObstacle:
			step.Result = fmt.Sprintf("Landing distance over %s ft obstacle: %s", Number(st.Column), Feet(st.Output))
		default:
			step.Result = Feet(st.Output)
		}
		steps = append(steps, step)
	}
	return steps
}

// Text renders a trace as plain text.
func Text(tr *landing.Trace) string {
	var b strings.Builder
	for _, step := range Steps(tr) {
		b.WriteString(step.Title)
		b.WriteString("\n  ")
		b.WriteString(step.Inputs)
		b.WriteString("\n  ")
		b.WriteString(step.Result)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Estimated landing distance: %s\n", Feet(tr.Result()))
	return b.String()
}

func stageTitle(stage string) string {
	switch stage {
	case landing.StageBaseline:
		return "Baseline Distance"
	case landing.StageWeight:
		return "Weight Adjustment"
	case landing.StageWind:
		return "Wind Adjustment"
	case landing.StageObstacle:
		return "Obstacle Correction"
	}
	return stage
}
