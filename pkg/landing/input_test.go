package landing

import (
	"errors"
	"strings"
	"testing"
)

// TestInputValidate tests the closed input ranges.
func TestInputValidate(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name  string
		in    Input
		param string
	}{
		{"Defaults are valid", DefaultInput(), ""},
		{"Range ends are inclusive", Input{PressureAltitudeFt: 10000, OATC: -5, WeightLb: 9000, WindKt: 30}, ""},
		{"Maximum tailwind is valid", Input{PressureAltitudeFt: 0, OATC: 45, WeightLb: 12500, WindKt: -20}, ""},
		{"Altitude below range", Input{PressureAltitudeFt: -1, OATC: 15, WeightLb: 11500}, "pressure altitude"},
		{"OAT above range", Input{PressureAltitudeFt: 0, OATC: 46, WeightLb: 11500}, "OAT"},
		{"Weight above range", Input{PressureAltitudeFt: 0, OATC: 15, WeightLb: 12600}, "landing weight"},
		{"Tailwind beyond range", Input{PressureAltitudeFt: 0, OATC: 15, WeightLb: 11500, WindKt: -21}, "wind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate(limits)
			if tt.param == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			var rangeErr *InputRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Expected InputRangeError, got %v", err)
			}
			if rangeErr.Param != tt.param {
				t.Errorf("Expected param %s, got %s", tt.param, rangeErr.Param)
			}
		})
	}
}

// TestRangeClamp tests slider clamping.
func TestRangeClamp(t *testing.T) {
	r := Range{Min: -20, Max: 30, Step: 1}
	if got := r.Clamp(-25); got != -20 {
		t.Errorf("Expected -20, got %v", got)
	}
	if got := r.Clamp(31); got != 30 {
		t.Errorf("Expected 30, got %v", got)
	}
	if got := r.Clamp(5); got != 5 {
		t.Errorf("Expected 5, got %v", got)
	}
}

// TestErrorMessages checks that error text names the offending value.
func TestErrorMessages(t *testing.T) {
	err := &UnknownColumnError{Table: TableWeight, Column: 9050, Unit: "lb"}
	if !strings.Contains(err.Error(), "9050 lb") {
		t.Errorf("Expected weight in message, got %q", err.Error())
	}

	stageErr := &StageError{Stage: StageWeight, Err: err}
	if !strings.HasPrefix(stageErr.Error(), "weight adjustment stage failed") {
		t.Errorf("Unexpected stage error message %q", stageErr.Error())
	}

	malformed := &MalformedTableError{Table: TableWind, Reason: "header token is not an integer", Column: "calm"}
	if !strings.Contains(malformed.Error(), `"calm"`) {
		t.Errorf("Expected column in message, got %q", malformed.Error())
	}
}
