package landing

import (
	"errors"
	"testing"
)

func mustGrid(t *testing.T, header []string, rows [][]string) *Grid {
	t.Helper()
	g, err := NewGrid(TablePressureOAT, header, rows)
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	return g
}

func mustRef(t *testing.T, name string, header []string, rows [][]string, ref float64, required ...float64) *RefTable {
	t.Helper()
	tbl, err := NewRefTable(name, header, rows, ref, required...)
	if err != nil {
		t.Fatalf("Failed to build %s table: %v", name, err)
	}
	return tbl
}

// testTables returns a small chart with hand-checkable values.
func testTables(t *testing.T) Tables {
	t.Helper()
	return Tables{
		PressureOAT: mustGrid(t, []string{"0", "10", "20"}, [][]string{
			{"0", "2000", "2100", "2200"},
			{"2000", "2200", "2300", "2400"},
			{"4000", "2400", "2500", "2600"},
		}),
		Weight: mustRef(t, TableWeight, []string{"12500", "11500", "10500"}, [][]string{
			{"2000", "1900", "1800"},
			{"2200", "2100", "2000"},
			{"2400", "2300", "2200"},
			{"2600", "2500", "2400"},
		}, MaxWeightLb),
		Wind: mustRef(t, TableWind, []string{"0", "-20", "-10", "10", "20"}, [][]string{
			{"1800", "2600", "2200", "1650", "1500"},
			{"2000", "2900", "2450", "1850", "1700"},
			{"2200", "3200", "2700", "2050", "1900"},
		}, ZeroWindKt),
		Obstacle: mustRef(t, TableObstacle, []string{"0", "50"}, [][]string{
			{"1500", "2700"},
			{"2000", "3300"},
			{"2500", "3900"},
		}, ObstacleBaseFt, ObstacleHeightFt),
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(testTables(t))
	if err != nil {
		t.Fatalf("Failed to create calculator: %v", err)
	}
	return c
}

// TestCalculatorRun tests complete pipeline runs.
func TestCalculatorRun(t *testing.T) {
	c := newTestCalculator(t)

	tests := []struct {
		name     string
		in       Input
		baseline float64
		weight   float64
		delta    float64
		wind     float64
		result   float64
	}{
		{
			// 2000 ft / 15 °C -> cell (2000, 10); weight row 2200; wind row 2000
			name:     "Zero wind produces zero delta",
			in:       Input{PressureAltitudeFt: 2000, OATC: 15, WeightLb: 11500, WindKt: 0},
			baseline: 2300, weight: 2100, delta: 0, wind: 2100, result: 3300,
		},
		{
			name:     "Maximum tailwind selects the -20 column",
			in:       Input{PressureAltitudeFt: 2000, OATC: 15, WeightLb: 11500, WindKt: -20},
			baseline: 2300, weight: 2100, delta: 900, wind: 3000, result: 3900,
		},
		{
			name:     "Headwind shortens the distance",
			in:       Input{PressureAltitudeFt: 2000, OATC: 15, WeightLb: 11500, WindKt: 10},
			baseline: 2300, weight: 2100, delta: -150, wind: 1950, result: 2700,
		},
		{
			name:     "Maximum weight reads the reference column",
			in:       Input{PressureAltitudeFt: 4000, OATC: 45, WeightLb: 12500, WindKt: 20},
			baseline: 2600, weight: 2600, delta: -300, wind: 2300, result: 3300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, err := c.Run(tt.in)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if len(trace.Stages) != 4 {
				t.Fatalf("Expected 4 stages, got %d", len(trace.Stages))
			}

			got := []float64{
				trace.Stages[0].Output,
				trace.Stages[1].Output,
				trace.Stages[2].Delta,
				trace.Stages[2].Output,
				trace.Result(),
			}
			want := []float64{tt.baseline, tt.weight, tt.delta, tt.wind, tt.result}
			labels := []string{"baseline", "weight", "delta", "wind", "result"}
			for i := range got {
				if got[i] != want[i] {
					t.Errorf("Expected %s %v, got %v", labels[i], want[i], got[i])
				}
			}
			if trace.Input != tt.in {
				t.Errorf("Trace input %+v does not match %+v", trace.Input, tt.in)
			}
		})
	}
}

// TestCalculatorStageOrder tests that stages run and are traced in order.
func TestCalculatorStageOrder(t *testing.T) {
	c := newTestCalculator(t)

	want := []string{StageBaseline, StageWeight, StageWind, StageObstacle}
	names := c.Stages()
	for i, n := range want {
		if names[i] != n {
			t.Errorf("Expected stage %d to be %s, got %s", i, n, names[i])
		}
	}

	trace, err := c.Run(DefaultInput())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	for i, n := range want {
		if trace.Stages[i].Stage != n {
			t.Errorf("Expected trace entry %d to be %s, got %s", i, n, trace.Stages[i].Stage)
		}
	}
	// Each stage consumes the previous output.
	for i := 1; i < len(trace.Stages); i++ {
		if trace.Stages[i].Inputs[0].Value != trace.Stages[i-1].Output {
			t.Errorf("Stage %s consumed %v, previous output %v",
				trace.Stages[i].Stage, trace.Stages[i].Inputs[0].Value, trace.Stages[i-1].Output)
		}
	}

	st, ok := trace.Stage(StageWind)
	if !ok || st.Column != 0 {
		t.Errorf("Expected wind stage with column 0, got %+v", st)
	}
}

// TestWeightRowBoundary tests that a baseline equal to a reference value selects that row.
func TestWeightRowBoundary(t *testing.T) {
	c := newTestCalculator(t)

	// 0 ft / 20 °C -> baseline 2200, exactly the second reference value.
	trace, err := c.Run(Input{PressureAltitudeFt: 0, OATC: 20, WeightLb: 10500, WindKt: 0})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	st, _ := trace.Stage(StageWeight)
	if st.RowIndex != 1 || st.RowKey != 2200 {
		t.Errorf("Expected row 1 (2200), got row %d (%v)", st.RowIndex, st.RowKey)
	}
	if st.Output != 2000 {
		t.Errorf("Expected 2000, got %v", st.Output)
	}
}

// TestCalculatorErrors tests that failures halt the pipeline without a trace.
func TestCalculatorErrors(t *testing.T) {
	c := newTestCalculator(t)

	t.Run("Unknown weight column", func(t *testing.T) {
		trace, err := c.Run(Input{PressureAltitudeFt: 2000, OATC: 15, WeightLb: 9050, WindKt: 0})
		if trace != nil {
			t.Error("Expected no trace on failure")
		}
		var colErr *UnknownColumnError
		if !errors.As(err, &colErr) {
			t.Fatalf("Expected UnknownColumnError, got %v", err)
		}
		if colErr.Column != 9050 {
			t.Errorf("Expected column 9050, got %v", colErr.Column)
		}
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != StageWeight {
			t.Errorf("Expected weight StageError, got %v", err)
		}
	})

	t.Run("Unknown wind column is never clamped", func(t *testing.T) {
		tables := testTables(t)
		tables.Wind = mustRef(t, TableWind, []string{"0", "-10", "10"}, [][]string{
			{"2000", "2450", "1850"},
		}, ZeroWindKt)
		c, err := NewCalculator(tables)
		if err != nil {
			t.Fatalf("Failed to create calculator: %v", err)
		}
		_, err = c.Run(Input{PressureAltitudeFt: 2000, OATC: 15, WeightLb: 11500, WindKt: -20})
		var colErr *UnknownColumnError
		if !errors.As(err, &colErr) {
			t.Fatalf("Expected UnknownColumnError, got %v", err)
		}
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != StageWind {
			t.Errorf("Expected wind StageError, got %v", err)
		}
	})

	t.Run("Input out of range", func(t *testing.T) {
		_, err := c.Run(Input{PressureAltitudeFt: 12000, OATC: 15, WeightLb: 11500})
		var rangeErr *InputRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("Expected InputRangeError, got %v", err)
		}
		if rangeErr.Param != "pressure altitude" {
			t.Errorf("Expected pressure altitude, got %s", rangeErr.Param)
		}
	})

	t.Run("Empty reference table", func(t *testing.T) {
		tables := testTables(t)
		tables.Obstacle = mustRef(t, TableObstacle, []string{"0", "50"}, nil, ObstacleBaseFt, ObstacleHeightFt)
		c, _ := NewCalculator(tables)
		_, err := c.Run(DefaultInput())
		var axisErr *TableAxisEmptyError
		if !errors.As(err, &axisErr) {
			t.Fatalf("Expected TableAxisEmptyError, got %v", err)
		}
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != StageObstacle {
			t.Errorf("Expected obstacle StageError, got %v", err)
		}
	})

	t.Run("Missing table", func(t *testing.T) {
		tables := testTables(t)
		tables.Wind = nil
		if _, err := NewCalculator(tables); !errors.Is(err, ErrMissingTable) {
			t.Errorf("Expected ErrMissingTable, got %v", err)
		}
	})
}

// TestCalculatorWithLimits tests custom input envelopes.
func TestCalculatorWithLimits(t *testing.T) {
	c := newTestCalculator(t)
	limits := DefaultLimits()
	limits.PressureAltitude.Max = 4000

	narrow := c.WithLimits(limits)
	if _, err := narrow.Run(Input{PressureAltitudeFt: 5000, OATC: 15, WeightLb: 11500}); err == nil {
		t.Error("Expected range error with narrowed limits")
	}
	if _, err := c.Run(Input{PressureAltitudeFt: 5000, OATC: 15, WeightLb: 11500}); err != nil {
		t.Errorf("Original calculator should keep default limits, got: %v", err)
	}
}

// TestObstacleTarget tests that the obstacle column is configurable.
func TestObstacleTarget(t *testing.T) {
	tables := testTables(t)
	tables.Obstacle = mustRef(t, TableObstacle, []string{"0", "35", "50"}, [][]string{
		{"1500", "2400", "2700"},
		{"2000", "3000", "3300"},
	}, ObstacleBaseFt)
	tables.ObstacleHeightFt = 35

	c, err := NewCalculator(tables)
	if err != nil {
		t.Fatalf("Failed to create calculator: %v", err)
	}
	trace, err := c.Run(DefaultInput())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if trace.Result() != 3000 {
		t.Errorf("Expected 3000 from the 35 ft column, got %v", trace.Result())
	}
}
