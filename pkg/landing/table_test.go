package landing

import (
	"errors"
	"testing"
)

// TestNewGrid tests building the two-dimensional table.
func TestNewGrid(t *testing.T) {
	t.Run("Header tokens are trimmed and parsed", func(t *testing.T) {
		g, err := NewGrid("grid", []string{" -5", "0 ", " 10 "}, [][]string{
			{"0", "1900", "1940", "2000"},
			{" 1000", "1980", "2010", "2090"},
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		cols := g.ColumnKeys()
		if len(cols) != 3 || cols[0] != -5 || cols[2] != 10 {
			t.Errorf("Unexpected column keys %v", cols)
		}
		rows := g.RowKeys()
		if len(rows) != 2 || rows[1] != 1000 {
			t.Errorf("Unexpected row keys %v", rows)
		}
		if g.Cell(1, 2) != 2090 {
			t.Errorf("Expected cell 2090, got %v", g.Cell(1, 2))
		}
	})

	t.Run("Lookup floors each axis independently", func(t *testing.T) {
		g, _ := NewGrid("grid", []string{"0", "10", "20"}, [][]string{
			{"0", "2000", "2100", "2200"},
			{"2000", "2200", "2300", "2400"},
		})
		cell, err := g.Lookup(2750, 19)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if cell.RowKey != 2000 || cell.ColKey != 10 || cell.Value != 2300 {
			t.Errorf("Unexpected cell %+v", cell)
		}

		cell, _ = g.Lookup(-100, -5)
		if cell.RowIndex != 0 || cell.ColIndex != 0 || cell.Value != 2000 {
			t.Errorf("Expected clamp-low to first cell, got %+v", cell)
		}
	})

	t.Run("Returned key slices are copies", func(t *testing.T) {
		g, _ := NewGrid("grid", []string{"0"}, [][]string{{"0", "1"}})
		g.RowKeys()[0] = 99
		g.ColumnKeys()[0] = 99
		cell, _ := g.Lookup(0, 0)
		if cell.RowKey != 0 || cell.ColKey != 0 {
			t.Error("Grid was mutated through an accessor")
		}
	})

	t.Run("Empty column axis", func(t *testing.T) {
		g, err := NewGrid("grid", nil, [][]string{{"0"}})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		_, err = g.Lookup(0, 0)
		var axisErr *TableAxisEmptyError
		if !errors.As(err, &axisErr) {
			t.Fatalf("Expected TableAxisEmptyError, got %v", err)
		}
		if axisErr.Axis != "column" {
			t.Errorf("Expected column axis, got %s", axisErr.Axis)
		}
	})
}

// TestNewGridMalformed tests load-time validation of the grid.
func TestNewGridMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"Non-integer header", []string{"0", "ten"}, [][]string{{"0", "1", "2"}}},
		{"Fractional header", []string{"0", "2.5"}, [][]string{{"0", "1", "2"}}},
		{"Duplicate header", []string{"0", "0"}, [][]string{{"0", "1", "2"}}},
		{"Non-numeric cell", []string{"0", "10"}, [][]string{{"0", "1", "n/a"}}},
		{"Empty cell", []string{"0", "10"}, [][]string{{"0", "1", ""}}},
		{"Non-numeric row key", []string{"0"}, [][]string{{"sea level", "1"}}},
		{"Duplicate row key", []string{"0"}, [][]string{{"0", "1"}, {"0", "2"}}},
		{"Short row", []string{"0", "10"}, [][]string{{"0", "1"}}},
		{"Infinite cell", []string{"0"}, [][]string{{"0", "Inf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid("grid", tt.header, tt.rows)
			var malformed *MalformedTableError
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected MalformedTableError, got %v", err)
			}
			if malformed.Table != "grid" {
				t.Errorf("Expected table name grid, got %s", malformed.Table)
			}
		})
	}
}

// TestNewRefTable tests building reference-column tables.
func TestNewRefTable(t *testing.T) {
	header := []string{"12500", "11500", "10500"}
	rows := [][]string{
		{"2000", "1900", "1800"},
		{"2200", "2100", "2000"},
	}

	t.Run("Reference column need not be first", func(t *testing.T) {
		tbl, err := NewRefTable("weight", []string{"11500", "12500"}, [][]string{{"1900", "2000"}}, 12500)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if tbl.ReferenceIndex() != 1 || tbl.Reference() != 12500 {
			t.Errorf("Expected reference at index 1, got %d", tbl.ReferenceIndex())
		}
	})

	t.Run("Accessors", func(t *testing.T) {
		tbl, err := NewRefTable("weight", header, rows, 12500)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if tbl.Len() != 2 {
			t.Errorf("Expected 2 rows, got %d", tbl.Len())
		}
		col, ok := tbl.ColumnIndex(10500)
		if !ok || col != 2 {
			t.Errorf("Expected column 2, got %d (%v)", col, ok)
		}
		if _, ok := tbl.ColumnIndex(9050); ok {
			t.Error("Expected no column for 9050")
		}
		ref := tbl.ReferenceValues()
		if len(ref) != 2 || ref[0] != 2000 || ref[1] != 2200 {
			t.Errorf("Unexpected reference values %v", ref)
		}
	})

	t.Run("Missing reference column", func(t *testing.T) {
		_, err := NewRefTable("weight", []string{"11500", "10500"}, nil, 12500)
		var malformed *MalformedTableError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedTableError, got %v", err)
		}
		if malformed.Column != "12500" {
			t.Errorf("Expected column 12500 in error, got %q", malformed.Column)
		}
	})

	t.Run("Missing required column", func(t *testing.T) {
		_, err := NewRefTable("obstacle", []string{"0", "35"}, nil, 0, 50)
		var malformed *MalformedTableError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedTableError, got %v", err)
		}
	})

	t.Run("Non-numeric header token", func(t *testing.T) {
		_, err := NewRefTable("wind", []string{"0", "calm"}, nil, 0)
		var malformed *MalformedTableError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedTableError, got %v", err)
		}
	})

	t.Run("Ragged row", func(t *testing.T) {
		_, err := NewRefTable("weight", header, [][]string{{"2000", "1900"}}, 12500)
		var malformed *MalformedTableError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedTableError, got %v", err)
		}
		if malformed.Row != 1 {
			t.Errorf("Expected row 1, got %d", malformed.Row)
		}
	})

	t.Run("No rows loads but cannot select", func(t *testing.T) {
		tbl, err := NewRefTable("weight", header, nil, 12500)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		_, err = tbl.SelectRow(2000)
		var axisErr *TableAxisEmptyError
		if !errors.As(err, &axisErr) {
			t.Errorf("Expected TableAxisEmptyError, got %v", err)
		}
	})
}
