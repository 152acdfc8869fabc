package landing

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Grid is a two-dimensional reference table: an ordered row key (pressure
// altitude) by an ordered column key (outside air temperature), holding one
// distance per cell. A Grid is immutable once built and safe for concurrent
// reads.
type Grid struct {
	name  string
	rows  []float64   // row keys, source order
	cols  []float64   // column keys, source order
	cells [][]float64 // cells[row][col]
}

// GridCell identifies the cell chosen by Grid.Lookup.
type GridCell struct {
	RowIndex int     `json:"row_index"`
	RowKey   float64 `json:"row_key"`
	ColIndex int     `json:"col_index"`
	ColKey   float64 `json:"col_key"`
	Value    float64 `json:"value"`
}

// NewGrid builds a Grid from raw tabular data. header holds the column key
// tokens; each row holds its row key followed by one cell per column.
func NewGrid(name string, header []string, rows [][]string) (*Grid, error) {
	cols, err := parseHeader(name, header)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		name:  name,
		cols:  cols,
		rows:  make([]float64, 0, len(rows)),
		cells: make([][]float64, 0, len(rows)),
	}
	for i, raw := range rows {
		if len(raw) != len(cols)+1 {
			return nil, &MalformedTableError{
				Table:  name,
				Reason: "expected " + strconv.Itoa(len(cols)+1) + " cells, found " + strconv.Itoa(len(raw)),
				Row:    i + 1,
			}
		}
		key, err := parseCell(name, i+1, "row key", raw[0])
		if err != nil {
			return nil, err
		}
		if slices.Contains(g.rows, key) {
			return nil, &MalformedTableError{Table: name, Reason: "duplicate row key", Row: i + 1, Column: strings.TrimSpace(raw[0])}
		}
		values, err := parseCells(name, i+1, header, raw[1:])
		if err != nil {
			return nil, err
		}
		g.rows = append(g.rows, key)
		g.cells = append(g.cells, values)
	}
	return g, nil
}

// Name returns the table name used in errors and traces.
func (g *Grid) Name() string { return g.name }

// RowKeys returns a copy of the row keys in source order.
func (g *Grid) RowKeys() []float64 { return slices.Clone(g.rows) }

// ColumnKeys returns a copy of the column keys in source order.
func (g *Grid) ColumnKeys() []float64 { return slices.Clone(g.cols) }

// Cell returns the value at the given row and column index.
func (g *Grid) Cell(row, col int) float64 { return g.cells[row][col] }

// Lookup floor-looks-up the row axis with rowQuery and, independently, the
// column axis with colQuery, and returns the cell at their intersection.
func (g *Grid) Lookup(rowQuery, colQuery float64) (GridCell, error) {
	ri, err := floorIndex(g.rows, rowQuery)
	if err != nil {
		return GridCell{}, &TableAxisEmptyError{Table: g.name, Axis: "row"}
	}
	ci, err := floorIndex(g.cols, colQuery)
	if err != nil {
		return GridCell{}, &TableAxisEmptyError{Table: g.name, Axis: "column"}
	}
	return GridCell{
		RowIndex: ri,
		RowKey:   g.rows[ri],
		ColIndex: ci,
		ColKey:   g.cols[ci],
		Value:    g.cells[ri][ci],
	}, nil
}

// RefTable is a reference table with one distinguished reference column.
// The reference column only locates a row; the remaining columns are the
// values read once a row is chosen.
type RefTable struct {
	name    string
	columns []float64   // column keys, source order
	ref     int         // index of the reference column
	rows    [][]float64 // rows[row][col]
}

// NewRefTable builds a RefTable from raw tabular data. header holds one key
// token per column. The reference column and every key in required must be
// present in the header.
func NewRefTable(name string, header []string, rows [][]string, reference float64, required ...float64) (*RefTable, error) {
	cols, err := parseHeader(name, header)
	if err != nil {
		return nil, err
	}

	ref := slices.Index(cols, reference)
	if ref < 0 {
		return nil, &MalformedTableError{Table: name, Reason: "missing reference column", Column: formatKey(reference)}
	}
	for _, k := range required {
		if !slices.Contains(cols, k) {
			return nil, &MalformedTableError{Table: name, Reason: "missing required column", Column: formatKey(k)}
		}
	}

	t := &RefTable{
		name:    name,
		columns: cols,
		ref:     ref,
		rows:    make([][]float64, 0, len(rows)),
	}
	for i, raw := range rows {
		if len(raw) != len(cols) {
			return nil, &MalformedTableError{
				Table:  name,
				Reason: "expected " + strconv.Itoa(len(cols)) + " cells, found " + strconv.Itoa(len(raw)),
				Row:    i + 1,
			}
		}
		values, err := parseCells(name, i+1, header, raw)
		if err != nil {
			return nil, err
		}
		t.rows = append(t.rows, values)
	}
	return t, nil
}

// Name returns the table name used in errors and traces.
func (t *RefTable) Name() string { return t.name }

// Columns returns a copy of the column keys in source order.
func (t *RefTable) Columns() []float64 { return slices.Clone(t.columns) }

// Reference returns the key of the reference column.
func (t *RefTable) Reference() float64 { return t.columns[t.ref] }

// ReferenceIndex returns the position of the reference column.
func (t *RefTable) ReferenceIndex() int { return t.ref }

// Len returns the number of data rows.
func (t *RefTable) Len() int { return len(t.rows) }

// Value returns the cell at the given row and column index.
func (t *RefTable) Value(row, col int) float64 { return t.rows[row][col] }

// ColumnIndex returns the position of the column keyed by key.
func (t *RefTable) ColumnIndex(key float64) (int, bool) {
	i := slices.Index(t.columns, key)
	return i, i >= 0
}

// ReferenceValues returns the reference column's values in row order.
func (t *RefTable) ReferenceValues() []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[t.ref]
	}
	return out
}

// SelectRow picks the row whose reference-column value is the floor of
// query, falling back to the first row when none qualifies.
func (t *RefTable) SelectRow(query float64) (int, error) {
	row, err := FloorRow(t.ReferenceValues(), query)
	if err != nil {
		return 0, &TableAxisEmptyError{Table: t.name, Axis: "reference " + formatKey(t.Reference())}
	}
	return row, nil
}

// parseHeader converts header tokens to integer keys.
func parseHeader(table string, header []string) ([]float64, error) {
	keys := make([]float64, 0, len(header))
	for _, tok := range header {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &MalformedTableError{Table: table, Reason: "header token is not an integer", Column: tok}
		}
		k := float64(n)
		if slices.Contains(keys, k) {
			return nil, &MalformedTableError{Table: table, Reason: "duplicate column", Column: tok}
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func parseCells(table string, row int, header []string, raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for j, s := range raw {
		v, err := parseCell(table, row, strings.TrimSpace(header[j]), s)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

func parseCell(table string, row int, column, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MalformedTableError{Table: table, Reason: "cell is not numeric: " + strconv.Quote(s), Row: row, Column: column}
	}
	return v, nil
}

func formatKey(k float64) string {
	return strconv.FormatFloat(k, 'f', -1, 64)
}
