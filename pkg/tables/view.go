package tables

import (
	"slices"

	"github.com/unklstewy/b200-landing/pkg/landing"
)

// Table slugs used in URLs and on the command line.
const (
	SlugPressureOAT = "pressure-oat"
	SlugWeight      = "weight"
	SlugWind        = "wind"
	SlugObstacle    = "obstacle"
)

// Slugs lists the tables in pipeline order.
var Slugs = []string{SlugPressureOAT, SlugWeight, SlugWind, SlugObstacle}

// View is a display copy of one table. Grid tables carry their row keys;
// reference tables carry only columns since the first column serves as the
// row selector.
type View struct {
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Stage       string      `json:"stage"`
	ColumnUnit  string      `json:"column_unit"`
	RowUnit     string      `json:"row_unit"`
	Columns     []float64   `json:"columns"`
	RowKeys     []float64   `json:"row_keys,omitempty"`
	Reference   *float64    `json:"reference,omitempty"`
	Cells       [][]float64 `json:"cells"`
	Description string      `json:"description"`
}

// Views returns every table in pipeline order.
func (s *Set) Views() []View {
	views := make([]View, 0, len(Slugs))
	for _, slug := range Slugs {
		v, _ := s.View(slug)
		views = append(views, v)
	}
	return views
}

// View returns the table named by slug.
func (s *Set) View(slug string) (View, bool) {
	switch slug {
	case SlugPressureOAT:
		g := s.PressureOAT
		cols, rows := g.ColumnKeys(), g.RowKeys()
		cells := make([][]float64, len(rows))
		for i := range rows {
			cells[i] = make([]float64, len(cols))
			for j := range cols {
				cells[i][j] = g.Cell(i, j)
			}
		}
		return View{
			Slug:        slug,
			Name:        g.Name(),
			Stage:       landing.StageBaseline,
			ColumnUnit:  "°C",
			RowUnit:     "ft",
			Columns:     cols,
			RowKeys:     rows,
			Cells:       cells,
			Description: "Landing distance (ft) by pressure altitude and outside air temperature",
		}, true
	case SlugWeight:
		return refView(slug, s.Weight, landing.StageWeight, "lb",
			"Distance at landing weight, read from the row matching the baseline at maximum weight"), true
	case SlugWind:
		return refView(slug, s.Wind, landing.StageWind, "kt",
			"Distance by wind component (negative is tailwind), read from the row matching the zero-wind distance"), true
	case SlugObstacle:
		return refView(slug, s.Obstacle, landing.StageObstacle, "ft",
			"Distance over an obstacle, read from the row matching the ground-roll distance"), true
	}
	return View{}, false
}

func refView(slug string, t *landing.RefTable, stage, unit, desc string) View {
	cols := t.Columns()
	cells := make([][]float64, t.Len())
	for i := range cells {
		cells[i] = make([]float64, len(cols))
		for j := range cols {
			cells[i][j] = t.Value(i, j)
		}
	}
	ref := t.Reference()
	return View{
		Slug:        slug,
		Name:        t.Name(),
		Stage:       stage,
		ColumnUnit:  unit,
		RowUnit:     "ft",
		Columns:     cols,
		Reference:   &ref,
		Cells:       cells,
		Description: desc,
	}
}

// Highlight marks the cell a stage read. Row and Col are indices into View.Cells.
type Highlight struct {
	Row int
	Col int
	// RefCol is the reference column index for reference tables, or -1
	RefCol int
}

// HighlightFor returns the cell a traced stage read from v.
func HighlightFor(v View, st landing.StageTrace) (Highlight, bool) {
	if st.Stage != v.Stage {
		return Highlight{}, false
	}
	col := slices.Index(v.Columns, st.Column)
	if col < 0 || st.RowIndex < 0 || st.RowIndex >= len(v.Cells) {
		return Highlight{}, false
	}
	h := Highlight{Row: st.RowIndex, Col: col, RefCol: -1}
	if v.Reference != nil {
		h.RefCol = slices.Index(v.Columns, *v.Reference)
	}
	return h, true
}
