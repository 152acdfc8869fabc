package landing

// Stage names as they appear in traces and errors.
const (
	StageBaseline = "baseline"
	StageWeight   = "weight adjustment"
	StageWind     = "wind adjustment"
	StageObstacle = "obstacle correction"
)

// Distinguished column keys of the B200 charts.
const (
	// MaxWeightLb is the weight table's reference column
	MaxWeightLb = 12500.0

	// ZeroWindKt is the wind table's reference column
	ZeroWindKt = 0.0

	// ObstacleBaseFt is the obstacle table's reference column (no obstacle)
	ObstacleBaseFt = 0.0

	// ObstacleHeightFt is the obstacle table's target column (50 ft obstacle)
	ObstacleHeightFt = 50.0
)

// Quantity is one named input a stage consumed.
type Quantity struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// StageTrace records what one stage consumed, which reference row it picked
// and what it produced.
type StageTrace struct {
	Stage  string     `json:"stage"`
	Table  string     `json:"table"`
	Inputs []Quantity `json:"inputs"`

	// RowIndex is the selected row; RowKey its value on the row-selection
	// axis (pressure altitude for the baseline, the reference column
	// otherwise)
	RowIndex int     `json:"row_index"`
	RowKey   float64 `json:"row_key"`

	// Column is the key of the column the output was read from
	Column float64 `json:"column"`

	// Delta is the wind correction added to the incoming distance; zero for
	// the other stages
	Delta float64 `json:"delta_ft"`

	// Output is the distance in feet handed to the next stage
	Output float64 `json:"output_ft"`
}

// Stage is one step of the landing distance pipeline. Apply receives the
// running distance from the previous stage (zero for the first) and returns
// the next distance in its trace.
type Stage interface {
	Name() string
	Apply(distance float64, in Input) (StageTrace, error)
}

// BaselineStage reads the baseline landing distance from the pressure
// altitude by OAT grid. It ignores the incoming distance.
type BaselineStage struct {
	Table *Grid
}

func (s BaselineStage) Name() string { return StageBaseline }

func (s BaselineStage) Apply(_ float64, in Input) (StageTrace, error) {
	cell, err := s.Table.Lookup(in.PressureAltitudeFt, in.OATC)
	if err != nil {
		return StageTrace{}, err
	}
	return StageTrace{
		Stage: StageBaseline,
		Table: s.Table.Name(),
		Inputs: []Quantity{
			{Name: "pressure altitude", Value: in.PressureAltitudeFt, Unit: "ft"},
			{Name: "OAT", Value: in.OATC, Unit: "°C"},
		},
		RowIndex: cell.RowIndex,
		RowKey:   cell.RowKey,
		Column:   cell.ColKey,
		Output:   cell.Value,
	}, nil
}

// WeightStage corrects the baseline for landing weight. The row is located
// on the maximum-weight column, the result read from the selected weight's
// column.
type WeightStage struct {
	Table *RefTable
}

func (s WeightStage) Name() string { return StageWeight }

func (s WeightStage) Apply(distance float64, in Input) (StageTrace, error) {
	col, ok := s.Table.ColumnIndex(in.WeightLb)
	if !ok {
		return StageTrace{}, &UnknownColumnError{Table: s.Table.Name(), Column: in.WeightLb, Unit: "lb"}
	}
	row, err := s.Table.SelectRow(distance)
	if err != nil {
		return StageTrace{}, err
	}
	return StageTrace{
		Stage: StageWeight,
		Table: s.Table.Name(),
		Inputs: []Quantity{
			{Name: "baseline distance", Value: distance, Unit: "ft"},
			{Name: "landing weight", Value: in.WeightLb, Unit: "lb"},
		},
		RowIndex: row,
		RowKey:   s.Table.Value(row, s.Table.ReferenceIndex()),
		Column:   in.WeightLb,
		Output:   s.Table.Value(row, col),
	}, nil
}

// WindStage applies the wind correction as a delta between the selected
// wind column and the zero-wind column of the located row. The delta's sign
// follows the table data.
type WindStage struct {
	Table *RefTable
}

func (s WindStage) Name() string { return StageWind }

func (s WindStage) Apply(distance float64, in Input) (StageTrace, error) {
	col, ok := s.Table.ColumnIndex(in.WindKt)
	if !ok {
		return StageTrace{}, &UnknownColumnError{Table: s.Table.Name(), Column: in.WindKt, Unit: "kt"}
	}
	row, err := s.Table.SelectRow(distance)
	if err != nil {
		return StageTrace{}, err
	}
	ref := s.Table.Value(row, s.Table.ReferenceIndex())
	delta := s.Table.Value(row, col) - ref
	return StageTrace{
		Stage: StageWind,
		Table: s.Table.Name(),
		Inputs: []Quantity{
			{Name: "weight-adjusted distance", Value: distance, Unit: "ft"},
			{Name: "wind", Value: in.WindKt, Unit: "kt"},
		},
		RowIndex: row,
		RowKey:   ref,
		Column:   in.WindKt,
		Delta:    delta,
		Output:   distance + delta,
	}, nil
}

// ObstacleStage converts the wind-corrected ground roll to the distance over
// a fixed obstacle height. It takes no user parameter.
type ObstacleStage struct {
	Table *RefTable

	// TargetFt is the obstacle column read; ObstacleHeightFt when zero
	TargetFt float64
}

func (s ObstacleStage) Name() string { return StageObstacle }

func (s ObstacleStage) Apply(distance float64, _ Input) (StageTrace, error) {
	target := s.TargetFt
	if target == 0 {
		target = ObstacleHeightFt
	}
	col, ok := s.Table.ColumnIndex(target)
	if !ok {
		return StageTrace{}, &UnknownColumnError{Table: s.Table.Name(), Column: target, Unit: "ft"}
	}
	row, err := s.Table.SelectRow(distance)
	if err != nil {
		return StageTrace{}, err
	}
	return StageTrace{
		Stage: StageObstacle,
		Table: s.Table.Name(),
		Inputs: []Quantity{
			{Name: "wind-adjusted distance", Value: distance, Unit: "ft"},
		},
		RowIndex: row,
		RowKey:   s.Table.Value(row, s.Table.ReferenceIndex()),
		Column:   target,
		Output:   s.Table.Value(row, col),
	}, nil
}
