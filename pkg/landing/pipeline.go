package landing

import "errors"

// Table names used by the default loaders.
const (
	TablePressureOAT = "pressure altitude x OAT"
	TableWeight      = "weight adjustment"
	TableWind        = "wind component"
	TableObstacle    = "obstacle"
)

// Tables is the reference data set for one aircraft chart. Tables are built
// once and shared read-only between any number of calculators.
type Tables struct {
	PressureOAT *Grid
	Weight      *RefTable
	Wind        *RefTable
	Obstacle    *RefTable

	// ObstacleHeightFt selects the obstacle column; ObstacleHeightFt when zero
	ObstacleHeightFt float64
}

// ErrMissingTable is returned by NewCalculator when a table is nil.
var ErrMissingTable = errors.New("reference table set is incomplete")

// Trace is the record of one pipeline run: the input and one entry per
// stage, in execution order.
type Trace struct {
	Input  Input        `json:"input"`
	Stages []StageTrace `json:"stages"`
}

// Stage returns the entry for the named stage.
func (t *Trace) Stage(name string) (StageTrace, bool) {
	for _, s := range t.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageTrace{}, false
}

// Result returns the final (obstacle-corrected) landing distance in feet.
func (t *Trace) Result() float64 {
	if len(t.Stages) == 0 {
		return 0
	}
	return t.Stages[len(t.Stages)-1].Output
}

// Calculator runs the four stages in fixed order. It holds no per-run state
// and may be used from multiple goroutines.
type Calculator struct {
	stages []Stage
	limits Limits
}

// NewCalculator wires the stage pipeline to a table set. Inputs are checked
// against DefaultLimits unless WithLimits is used.
func NewCalculator(t Tables) (*Calculator, error) {
	if t.PressureOAT == nil || t.Weight == nil || t.Wind == nil || t.Obstacle == nil {
		return nil, ErrMissingTable
	}
	return &Calculator{
		stages: []Stage{
			BaselineStage{Table: t.PressureOAT},
			WeightStage{Table: t.Weight},
			WindStage{Table: t.Wind},
			ObstacleStage{Table: t.Obstacle, TargetFt: t.ObstacleHeightFt},
		},
		limits: DefaultLimits(),
	}, nil
}

// WithLimits returns a copy of the calculator checking inputs against l.
func (c *Calculator) WithLimits(l Limits) *Calculator {
	cp := *c
	cp.limits = l
	return &cp
}

// Limits returns the input ranges the calculator enforces.
func (c *Calculator) Limits() Limits { return c.limits }

// Stages returns the stage names in execution order.
func (c *Calculator) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// Run validates the input and threads the running distance through every
// stage. The first failing stage halts the run; its error is returned as a
// *StageError and no trace is produced.
func (c *Calculator) Run(in Input) (*Trace, error) {
	if err := in.Validate(c.limits); err != nil {
		return nil, err
	}

	trace := &Trace{Input: in, Stages: make([]StageTrace, 0, len(c.stages))}
	distance := 0.0
	for _, s := range c.stages {
		st, err := s.Apply(distance, in)
		if err != nil {
			return nil, &StageError{Stage: s.Name(), Err: err}
		}
		trace.Stages = append(trace.Stages, st)
		distance = st.Output
	}
	return trace, nil
}
