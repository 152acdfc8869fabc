package landing

// Input holds the four session parameters of one pipeline run.
type Input struct {
	// PressureAltitudeFt is pressure altitude in feet
	PressureAltitudeFt float64 `json:"pressure_altitude_ft" yaml:"pressure_altitude_ft"`

	// OATC is outside air temperature in degrees Celsius
	OATC float64 `json:"oat_c" yaml:"oat_c"`

	// WeightLb is landing weight in pounds; must match a weight table column
	WeightLb float64 `json:"weight_lb" yaml:"weight_lb"`

	// WindKt is wind speed in knots; negative = tailwind, positive = headwind.
	// Must match a wind table column.
	WindKt float64 `json:"wind_kt" yaml:"wind_kt"`
}

// Range is a closed numeric interval with the step used by slider UIs.
type Range struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step" yaml:"step"`
	Unit string  `json:"unit" yaml:"unit"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Limits are the allowed ranges for each session parameter.
type Limits struct {
	PressureAltitude Range `json:"pressure_altitude" yaml:"pressure_altitude"`
	OAT              Range `json:"oat" yaml:"oat"`
	Weight           Range `json:"weight" yaml:"weight"`
	Wind             Range `json:"wind" yaml:"wind"`
}

// DefaultLimits returns the B200 chart envelope.
func DefaultLimits() Limits {
	return Limits{
		PressureAltitude: Range{Min: 0, Max: 10000, Step: 250, Unit: "ft"},
		OAT:              Range{Min: -5, Max: 45, Step: 1, Unit: "°C"},
		Weight:           Range{Min: 9000, Max: 12500, Step: 100, Unit: "lb"},
		Wind:             Range{Min: -20, Max: 30, Step: 1, Unit: "kt"},
	}
}

// DefaultInput returns the initial slider positions.
func DefaultInput() Input {
	return Input{
		PressureAltitudeFt: 2000,
		OATC:               15,
		WeightLb:           11500,
		WindKt:             0,
	}
}

// Validate checks every parameter against its range. Step alignment is not
// enforced; an unaligned weight or wind simply fails later with an
// UnknownColumnError.
func (in Input) Validate(l Limits) error {
	checks := []struct {
		name string
		v    float64
		r    Range
	}{
		{"pressure altitude", in.PressureAltitudeFt, l.PressureAltitude},
		{"OAT", in.OATC, l.OAT},
		{"landing weight", in.WeightLb, l.Weight},
		{"wind", in.WindKt, l.Wind},
	}
	for _, c := range checks {
		if !c.r.Contains(c.v) {
			return &InputRangeError{Param: c.name, Value: c.v, Range: c.r}
		}
	}
	return nil
}
