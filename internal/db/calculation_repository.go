package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/unklstewy/b200-landing/pkg/landing"
)

// ErrCalculationNotFound is returned when a stored calculation does not exist
// or belongs to another user.
var ErrCalculationNotFound = errors.New("calculation not found")

// Calculation is a stored landing distance run.
type Calculation struct {
	ID               int64                `json:"id"`
	UserID           int                  `json:"user_id"`
	Dataset          string               `json:"dataset"`
	Input            landing.Input        `json:"input"`
	BaselineFt       float64              `json:"baseline_ft"`
	WeightAdjustedFt float64              `json:"weight_adjusted_ft"`
	WindAdjustedFt   float64              `json:"wind_adjusted_ft"`
	LandingFt        float64              `json:"landing_distance_ft"`
	Stages           []landing.StageTrace `json:"stages"`
	CreatedAt        time.Time            `json:"created_at"`
}

// NewCalculation flattens a completed trace into a storable record.
func NewCalculation(userID int, dataset string, tr *landing.Trace) *Calculation {
	c := &Calculation{
		UserID:    userID,
		Dataset:   dataset,
		Input:     tr.Input,
		Stages:    tr.Stages,
		LandingFt: tr.Result(),
	}
	if st, ok := tr.Stage(landing.StageBaseline); ok {
		c.BaselineFt = st.Output
	}
	if st, ok := tr.Stage(landing.StageWeight); ok {
		c.WeightAdjustedFt = st.Output
	}
	if st, ok := tr.Stage(landing.StageWind); ok {
		c.WindAdjustedFt = st.Output
	}
	return c
}

// CalculationRepository stores and retrieves calculation history.
type CalculationRepository struct {
	db *sql.DB
}

// NewCalculationRepository creates a new calculation repository
func NewCalculationRepository(db *sql.DB) *CalculationRepository {
	return &CalculationRepository{db: db}
}

// Save inserts c and fills in its ID and creation time.
func (r *CalculationRepository) Save(ctx context.Context, c *Calculation) error {
	trace, err := json.Marshal(c.Stages)
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}

	query := `
		INSERT INTO calculations (
			user_id, dataset, pressure_altitude_ft, oat_c, weight_lb, wind_kt,
			baseline_ft, weight_adjusted_ft, wind_adjusted_ft, landing_distance_ft, trace
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		c.UserID,
		c.Dataset,
		c.Input.PressureAltitudeFt,
		c.Input.OATC,
		c.Input.WeightLb,
		c.Input.WindKt,
		c.BaselineFt,
		c.WeightAdjustedFt,
		c.WindAdjustedFt,
		c.LandingFt,
		trace,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

const calculationColumns = `id, user_id, dataset, pressure_altitude_ft, oat_c, weight_lb, wind_kt,
		       baseline_ft, weight_adjusted_ft, wind_adjusted_ft, landing_distance_ft,
		       trace, created_at`

// GetByID returns one of userID's calculations.
func (r *CalculationRepository) GetByID(ctx context.Context, userID int, id int64) (*Calculation, error) {
	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = $1 AND user_id = $2`

	c, err := scanCalculation(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrCalculationNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByUser returns userID's calculations newest first.
func (r *CalculationRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*Calculation, error) {
	query := `
		SELECT ` + calculationColumns + `
		FROM calculations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []*Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return calcs, nil
}

// Count returns how many calculations userID has stored.
func (r *CalculationRepository) Count(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calculations WHERE user_id = $1`, userID,
	).Scan(&n)
	return n, err
}

func scanCalculation(row rowScanner) (*Calculation, error) {
	c := &Calculation{}
	var trace []byte
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Dataset,
		&c.Input.PressureAltitudeFt,
		&c.Input.OATC,
		&c.Input.WeightLb,
		&c.Input.WindKt,
		&c.BaselineFt,
		&c.WeightAdjustedFt,
		&c.WindAdjustedFt,
		&c.LandingFt,
		&trace,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(trace, &c.Stages); err != nil {
		return nil, fmt.Errorf("failed to decode trace for calculation %d: %w", c.ID, err)
	}
	return c, nil
}
