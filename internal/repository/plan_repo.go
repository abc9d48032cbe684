package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
)

// planRepo is the concrete implementation of PlanRepository
type planRepo struct {
	db *database.DB
}

// NewPlanRepo creates a new plan repository
func NewPlanRepo(db *database.DB) PlanRepository {
	return &planRepo{db: db}
}

// Get retrieves the plan of the given kind for a customer
func (r *planRepo) Get(ctx context.Context, customerID string, kind models.PlanKind) (*models.Plan, error) {
	query := `SELECT id, customer_id, kind, title, groups, updated_at FROM plans WHERE customer_id = $1 AND kind = $2`

	var plan models.Plan
	var groups []byte
	err := r.db.QueryRowContext(ctx, query, customerID, kind).Scan(
		&plan.ID, &plan.CustomerID, &plan.Kind, &plan.Title, &groups, &plan.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(groups, &plan.Groups); err != nil {
		return nil, fmt.Errorf("decode plan groups: %w", err)
	}
	return &plan, nil
}

// Upsert inserts a plan or replaces the customer's existing plan of that kind
func (r *planRepo) Upsert(ctx context.Context, plan *models.Plan) error {
	groups, err := json.Marshal(plan.Groups)
	if err != nil {
		return fmt.Errorf("encode plan groups: %w", err)
	}

	query := `
		INSERT INTO plans (id, customer_id, kind, title, groups, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_id, kind) DO UPDATE SET
			title = EXCLUDED.title,
			groups = EXCLUDED.groups,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		plan.ID, plan.CustomerID, plan.Kind, plan.Title, groups, plan.UpdatedAt,
	).Scan(&plan.ID)
}
