package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
)

const customerColumns = `id, name, email, phone, avatar_url, status, followup_status, goal, plan_ends_at, created_at, updated_at`

// customerRepo is the concrete implementation of CustomerRepository
type customerRepo struct {
	db *database.DB
}

// NewCustomerRepo creates a new customer repository
func NewCustomerRepo(db *database.DB) CustomerRepository {
	return &customerRepo{db: db}
}

// Create inserts a new customer
func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.AvatarURL, c.Status, c.FollowupStatus,
		c.Goal, nullTime(c.PlanEndsAt), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// Update overwrites every mutable column of a customer, provided the row
// still carries the updated_at it was read with. Returns false when another
// writer got there first.
func (r *customerRepo) Update(ctx context.Context, c *models.Customer, readAt time.Time) (bool, error) {
	query := `
		UPDATE customers SET
			name = $2, email = $3, phone = $4, avatar_url = $5, status = $6,
			followup_status = $7, goal = $8, plan_ends_at = $9, updated_at = $10
		WHERE id = $1 AND updated_at = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.AvatarURL, c.Status, c.FollowupStatus,
		c.Goal, nullTime(c.PlanEndsAt), c.UpdatedAt, readAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetByID retrieves a customer by ID
func (r *customerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves all customers in creation order
func (r *customerRepo) List(ctx context.Context) ([]*models.Customer, error) {
	return r.query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at`)
}

// ListFollowups retrieves customers that carry a follow-up status
func (r *customerRepo) ListFollowups(ctx context.Context) ([]*models.Customer, error) {
	return r.query(ctx, `SELECT `+customerColumns+` FROM customers WHERE followup_status <> '' ORDER BY created_at`)
}

// ListPlanEndingBefore retrieves customers whose plan ends before the given time
func (r *customerRepo) ListPlanEndingBefore(ctx context.Context, before time.Time) ([]*models.Customer, error) {
	return r.query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE plan_ends_at IS NOT NULL AND plan_ends_at < $1 ORDER BY plan_ends_at`,
		before,
	)
}

// ListByStatus retrieves customers with the given status
func (r *customerRepo) ListByStatus(ctx context.Context, status string) ([]*models.Customer, error) {
	return r.query(ctx, `SELECT `+customerColumns+` FROM customers WHERE status = $1 ORDER BY created_at`, status)
}

// SetStatus atomically moves a customer from one status to another.
// Returns false if the customer no longer has status from.
func (r *customerRepo) SetStatus(ctx context.Context, id, from, to string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the total number of customers
func (r *customerRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&count)
	return count, err
}

// StreamAll streams all customers for export (memory efficient)
func (r *customerRepo) StreamAll(ctx context.Context, callback func(*models.Customer) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return err
		}
		if err := callback(c); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *customerRepo) query(ctx context.Context, query string, args ...any) ([]*models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomer(s rowScanner) (*models.Customer, error) {
	var c models.Customer
	var planEndsAt sql.NullTime
	err := s.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.AvatarURL, &c.Status, &c.FollowupStatus,
		&c.Goal, &planEndsAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if planEndsAt.Valid {
		t := planEndsAt.Time
		c.PlanEndsAt = &t
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
