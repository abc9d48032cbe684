package repository

import (
	"context"
	"time"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
)

// checkinRepo is the concrete implementation of CheckinRepository
type checkinRepo struct {
	db *database.DB
}

// NewCheckinRepo creates a new check-in repository
func NewCheckinRepo(db *database.DB) CheckinRepository {
	return &checkinRepo{db: db}
}

// Upsert records a check-in, replacing any earlier one for the same day
func (r *checkinRepo) Upsert(ctx context.Context, c *models.Checkin) error {
	query := `
		INSERT INTO checkins (id, customer_id, day, weight_kg, sleep_hours, water_litres, mood, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (customer_id, day) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			sleep_hours = EXCLUDED.sleep_hours,
			water_litres = EXCLUDED.water_litres,
			mood = EXCLUDED.mood,
			notes = EXCLUDED.notes
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		c.ID, c.CustomerID, c.Day, c.WeightKg, c.SleepHours, c.WaterLitres, c.Mood, c.Notes, c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
}

// ListRecent retrieves a customer's latest check-ins, newest first
func (r *checkinRepo) ListRecent(ctx context.Context, customerID string, limit int) ([]*models.Checkin, error) {
	query := `
		SELECT id, customer_id, day, weight_kg, sleep_hours, water_litres, mood, notes, created_at
		FROM checkins WHERE customer_id = $1
		ORDER BY day DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkins := make([]*models.Checkin, 0, limit)
	for rows.Next() {
		var c models.Checkin
		var day time.Time
		if err := rows.Scan(
			&c.ID, &c.CustomerID, &day, &c.WeightKg, &c.SleepHours, &c.WaterLitres, &c.Mood, &c.Notes, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		c.Day = day.Format(models.DayLayout)
		checkins = append(checkins, &c)
	}
	return checkins, rows.Err()
}

// Count returns the total number of check-ins
func (r *checkinRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM checkins").Scan(&count)
	return count, err
}
