package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
)

const sessionColumns = `id, customer_id, coach, starts_at, duration_minutes, status, notes, created_at`

// sessionRepo is the concrete implementation of SessionRepository
type sessionRepo struct {
	db *database.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *database.DB) SessionRepository {
	return &sessionRepo{db: db}
}

// Book inserts a scheduled session inside a transaction that holds the
// customer row lock, so concurrent bookings for one customer are checked
// for overlap one at a time.
func (r *sessionRepo) Book(ctx context.Context, s *models.Session) (*models.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, s.CustomerID); err != nil {
		return nil, err
	}

	other, err := scanSession(tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		WHERE customer_id = $1 AND status = $2
			AND starts_at < $4
			AND $3 < starts_at + duration_minutes * INTERVAL '1 minute'
		ORDER BY starts_at
		LIMIT 1`,
		s.CustomerID, models.SessionScheduled, s.StartsAt, s.EndsAt(),
	))
	if err == nil {
		return other, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.CustomerID, s.Coach, s.StartsAt, s.DurationMinutes, s.Status, s.Notes, s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return nil, tx.Commit()
}

// GetByID retrieves a session by ID
func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// ListByCustomer retrieves a customer's sessions, earliest first
func (r *sessionRepo) ListByCustomer(ctx context.Context, customerID string) ([]*models.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE customer_id = $1 ORDER BY starts_at`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpdateStatus sets the status of a session
func (r *sessionRepo) UpdateStatus(ctx context.Context, id string, status models.SessionState) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET status = $2 WHERE id = $1`, id, status)
	return err
}

// Count returns the total number of sessions
func (r *sessionRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

func scanSession(s rowScanner) (*models.Session, error) {
	var session models.Session
	err := s.Scan(
		&session.ID, &session.CustomerID, &session.Coach, &session.StartsAt,
		&session.DurationMinutes, &session.Status, &session.Notes, &session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
