package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
)

const reportColumns = `id, customer_id, title, file_url, notes, uploaded_at`

// reportRepo is the concrete implementation of ReportRepository
type reportRepo struct {
	db *database.DB
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *database.DB) ReportRepository {
	return &reportRepo{db: db}
}

// Create inserts a new report
func (r *reportRepo) Create(ctx context.Context, report *models.Report) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.CustomerID, report.Title, report.FileURL, report.Notes, report.UploadedAt,
	)
	return err
}

// GetByID retrieves a report by ID
func (r *reportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id).Scan(
		&report.ID, &report.CustomerID, &report.Title, &report.FileURL, &report.Notes, &report.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByCustomer retrieves a customer's reports, newest first
func (r *reportRepo) ListByCustomer(ctx context.Context, customerID string) ([]*models.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE customer_id = $1 ORDER BY uploaded_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		var report models.Report
		if err := rows.Scan(
			&report.ID, &report.CustomerID, &report.Title, &report.FileURL, &report.Notes, &report.UploadedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}

// Delete removes a report. Returns false if it did not exist.
func (r *reportRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the total number of reports
func (r *reportRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	return count, err
}
