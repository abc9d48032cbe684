package repository

import (
	"context"
	"time"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
)

// Repositories return (nil, nil) from single-row lookups when no row exists.

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer, readAt time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	ListFollowups(ctx context.Context) ([]*models.Customer, error)
	ListPlanEndingBefore(ctx context.Context, before time.Time) ([]*models.Customer, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Customer, error)
	SetStatus(ctx context.Context, id, from, to string) (bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Customer) error) error
}

// SessionRepository defines the interface for session data operations
type SessionRepository interface {
	// Book inserts a scheduled session unless it overlaps another scheduled
	// session of the same customer, in which case the overlapped session is
	// returned and nothing is written.
	Book(ctx context.Context, session *models.Session) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Session, error)
	UpdateStatus(ctx context.Context, id string, status models.SessionState) error
	Count(ctx context.Context) (int, error)
}

// PlanRepository defines the interface for plan data operations
type PlanRepository interface {
	Get(ctx context.Context, customerID string, kind models.PlanKind) (*models.Plan, error)
	Upsert(ctx context.Context, plan *models.Plan) error
}

// CheckinRepository defines the interface for check-in data operations
type CheckinRepository interface {
	Upsert(ctx context.Context, checkin *models.Checkin) error
	ListRecent(ctx context.Context, customerID string, limit int) ([]*models.Checkin, error)
	Count(ctx context.Context) (int, error)
}

// ReportRepository defines the interface for medical report data operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Report, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Customer CustomerRepository
	Session  SessionRepository
	Plan     PlanRepository
	Checkin  CheckinRepository
	Report   ReportRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Customer: NewCustomerRepo(db),
		Session:  NewSessionRepo(db),
		Plan:     NewPlanRepo(db),
		Checkin:  NewCheckinRepo(db),
		Report:   NewReportRepo(db),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
