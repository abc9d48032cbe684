package service

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/coaching-dashboard/internal/validation"
	"github.com/rs/zerolog"
)

// CustomerService defines the interface for customer operations
type CustomerService interface {
	List(ctx context.Context) ([]*models.Customer, error)
	ListFollowups(ctx context.Context) ([]*models.Customer, error)
	Get(ctx context.Context, id string) (*models.Customer, error)
	Create(ctx context.Context, in *models.CustomerInput) (*models.Customer, error)
	Update(ctx context.Context, id string, patch *models.CustomerPatch) (*models.Customer, error)
}

// SessionService defines the interface for session booking
type SessionService interface {
	Book(ctx context.Context, req *models.BookingRequest) (*models.Session, error)
	ListForCustomer(ctx context.Context, customerID string) ([]*models.Session, error)
	Cancel(ctx context.Context, id string) (*models.Session, error)
	Complete(ctx context.Context, id string) (*models.Session, error)
}

// PlanService defines the interface for diet and exercise plans
type PlanService interface {
	Get(ctx context.Context, customerID string, kind models.PlanKind) (*models.Plan, error)
	Save(ctx context.Context, customerID string, kind models.PlanKind, in *models.PlanInput) (*models.Plan, error)
}

// CheckinService defines the interface for daily check-ins
type CheckinService interface {
	Record(ctx context.Context, customerID string, in *models.CheckinInput) (*models.Checkin, error)
	ListRecent(ctx context.Context, customerID string, limit int) ([]*models.Checkin, error)
}

// ReportService defines the interface for medical report management
type ReportService interface {
	Create(ctx context.Context, customerID string, in *models.ReportInput) (*models.Report, error)
	List(ctx context.Context, customerID string) ([]*models.Report, error)
	Delete(ctx context.Context, id string) error
	RenderNotes(notes string) template.HTML
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamCustomers(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// LifecycleService defines the interface for the plan expiry sweeper
type LifecycleService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Customer  CustomerService
	Session   SessionService
	Plan      PlanService
	Checkin   CheckinService
	Report    ReportService
	Export    ExportService
	Lifecycle LifecycleService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	validator := validation.NewValidator()

	return &Services{
		Customer:  newCustomerService(repos, validator, log),
		Session:   newSessionService(repos, validator, log),
		Plan:      newPlanService(repos, validator, log),
		Checkin:   newCheckinService(repos, validator, log),
		Report:    newReportService(repos, validator, log),
		Export:    newExportService(repos, log),
		Lifecycle: newLifecycleService(repos.Customer, cfg.Lifecycle, log),
	}
}
