package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/coaching-dashboard/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// planService is the concrete implementation of PlanService
type planService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newPlanService creates a new PlanService
func newPlanService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *planService {
	return &planService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "plan").Logger(),
	}
}

// Get returns the customer's plan of the given kind. A customer without a
// plan gets an empty one with no ID.
func (s *planService) Get(ctx context.Context, customerID string, kind models.PlanKind) (*models.Plan, error) {
	if !models.ValidPlanKinds[kind] {
		return nil, fmt.Errorf("plan kind %q: %w", kind, ErrNotFound)
	}
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}

	plan, err := s.repos.Plan.Get(ctx, customerID, kind)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if plan == nil {
		return &models.Plan{CustomerID: customerID, Kind: kind, Groups: []models.PlanGroup{}}, nil
	}
	return plan, nil
}

// Save replaces the customer's plan of the given kind
func (s *planService) Save(ctx context.Context, customerID string, kind models.PlanKind, in *models.PlanInput) (*models.Plan, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}
	if err := invalid(s.validator.ValidatePlan(kind, in)); err != nil {
		return nil, err
	}

	plan := &models.Plan{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Kind:       kind,
		Title:      strings.TrimSpace(in.Title),
		Groups:     normalizeGroups(in.Groups),
		UpdatedAt:  time.Now(),
	}
	if err := s.repos.Plan.Upsert(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.log.Info().
		Str("customer_id", customerID).
		Str("kind", string(kind)).
		Int("groups", len(plan.Groups)).
		Msg("Plan saved")

	return plan, nil
}

// normalizeGroups trims names and guarantees non-nil item slices
func normalizeGroups(groups []models.PlanGroup) []models.PlanGroup {
	out := make([]models.PlanGroup, len(groups))
	for i, g := range groups {
		items := make([]models.PlanItem, len(g.Items))
		for j, item := range g.Items {
			items[j] = models.PlanItem{
				Name:   strings.TrimSpace(item.Name),
				Detail: strings.TrimSpace(item.Detail),
			}
		}
		out[i] = models.PlanGroup{Name: strings.TrimSpace(g.Name), Items: items}
	}
	return out
}
