package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/coaching-dashboard/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// customerService is the concrete implementation of CustomerService
type customerService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newCustomerService creates a new CustomerService
func newCustomerService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *customerService {
	return &customerService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "customer").Logger(),
	}
}

// List returns every customer in creation order
func (s *customerService) List(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.repos.Customer.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// ListFollowups returns customers that carry a follow-up status
func (s *customerService) ListFollowups(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.repos.Customer.ListFollowups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	return customers, nil
}

// Get returns one customer or ErrNotFound
func (s *customerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	return requireCustomer(ctx, s.repos.Customer, id)
}

// Create validates and stores a new customer
func (s *customerService) Create(ctx context.Context, in *models.CustomerInput) (*models.Customer, error) {
	if err := invalid(s.validator.ValidateCustomer(in)); err != nil {
		return nil, err
	}

	now := time.Now()
	customer := &models.Customer{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.ToLower(in.Email),
		Phone:          in.Phone,
		AvatarURL:      in.AvatarURL,
		Status:         in.Status,
		FollowupStatus: in.FollowupStatus,
		Goal:           in.Goal,
		PlanEndsAt:     in.PlanEndsAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repos.Customer.Create(ctx, customer); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %s already registered: %w", customer.Email, ErrConflict)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.log.Info().
		Str("customer_id", customer.ID).
		Str("status", customer.Status).
		Msg("Customer created")

	return customer, nil
}

// updateAttempts bounds how often Update re-reads a customer that changed
// underneath it before giving up with ErrConflict.
const updateAttempts = 3

// Update applies a partial update to a customer. The patch is re-applied to
// a fresh read when another writer, such as the lifecycle sweeper, changes
// the row between the read and the write, so fields the patch leaves unset
// keep their newest values.
func (s *customerService) Update(ctx context.Context, id string, patch *models.CustomerPatch) (*models.Customer, error) {
	if err := invalid(s.validator.ValidateCustomerPatch(patch)); err != nil {
		if _, lookupErr := requireCustomer(ctx, s.repos.Customer, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, err
	}

	for attempt := 1; attempt <= updateAttempts; attempt++ {
		customer, err := requireCustomer(ctx, s.repos.Customer, id)
		if err != nil {
			return nil, err
		}

		readAt := customer.UpdatedAt
		previous := customer.Status
		patch.Apply(customer)
		customer.Email = strings.ToLower(customer.Email)
		customer.UpdatedAt = time.Now()

		written, err := s.repos.Customer.Update(ctx, customer, readAt)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return nil, fmt.Errorf("email %s already registered: %w", customer.Email, ErrConflict)
			}
			return nil, fmt.Errorf("update customer: %w", err)
		}
		if !written {
			s.log.Debug().Str("customer_id", id).Int("attempt", attempt).Msg("Customer changed concurrently, retrying update")
			continue
		}

		event := s.log.Info().Str("customer_id", customer.ID)
		if previous != customer.Status {
			event = event.Str("from", previous).Str("to", customer.Status)
		}
		event.Msg("Customer updated")

		return customer, nil
	}

	return nil, fmt.Errorf("customer %s kept changing during update: %w", id, ErrConflict)
}

// requireCustomer loads a customer, mapping a missing row or a malformed
// id to ErrNotFound
func requireCustomer(ctx context.Context, repo repository.CustomerRepository, id string) (*models.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("customer %q: %w", id, ErrNotFound)
	}
	customer, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return customer, nil
}
