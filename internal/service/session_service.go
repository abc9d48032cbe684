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

// sessionService is the concrete implementation of SessionService
type sessionService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newSessionService creates a new SessionService
func newSessionService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *sessionService {
	return &sessionService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "session").Logger(),
	}
}

// Book schedules a session. A booking that overlaps another scheduled
// session of the same customer is rejected with ErrConflict.
func (s *sessionService) Book(ctx context.Context, req *models.BookingRequest) (*models.Session, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, req.CustomerID); err != nil {
		return nil, err
	}
	if err := invalid(s.validator.ValidateBooking(req)); err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:              uuid.New().String(),
		CustomerID:      req.CustomerID,
		Coach:           strings.TrimSpace(req.Coach),
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Status:          models.SessionScheduled,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
	}

	other, err := s.repos.Session.Book(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if other != nil {
		return nil, fmt.Errorf("overlaps session %s at %s: %w",
			other.ID, other.StartsAt.Format(time.RFC3339), ErrConflict)
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("customer_id", session.CustomerID).
		Time("starts_at", session.StartsAt).
		Msg("Session booked")

	return session, nil
}

// ListForCustomer returns a customer's sessions, earliest first
func (s *sessionService) ListForCustomer(ctx context.Context, customerID string) ([]*models.Session, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}
	sessions, err := s.repos.Session.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Cancel cancels a scheduled session
func (s *sessionService) Cancel(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionCancelled)
}

// Complete marks a scheduled session as held
func (s *sessionService) Complete(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionCompleted)
}

// transition moves a scheduled session to a final state. Final states are
// not left again.
func (s *sessionService) transition(ctx context.Context, id string, to models.SessionState) (*models.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	session, err := s.repos.Session.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if session.Status != models.SessionScheduled {
		return nil, fmt.Errorf("session %s is %s: %w", id, session.Status, ErrConflict)
	}

	if err := s.repos.Session.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	session.Status = to

	s.log.Info().Str("session_id", id).Str("status", string(to)).Msg("Session updated")
	return session, nil
}
