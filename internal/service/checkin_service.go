package service

import (
	"context"
	"fmt"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/coaching-dashboard/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxCheckinHistory caps ListRecent
const maxCheckinHistory = 90

// checkinService is the concrete implementation of CheckinService
type checkinService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newCheckinService creates a new CheckinService
func newCheckinService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *checkinService {
	return &checkinService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "checkin").Logger(),
	}
}

// Record stores the customer's check-in for a day. Recording the same day
// twice replaces the earlier values.
func (s *checkinService) Record(ctx context.Context, customerID string, in *models.CheckinInput) (*models.Checkin, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}
	if in.Day == "" {
		in.Day = time.Now().Format(models.DayLayout)
	}
	if err := invalid(s.validator.ValidateCheckin(in)); err != nil {
		return nil, err
	}

	checkin := &models.Checkin{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		Day:         in.Day,
		WeightKg:    in.WeightKg,
		SleepHours:  in.SleepHours,
		WaterLitres: in.WaterLitres,
		Mood:        in.Mood,
		Notes:       in.Notes,
		CreatedAt:   time.Now(),
	}
	if err := s.repos.Checkin.Upsert(ctx, checkin); err != nil {
		return nil, fmt.Errorf("record check-in: %w", err)
	}

	s.log.Info().
		Str("customer_id", customerID).
		Str("day", checkin.Day).
		Int("mood", checkin.Mood).
		Msg("Check-in recorded")

	return checkin, nil
}

// ListRecent returns up to limit check-ins, newest first
func (s *checkinService) ListRecent(ctx context.Context, customerID string, limit int) ([]*models.Checkin, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxCheckinHistory {
		limit = maxCheckinHistory
	}
	checkins, err := s.repos.Checkin.ListRecent(ctx, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return checkins, nil
}
