package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/rs/zerolog"
)

// lifecycleService is the concrete implementation of LifecycleService. It
// moves customers to Expiring Soon and Expired as their plan end date nears.
type lifecycleService struct {
	customers repository.CustomerRepository
	cfg       config.LifecycleConfig
	log       zerolog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
	running   bool
	mu        sync.Mutex
}

// newLifecycleService creates a new LifecycleService
func newLifecycleService(customers repository.CustomerRepository, cfg config.LifecycleConfig, log zerolog.Logger) *lifecycleService {
	return &lifecycleService{
		customers: customers,
		cfg:       cfg,
		log:       log.With().Str("service", "lifecycle").Logger(),
	}
}

// StartProcessor launches the sweeper in the background: one sweep right
// away, then one every interval until ctx is done or StopProcessor is called.
// It returns once the processor is registered, so a StopProcessor that follows
// always finds it.
func (s *lifecycleService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
}

func (s *lifecycleService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.log.Info().Dur("interval", s.cfg.Interval).Msg("Lifecycle processor started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.sweepSafely(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Lifecycle processor stopping")
			return
		case <-ticker.C:
			s.sweepSafely(ctx)
		}
	}
}

// StopProcessor stops the processor and waits for the current sweep
func (s *lifecycleService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
	s.log.Info().Msg("Lifecycle processor stopped")
}

// sweepSafely runs one sweep, recovering from panics so one bad row cannot
// stop the processor
func (s *lifecycleService) sweepSafely(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Lifecycle sweep panicked - recovered")
		}
	}()

	if _, err := s.Sweep(ctx, time.Now()); err != nil {
		s.log.Error().Err(err).Msg("Lifecycle sweep failed")
	}
}

// Sweep applies plan end dates as of now and returns the number of customers
// whose status changed. Only Active and Expiring Soon customers move; other
// statuses were set by a coach and are left alone. An Expiring Soon customer
// whose plan was extended past the window returns to Active. Expired is final
// for the sweeper: renewing an expired plan needs a coach to reactivate it.
func (s *lifecycleService) Sweep(ctx context.Context, now time.Time) (int, error) {
	ending, err := s.customers.ListPlanEndingBefore(ctx, now.Add(s.cfg.ExpiringWindow))
	if err != nil {
		return 0, fmt.Errorf("list expiring plans: %w", err)
	}
	expiring, err := s.customers.ListByStatus(ctx, models.StatusExpiringSoon)
	if err != nil {
		return 0, fmt.Errorf("list expiring soon customers: %w", err)
	}

	seen := make(map[string]bool, len(ending))
	customers := make([]*models.Customer, 0, len(ending)+len(expiring))
	for _, c := range append(ending, expiring...) {
		if !seen[c.ID] {
			seen[c.ID] = true
			customers = append(customers, c)
		}
	}

	changed := 0
	for _, c := range customers {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}

		target := nextStatus(c, now, s.cfg.ExpiringWindow)
		if target == "" || target == c.Status {
			continue
		}

		moved, err := s.customers.SetStatus(ctx, c.ID, c.Status, target)
		if err != nil {
			return changed, fmt.Errorf("set status of %s: %w", c.ID, err)
		}
		if !moved {
			// Changed by someone else since it was listed.
			continue
		}
		changed++

		s.log.Info().
			Str("customer_id", c.ID).
			Str("from", c.Status).
			Str("to", target).
			Msg("Customer lifecycle advanced")
	}

	if changed > 0 {
		s.log.Info().Int("changed", changed).Msg("Lifecycle sweep completed")
	}
	return changed, nil
}

// nextStatus returns the status a customer should have, or "" if the sweeper
// must not touch it
func nextStatus(c *models.Customer, now time.Time, window time.Duration) string {
	if c.PlanEndsAt == nil {
		return ""
	}
	if c.Status != models.StatusActive && c.Status != models.StatusExpiringSoon {
		return ""
	}
	switch {
	case !c.PlanEndsAt.After(now):
		return models.StatusExpired
	case c.PlanEndsAt.Before(now.Add(window)):
		return models.StatusExpiringSoon
	default:
		return models.StatusActive
	}
}
