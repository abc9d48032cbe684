package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/mocks"
	"github.com/coaching-dashboard/internal/models"
	"github.com/rs/zerolog"
)

// sweepingCustomerRepo moves a customer's status right after each read,
// the way the lifecycle sweeper can between a PATCH's read and its write.
type sweepingCustomerRepo struct {
	*mocks.MockCustomerRepository
	sweeps int // reads still to be followed by a sweep; -1 sweeps forever
}

func (r *sweepingCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	c, err := r.MockCustomerRepository.GetByID(ctx, id)
	if err != nil || c == nil || r.sweeps == 0 {
		return c, err
	}
	if r.sweeps > 0 {
		r.sweeps--
	}
	next := models.StatusExpired
	if c.Status == models.StatusExpired {
		next = models.StatusActive
	}
	// Distinct updated_at per sweep.
	time.Sleep(time.Millisecond)
	if _, err := r.SetStatus(ctx, id, c.Status, next); err != nil {
		return nil, err
	}
	return c, nil
}

func setupSweepingServices(t *testing.T) (*Services, *sweepingCustomerRepo) {
	t.Helper()
	repos, store := mocks.NewRepositories()
	sweeping := &sweepingCustomerRepo{MockCustomerRepository: store.Customer}
	repos.Customer = sweeping
	return NewServices(repos, &config.Config{}, zerolog.Nop()), sweeping
}

func TestCustomerService_UpdateKeepsConcurrentStatusChange(t *testing.T) {
	svc, repo := setupSweepingServices(t)
	ctx := context.Background()
	c := createCustomer(t, svc, "Gail Ross", models.StatusActive)

	repo.sweeps = 1
	goal := "Run a 10k"
	updated, err := svc.Customer.Update(ctx, c.ID, &models.CustomerPatch{Goal: &goal})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Goal != goal {
		t.Errorf("Expected goal %q, got %q", goal, updated.Goal)
	}

	stored, _ := repo.MockCustomerRepository.GetByID(ctx, c.ID)
	if stored.Status != models.StatusExpired {
		t.Errorf("Expected status moved by the sweeper to survive, got %s", stored.Status)
	}
	if stored.Goal != goal {
		t.Errorf("Expected stored goal %q, got %q", goal, stored.Goal)
	}
}

func TestCustomerService_UpdateGivesUpWhenRowKeepsChanging(t *testing.T) {
	svc, repo := setupSweepingServices(t)
	ctx := context.Background()
	c := createCustomer(t, svc, "Hal Moss", models.StatusActive)

	repo.sweeps = -1
	goal := "Sleep 8 hours"
	if _, err := svc.Customer.Update(ctx, c.ID, &models.CustomerPatch{Goal: &goal}); !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	repo.sweeps = 0
	stored, _ := repo.GetByID(ctx, c.ID)
	if stored.Goal == goal {
		t.Error("Expected goal not to be written")
	}
}

func TestSessionService_ConcurrentBookingsOfOneSlot(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	c := createCustomer(t, svc, "Uma Reyes", models.StatusActive)
	start := time.Now().Add(72 * time.Hour).Truncate(time.Hour)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		booked    int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			_, err := svc.Session.Book(ctx, &models.BookingRequest{
				CustomerID:      c.ID,
				Coach:           "Priya",
				StartsAt:        start.Add(time.Duration(offset) * time.Minute),
				DurationMinutes: 60,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if booked != 1 || conflicts != callers-1 {
		t.Errorf("Expected 1 booking and %d conflicts, got %d and %d", callers-1, booked, conflicts)
	}

	sessions, err := svc.Session.ListForCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListForCustomer failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected 1 stored session, got %d", len(sessions))
	}
}
