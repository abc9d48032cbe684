package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
)

// Verify interface compliance
var (
	_ repository.CustomerRepository = (*MockCustomerRepository)(nil)
	_ repository.SessionRepository  = (*MockSessionRepository)(nil)
	_ repository.PlanRepository     = (*MockPlanRepository)(nil)
	_ repository.CheckinRepository  = (*MockCheckinRepository)(nil)
	_ repository.ReportRepository   = (*MockReportRepository)(nil)
)

// NewRepositories returns a Repositories bundle backed by fresh mocks
func NewRepositories() (*repository.Repositories, *Store) {
	store := &Store{
		Customer: NewMockCustomerRepository(),
		Session:  NewMockSessionRepository(),
		Plan:     NewMockPlanRepository(),
		Checkin:  NewMockCheckinRepository(),
		Report:   NewMockReportRepository(),
	}
	return &repository.Repositories{
		Customer: store.Customer,
		Session:  store.Session,
		Plan:     store.Plan,
		Checkin:  store.Checkin,
		Report:   store.Report,
	}, store
}

// Store exposes the concrete mocks behind a Repositories bundle
type Store struct {
	Customer *MockCustomerRepository
	Session  *MockSessionRepository
	Plan     *MockPlanRepository
	Checkin  *MockCheckinRepository
	Report   *MockReportRepository
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mu        sync.Mutex
	Customers map[string]*models.Customer
	order     []string
	Err       error
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{Customers: make(map[string]*models.Customer)}
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.Customers[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	copied := *c
	m.Customers[c.ID] = &copied
	return nil
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *models.Customer, readAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	current, ok := m.Customers[c.ID]
	if !ok || !current.UpdatedAt.Equal(readAt) {
		return false, nil
	}
	copied := *c
	m.Customers[c.ID] = &copied
	return true, nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Customers[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	return m.filter(func(*models.Customer) bool { return true })
}

func (m *MockCustomerRepository) ListFollowups(ctx context.Context) ([]*models.Customer, error) {
	return m.filter(func(c *models.Customer) bool { return c.FollowupStatus != "" })
}

func (m *MockCustomerRepository) ListPlanEndingBefore(ctx context.Context, before time.Time) ([]*models.Customer, error) {
	return m.filter(func(c *models.Customer) bool {
		return c.PlanEndsAt != nil && c.PlanEndsAt.Before(before)
	})
}

func (m *MockCustomerRepository) ListByStatus(ctx context.Context, status string) ([]*models.Customer, error) {
	return m.filter(func(c *models.Customer) bool { return c.Status == status })
}

func (m *MockCustomerRepository) SetStatus(ctx context.Context, id, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	c, ok := m.Customers[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockCustomerRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Customers), m.Err
}

func (m *MockCustomerRepository) StreamAll(ctx context.Context, callback func(*models.Customer) error) error {
	customers, err := m.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range customers {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// filter returns copies of matching customers in insertion order
func (m *MockCustomerRepository) filter(keep func(*models.Customer) bool) ([]*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.Customer, 0, len(m.order))
	for _, id := range m.order {
		c, ok := m.Customers[id]
		if !ok || !keep(c) {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mu       sync.Mutex
	Sessions map[string]*models.Session
	Err      error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{Sessions: make(map[string]*models.Session)}
}

func (m *MockSessionRepository) Book(ctx context.Context, s *models.Session) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, other := range m.Sessions {
		if other.CustomerID == s.CustomerID && other.Status == models.SessionScheduled && s.Overlaps(other) {
			copied := *other
			return &copied, nil
		}
	}
	copied := *s
	m.Sessions[s.ID] = &copied
	return nil, nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return nil, m.Err
	}
	copied := *s
	return &copied, m.Err
}

func (m *MockSessionRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.Session, 0)
	for _, s := range m.Sessions {
		if s.CustomerID == customerID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (m *MockSessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if s, ok := m.Sessions[id]; ok {
		s.Status = status
	}
	return nil
}

func (m *MockSessionRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sessions), m.Err
}

// MockPlanRepository is a mock implementation of PlanRepository
type MockPlanRepository struct {
	mu    sync.Mutex
	Plans map[string]*models.Plan // keyed by customerID + "/" + kind
	Err   error
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{Plans: make(map[string]*models.Plan)}
}

func planKey(customerID string, kind models.PlanKind) string {
	return customerID + "/" + string(kind)
}

func (m *MockPlanRepository) Get(ctx context.Context, customerID string, kind models.PlanKind) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Plans[planKey(customerID, kind)]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (m *MockPlanRepository) Upsert(ctx context.Context, p *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := planKey(p.CustomerID, p.Kind)
	if existing, ok := m.Plans[key]; ok {
		p.ID = existing.ID
	}
	copied := *p
	m.Plans[key] = &copied
	return nil
}

// MockCheckinRepository is a mock implementation of CheckinRepository
type MockCheckinRepository struct {
	mu       sync.Mutex
	Checkins map[string]*models.Checkin // keyed by customerID + "/" + day
	Err      error
}

func NewMockCheckinRepository() *MockCheckinRepository {
	return &MockCheckinRepository{Checkins: make(map[string]*models.Checkin)}
}

func (m *MockCheckinRepository) Upsert(ctx context.Context, c *models.Checkin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := c.CustomerID + "/" + c.Day
	if existing, ok := m.Checkins[key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	copied := *c
	m.Checkins[key] = &copied
	return nil
}

func (m *MockCheckinRepository) ListRecent(ctx context.Context, customerID string, limit int) ([]*models.Checkin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.Checkin, 0)
	for _, c := range m.Checkins {
		if c.CustomerID == customerID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockCheckinRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Checkins), m.Err
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mu      sync.Mutex
	Reports map[string]*models.Report
	Err     error
}

func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{Reports: make(map[string]*models.Report)}
}

func (m *MockReportRepository) Create(ctx context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	copied := *r
	m.Reports[r.ID] = &copied
	return nil
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reports[id]
	if !ok {
		return nil, m.Err
	}
	copied := *r
	return &copied, m.Err
}

func (m *MockReportRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.Report, 0)
	for _, r := range m.Reports {
		if r.CustomerID == customerID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *MockReportRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.Reports[id]; !ok {
		return false, nil
	}
	delete(m.Reports, id)
	return true, nil
}

func (m *MockReportRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports), m.Err
}
