package services_test

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

// --- In-memory category store ---

type memCategories struct {
	mu   sync.Mutex
	byID map[string]*models.Category
	// failAdd makes AddProduct fail for the listed category IDs.
	failAdd map[string]error
}

func newMemCategories() *memCategories {
	return &memCategories{byID: map[string]*models.Category{}, failAdd: map[string]error{}}
}

func (m *memCategories) get(id string) *models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil
	}
	cp := *c
	cp.Products = slices.Clone(c.Products)
	return &cp
}

func (m *memCategories) FindByID(_ context.Context, id string) (*models.Category, error) {
	if c := m.get(id); c != nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCategories) FindByIDs(_ context.Context, ids []string) ([]models.Category, error) {
	var out []models.Category
	for _, id := range ids {
		if c := m.get(id); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCategories) FindAll(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategories) Exists(_ context.Context, id string) (bool, error) {
	return m.get(id) != nil, nil
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Name == c.Name || existing.Slug == c.Slug {
			return repository.ErrDuplicate
		}
	}
	cp := *c
	cp.Products = slices.Clone(c.Products)
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range m.byID {
		if id != c.ID && (other.Name == c.Name || other.Slug == c.Slug) {
			return repository.ErrDuplicate
		}
	}
	existing.Name, existing.Slug, existing.Icon = c.Name, c.Slug, c.Icon
	existing.Description, existing.Status, existing.UpdatedAt = c.Description, c.Status, c.UpdatedAt
	return nil
}

func (m *memCategories) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memCategories) AddProduct(_ context.Context, categoryID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failAdd[categoryID]; err != nil {
		return err
	}
	c, ok := m.byID[categoryID]
	if !ok {
		return nil
	}
	if !slices.Contains(c.Products, productID) {
		c.Products = append(c.Products, productID)
	}
	return nil
}

func (m *memCategories) RemoveProduct(_ context.Context, categoryID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[categoryID]
	if !ok {
		return nil
	}
	c.Products = slices.DeleteFunc(c.Products, func(id string) bool { return id == productID })
	return nil
}

// --- In-memory product store ---

type memProducts struct {
	mu    sync.Mutex
	byID  map[string]*models.Product
	order []string
}

func newMemProducts() *memProducts {
	return &memProducts{byID: map[string]*models.Product{}}
}

func (m *memProducts) get(id string) *models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil
	}
	cp := *p
	cp.Categories = slices.Clone(p.Categories)
	return &cp
}

func (m *memProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	if p := m.get(id); p != nil {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memProducts) Find(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for i := len(m.order) - 1; i >= 0; i-- {
		p, ok := m.byID[m.order[i]]
		if !ok {
			continue
		}
		if f.Slug != "" && p.Slug != f.Slug {
			continue
		}
		if f.CategoryID != "" && !slices.Contains(p.Categories, f.CategoryID) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) slugTaken(slug, exceptID string) bool {
	for id, p := range m.byID {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(p.Slug, "") {
		return repository.ErrDuplicate
	}
	cp := *p
	cp.Categories = slices.Clone(p.Categories)
	m.byID[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memProducts) Replace(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(p.Slug, p.ID) {
		return repository.ErrDuplicate
	}
	cp := *p
	cp.Categories = slices.Clone(p.Categories)
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memProducts) PullCategory(_ context.Context, categoryID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.byID {
		if slices.Contains(p.Categories, categoryID) {
			p.Categories = slices.DeleteFunc(p.Categories, func(id string) bool { return id == categoryID })
			n++
		}
	}
	return n, nil
}

// --- Repair queue ---

type memQueue struct {
	mu   sync.Mutex
	jobs []services.RepairJob
	err  error
}

func (q *memQueue) Enqueue(_ context.Context, jobs ...services.RepairJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, jobs...)
	return nil
}

// Consume drains whatever is queued once, then returns.
func (q *memQueue) Consume(ctx context.Context, handle func(context.Context, services.RepairJob) error) error {
	q.mu.Lock()
	pending := q.jobs
	q.jobs = nil
	q.mu.Unlock()

	var failed []services.RepairJob
	for _, job := range pending {
		if err := handle(ctx, job); err != nil {
			job.Attempts++
			failed = append(failed, job)
		}
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, failed...)
	q.mu.Unlock()
	return nil
}

func (q *memQueue) queued() []services.RepairJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.jobs)
}

// --- SNS ---

type mockSNSPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages [][]byte
	err      error
}

func (m *mockSNSPublisher) Publish(_ context.Context, topicArn string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topicArn)
	m.messages = append(m.messages, message)
	return nil
}

// countRecorder counts pushes. A non-nil gate holds every push until it is
// closed, which stands in for a slow CloudWatch endpoint.
type countRecorder struct {
	gate chan struct{}

	mu     sync.Mutex
	counts map[string]int
}

func (r *countRecorder) RecordCount(ctx context.Context, name string, _ map[string]string) error {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[name]++
	return nil
}

func (r *countRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// eventually waits for the background push of name to reach want.
func (r *countRecorder) eventually(t *testing.T, name string, want int) {
	t.Helper()
	assert.Eventually(t, func() bool { return r.count(name) == want }, time.Second, 5*time.Millisecond)
}

var errStoreDown = errors.New("store unavailable")
