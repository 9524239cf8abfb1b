package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

// BackrefOp is the direction of a back-reference step.
type BackrefOp string

const (
	BackrefAdd    BackrefOp = "add"
	BackrefRemove BackrefOp = "remove"
)

// maxFanout bounds concurrent category writes for a single request.
const maxFanout = 8

// RepairJob is one idempotent back-reference step: add or remove ProductID in
// the products list of CategoryID.
type RepairJob struct {
	Op         BackrefOp `json:"op"`
	CategoryID string    `json:"category_id"`
	ProductID  string    `json:"product_id"`
	Attempts   int       `json:"attempts,omitempty"`
}

func (j RepairJob) String() string {
	return fmt.Sprintf("%s %s -> %s", j.Op, j.ProductID, j.CategoryID)
}

func addJobs(productID string, categoryIDs []string) []RepairJob {
	jobs := make([]RepairJob, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		jobs = append(jobs, RepairJob{Op: BackrefAdd, CategoryID: id, ProductID: productID})
	}
	return jobs
}

func removeJobs(productID string, categoryIDs []string) []RepairJob {
	jobs := make([]RepairJob, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		jobs = append(jobs, RepairJob{Op: BackrefRemove, CategoryID: id, ProductID: productID})
	}
	return jobs
}

// BackrefSyncer keeps Category.products in step with Product.categories.
type BackrefSyncer struct {
	categories repository.CategoryRepo
	products   repository.ProductRepo
	queue      RepairQueue
	metrics    CountRecorder
	logger     *zap.Logger
}

// NewBackrefSyncer builds a syncer. queue may be nil, in which case failed
// steps are only logged.
func NewBackrefSyncer(categories repository.CategoryRepo, products repository.ProductRepo, queue RepairQueue, logger *zap.Logger) *BackrefSyncer {
	return &BackrefSyncer{categories: categories, products: products, queue: queue, logger: logger}
}

// WithMetrics makes the syncer report enqueued and repaired jobs.
func (s *BackrefSyncer) WithMetrics(r CountRecorder) *BackrefSyncer {
	s.metrics = r
	return s
}

// Apply performs a single step against the category store.
func (s *BackrefSyncer) Apply(ctx context.Context, job RepairJob) error {
	switch job.Op {
	case BackrefAdd:
		return s.categories.AddProduct(ctx, job.CategoryID, job.ProductID)
	case BackrefRemove:
		return s.categories.RemoveProduct(ctx, job.CategoryID, job.ProductID)
	default:
		return fmt.Errorf("unknown back-reference op %q", job.Op)
	}
}

// Sync runs every step concurrently and waits for all of them. A failing step
// does not cancel the others. Failed steps are handed to the repair queue and
// reported back joined into one error.
func (s *BackrefSyncer) Sync(ctx context.Context, jobs []RepairJob) error {
	if len(jobs) == 0 {
		return nil
	}

	errs := make([]error, len(jobs))
	var g errgroup.Group
	g.SetLimit(maxFanout)
	for i, job := range jobs {
		g.Go(func() error {
			if err := s.Apply(ctx, job); err != nil {
				errs[i] = fmt.Errorf("%s: %w", job, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []RepairJob
	for i, err := range errs {
		if err != nil {
			failed = append(failed, jobs[i])
			backrefStepFailures.WithLabelValues(string(jobs[i].Op)).Inc()
		}
	}
	if len(failed) == 0 {
		return nil
	}

	s.logger.Warn("back-reference steps failed",
		zap.Int("failed", len(failed)),
		zap.Int("total", len(jobs)),
		zap.Error(errors.Join(errs...)),
	)
	s.enqueue(ctx, failed)
	return errors.Join(errs...)
}

func (s *BackrefSyncer) enqueue(ctx context.Context, jobs []RepairJob) {
	if s.queue == nil {
		s.logger.Error("no repair queue configured, back-references left inconsistent", zap.Int("jobs", len(jobs)))
		return
	}
	// the request context may already be cancelled; the repair must still land
	ctx = context.WithoutCancel(ctx)
	if err := s.queue.Enqueue(ctx, jobs...); err != nil {
		s.logger.Error("failed to enqueue back-reference repair", zap.Int("jobs", len(jobs)), zap.Error(err))
		return
	}
	for _, job := range jobs {
		recordCount(s.metrics, awspkg.MetricBackrefRepairEnqueued, map[string]string{"op": string(job.Op)})
	}
}

// Repair applies a queued job only if it still matches the product document.
// An add whose product no longer lists the category, or a remove whose
// product lists it again, is stale and skipped.
func (s *BackrefSyncer) Repair(ctx context.Context, job RepairJob) (applied bool, err error) {
	product, err := s.products.FindByID(ctx, job.ProductID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		product = nil
	case err != nil:
		return false, err
	}

	listed := product != nil && slices.Contains(product.Categories, job.CategoryID)
	if (job.Op == BackrefAdd && !listed) || (job.Op == BackrefRemove && listed) {
		return false, nil
	}
	if err := s.Apply(ctx, job); err != nil {
		return false, err
	}
	return true, nil
}

// RepairWorker drains the repair queue.
type RepairWorker struct {
	queue  RepairQueue
	syncer *BackrefSyncer
	logger *zap.Logger

	mu        sync.Mutex
	processed int
}

func NewRepairWorker(queue RepairQueue, syncer *BackrefSyncer, logger *zap.Logger) *RepairWorker {
	return &RepairWorker{queue: queue, syncer: syncer, logger: logger}
}

// Run blocks until ctx is done.
func (w *RepairWorker) Run(ctx context.Context) error {
	w.logger.Info("back-reference repair worker started")
	err := w.queue.Consume(ctx, w.handle)
	w.logger.Info("back-reference repair worker stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *RepairWorker) handle(ctx context.Context, job RepairJob) error {
	applied, err := w.syncer.Repair(ctx, job)
	w.mu.Lock()
	w.processed++
	w.mu.Unlock()

	switch {
	case err != nil:
		backrefRepairs.WithLabelValues("failed").Inc()
		w.logger.Warn("repair attempt failed", zap.Stringer("job", job), zap.Int("attempts", job.Attempts), zap.Error(err))
		return err
	case applied:
		backrefRepairs.WithLabelValues("applied").Inc()
		recordCount(w.syncer.metrics, awspkg.MetricBackrefRepaired, map[string]string{"op": string(job.Op)})
		w.logger.Info("back-reference repaired", zap.Stringer("job", job))
	default:
		backrefRepairs.WithLabelValues("stale").Inc()
		w.logger.Debug("stale repair job skipped", zap.Stringer("job", job))
	}
	return nil
}

// Processed reports how many jobs the worker has handled.
func (w *RepairWorker) Processed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processed
}
