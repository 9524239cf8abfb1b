package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
)

const (
	RepairQueueKey = "catalog:backref:repair"

	// MaxRepairAttempts is how many times a job is retried before it is
	// parked on the dead-letter list.
	MaxRepairAttempts = 10

	DefaultRepairBackoff    = time.Second
	DefaultMaxRepairBackoff = 5 * time.Minute

	repairPopTimeout = time.Second
)

// RepairQueue transports failed back-reference steps to the repair worker.
type RepairQueue interface {
	Enqueue(ctx context.Context, jobs ...RepairJob) error
	// Consume hands jobs to handle until ctx is done. A job whose handler
	// fails is delivered again later.
	Consume(ctx context.Context, handle func(context.Context, RepairJob) error) error
}

// RedisLists is the part of *redis.Client the Redis repair queue uses.
type RedisLists interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...any) *redis.IntCmd
}

// RedisRepairQueue keeps ready jobs in a Redis list. A failed job waits in
// the "<key>:delayed" sorted set, scored by when it is due, with the delay
// doubling per attempt. Jobs that exhaust their retries move to the
// "<key>:dead" list.
type RedisRepairQueue struct {
	rdb     RedisLists
	key     string
	delayed string
	dead    string
	logger  *zap.Logger

	backoff    time.Duration
	maxBackoff time.Duration
	now        func() time.Time
}

func NewRedisRepairQueue(rdb RedisLists, key string, logger *zap.Logger) *RedisRepairQueue {
	if key == "" {
		key = RepairQueueKey
	}
	return &RedisRepairQueue{
		rdb:        rdb,
		key:        key,
		delayed:    key + ":delayed",
		dead:       key + ":dead",
		logger:     logger,
		backoff:    DefaultRepairBackoff,
		maxBackoff: DefaultMaxRepairBackoff,
		now:        time.Now,
	}
}

// WithBackoff sets the first retry delay and its cap.
func (q *RedisRepairQueue) WithBackoff(first, limit time.Duration) *RedisRepairQueue {
	q.backoff, q.maxBackoff = first, limit
	return q
}

// Key, DelayedKey and DeadKey name the Redis keys the queue uses.
func (q *RedisRepairQueue) Key() string        { return q.key }
func (q *RedisRepairQueue) DelayedKey() string { return q.delayed }
func (q *RedisRepairQueue) DeadKey() string    { return q.dead }

func (q *RedisRepairQueue) Enqueue(ctx context.Context, jobs ...RepairJob) error {
	if len(jobs) == 0 {
		return nil
	}
	values := make([]any, 0, len(jobs))
	for _, job := range jobs {
		b, err := json.Marshal(job)
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	return q.rdb.RPush(ctx, q.key, values...).Err()
}

func (q *RedisRepairQueue) Consume(ctx context.Context, handle func(context.Context, RepairJob) error) error {
	q.logger.Info("consuming repair queue", zap.String("queue", q.key))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.promoteDue(ctx)

		res, err := q.rdb.BLPop(ctx, repairPopTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.logger.Error("redis BLPop failed", zap.Error(err))
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var job RepairJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.logger.Error("dropping malformed repair job", zap.String("payload", res[1]), zap.Error(err))
			continue
		}
		if err := handle(ctx, job); err != nil {
			q.retry(ctx, job)
		}
	}
}

// promoteDue moves delayed jobs whose time has come back onto the ready
// list. ZRem decides the winner when several consumers race for one job.
func (q *RedisRepairQueue) promoteDue(ctx context.Context) {
	due, err := q.rdb.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(q.now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		if ctx.Err() == nil {
			q.logger.Warn("reading delayed repair jobs failed", zap.Error(err))
		}
		return
	}
	for _, payload := range due {
		n, err := q.rdb.ZRem(ctx, q.delayed, payload).Result()
		if err != nil || n == 0 {
			continue
		}
		if err := q.rdb.RPush(context.WithoutCancel(ctx), q.key, payload).Err(); err != nil {
			q.logger.Error("failed to release delayed repair job", zap.String("payload", payload), zap.Error(err))
		}
	}
}

func (q *RedisRepairQueue) retry(ctx context.Context, job RepairJob) {
	job.Attempts++
	b, _ := json.Marshal(job)
	ctx = context.WithoutCancel(ctx)

	if job.Attempts >= MaxRepairAttempts {
		q.logger.Error("repair job exhausted retries", zap.Stringer("job", job), zap.Int("attempts", job.Attempts))
		if err := q.rdb.RPush(ctx, q.dead, b).Err(); err != nil {
			q.logger.Error("failed to dead-letter repair job", zap.Stringer("job", job), zap.Error(err))
		}
		return
	}

	due := q.now().Add(q.delayFor(job.Attempts))
	if err := q.rdb.ZAdd(ctx, q.delayed, redis.Z{Score: float64(due.UnixMilli()), Member: b}).Err(); err != nil {
		q.logger.Error("failed to schedule repair retry", zap.Stringer("job", job), zap.Error(err))
	}
}

// delayFor doubles the first backoff per attempt, up to the cap.
func (q *RedisRepairQueue) delayFor(attempts int) time.Duration {
	d := q.backoff
	for i := 1; i < attempts && d < q.maxBackoff; i++ {
		d *= 2
	}
	return min(d, q.maxBackoff)
}

// SQSQueue is the subset of *aws.SQSClient the repair queue needs.
type SQSQueue interface {
	SendMessageBatch(ctx context.Context, messages []string) error
	StartPolling(ctx context.Context, handler awspkg.MessageHandler) error
}

// SQSRepairQueue keeps jobs in an SQS queue. Redelivery of failed jobs and
// dead-lettering are left to the queue's visibility timeout and redrive
// policy.
type SQSRepairQueue struct {
	sqs    SQSQueue
	logger *zap.Logger
}

func NewSQSRepairQueue(sqs SQSQueue, logger *zap.Logger) *SQSRepairQueue {
	return &SQSRepairQueue{sqs: sqs, logger: logger}
}

func (q *SQSRepairQueue) Enqueue(ctx context.Context, jobs ...RepairJob) error {
	if len(jobs) == 0 {
		return nil
	}
	bodies := make([]string, 0, len(jobs))
	for _, job := range jobs {
		b, err := json.Marshal(job)
		if err != nil {
			return err
		}
		bodies = append(bodies, string(b))
	}
	return q.sqs.SendMessageBatch(ctx, bodies)
}

func (q *SQSRepairQueue) Consume(ctx context.Context, handle func(context.Context, RepairJob) error) error {
	return q.sqs.StartPolling(ctx, func(ctx context.Context, body string) error {
		var job RepairJob
		if err := json.Unmarshal([]byte(body), &job); err != nil {
			// acknowledge; redelivering a payload we cannot read never helps
			q.logger.Error("dropping malformed repair job", zap.String("payload", body), zap.Error(err))
			return nil
		}
		return handle(ctx, job)
	})
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
