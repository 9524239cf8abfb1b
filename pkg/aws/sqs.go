package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

const (
	sqsBatchLimit   = 10
	sqsLongPollSecs = 20
	sqsVisibility   = 30
	sqsErrorBackoff = time.Second
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// SQSClient is bound to one queue URL.
type SQSClient struct {
	api    sqsAPI
	url    string
	logger *zap.Logger
}

func NewSQSClient(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSClient {
	return newSQSClient(sqs.NewFromConfig(cfg), queueURL, logger)
}

func newSQSClient(api sqsAPI, queueURL string, logger *zap.Logger) *SQSClient {
	if logger == nil {
		logger = zap.L()
	}
	return &SQSClient{api: api, url: queueURL, logger: logger.With(zap.String("queue", queueURL))}
}

// MessageHandler processes one message body. Returning an error keeps the
// message; SQS redelivers it once the visibility timeout lapses.
type MessageHandler func(ctx context.Context, body string) error

// QueueURLFor resolves a queue name to its URL.
func QueueURLFor(ctx context.Context, cfg sdkaws.Config, name string) (string, error) {
	out, err := sqs.NewFromConfig(cfg).GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: &name})
	if err != nil {
		return "", fmt.Errorf("resolve queue %q: %w", name, err)
	}
	return sdkaws.ToString(out.QueueUrl), nil
}

// StartPolling blocks until ctx ends, returning ctx.Err().
func (c *SQSClient) StartPolling(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("sqs consumer running")
	defer c.logger.Info("sqs consumer stopped")

	for ctx.Err() == nil {
		err := c.PollOnce(ctx, handler)
		if err == nil || ctx.Err() != nil {
			continue
		}
		c.logger.Error("sqs receive failed", zap.Error(err))
		t := time.NewTimer(sqsErrorBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
	return ctx.Err()
}

// PollOnce long-polls a single batch. Only messages the handler accepted are
// deleted.
func (c *SQSClient) PollOnce(ctx context.Context, handler MessageHandler) error {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &c.url,
		MaxNumberOfMessages: sqsBatchLimit,
		WaitTimeSeconds:     sqsLongPollSecs,
		VisibilityTimeout:   sqsVisibility,
	})
	if err != nil {
		return fmt.Errorf("receive: %w", err)
	}

	for _, m := range out.Messages {
		if m.Body == nil {
			continue
		}
		if herr := handler(ctx, *m.Body); herr != nil {
			c.logger.Warn("message left for redelivery", zap.Error(herr))
			continue
		}
		_, derr := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{QueueUrl: &c.url, ReceiptHandle: m.ReceiptHandle})
		if derr != nil {
			c.logger.Error("ack failed", zap.Error(derr))
		}
	}
	return nil
}

// SendMessageBatch enqueues bodies, splitting them into batches SQS accepts.
func (c *SQSClient) SendMessageBatch(ctx context.Context, bodies []string) error {
	for start := 0; start < len(bodies); start += sqsBatchLimit {
		chunk := bodies[start:min(start+sqsBatchLimit, len(bodies))]

		entries := make([]types.SendMessageBatchRequestEntry, len(chunk))
		for i := range chunk {
			entries[i] = types.SendMessageBatchRequestEntry{
				Id:          sdkaws.String("job-" + strconv.Itoa(start+i)),
				MessageBody: &chunk[i],
			}
		}

		out, err := c.api.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{QueueUrl: &c.url, Entries: entries})
		if err != nil {
			return fmt.Errorf("send batch: %w", err)
		}
		if n := len(out.Failed); n > 0 {
			return fmt.Errorf("send batch: %d of %d entries rejected", n, len(entries))
		}
	}
	return nil
}
