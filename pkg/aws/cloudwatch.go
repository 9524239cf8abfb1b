package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	defaultLogGroup  = "/ecommerce/admin"
	logRetentionDays = 30
	logShipTimeout   = 5 * time.Second
)

type cloudwatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsClient is an io.Writer that forwards every write as one log
// event, which makes it usable as a zap sink.
type CloudWatchLogsClient struct {
	api     cloudwatchLogsAPI
	group   string
	stream  string
	enabled bool

	mu    sync.Mutex
	token *string
}

// NewCloudWatchLogsClient prepares the log group and opens a stream named
// after the service and start time. Nothing is created when disabled.
func NewCloudWatchLogsClient(ctx context.Context, cfg sdkaws.Config, logGroup, serviceName string, enabled bool) (*CloudWatchLogsClient, error) {
	return newCloudWatchLogsClient(ctx, cloudwatchlogs.NewFromConfig(cfg), logGroup, serviceName, enabled)
}

func newCloudWatchLogsClient(ctx context.Context, api cloudwatchLogsAPI, logGroup, serviceName string, enabled bool) (*CloudWatchLogsClient, error) {
	if logGroup == "" {
		logGroup = defaultLogGroup
	}
	c := &CloudWatchLogsClient{
		api:     api,
		group:   logGroup,
		stream:  serviceName + "-" + strconv.FormatInt(time.Now().Unix(), 10),
		enabled: enabled,
	}
	if !enabled {
		return c, nil
	}
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CloudWatchLogsClient) prepare(ctx context.Context) error {
	_, err := c.api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{LogGroupName: &c.group})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("create log group %s: %w", c.group, err)
	}

	if _, err := c.api.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    &c.group,
		RetentionInDays: sdkaws.Int32(logRetentionDays),
	}); err != nil {
		return fmt.Errorf("set retention on %s: %w", c.group, err)
	}

	if _, err := c.api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  &c.group,
		LogStreamName: &c.stream,
	}); err != nil {
		return fmt.Errorf("create log stream %s: %w", c.stream, err)
	}
	return nil
}

func (c *CloudWatchLogsClient) ship(ctx context.Context, line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  &c.group,
		LogStreamName: &c.stream,
		SequenceToken: c.token,
		LogEvents: []types.InputLogEvent{{
			Message:   &line,
			Timestamp: sdkaws.Int64(time.Now().UnixMilli()),
		}},
	})
	if err != nil {
		return err
	}
	c.token = out.NextSequenceToken
	return nil
}

// Write always reports success; a failed shipment goes to stderr instead.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	if !c.enabled {
		return len(p), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), logShipTimeout)
	defer cancel()
	if err := c.ship(ctx, string(p)); err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch logs: %v\n", err)
	}
	return len(p), nil
}

func (c *CloudWatchLogsClient) IsEnabled() bool { return c.enabled }
