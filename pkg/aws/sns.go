package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher is what the catalog and notification services publish through.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

var errNoTopic = errors.New("sns: topic arn not configured")

type SNSClient struct {
	client snsAPI
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// Publish sends message as-is; subscribers receive the JSON body untouched.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte) error {
	if topicArn == "" {
		return errNoTopic
	}
	body := string(message)
	in := &sns.PublishInput{TopicArn: &topicArn, Message: &body}
	if _, err := s.client.Publish(ctx, in); err != nil {
		return fmt.Errorf("publish to %s: %w", topicArn, err)
	}
	return nil
}
