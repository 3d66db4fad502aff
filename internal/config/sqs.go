package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSConfig names the three work queues: search indexing, daily resets and ledger archives.
type SQSConfig struct {
	AWS             AWSConfig
	IndexQueueURL   string
	ResetQueueURL   string
	ArchiveQueueURL string
}

func DefaultSQSConfig() *SQSConfig {
	const local = "http://localhost:4566/000000000000/"
	return &SQSConfig{
		AWS:             loadAWSConfig("AWS_SQS_ENDPOINT"),
		IndexQueueURL:   getEnv("AWS_SQS_INDEX_QUEUE_URL", local+"usage-index-queue"),
		ResetQueueURL:   getEnv("AWS_SQS_RESET_QUEUE_URL", local+"usage-reset-queue"),
		ArchiveQueueURL: getEnv("AWS_SQS_ARCHIVE_QUEUE_URL", local+"usage-archive-queue"),
	}
}

func (c *SQSConfig) GetClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := c.AWS.sdkConfig(ctx)
	if err != nil {
		return nil, err
	}

	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		o.BaseEndpoint = c.AWS.baseEndpoint()
	}), nil
}
