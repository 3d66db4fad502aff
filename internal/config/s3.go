package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config locates the bucket that holds daily ledger exports.
type S3Config struct {
	AWS        AWSConfig
	BucketName string
	KeyPrefix  string
}

func DefaultS3Config() *S3Config {
	return &S3Config{
		AWS:        loadAWSConfig("AWS_S3_ENDPOINT"),
		BucketName: getEnv("S3_ARCHIVE_BUCKET", "token-usage-archives"),
		KeyPrefix:  getEnv("S3_ARCHIVE_PREFIX", "usage-ledger"),
	}
}

// ArchiveKey returns the object key for one organization's ledger export of a UTC day.
// Format: <prefix>/<yyyy>/<mm>/<dd>/<organization_id>.json
func (c *S3Config) ArchiveKey(organizationID string, day time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json", c.KeyPrefix, day.UTC().Format("2006/01/02"), organizationID)
}

func (c *S3Config) GetClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := c.AWS.sdkConfig(ctx)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := c.AWS.baseEndpoint(); endpoint != nil {
			o.BaseEndpoint = endpoint
			// Emulators do not serve virtual-hosted buckets.
			o.UsePathStyle = true
		}
	}), nil
}
