package config

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
)

// OpenSearchConfig locates the cluster that serves usage event search.
type OpenSearchConfig struct {
	Addresses   []string
	Username    string
	Password    string
	IndexPrefix string
	Insecure    bool
	MaxRetries  int
}

func DefaultOpenSearchConfig() *OpenSearchConfig {
	addr := fmt.Sprintf("http://%s:%s", getEnv("OPENSEARCH_HOST", "localhost"), getEnv("OPENSEARCH_PORT", "9200"))
	return &OpenSearchConfig{
		Addresses:   strings.Split(getEnv("OPENSEARCH_ADDRESSES", addr), ","),
		Username:    getEnv("OPENSEARCH_USERNAME", ""),
		Password:    getEnv("OPENSEARCH_PASSWORD", ""),
		IndexPrefix: getEnv("OPENSEARCH_INDEX_PREFIX", "usage_events"),
		Insecure:    getEnvBool("OPENSEARCH_INSECURE", true),
		MaxRetries:  getEnvInt("OPENSEARCH_MAX_RETRIES", 3),
	}
}

func (c *OpenSearchConfig) GetClient() (*opensearch.Client, error) {
	return opensearch.NewClient(opensearch.Config{
		Addresses:  c.Addresses,
		Username:   c.Username,
		Password:   c.Password,
		MaxRetries: c.MaxRetries,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: c.Insecure},
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

// GetIndexName returns the monthly usage index of an organization.
// Format: <prefix>_<organization_id>_YYYY_MM
func (c *OpenSearchConfig) GetIndexName(organizationID string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s", c.IndexPrefix, organizationID, t.UTC().Format("2006_01"))
}

// GetIndexPattern matches every usage index of an organization.
func (c *OpenSearchConfig) GetIndexPattern(organizationID string) string {
	return fmt.Sprintf("%s_%s_*", c.IndexPrefix, organizationID)
}
