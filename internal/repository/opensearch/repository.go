package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/utils"
)

const defaultSearchSize = 100

type usageRepository struct {
	client *opensearch.Client
	config *config.OpenSearchConfig
}

// NewRepository returns the search-side copy of the usage ledger. Postgres stays
// the source of truth; documents here are written by the index worker.
func NewRepository(client *opensearch.Client, config *config.OpenSearchConfig) repository.OpenSearchRepository {
	return &usageRepository{
		client: client,
		config: config,
	}
}

func (r *usageRepository) Index(ctx context.Context, event *domain.UsageEvent) error {
	indexTime := eventTime(event)
	indexName := r.config.GetIndexName(event.OrganizationID, indexTime)

	if err := r.CreateIndex(ctx, event.OrganizationID, indexTime); err != nil {
		return fmt.Errorf("failed to ensure index exists: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      indexName,
		DocumentID: event.ID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}

func (r *usageRepository) BulkIndex(ctx context.Context, events []domain.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	groups := make(map[string][]domain.UsageEvent)
	for _, event := range events {
		indexName := r.config.GetIndexName(event.OrganizationID, eventTime(&event))
		groups[indexName] = append(groups[indexName], event)
	}

	for indexName, group := range groups {
		if err := r.bulkIndexGroup(ctx, indexName, group); err != nil {
			return fmt.Errorf("failed to bulk index group for index %s: %w", indexName, err)
		}
	}

	return nil
}

func (r *usageRepository) bulkIndexGroup(ctx context.Context, indexName string, events []domain.UsageEvent) error {
	if err := r.CreateIndex(ctx, events[0].OrganizationID, eventTime(&events[0])); err != nil {
		return fmt.Errorf("failed to ensure index exists: %w", err)
	}

	body, err := buildBulkBody(indexName, events)
	if err != nil {
		return err
	}

	req := opensearchapi.BulkRequest{
		Body: bytes.NewReader(body),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request failed: %s", res.String())
	}

	// A 200 can still carry per-item failures.
	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if result.Errors {
		return fmt.Errorf("bulk request for %s reported item errors", indexName)
	}

	return nil
}

func buildBulkBody(indexName string, events []domain.UsageEvent) ([]byte, error) {
	var buf bytes.Buffer
	for _, event := range events {
		action := map[string]any{
			"index": map[string]any{
				"_index": indexName,
				"_id":    event.ID,
			},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal action: %w", err)
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')

		docLine, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
		buf.Write(docLine)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (r *usageRepository) Search(ctx context.Context, filter *domain.UsageEventFilter) ([]domain.UsageEvent, error) {
	organizationID := filter.OrganizationID
	if organizationID == "" {
		var err error
		organizationID, err = utils.GetOrganizationIDFromContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get organization ID from context: %w", err)
		}
	}

	queryJSON, err := json.Marshal(buildSearchQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.config.GetIndexPattern(organizationID)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return []domain.UsageEvent{}, nil
		}
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	return decodeHits(res.Body)
}

func decodeHits(body io.Reader) ([]domain.UsageEvent, error) {
	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source domain.UsageEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	events := make([]domain.UsageEvent, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		events = append(events, hit.Source)
	}
	return events, nil
}

func buildSearchQuery(filter *domain.UsageEventFilter) map[string]any {
	must := make([]map[string]any, 0)

	terms := map[string]string{
		"user_id":        filter.UserID,
		"model":          filter.Model,
		"token_type":     string(filter.TokenType),
		"operation_type": string(filter.OperationType),
	}
	for field, value := range terms {
		if value != "" {
			must = append(must, termQuery(field, value))
		}
	}

	if !filter.StartTime.IsZero() || !filter.EndTime.IsZero() {
		must = append(must, timeRangeQuery(filter.StartTime, filter.EndTime))
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": must,
			},
		},
		"sort": []map[string]any{
			{"created_at": map[string]any{"order": "desc"}},
		},
		"size": defaultSearchSize,
	}

	switch {
	case filter.Page > 0 && filter.PageSize > 0:
		query["from"] = (filter.Page - 1) * filter.PageSize
		query["size"] = filter.PageSize
	case filter.Limit > 0:
		query["from"] = filter.Offset
		query["size"] = filter.Limit
	}

	return query
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"term": map[string]any{
			field: value,
		},
	}
}

func timeRangeQuery(startTime, endTime time.Time) map[string]any {
	timeRange := make(map[string]any)
	if !startTime.IsZero() {
		timeRange["gte"] = startTime.UTC()
	}
	if !endTime.IsZero() {
		timeRange["lte"] = endTime.UTC()
	}
	return map[string]any{
		"range": map[string]any{
			"created_at": timeRange,
		},
	}
}

const indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"user_id": { "type": "keyword" },
			"organization_id": { "type": "keyword" },
			"token_type": { "type": "keyword" },
			"operation_type": { "type": "keyword" },
			"tokens_used": { "type": "long" },
			"model": { "type": "keyword" },
			"document_id": { "type": "keyword" },
			"chat_id": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	},
	"settings": {
		"index": {
			"number_of_shards": 1,
			"number_of_replicas": 1,
			"refresh_interval": "1s"
		}
	}
}`

func (r *usageRepository) CreateIndex(ctx context.Context, organizationID string, t time.Time) error {
	indexName := r.config.GetIndexName(organizationID, t)

	exists := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}
	res, err := exists.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	create := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(indexMapping),
	}

	res, err = create.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	// Two writers racing on a new month both try to create the index.
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

func eventTime(event *domain.UsageEvent) time.Time {
	if event.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return event.CreatedAt
}
