package opensearch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/token-quota-api/internal/domain"
)

func TestBuildSearchQuery(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	filter := &domain.UsageEventFilter{
		UserID:    "u1",
		TokenType: domain.TokenTypeChat,
		StartTime: start,
		Page:      3,
		PageSize:  20,
	}

	query := buildSearchQuery(filter)

	must := query["query"].(map[string]any)["bool"].(map[string]any)["must"].([]map[string]any)
	assert.Len(t, must, 3)
	assert.Contains(t, must, termQuery("user_id", "u1"))
	assert.Contains(t, must, termQuery("token_type", "chat"))
	assert.Equal(t, 40, query["from"])
	assert.Equal(t, 20, query["size"])

	rangeQuery := must[len(must)-1]["range"].(map[string]any)["created_at"].(map[string]any)
	assert.Equal(t, start, rangeQuery["gte"])
	assert.NotContains(t, rangeQuery, "lte")
}

func TestBuildSearchQuery_LimitOffset(t *testing.T) {
	query := buildSearchQuery(&domain.UsageEventFilter{Limit: 5, Offset: 10})

	assert.Equal(t, 10, query["from"])
	assert.Equal(t, 5, query["size"])
}

func TestBuildBulkBody(t *testing.T) {
	events := []domain.UsageEvent{
		{ID: "e1", OrganizationID: "org", TokensUsed: 10},
		{ID: "e2", OrganizationID: "org", TokensUsed: 20},
	}

	body, err := buildBulkBody("usage_events_org_2024_03", events)
	require.NoError(t, err)

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 4)

	var action map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &action))
	assert.Equal(t, "e2", action["index"]["_id"])
	assert.Equal(t, "usage_events_org_2024_03", action["index"]["_index"])
}

func TestDecodeHits(t *testing.T) {
	body := `{"hits":{"hits":[{"_source":{"id":"e1","tokens_used":7,"token_type":"embedding"}}]}}`

	events, err := decodeHits(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].TokensUsed)
	assert.Equal(t, domain.TokenTypeEmbedding, events[0].TokenType)
}
