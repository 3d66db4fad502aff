package domain

import (
	"time"

	"github.com/kingrain94/token-quota-api/pkg/utils"
)

// Column names of the counters. The repository builds its increment and reset
// statements from these so the mapping lives in one place.
const (
	ColumnChatTokensUsed                    = "chat_tokens_used"
	ColumnEmbeddingTokensUsed               = "embedding_tokens_used"
	ColumnDailyChatTokensUsed               = "daily_chat_tokens_used"
	ColumnDailyDocumentProcessingTokensUsed = "daily_document_processing_tokens_used"
	ColumnLastDailyReset                    = "last_daily_reset"
)

// UsageCounters is the denormalized consumption state carried by both users and
// organizations. Lifetime totals are split by token type, daily totals by
// operation type.
type UsageCounters struct {
	ChatTokensUsed                    int64      `gorm:"not null;default:0" json:"chat_tokens_used"`
	EmbeddingTokensUsed               int64      `gorm:"not null;default:0" json:"embedding_tokens_used"`
	DailyChatTokensUsed               int64      `gorm:"not null;default:0" json:"daily_chat_tokens_used"`
	DailyDocumentProcessingTokensUsed int64      `gorm:"not null;default:0" json:"daily_document_processing_tokens_used"`
	LastDailyReset                    *time.Time `json:"last_daily_reset"`
}

// IsStale reports whether the daily window has turned over since the last reset.
func (c UsageCounters) IsStale(now time.Time) bool {
	if c.LastDailyReset == nil {
		return true
	}
	return c.LastDailyReset.UTC().Before(utils.StartOfDay(now))
}

// ResetDaily zeroes the daily counters and stamps the reset time.
func (c *UsageCounters) ResetDaily(now time.Time) {
	now = now.UTC()
	c.DailyChatTokensUsed = 0
	c.DailyDocumentProcessingTokensUsed = 0
	c.LastDailyReset = &now
}

// Fresh returns the counters as they read today: daily totals of a stale row are zero.
func (c UsageCounters) Fresh(now time.Time) UsageCounters {
	if c.IsStale(now) {
		c.DailyChatTokensUsed = 0
		c.DailyDocumentProcessingTokensUsed = 0
	}
	return c
}

func (c UsageCounters) DailyUsed(op OperationType) int64 {
	if op == OperationDocumentProcessing {
		return c.DailyDocumentProcessingTokensUsed
	}
	return c.DailyChatTokensUsed
}

// Apply adds an accepted event to the in-memory snapshot.
func (c *UsageCounters) Apply(e *UsageEvent) {
	switch e.TokenType {
	case TokenTypeChat:
		c.ChatTokensUsed += e.TokensUsed
	case TokenTypeEmbedding:
		c.EmbeddingTokensUsed += e.TokensUsed
	}
	switch e.OperationType {
	case OperationChatCompletion:
		c.DailyChatTokensUsed += e.TokensUsed
	case OperationDocumentProcessing:
		c.DailyDocumentProcessingTokensUsed += e.TokensUsed
	}
}

func LifetimeColumn(t TokenType) string {
	if t == TokenTypeEmbedding {
		return ColumnEmbeddingTokensUsed
	}
	return ColumnChatTokensUsed
}

func DailyColumn(op OperationType) string {
	if op == OperationDocumentProcessing {
		return ColumnDailyDocumentProcessingTokensUsed
	}
	return ColumnDailyChatTokensUsed
}

// ExceedsLimit reports whether used+tokens passes limit. Zero or negative limits are unlimited.
func ExceedsLimit(limit, used, tokens int64) bool {
	return limit > 0 && used+tokens > limit
}

// Remaining returns how many tokens may still be charged today, or -1 when unlimited.
func Remaining(limit, used int64) int64 {
	if limit <= 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
