package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeChat      TokenType = "chat"
	TokenTypeEmbedding TokenType = "embedding"
)

func (t TokenType) Valid() bool {
	return t == TokenTypeChat || t == TokenTypeEmbedding
}

type OperationType string

const (
	OperationChatCompletion     OperationType = "chat_completion"
	OperationDocumentProcessing OperationType = "document_processing"
)

func (o OperationType) Valid() bool {
	return o == OperationChatCompletion || o == OperationDocumentProcessing
}

var (
	ErrNonPositiveTokens    = errors.New("tokens_used must be greater than zero")
	ErrUnknownTokenType     = errors.New("unknown token_type")
	ErrUnknownOperationType = errors.New("unknown operation_type")
	ErrMissingTenant        = errors.New("user_id and organization_id are required")
	ErrMalformedID          = errors.New("id is not a UUID")
)

// ValidID reports whether id is a hyphenated UUID, the only key form the store accepts.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// UsageEvent is one immutable ledger row. The metering core only ever inserts them.
type UsageEvent struct {
	ID             string        `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string        `gorm:"type:uuid;not null;index:idx_usage_events_user_created,priority:1" json:"user_id"`
	OrganizationID string        `gorm:"type:uuid;not null;index:idx_usage_events_org_created,priority:1" json:"organization_id"`
	TokenType      TokenType     `gorm:"type:text;not null" json:"token_type"`
	OperationType  OperationType `gorm:"type:text;not null" json:"operation_type"`
	TokensUsed     int64         `gorm:"not null" json:"tokens_used"`
	Model          string        `gorm:"type:text" json:"model,omitempty"`
	DocumentID     *string       `gorm:"type:uuid" json:"document_id,omitempty"`
	ChatID         *string       `gorm:"type:uuid" json:"chat_id,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;index:idx_usage_events_user_created,priority:2;index:idx_usage_events_org_created,priority:2" json:"created_at"`
	User           *User         `gorm:"foreignKey:UserID" json:"-"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (UsageEvent) TableName() string {
	return "usage_events"
}

// Validate checks the shape of the event without touching the store.
func (e *UsageEvent) Validate() error {
	if e.UserID == "" || e.OrganizationID == "" {
		return ErrMissingTenant
	}
	if !ValidID(e.UserID) {
		return fmt.Errorf("%w: user_id %q", ErrMalformedID, e.UserID)
	}
	if !ValidID(e.OrganizationID) {
		return fmt.Errorf("%w: organization_id %q", ErrMalformedID, e.OrganizationID)
	}
	if e.DocumentID != nil && !ValidID(*e.DocumentID) {
		return fmt.Errorf("%w: document_id %q", ErrMalformedID, *e.DocumentID)
	}
	if e.ChatID != nil && !ValidID(*e.ChatID) {
		return fmt.Errorf("%w: chat_id %q", ErrMalformedID, *e.ChatID)
	}
	if e.TokensUsed <= 0 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveTokens, e.TokensUsed)
	}
	if !e.TokenType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTokenType, e.TokenType)
	}
	if !e.OperationType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperationType, e.OperationType)
	}
	return nil
}

type UsageEventFilter struct {
	OrganizationID string        `json:"organization_id"`
	UserID         string        `json:"user_id"`
	Model          string        `json:"model"`
	TokenType      TokenType     `json:"token_type"`
	OperationType  OperationType `json:"operation_type"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Page           int           `json:"page"`
	PageSize       int           `json:"page_size"`
	Limit          int           `json:"limit"`
	Offset         int           `json:"offset"`
}

// LedgerTotals are sums of ledger rows grouped the same way the counters are.
type LedgerTotals struct {
	ChatTokens               int64 `json:"chat_tokens"`
	EmbeddingTokens          int64 `json:"embedding_tokens"`
	ChatCompletionTokens     int64 `json:"chat_completion_tokens"`
	DocumentProcessingTokens int64 `json:"document_processing_tokens"`
}
