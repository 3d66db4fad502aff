package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/pkg/logger"
	"github.com/kingrain94/token-quota-api/pkg/utils"
)

// ObjectStore is the part of the S3 client the archive worker uses.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ledgerArchive struct {
	OrganizationID string              `json:"organization_id"`
	Day            string              `json:"day"`
	ArchivedAt     time.Time           `json:"archived_at"`
	EventCount     int                 `json:"event_count"`
	TokensUsed     int64               `json:"tokens_used"`
	Events         []domain.UsageEvent `json:"events"`
}

// ArchiveHandler exports one UTC day of the ledger to S3, one object per
// organization. Nothing is deleted; the ledger stays the source of truth.
type ArchiveHandler struct {
	events   repository.UsageEventRepository
	store    ObjectStore
	s3Config *config.S3Config
	clock    clock.Clock
	logger   *logger.Logger
}

func NewArchiveHandler(
	events repository.UsageEventRepository,
	store ObjectStore,
	s3Config *config.S3Config,
	clk clock.Clock,
	logger *logger.Logger,
) *ArchiveHandler {
	return &ArchiveHandler{
		events:   events,
		store:    store,
		s3Config: s3Config,
		clock:    clk,
		logger:   logger,
	}
}

func (h *ArchiveHandler) Handle(ctx context.Context, msg queue.Message) error {
	if msg.Type != queue.MessageTypeArchive {
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	if msg.Day.IsZero() {
		return fmt.Errorf("ARCHIVE message without day")
	}

	start := utils.StartOfDay(msg.Day)
	end := start.AddDate(0, 0, 1)

	orgIDs, err := h.events.OrganizationsWithEvents(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to list organizations for %s: %w", start.Format(time.DateOnly), err)
	}
	if len(orgIDs) == 0 {
		h.logger.Info("No usage events to archive", zap.String("day", start.Format(time.DateOnly)))
		return nil
	}

	for _, orgID := range orgIDs {
		if err := h.archiveOrganization(ctx, orgID, start, end); err != nil {
			return err
		}
	}

	h.logger.Info("Archived ledger day",
		zap.String("day", start.Format(time.DateOnly)),
		zap.Int("organizations", len(orgIDs)))
	return nil
}

func (h *ArchiveHandler) archiveOrganization(ctx context.Context, orgID string, start, end time.Time) error {
	events, err := h.events.ListBetween(ctx, orgID, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch events for organization %s: %w", orgID, err)
	}

	archive := ledgerArchive{
		OrganizationID: orgID,
		Day:            start.Format(time.DateOnly),
		ArchivedAt:     h.clock.Now().UTC(),
		EventCount:     len(events),
		Events:         events,
	}
	for _, e := range events {
		archive.TokensUsed += e.TokensUsed
	}

	body, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	key := h.s3Config.ArchiveKey(orgID, start)
	_, err = h.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"organization-id": orgID,
			"day":             archive.Day,
			"event-count":     strconv.Itoa(len(events)),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive for organization %s: %w", orgID, err)
	}

	h.logger.Info("Uploaded ledger archive",
		zap.String("bucket", h.s3Config.BucketName),
		zap.String("key", key),
		zap.Int("events", len(events)))
	return nil
}
