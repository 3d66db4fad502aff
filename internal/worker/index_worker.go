package worker

import (
	"context"
	"fmt"

	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
)

// IndexHandler copies accepted ledger rows into the search index.
type IndexHandler struct {
	search repository.OpenSearchRepository
}

func NewIndexHandler(search repository.OpenSearchRepository) *IndexHandler {
	return &IndexHandler{search: search}
}

func (h *IndexHandler) Handle(ctx context.Context, msg queue.Message) error {
	switch msg.Type {
	case queue.MessageTypeIndex:
		if len(msg.Events) != 1 {
			return fmt.Errorf("invalid number of events for INDEX message: %d", len(msg.Events))
		}
		return h.search.Index(ctx, &msg.Events[0])

	case queue.MessageTypeBulkIndex:
		if len(msg.Events) == 0 {
			return fmt.Errorf("empty events array for BULK_INDEX message")
		}
		return h.search.BulkIndex(ctx, msg.Events)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
