package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

type Sweeper interface {
	RunDailyResetSweep(ctx context.Context) (*dto.SweepResponse, error)
}

// ResetHandler runs the daily reset sweep for each DAILY_RESET message. The
// sweep is idempotent, so a redelivered message is harmless.
type ResetHandler struct {
	sweeper Sweeper
	logger  *logger.Logger
}

func NewResetHandler(sweeper Sweeper, logger *logger.Logger) *ResetHandler {
	return &ResetHandler{sweeper: sweeper, logger: logger}
}

func (h *ResetHandler) Handle(ctx context.Context, msg queue.Message) error {
	if msg.Type != queue.MessageTypeDailyReset {
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}

	result, err := h.sweeper.RunDailyResetSweep(ctx)
	if err != nil {
		return fmt.Errorf("daily reset sweep: %w", err)
	}

	h.logger.Info("Daily reset sweep finished",
		zap.Bool("skipped", result.Skipped),
		zap.Int64("users_reset", result.UsersReset),
		zap.Int64("organizations_reset", result.OrganizationsReset),
		zap.Time("requested_at", msg.Timestamp))
	return nil
}
