package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
)

//go:generate mockery --name ResetService --output ../mocks
type ResetService interface {
	RunDailyResetSweep(ctx context.Context) (*dto.SweepResponse, error)
}

type AdminHandler struct {
	*BaseHandler
	reset ResetService
}

func NewAdminHandler(reset ResetService) *AdminHandler {
	return &AdminHandler{reset: reset}
}

// ResetSweep Zero the daily counters of every tenant whose day has turned over
// @Summary Run daily reset sweep
// @Tags    admin
// @Produce json
// @Success 200 {object} dto.SweepResponse
// @Failure 503 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /admin/reset-sweep [post]
func (h *AdminHandler) ResetSweep(c *gin.Context) {
	resp, err := h.reset.RunDailyResetSweep(h.RequestCtx(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
