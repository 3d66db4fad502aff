package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
)

//go:generate mockery --name PlanService --output ../mocks
type PlanService interface {
	UpsertPlan(ctx context.Context, req dto.UpsertPlanRequest) (*dto.PlanResponse, error)
	SetDefaultPlan(ctx context.Context, id string) error
	ListActivePlans(ctx context.Context) ([]dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
}

type PlanHandler struct {
	*BaseHandler
	service PlanService
}

func NewPlanHandler(service PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// ListPlans List active pricing plans
// @Summary List plans
// @Tags    plans
// @Produce json
// @Success 200 {array} dto.PlanResponse
// @Failure 401 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListActivePlans(h.RequestCtx(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// UpsertPlan Create or update a plan by name
// @Summary Upsert plan
// @Description Updates the plan with the same name, or creates it. Member limits are not touched.
// @Tags    plans
// @Accept  json
// @Produce json
// @Param   body body dto.UpsertPlanRequest true "Plan"
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /plans [post]
func (h *PlanHandler) UpsertPlan(c *gin.Context) {
	h.upsert(c, "")
}

// UpdatePlan Update a plan by ID
// @Summary Update plan
// @Tags    plans
// @Accept  json
// @Produce json
// @Param   id path string true "Plan ID"
// @Param   body body dto.UpsertPlanRequest true "Plan"
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	h.upsert(c, c.Param("id"))
}

func (h *PlanHandler) upsert(c *gin.Context, id string) {
	var req dto.UpsertPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}
	req.ID = id

	plan, err := h.service.UpsertPlan(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// SetDefaultPlan Make a plan the default for new organizations
// @Summary Set default plan
// @Tags    plans
// @Produce json
// @Param   id path string true "Plan ID"
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /plans/{id}/default [post]
func (h *PlanHandler) SetDefaultPlan(c *gin.Context) {
	ctx := h.RequestCtx(c)
	id := c.Param("id")

	if err := h.service.SetDefaultPlan(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.service.GetPlan(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
