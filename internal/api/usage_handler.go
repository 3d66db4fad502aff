package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/domain"
	contextutils "github.com/kingrain94/token-quota-api/internal/utils"
	"github.com/kingrain94/token-quota-api/pkg/utils"
)

//go:generate mockery --name UsageService --output ../mocks
type UsageService interface {
	Charge(ctx context.Context, req dto.ChargeRequest) (*dto.ChargeResponse, error)
	CheckAllowance(ctx context.Context, req dto.AllowanceRequest) (*dto.AllowanceResponse, error)
	GetUserUsage(ctx context.Context, userID string) (*dto.UserUsageResponse, error)
	GetOrganizationUsage(ctx context.Context, organizationID string) (*dto.OrganizationUsageResponse, error)
	ListUsageEvents(ctx context.Context, filter *domain.UsageEventFilter) ([]dto.UsageEventResponse, error)
	ReconcileUser(ctx context.Context, userID string) (*dto.ReconciliationResponse, error)
	ScheduleArchive(ctx context.Context, day time.Time) error
}

type UsageHandler struct {
	*BaseHandler
	service UsageService
}

func NewUsageHandler(service UsageService) *UsageHandler {
	return &UsageHandler{service: service}
}

// Charge Record token usage
// @Summary Charge token usage
// @Description Admits one usage event against the user's daily quota and updates the counters, or rejects it without changing anything
// @Tags    usage
// @Accept  json
// @Produce json
// @Param   body body dto.ChargeRequest true "Usage event"
// @Success 201 {object} dto.ChargeResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 429 {object} dto.QuotaExceededResponse
// @Failure 503 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/charge [post]
func (h *UsageHandler) Charge(c *gin.Context) {
	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	resp, err := h.service.Charge(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// CheckAllowance Ask whether a charge would be admitted
// @Summary Check allowance
// @Description Reports whether a charge of the given size would be admitted right now, without recording anything
// @Tags    usage
// @Accept  json
// @Produce json
// @Param   body body dto.AllowanceRequest true "Prospective charge"
// @Success 200 {object} dto.AllowanceResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/allowance [post]
func (h *UsageHandler) CheckAllowance(c *gin.Context) {
	var req dto.AllowanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	resp, err := h.service.CheckAllowance(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUserUsage Get a user's counters
// @Summary Get user usage
// @Tags    usage
// @Produce json
// @Param   id path string true "User ID"
// @Success 200 {object} dto.UserUsageResponse
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/users/{id} [get]
func (h *UsageHandler) GetUserUsage(c *gin.Context) {
	resp, err := h.service.GetUserUsage(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReconcileUser Compare a user's counters with the ledger
// @Summary Reconcile user counters
// @Tags    usage
// @Produce json
// @Param   id path string true "User ID"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/users/{id}/reconcile [get]
func (h *UsageHandler) ReconcileUser(c *gin.Context) {
	resp, err := h.service.ReconcileUser(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetOrganizationUsage Get an organization's counters
// @Summary Get organization usage
// @Tags    usage
// @Produce json
// @Param   id path string true "Organization ID"
// @Success 200 {object} dto.OrganizationUsageResponse
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/organizations/{id} [get]
func (h *UsageHandler) GetOrganizationUsage(c *gin.Context) {
	resp, err := h.service.GetOrganizationUsage(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListUsageEvents List ledger rows of the caller's organization
// @Summary List usage events
// @Tags    usage
// @Produce json
// @Param   page query int false "Page number"
// @Param   page_size query int false "Page size"
// @Param   user_id query string false "Filter by user ID"
// @Param   model query string false "Filter by model"
// @Param   token_type query string false "Filter by token type"
// @Param   operation_type query string false "Filter by operation type"
// @Param   start_time query string false "Start time (RFC3339 or YYYY-MM-DD)" example:"2025-03-20T00:00:00Z"
// @Param   end_time query string false "End time (RFC3339 or YYYY-MM-DD)" example:"2025-03-20T23:59:59Z"
// @Success 200 {array} dto.UsageEventResponse
// @Failure 400 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/events [get]
func (h *UsageHandler) ListUsageEvents(c *gin.Context) {
	filter, err := getFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	events, err := h.service.ListUsageEvents(h.RequestCtx(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// ScheduleArchive Export one day of the ledger to object storage
// @Summary Schedule ledger archive
// @Description Enqueues an archive job for the UTC day given by date
// @Tags    usage
// @Produce json
// @Param   date query string true "Day to archive (YYYY-MM-DD)"
// @Success 202 {object} map[string]interface{} "Archive scheduled"
// @Failure 400 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /usage/archive [post]
func (h *UsageHandler) ScheduleArchive(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, dto.Error{Error: "date parameter is required"})
		return
	}

	day, err := utils.ParseUserTime(dateStr, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: "Invalid date format: " + err.Error()})
		return
	}
	day = utils.StartOfDay(day)
	if !day.Before(utils.StartOfDay(time.Now())) {
		c.JSON(http.StatusBadRequest, dto.Error{Error: "date must be a past day"})
		return
	}

	if err := h.service.ScheduleArchive(h.RequestCtx(c), day); err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Error: "Failed to schedule archive: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Archive scheduled successfully",
		"date":    day.Format(time.DateOnly),
	})
}

func getFilterFromQuery(c *gin.Context) (*domain.UsageEventFilter, error) {
	orgID := c.GetString(string(contextutils.OrganizationIDKey))
	if orgID == "" {
		return nil, fmt.Errorf("organization_id is required")
	}

	filter := &domain.UsageEventFilter{
		OrganizationID: orgID,
		UserID:         c.Query("user_id"),
		Model:          c.Query("model"),
		TokenType:      domain.TokenType(c.Query("token_type")),
		OperationType:  domain.OperationType(c.Query("operation_type")),
	}
	if filter.UserID != "" && !domain.ValidID(filter.UserID) {
		return nil, fmt.Errorf("%w: user_id %q", domain.ErrMalformedID, filter.UserID)
	}
	if filter.TokenType != "" && !filter.TokenType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTokenType, filter.TokenType)
	}
	if filter.OperationType != "" && !filter.OperationType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperationType, filter.OperationType)
	}

	if page := c.Query("page"); page != "" {
		if pageNum, err := strconv.Atoi(page); err == nil {
			filter.Page = pageNum
		}
	}
	if pageSize := c.Query("page_size"); pageSize != "" {
		if size, err := strconv.Atoi(pageSize); err == nil {
			filter.PageSize = size
		}
	}

	if startTime := c.Query("start_time"); startTime != "" {
		t, err := utils.ParseUserTime(startTime, false)
		if err != nil {
			return nil, err
		}
		filter.StartTime = t
	}
	if endTime := c.Query("end_time"); endTime != "" {
		t, err := utils.ParseUserTime(endTime, true)
		if err != nil {
			return nil, err
		}
		filter.EndTime = t
	}
	if !filter.StartTime.IsZero() && !filter.EndTime.IsZero() && filter.StartTime.After(filter.EndTime) {
		return nil, fmt.Errorf("start_time must be before end_time")
	}

	return filter, nil
}
