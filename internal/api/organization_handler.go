package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
)

//go:generate mockery --name OrganizationService --output ../mocks
type OrganizationService interface {
	EnrollOrganization(ctx context.Context, req dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error)
	GetOrganization(ctx context.Context, id string) (*dto.OrganizationResponse, error)
	AssignPlan(ctx context.Context, organizationID string, req dto.AssignPlanRequest) (*dto.AssignPlanResponse, error)
	EnrollUser(ctx context.Context, organizationID string, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, organizationID string) ([]dto.UserResponse, error)
}

type OrganizationHandler struct {
	*BaseHandler
	service OrganizationService
}

func NewOrganizationHandler(service OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// CreateOrganization Enroll an organization on the default plan
// @Summary Create organization
// @Tags    organizations
// @Accept  json
// @Produce json
// @Param   body body dto.CreateOrganizationRequest true "Organization"
// @Success 201 {object} dto.OrganizationResponse
// @Failure 400 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	org, err := h.service.EnrollOrganization(h.RequestCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GetOrganization Get an organization
// @Summary Get organization
// @Tags    organizations
// @Produce json
// @Param   id path string true "Organization ID"
// @Success 200 {object} dto.OrganizationResponse
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.service.GetOrganization(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// AssignPlan Move an organization to a plan
// @Summary Assign plan
// @Description Changes the organization's plan and, when the plan differs, sets every member's daily limit to the plan's limit in one transaction
// @Tags    organizations
// @Accept  json
// @Produce json
// @Param   id path string true "Organization ID"
// @Param   body body dto.AssignPlanRequest true "Plan assignment"
// @Success 200 {object} dto.AssignPlanResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /organizations/{id}/plan [put]
func (h *OrganizationHandler) AssignPlan(c *gin.Context) {
	var req dto.AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	resp, err := h.service.AssignPlan(h.RequestCtx(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateUser Enroll a user in an organization
// @Summary Create user
// @Tags    organizations
// @Accept  json
// @Produce json
// @Param   id path string true "Organization ID"
// @Param   body body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /organizations/{id}/users [post]
func (h *OrganizationHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	user, err := h.service.EnrollUser(h.RequestCtx(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers List an organization's users
// @Summary List users
// @Tags    organizations
// @Produce json
// @Param   id path string true "Organization ID"
// @Success 200 {array} dto.UserResponse
// @Failure 404 {object} dto.Error
// @Security ApiKeyAuth
// @Router  /organizations/{id}/users [get]
func (h *OrganizationHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(h.RequestCtx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}
