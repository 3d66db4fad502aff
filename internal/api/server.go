package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/middleware"
)

const maxRequestSize = 1 << 20

type Server struct {
	usage        *UsageHandler
	plan         *PlanHandler
	organization *OrganizationHandler
	admin        *AdminHandler
	websocket    *WebSocketHandler
	auth         *middleware.AuthMiddleware
	rateLimit    *middleware.RateLimitMiddleware
	validation   *middleware.ValidationMiddleware
}

func NewServer(
	usageService UsageService,
	planService PlanService,
	organizationService OrganizationService,
	resetService ResetService,
	websocket *WebSocketHandler,
	auth *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	validation *middleware.ValidationMiddleware,
) *Server {
	return &Server{
		usage:        NewUsageHandler(usageService),
		plan:         NewPlanHandler(planService),
		organization: NewOrganizationHandler(organizationService),
		admin:        NewAdminHandler(resetService),
		websocket:    websocket,
		auth:         auth,
		rateLimit:    rateLimit,
		validation:   validation,
	}
}

func (s *Server) SetupRoutes(api *gin.RouterGroup) {
	api.Use(s.validation.BlockSuspiciousPatterns())
	api.Use(s.validation.SanitizeInput())
	api.Use(s.validation.ValidateRequestSize(maxRequestSize))
	api.Use(s.validation.ValidateContentType("application/json"))
	api.Use(s.rateLimit.GlobalRateLimit())

	authed := api.Group("", s.auth.JWTAuth(), s.rateLimit.OrganizationRateLimit())

	admin := s.auth.RequireRole(domain.RoleAdmin)
	member := s.auth.RequireRole(domain.RoleMember, domain.RoleAdmin)
	metering := s.auth.RequireRole(domain.RoleMetering, domain.RoleAdmin)
	uuidID := s.validation.RequireUUIDParams("id")

	usage := authed.Group("/usage")
	{
		usage.POST("/charge", metering, s.usage.Charge)
		usage.POST("/allowance", metering, s.usage.CheckAllowance)
		usage.GET("/users/:id", member, uuidID, s.usage.GetUserUsage)
		usage.GET("/users/:id/reconcile", admin, uuidID, s.usage.ReconcileUser)
		usage.GET("/organizations/:id", member, uuidID, s.usage.GetOrganizationUsage)
		usage.GET("/events", member, s.usage.ListUsageEvents)
		usage.GET("/stream", member, s.websocket.HandleWebSocket)
		usage.POST("/archive", admin, s.usage.ScheduleArchive)
	}

	plans := authed.Group("/plans")
	{
		plans.GET("", member, s.plan.ListPlans)
		plans.POST("", admin, s.plan.UpsertPlan)
		plans.PUT("/:id", admin, uuidID, s.plan.UpdatePlan)
		plans.POST("/:id/default", admin, uuidID, s.plan.SetDefaultPlan)
	}

	orgs := authed.Group("/organizations", admin)
	{
		orgs.POST("", s.organization.CreateOrganization)
		orgs.GET("/:id", uuidID, s.organization.GetOrganization)
		orgs.PUT("/:id/plan", uuidID, s.organization.AssignPlan)
		orgs.POST("/:id/users", uuidID, s.organization.CreateUser)
		orgs.GET("/:id/users", uuidID, s.organization.ListUsers)
	}

	authed.POST("/admin/reset-sweep", admin, s.admin.ResetSweep)
}

// StartWebSocketHub starts the hub that fans usage events out to sockets.
func (s *Server) StartWebSocketHub() {
	go s.websocket.Start()
}

func (s *Server) StopWebSocketHub() {
	s.websocket.Stop()
}
