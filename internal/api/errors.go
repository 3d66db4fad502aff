package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/service"
)

// respondError maps a service error to its status code and body.
func respondError(c *gin.Context, err error) {
	var quotaErr *service.QuotaExceededError
	if errors.As(err, &quotaErr) {
		c.JSON(http.StatusTooManyRequests, dto.QuotaExceededResponse{
			Error:         quotaErr.Error(),
			UserID:        quotaErr.UserID,
			OperationType: string(quotaErr.OperationType),
			Used:          quotaErr.Used,
			Requested:     quotaErr.Requested,
			Limit:         quotaErr.Limit,
		})
		return
	}

	c.JSON(statusFor(err), dto.Error{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidUsageEvent),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrInvalidUsersPaid),
		errors.Is(err, service.ErrPlanInactive):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrOrganizationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPlanNameTaken),
		errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrNoDefaultPlan):
		return http.StatusConflict
	case errors.Is(err, service.ErrTransientStoreFailure),
		errors.Is(err, service.ErrCascadeFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
