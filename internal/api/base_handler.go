package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/token-quota-api/internal/utils"
)

type BaseHandler struct{}

// RequestCtx carries the values the auth middleware stored on the gin context
// into the request context the services see.
func (h *BaseHandler) RequestCtx(ginCtx *gin.Context) context.Context {
	ctx := ginCtx.Request.Context()
	for k, v := range ginCtx.Keys {
		ctx = context.WithValue(ctx, utils.ContextKey(k), v)
	}
	return ctx
}
