package integration

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/token-quota-api/internal/api"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/middleware"
	"github.com/kingrain94/token-quota-api/internal/repository/composite"
	"github.com/kingrain94/token-quota-api/internal/service"
	"github.com/kingrain94/token-quota-api/internal/service/pubsub"
	"github.com/kingrain94/token-quota-api/internal/testutil"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

const (
	testSecret = "integration-secret"
	opsOrgID   = "00000000-0000-0000-0000-000000000001"
)

// stack is the full HTTP service on sqlite and miniredis.
type stack struct {
	tb     testing.TB
	router *gin.Engine
	clock  *clock.FakeClock
}

func newStack(tb testing.TB) *stack {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.NewMiniRedis()
	require.NoError(tb, mr.Start())
	tb.Cleanup(mr.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { redisClient.Close() })

	cfg := &config.Config{
		JWTSecretKey:       testSecret,
		JWTExpirationHours: 1,
		DefaultRateLimit:   1_000_000,
		GlobalRateLimit:    1_000_000,
		Tenancy:            config.TenancyConfig{DefaultMonthlyTokenLimit: 1000, DefaultUsersPaid: 10},
	}
	log := logger.NewNop()
	clk := clock.NewFakeClock(time.Now())
	repo := composite.NewPostgresOnlyRepository(testutil.NewTestConnections(tb))

	metering := service.NewMeteringService(repo, nil, clk, log)
	websocket := api.NewWebSocketHandler(log, pubsub.NewRedisPubSub(redisClient, log))
	metering.SetUsageBroadcaster(websocket)

	server := api.NewServer(
		metering,
		service.NewPlanService(repo, log),
		service.NewOrganizationService(repo, cfg.Tenancy, clk, log),
		service.NewResetService(repo, clk, log),
		websocket,
		middleware.NewAuthMiddleware(cfg),
		middleware.NewRateLimitMiddleware(redisClient, cfg, log),
		middleware.NewValidationMiddleware(log),
	)
	server.StartWebSocketHub()
	tb.Cleanup(server.StopWebSocketHub)

	router := gin.New()
	server.SetupRoutes(router.Group("/api/v1"))

	return &stack{tb: tb, router: router, clock: clk}
}

func (s *stack) token(orgID string, roles ...string) string {
	s.tb.Helper()
	token, err := middleware.GenerateToken(testSecret, time.Hour, "caller", orgID, roles)
	require.NoError(s.tb, err)
	return token
}

func (s *stack) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.tb, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decode fails the test unless the response has the wanted status, then unmarshals it into v.
func (s *stack) decode(w *httptest.ResponseRecorder, status int, v any) {
	s.tb.Helper()
	require.Equal(s.tb, status, w.Code, w.Body.String())
	if v != nil {
		require.NoError(s.tb, json.Unmarshal(w.Body.Bytes(), v))
	}
}
