package middleware

import (
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/pkg/logger"
)

// suspiciousPatterns are rejected anywhere in the path, query or headers.
// Every identifier this API accepts is a UUID, an enum or a date, so none of
// them can legitimately match.
var suspiciousPatterns = compilePatterns(
	`(?i)\bUNION\b.*\bSELECT\b`,
	`(?i)\b(INSERT\b.*\bINTO|DELETE\b.*\bFROM|UPDATE\b.*\bSET|DROP\b.*\bTABLE)\b`,
	`;\s*--`,
	`/\*.*\*/`,
	`(?i)<\s*(script|iframe|object|embed)`,
	`(?i)javascript:`,
	`(?i)\bon(load|click|error)\s*=`,
	`\.\.[/\\]`,
	`(?i)%2e%2e(%2f|%5c)`,
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

type ValidationMiddleware struct {
	logger *logger.Logger
}

func NewValidationMiddleware(logger *logger.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{
		logger: logger,
	}
}

// SanitizeInput strips NUL and other control characters from query values.
func (m *ValidationMiddleware) SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		changed := false
		for key, values := range query {
			for i, value := range values {
				if sanitized := sanitizeString(value); sanitized != value {
					m.logger.Info("Sanitized query parameter", zap.String("key", key))
					values[i] = sanitized
					changed = true
				}
			}
		}
		if changed {
			c.Request.URL.RawQuery = query.Encode()
		}

		c.Next()
	}
}

// ValidateContentType ensures bodies arrive in one of allowedTypes.
func (m *ValidationMiddleware) ValidateContentType(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}
		// Bodyless commands such as POST /plans/:id/default.
		if c.Request.ContentLength == 0 && c.GetHeader("Content-Type") == "" {
			c.Next()
			return
		}

		contentType := strings.TrimSpace(strings.Split(c.GetHeader("Content-Type"), ";")[0])
		if !slices.Contains(allowedTypes, contentType) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error":         "Unsupported Content-Type",
				"allowed_types": allowedTypes,
			})
			return
		}

		c.Next()
	}
}

// ValidateRequestSize limits request body size
func (m *ValidationMiddleware) ValidateRequestSize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    "Request body too large",
				"max_size": maxSize,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// BlockSuspiciousPatterns rejects requests that look like injection or traversal attempts.
func (m *ValidationMiddleware) BlockSuspiciousPatterns() gin.HandlerFunc {
	return func(c *gin.Context) {
		if containsSuspiciousPattern(c.Request.URL.Path) {
			m.block(c, zap.String("path", c.Request.URL.Path))
			return
		}

		for key, values := range c.Request.URL.Query() {
			for _, value := range values {
				if containsSuspiciousPattern(value) {
					m.block(c, zap.String("query", key))
					return
				}
			}
		}

		for key, values := range c.Request.Header {
			if strings.EqualFold(key, "authorization") {
				continue
			}
			for _, value := range values {
				if containsSuspiciousPattern(value) {
					m.block(c, zap.String("header", key))
					return
				}
			}
		}

		c.Next()
	}
}

// RequireUUIDParams rejects the request unless every named path parameter is a UUID.
func (m *ValidationMiddleware) RequireUUIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
				return
			}
		}
		c.Next()
	}
}

func (m *ValidationMiddleware) block(c *gin.Context, field zap.Field) {
	m.logger.Warn("Blocked suspicious request", field, zap.String("ip", c.ClientIP()))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

func sanitizeString(input string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, input)
}

func containsSuspiciousPattern(input string) bool {
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}
