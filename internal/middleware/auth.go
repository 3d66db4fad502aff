package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/utils"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(config *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		config: config,
	}
}

func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		scheme, raw, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
			return []byte(m.config.JWTSecretKey), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if orgID, ok := claims[string(utils.OrganizationIDKey)].(string); ok {
			c.Set(string(utils.OrganizationIDKey), orgID)
		}
		if userID, ok := claims[string(utils.UserIDKey)].(string); ok {
			c.Set(string(utils.UserIDKey), userID)
		}
		c.Set(string(utils.ClaimsKey), claims)
		c.Next()
	}
}

// RequireRole lets the request through when the token carries any of roles.
// It must run after JWTAuth.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get(string(utils.ClaimsKey))
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authentication found"})
			return
		}

		claimsMap, ok := claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid claims type"})
			return
		}

		if !hasAnyRole(claimsMap, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) GenerateToken(userID, organizationID string, roles []string) (string, error) {
	return GenerateToken(m.config.JWTSecretKey, time.Duration(m.config.JWTExpirationHours)*time.Hour, userID, organizationID, roles)
}

// GenerateToken signs an HS256 token carrying the claims JWTAuth reads.
func GenerateToken(secret string, ttl time.Duration, userID, organizationID string, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		string(utils.UserIDKey):         userID,
		string(utils.OrganizationIDKey): organizationID,
		string(utils.RolesKey):          roles,
		"exp":                           now.Add(ttl).Unix(),
		"iat":                           now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func hasAnyRole(claims jwt.MapClaims, required []domain.Role) bool {
	roles, ok := claims[string(utils.RolesKey)].([]any)
	if !ok {
		return false
	}

	return slices.ContainsFunc(roles, func(role any) bool {
		name, ok := role.(string)
		return ok && slices.Contains(required, domain.Role(name))
	})
}
