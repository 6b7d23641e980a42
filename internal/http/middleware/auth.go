package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"greenbus/backend/internal/domain"
)

const authContextKey = "auth_context"

// Auth validates the Bearer token and stores the resolved RequestContext
// on the gin context. Requests without a valid token are rejected with 401.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		rc := domain.RequestContext{}
		if sub, ok := claims["sub"].(float64); ok {
			rc.UserID = domain.ID(sub)
		}
		if role, ok := claims["role"].(string); ok {
			rc.Role = role
		}
		if rc.UserID == 0 || rc.Role == "" {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		c.Set(authContextKey, rc)
		c.Next()
	}
}

// RequireRoles gates a route group to the given roles. Must run after Auth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		rc, ok := GetAuthContext(c)
		if !ok {
			abortUnauthorized(c, "missing auth context")
			return
		}
		if !allowed[rc.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden for role " + rc.Role,
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetAuthContext returns the RequestContext stored by Auth.
func GetAuthContext(c *gin.Context) (domain.RequestContext, bool) {
	if v, ok := c.Get(authContextKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc, true
		}
	}
	return domain.RequestContext{}, false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"request_id": GetRequestID(c),
	})
}
