// Package auth gates admin-only routes. Token issuance and session
// management live in the platform's auth service; this package only
// verifies bearer tokens handed to it.
package auth

import (
	"fmt"
	"strings"

	"github.com/djstage/backend/internal/errors"
	"github.com/djstage/backend/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAdmin validates the Authorization bearer JWT and requires an
// admin role claim. On success the admin id is stored in the context.
func RequireAdmin(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			util.RespondWithAPIError(c, errors.Unauthorized("missing bearer token"))
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			util.RespondWithAPIError(c, errors.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			util.RespondWithAPIError(c, errors.Unauthorized("invalid token claims"))
			c.Abort()
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			util.RespondWithAPIError(c, errors.Forbidden("admin access required"))
			c.Abort()
			return
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("admin_id", sub)
		}
		c.Next()
	}
}
