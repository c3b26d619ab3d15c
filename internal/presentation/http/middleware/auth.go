package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/sangkips/cheeta-billing/pkg/auth"
)

// AuthMiddleware verifies the bearer token issued by the identity provider
// and stores the user's uid in the context. Every document read or written
// afterwards is scoped to that uid.
func AuthMiddleware(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if claims.UserID() == "" {
			response.Error(c, apperror.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID())
		c.Set("user_email", claims.Email)

		c.Next()
	}
}
