package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// requireUser writes a 401 and returns false when the request carries no user.
func requireUser(c *gin.Context) (string, bool) {
	userID := GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "User not authenticated")
		return "", false
	}
	return userID, true
}

// parseID reads a uuid path parameter, writing a 400 when it is malformed.
func parseID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}
