package middleware

import (
	"github.com/SscSPs/access_exchange/internal/utils"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID.
const userIDKey = contextKey("userID")

// roleKey holds the role claim of the authenticated caller.
const roleKey = contextKey("role")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		userID, ok := userIDVal.(string)
		return userID, ok && userID != ""
	}
	// check in the request context as well
	if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
		return userID, true
	}
	return "", false
}

// IsServiceCaller reports whether the authenticated caller holds the service role.
func IsServiceCaller(c *gin.Context) bool {
	if role, exists := c.Get(string(roleKey)); exists {
		r, _ := role.(string)
		return r == utils.RoleService
	}
	r, _ := c.Request.Context().Value(roleKey).(string)
	return r == utils.RoleService
}
