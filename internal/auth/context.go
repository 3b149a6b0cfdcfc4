package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey = "userID"
	roleKey   = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetRole returns the authenticated user's role or empty string.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get(roleKey); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}
	return ""
}
