package handler

import (
	"net/http"

	"backend/pkg/apperr"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto the HTTP status taxonomy and writes
// the standard error envelope.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs
		message = "Internal server error"
	}
	c.JSON(status, response.Error(status, message))
}

// currentUserID pulls the authenticated user's ID set by the auth middleware.
// Returns false after writing an error response when the context is missing.
func currentUserID(c *gin.Context) (string, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return "", false
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid User ID format"))
		return "", false
	}
	return id, true
}

// currentUserRole pulls the authenticated user's role set by the auth
// middleware. Empty when the context is missing.
func currentUserRole(c *gin.Context) string {
	role, _ := c.Get("userRole")
	s, _ := role.(string)
	return s
}
