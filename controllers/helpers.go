package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-unlock-api/services"
)

// actorFromContext rebuilds the acting principal from the claim fields the
// auth middleware stored on the request.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		return services.Actor{}, false
	}
	userID, ok := userIDValue.(int)
	if !ok {
		return services.Actor{}, false
	}

	actor := services.Actor{UserID: userID}
	if name, ok := c.Get("userName"); ok {
		actor.Name, _ = name.(string)
	}
	if role, ok := c.Get("role"); ok {
		actor.Role, _ = role.(string)
	}
	if dept, ok := c.Get("departmentID"); ok {
		actor.DepartmentID, _ = dept.(int)
	}
	if school, ok := c.Get("schoolID"); ok {
		actor.SchoolID, _ = school.(int)
	}
	return actor, true
}

func parseLimit(c *gin.Context) int {
	return parsePositive(c.Query("limit"), 50)
}

func parseOffset(c *gin.Context) int {
	return parsePositive(c.Query("offset"), 0)
}

func parsePositive(q string, def int) int {
	if q == "" {
		return def
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Policy denials keep their structured detail so the dashboard can tell the
// actor which tier is actually required.
func respondServiceError(c *gin.Context, err error) {
	var authErr *services.AuthorizationError
	if errors.As(err, &authErr) {
		status := http.StatusForbidden
		message := "Unlock not permitted for your role"
		if authErr.DenyReason == services.DenyAlreadyUnlocked {
			status = http.StatusConflict
			message = "Lock is already unlocked"
		}
		c.JSON(status, gin.H{
			"error":          message,
			"deny_reason":    authErr.DenyReason,
			"required_level": authErr.RequiredLevel,
		})
		return
	}

	var valErr *services.ValidationError
	if errors.As(err, &valErr) {
		body := gin.H{
			"error": valErr.Message,
			"field": valErr.Field,
		}
		// A missing justification is the REASON_REQUIRED denial from the
		// policy taxonomy.
		if valErr.Field == "reason" {
			body["deny_reason"] = services.DenyReasonRequired
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	switch {
	case errors.Is(err, services.ErrLockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Lock record not found"})
	case errors.Is(err, services.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Lock record changed during the request, please retry",
			"retryable": true,
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lock store is unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected error"})
	}
}
