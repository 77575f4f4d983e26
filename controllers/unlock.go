package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-unlock-api/config"
	"quiz-unlock-api/services"
	"quiz-unlock-api/utils"
)

var escalationNotifier = services.NewEscalationNotifierFromEnv()

// UnlockQuiz handles one unlock attempt on a lock record. Every successful
// call is its own authorization event: quota is consumed and an audit entry
// appended even if the actor double-submits.
func UnlockQuiz(c *gin.Context) {
	lockID := strings.TrimSpace(c.Param("id"))
	if lockID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lock ID"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       "Unlock justification is required",
			"deny_reason": services.DenyReasonRequired,
		})
		return
	}

	req.Reason = utils.SanitizeInput(req.Reason)
	req.Notes = utils.SanitizeInput(req.Notes)
	if ok, msg := utils.ValidateJustification(req.Reason); !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       msg,
			"deny_reason": services.DenyReasonRequired,
		})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	svc := services.NewUnlockService(config.DB)
	svc.SetNotifier(escalationNotifier)

	lock, err := svc.Unlock(c.Request.Context(), lockID, actor, req.Reason, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quiz unlocked",
		"lock":    lock,
	})
}
