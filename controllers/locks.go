package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-unlock-api/config"
	"quiz-unlock-api/services"
)

// GetTeacherLocks lists the locks the acting teacher can still unlock:
// locks on their own courses that are neither security violations nor past
// the teacher quota.
func GetTeacherLocks(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	svc := services.NewQueryService(config.DB)
	locks, err := svc.ListForTeacher(c.Request.Context(), actor.UserID, parseLimit(c), parseOffset(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"locks":   locks,
		"total":   len(locks),
	})
}

// GetHODLocks lists a department's locks needing HOD-or-above authority.
// Security violations land here directly and sort first.
func GetHODLocks(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	svc := services.NewQueryService(config.DB)
	locks, err := svc.ListForHOD(c.Request.Context(), actor.DepartmentID, parseLimit(c), parseOffset(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"locks":   locks,
		"total":   len(locks),
	})
}

// GetDeanLocks lists locks requiring dean authority. With ?include_history=1
// the response also carries the institution-wide unlock history, which the
// dean may read regardless of any quota state.
func GetDeanLocks(c *gin.Context) {
	svc := services.NewQueryService(config.DB)

	locks, err := svc.ListForDean(c.Request.Context(), parseLimit(c), parseOffset(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	body := gin.H{
		"success": true,
		"locks":   locks,
		"total":   len(locks),
	}

	if c.Query("include_history") == "1" {
		history, err := svc.InstitutionHistory(c.Request.Context(), parseLimit(c), parseOffset(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		body["history"] = history
	}

	c.JSON(http.StatusOK, body)
}

// GetAdminLocks returns every lock with full history and override annotations.
func GetAdminLocks(c *gin.Context) {
	svc := services.NewQueryService(config.DB)
	locks, err := svc.ListAllForAdmin(c.Request.Context(), parseLimit(c), parseOffset(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"locks":   locks,
		"total":   len(locks),
	})
}

// GetLock returns one lock record with its merged history.
func GetLock(c *gin.Context) {
	lockID := strings.TrimSpace(c.Param("id"))
	if lockID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lock ID"})
		return
	}

	svc := services.NewQueryService(config.DB)
	lock, err := svc.GetLock(c.Request.Context(), lockID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"lock":    lock,
	})
}

// CreateLock is the entry point for the grading/violation detector.
func CreateLock(c *gin.Context) {
	var input services.CreateLockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewLockService(config.DB)
	lock, err := svc.CreateLock(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"lock":    lock,
	})
}
