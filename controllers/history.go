package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-unlock-api/config"
	"quiz-unlock-api/services"
)

// GetUnlockHistory returns the chronologically merged unlock audit list for
// one student+quiz pair, spanning all of its lock episodes.
func GetUnlockHistory(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil || studentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}
	quizID, err := strconv.Atoi(c.Param("quiz_id"))
	if err != nil || quizID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
		return
	}

	svc := services.NewQueryService(config.DB)
	events, err := svc.HistoryFor(c.Request.Context(), studentID, quizID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": events,
		"total":   len(events),
	})
}
