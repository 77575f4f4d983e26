package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quiz-unlock-api/models"
)

// CreateLockInput is the payload from the grading/violation detector.
type CreateLockInput struct {
	StudentID        int     `json:"student_id" binding:"required"`
	CourseID         int     `json:"course_id" binding:"required"`
	QuizID           int     `json:"quiz_id" binding:"required"`
	Reason           string  `json:"reason" binding:"required"`
	LastFailureScore float64 `json:"last_failure_score"`
	PassingScore     float64 `json:"passing_score"`
	TotalAttempts    int     `json:"total_attempts"`
	MaxAttempts      int     `json:"max_attempts"`
}

// LockService creates lock episodes on behalf of the external grading and
// violation-detection collaborator.
type LockService struct {
	db *gorm.DB
}

func NewLockService(db *gorm.DB) *LockService {
	return &LockService{db: db}
}

var validLockReasons = map[string]bool{
	models.ReasonBelowPassingScore: true,
	models.ReasonSecurityViolation: true,
	models.ReasonTimeExceeded:      true,
	models.ReasonManualLock:        true,
}

// CreateLock opens a new LOCKED episode for a (student, quiz) pair. Earlier
// episodes stay behind as closed UNLOCKED records; at most one episode per
// pair may be LOCKED at a time.
func (s *LockService) CreateLock(ctx context.Context, input CreateLockInput) (*models.QuizLock, error) {
	if !validLockReasons[input.Reason] {
		return nil, &ValidationError{Field: "lock_reason", Message: fmt.Sprintf("unknown lock reason %q", input.Reason)}
	}

	lock := models.QuizLock{
		LockID:           uuid.NewString(),
		StudentID:        input.StudentID,
		CourseID:         input.CourseID,
		QuizID:           input.QuizID,
		LockReason:       input.Reason,
		LockTimestamp:    time.Now(),
		LastFailureScore: input.LastFailureScore,
		PassingScore:     input.PassingScore,
		TotalAttempts:    input.TotalAttempts,
		MaxAttempts:      input.MaxAttempts,
		Status:           models.StatusLocked,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.QuizLock{}).
			Where("student_id = ? AND quiz_id = ? AND status = ?", input.StudentID, input.QuizID, models.StatusLocked).
			Count(&open).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if open > 0 {
			return &ValidationError{Field: "quiz_id", Message: "an open lock already exists for this student and quiz"}
		}

		// Tier quotas are cumulative per (student, quiz): a fresh episode
		// inherits the counters of the one it follows, so three teacher
		// unlocks across episodes still exhaust the teacher tier.
		var prev models.QuizLock
		err := tx.Where("student_id = ? AND quiz_id = ?", input.StudentID, input.QuizID).
			Order("lock_timestamp DESC").
			First(&prev).Error
		switch {
		case err == nil:
			lock.TeacherUnlockCount = prev.TeacherUnlockCount
			lock.HodUnlockCount = prev.HodUnlockCount
			lock.DeanUnlockCount = prev.DeanUnlockCount
			lock.AdminOverrideCount = prev.AdminOverrideCount
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first episode for this pair
		default:
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		if err := tx.Create(&lock).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, err
	}

	return &lock, nil
}
