package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"quiz-unlock-api/models"
)

// LockView is a QuizLock projected for a dashboard, carrying the computed
// authorization level so the UI knows which action button to show.
type LockView struct {
	models.QuizLock
	IsSecurityViolation      bool   `json:"is_security_violation"`
	UnlockAuthorizationLevel string `json:"unlock_authorization_level"`
}

// QueryService serves the read-side projections for the tier dashboards.
// Every operation is side-effect free; concurrent reads need no locking.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// Security-violation locks surface first on every dashboard.
const priorityOrder = "CASE WHEN lock_reason = 'SECURITY_VIOLATION' THEN 0 ELSE 1 END, lock_timestamp DESC"

// ListForTeacher returns the locks a teacher can still act on: locks on the
// teacher's own courses, excluding security violations and excluding records
// whose teacher quota is spent.
func (s *QueryService) ListForTeacher(ctx context.Context, teacherID, limit, offset int) ([]LockView, error) {
	var locks []models.QuizLock
	err := s.baseQuery(ctx).
		Select("quiz_locks.*").
		Joins("JOIN courses ON courses.course_id = quiz_locks.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Where("quiz_locks.status = ?", models.StatusLocked).
		Where("quiz_locks.lock_reason <> ?", models.ReasonSecurityViolation).
		Where("quiz_locks.teacher_unlock_count < ?", models.TierQuota).
		Order("quiz_locks.lock_timestamp DESC").
		Limit(limit).Offset(offset).
		Find(&locks).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return project(locks), nil
}

// ListForHOD returns a department's locks that have escalated past the
// teacher tier, with security violations first regardless of ladder position.
func (s *QueryService) ListForHOD(ctx context.Context, departmentID, limit, offset int) ([]LockView, error) {
	var locks []models.QuizLock
	err := s.baseQuery(ctx).
		Select("quiz_locks.*").
		Joins("JOIN courses ON courses.course_id = quiz_locks.course_id").
		Where("courses.department_id = ?", departmentID).
		Where("quiz_locks.status = ?", models.StatusLocked).
		Where("quiz_locks.lock_reason = ? OR quiz_locks.teacher_unlock_count >= ?",
			models.ReasonSecurityViolation, models.TierQuota).
		Order(priorityOrder).
		Limit(limit).Offset(offset).
		Find(&locks).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return project(locks), nil
}

// ListForDean returns locks whose ladder position requires the dean.
func (s *QueryService) ListForDean(ctx context.Context, limit, offset int) ([]LockView, error) {
	var locks []models.QuizLock
	err := s.baseQuery(ctx).
		Where("quiz_locks.status = ?", models.StatusLocked).
		Where("quiz_locks.hod_unlock_count >= ?", models.TierQuota).
		Where("quiz_locks.dean_unlock_count < ?", models.TierQuota).
		Order(priorityOrder).
		Limit(limit).Offset(offset).
		Find(&locks).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return project(locks), nil
}

// InstitutionHistory is the dean's unfiltered view of every unlock event
// across the institution, newest first. Quota state never restricts history
// reads.
func (s *QueryService) InstitutionHistory(ctx context.Context, limit, offset int) ([]models.UnlockEvent, error) {
	var events []models.UnlockEvent
	err := s.db.WithContext(ctx).
		Order("unlocked_at DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

// ListAllForAdmin returns every lock record with its full history, including
// admin-override annotations.
func (s *QueryService) ListAllForAdmin(ctx context.Context, limit, offset int) ([]LockView, error) {
	var locks []models.QuizLock
	err := s.baseQuery(ctx).
		Order(priorityOrder).
		Limit(limit).Offset(offset).
		Find(&locks).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return project(locks), nil
}

// GetLock returns a single record with its merged history.
func (s *QueryService) GetLock(ctx context.Context, lockID string) (*LockView, error) {
	var lock models.QuizLock
	err := s.baseQuery(ctx).Where("quiz_locks.lock_id = ?", lockID).First(&lock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLockNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	view := newLockView(lock)
	return &view, nil
}

// HistoryFor merges the four tier histories for a student+quiz pair into one
// chronological audit list spanning all of the pair's lock episodes.
func (s *QueryService) HistoryFor(ctx context.Context, studentID, quizID int) ([]models.UnlockEvent, error) {
	var events []models.UnlockEvent
	err := s.db.WithContext(ctx).
		Model(&models.UnlockEvent{}).
		Select("unlock_events.*").
		Joins("JOIN quiz_locks ON quiz_locks.lock_id = unlock_events.lock_id").
		Where("quiz_locks.student_id = ? AND quiz_locks.quiz_id = ?", studentID, quizID).
		Order("unlock_events.unlocked_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *QueryService) baseQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.QuizLock{}).
		Preload("UnlockHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("unlocked_at ASC")
		}).
		Preload("Course")
}

func newLockView(lock models.QuizLock) LockView {
	return LockView{
		QuizLock:                 lock,
		IsSecurityViolation:      lock.IsSecurityViolation(),
		UnlockAuthorizationLevel: RequiredLevelFor(&lock),
	}
}

func project(locks []models.QuizLock) []LockView {
	views := make([]LockView, 0, len(locks))
	for _, lock := range locks {
		views = append(views, newLockView(lock))
	}
	return views
}
