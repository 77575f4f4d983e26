package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quiz-unlock-api/models"
)

// Actor is the pre-validated identity claim acting on a lock. Token issuance
// and validation happen upstream; the service trusts these fields.
type Actor struct {
	UserID       int
	Name         string
	Role         string
	DepartmentID int
	SchoolID     int
}

// UnlockService orchestrates single unlock attempts: policy check, then the
// transactional counter-increment + history append on the lock record.
type UnlockService struct {
	db       *gorm.DB
	notifier *EscalationNotifier
}

func NewUnlockService(db *gorm.DB) *UnlockService {
	return &UnlockService{db: db}
}

// SetNotifier attaches the escalation mail hook. Optional; without it
// escalations are only visible through the dashboards.
func (s *UnlockService) SetNotifier(n *EscalationNotifier) {
	s.notifier = n
}

// Unlock performs one unlock attempt. Each successful call consumes quota and
// appends a distinct audit entry; calling twice is two authorization events.
// A lost version race is retried once with fresh state before being surfaced
// as ErrConcurrencyConflict.
func (s *UnlockService) Unlock(ctx context.Context, lockID string, actor Actor, justification, notes string) (*models.QuizLock, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, &ValidationError{Field: "reason", Message: "unlock justification is required"}
	}

	for attempt := 0; attempt < 2; attempt++ {
		lock, err := s.loadLock(ctx, lockID)
		if err != nil {
			return nil, err
		}

		decision := Decide(lock, actor.Role)
		if !decision.Allowed {
			if decision.DenyReason == DenyQuotaExhausted {
				s.notifyEscalation(lock, decision.RequiredLevel)
			}
			return nil, &AuthorizationError{DenyReason: decision.DenyReason, RequiredLevel: decision.RequiredLevel}
		}

		err = s.append(ctx, lock, decision, actor, justification, notes)
		if errors.Is(err, ErrConcurrencyConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return s.loadLock(ctx, lockID)
	}

	return nil, ErrConcurrencyConflict
}

// append applies one unlock atomically: exactly one counter increment, one
// history insert and the status flip, all behind the version check. A missed
// version check means a concurrent unlock won; nothing is written.
func (s *UnlockService) append(ctx context.Context, lock *models.QuizLock, decision Decision, actor Actor, justification, notes string) error {
	counterColumn, ok := tierCounterColumns[decision.ConsumesTier]
	if !ok {
		return fmt.Errorf("unknown tier %q", decision.ConsumesTier)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.QuizLock{}).
			Where("lock_id = ? AND lock_version = ?", lock.LockID, lock.LockVersion).
			Updates(map[string]interface{}{
				counterColumn:  gorm.Expr(counterColumn + " + 1"),
				"lock_version": gorm.Expr("lock_version + 1"),
				"status":       models.StatusUnlocked,
			})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrencyConflict
		}

		event := models.UnlockEvent{
			EventID:    uuid.NewString(),
			LockID:     lock.LockID,
			Tier:       decision.ConsumesTier,
			ActorID:    actor.UserID,
			ActorName:  actor.Name,
			Reason:     justification,
			UnlockedAt: time.Now(),
		}
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			event.Notes = &trimmed
		}
		if decision.OverrideLevel != "" {
			level := decision.OverrideLevel
			event.OverrideLevel = &level
		}

		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
	return err
}

func (s *UnlockService) loadLock(ctx context.Context, lockID string) (*models.QuizLock, error) {
	var lock models.QuizLock
	err := s.db.WithContext(ctx).
		Preload("UnlockHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("unlocked_at ASC")
		}).
		Where("lock_id = ?", lockID).
		First(&lock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLockNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &lock, nil
}

func (s *UnlockService) notifyEscalation(lock *models.QuizLock, requiredLevel string) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.NotifyEscalation(lock, requiredLevel); err != nil {
			log.Printf("Warning: escalation notification failed for lock %s: %v", lock.LockID, err)
		}
	}()
}

var tierCounterColumns = map[string]string{
	models.TierTeacher: "teacher_unlock_count",
	models.TierHod:     "hod_unlock_count",
	models.TierDean:    "dean_unlock_count",
	models.TierAdmin:   "admin_override_count",
}
