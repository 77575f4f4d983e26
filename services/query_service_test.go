package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-unlock-api/models"
)

func TestListForTeacherFiltering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedCourse(t, db, 7, 11, 1)  // teacher 11, dept 1
	seedCourse(t, db, 8, 12, 1)  // another teacher
	svc := NewQueryService(db)

	visible := seedLock(t, db, func(l *models.QuizLock) { l.StudentID = 1 })
	seedLock(t, db, func(l *models.QuizLock) { // other teacher's course
		l.StudentID = 2
		l.CourseID = 8
	})
	seedLock(t, db, func(l *models.QuizLock) { // security violation, HOD+ only
		l.StudentID = 3
		l.LockReason = models.ReasonSecurityViolation
	})
	seedLock(t, db, func(l *models.QuizLock) { // teacher quota spent
		l.StudentID = 4
		l.TeacherUnlockCount = 3
	})
	seedLock(t, db, func(l *models.QuizLock) { // closed episode
		l.StudentID = 5
		l.Status = models.StatusUnlocked
	})

	locks, err := svc.ListForTeacher(ctx, 11, 50, 0)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, visible.LockID, locks[0].LockID)
	assert.Equal(t, LevelTeacher, locks[0].UnlockAuthorizationLevel)
	assert.False(t, locks[0].IsSecurityViolation)
}

func TestListForHODEscalationAndPriority(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedCourse(t, db, 7, 11, 1)
	seedCourse(t, db, 9, 13, 2) // other department
	svc := NewQueryService(db)

	base := time.Now().Add(-time.Hour)
	escalated := seedLock(t, db, func(l *models.QuizLock) {
		l.StudentID = 1
		l.TeacherUnlockCount = 3
		l.LockTimestamp = base.Add(30 * time.Minute) // newer than the violation
	})
	violation := seedLock(t, db, func(l *models.QuizLock) {
		l.StudentID = 2
		l.LockReason = models.ReasonSecurityViolation
		l.LockTimestamp = base
	})
	seedLock(t, db, func(l *models.QuizLock) { // still at the teacher tier
		l.StudentID = 3
	})
	seedLock(t, db, func(l *models.QuizLock) { // other department
		l.StudentID = 4
		l.CourseID = 9
		l.TeacherUnlockCount = 3
	})

	locks, err := svc.ListForHOD(ctx, 1, 50, 0)
	require.NoError(t, err)
	require.Len(t, locks, 2)

	// Security violations outrank recency.
	assert.Equal(t, violation.LockID, locks[0].LockID)
	assert.True(t, locks[0].IsSecurityViolation)
	assert.Equal(t, LevelHod, locks[0].UnlockAuthorizationLevel)
	assert.Equal(t, escalated.LockID, locks[1].LockID)
}

func TestListForDean(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedCourse(t, db, 7, 11, 1)
	svc := NewQueryService(db)

	deanLock := seedLock(t, db, func(l *models.QuizLock) {
		l.StudentID = 1
		l.TeacherUnlockCount = 3
		l.HodUnlockCount = 3
	})
	seedLock(t, db, func(l *models.QuizLock) { // still at HOD
		l.StudentID = 2
		l.TeacherUnlockCount = 3
	})
	seedLock(t, db, func(l *models.QuizLock) { // past the dean too
		l.StudentID = 3
		l.TeacherUnlockCount = 3
		l.HodUnlockCount = 3
		l.DeanUnlockCount = 3
	})

	locks, err := svc.ListForDean(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, deanLock.LockID, locks[0].LockID)
	assert.Equal(t, LevelDean, locks[0].UnlockAuthorizationLevel)
}

func TestListAllForAdminIncludesEverything(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedCourse(t, db, 7, 11, 1)
	svc := NewQueryService(db)

	open := seedLock(t, db, func(l *models.QuizLock) { l.StudentID = 1 })
	seedLock(t, db, func(l *models.QuizLock) {
		l.StudentID = 2
		l.Status = models.StatusUnlocked
		l.AdminOverrideCount = 1
	})

	override := LevelDean
	event := models.UnlockEvent{
		EventID:       uuid.NewString(),
		LockID:        open.LockID,
		Tier:          models.TierAdmin,
		ActorID:       91,
		ActorName:     "Admin 91",
		Reason:        "registrar decision",
		OverrideLevel: &override,
		UnlockedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&event).Error)

	locks, err := svc.ListAllForAdmin(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, locks, 2)

	var withHistory *LockView
	for i := range locks {
		if locks[i].LockID == open.LockID {
			withHistory = &locks[i]
		}
	}
	require.NotNil(t, withHistory)
	require.Len(t, withHistory.UnlockHistory, 1)
	require.NotNil(t, withHistory.UnlockHistory[0].OverrideLevel)
	assert.Equal(t, LevelDean, *withHistory.UnlockHistory[0].OverrideLevel)
}

func TestHistoryForMergesEpisodesChronologically(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewQueryService(db)

	base := time.Now().Add(-2 * time.Hour)
	first := seedLock(t, db, func(l *models.QuizLock) {
		l.Status = models.StatusUnlocked
		l.LockTimestamp = base
	})
	second := seedLock(t, db, func(l *models.QuizLock) {
		l.LockTimestamp = base.Add(time.Hour)
	})
	seedLock(t, db, func(l *models.QuizLock) { // different quiz, excluded
		l.QuizID = 99
	})

	for i, entry := range []struct {
		lockID string
		tier   string
		offset time.Duration
	}{
		{second.LockID, models.TierHod, 90 * time.Minute},
		{first.LockID, models.TierTeacher, 10 * time.Minute},
		{first.LockID, models.TierTeacher, 40 * time.Minute},
	} {
		event := models.UnlockEvent{
			EventID:    uuid.NewString(),
			LockID:     entry.lockID,
			Tier:       entry.tier,
			ActorID:    10 + i,
			ActorName:  "Actor",
			Reason:     "retake approved",
			UnlockedAt: base.Add(entry.offset),
		}
		require.NoError(t, db.Create(&event).Error)
	}

	events, err := svc.HistoryFor(ctx, 101, 42)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.TierTeacher, events[0].Tier)
	assert.Equal(t, models.TierTeacher, events[1].Tier)
	assert.Equal(t, models.TierHod, events[2].Tier)
	assert.True(t, events[0].UnlockedAt.Before(events[1].UnlockedAt))
	assert.True(t, events[1].UnlockedAt.Before(events[2].UnlockedAt))
}

func TestGetLockNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewQueryService(db)

	_, err := svc.GetLock(context.Background(), "missing")
	require.ErrorIs(t, err, ErrLockNotFound)
}

func TestInstitutionHistoryNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := NewQueryService(db)

	lock := seedLock(t, db, nil)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		event := models.UnlockEvent{
			EventID:    uuid.NewString(),
			LockID:     lock.LockID,
			Tier:       models.TierTeacher,
			ActorID:    11,
			ActorName:  "Teacher 11",
			Reason:     "retake approved",
			UnlockedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&event).Error)
	}

	events, err := svc.InstitutionHistory(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].UnlockedAt.After(events[1].UnlockedAt))
}
