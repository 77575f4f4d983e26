package models

import "time"

// Lock reasons recorded by the grading/violation collaborator.
const (
	ReasonBelowPassingScore = "BELOW_PASSING_SCORE"
	ReasonSecurityViolation = "SECURITY_VIOLATION"
	ReasonTimeExceeded      = "TIME_EXCEEDED"
	ReasonManualLock        = "MANUAL_LOCK"
)

// Lock statuses. A record starts LOCKED and flips to UNLOCKED exactly once;
// it is never deleted — a later failure opens a fresh record.
const (
	StatusLocked   = "LOCKED"
	StatusUnlocked = "UNLOCKED"
)

// Per-tier unlock quota. Admin has no quota.
const TierQuota = 3

// QuizLock is one lock episode for a (student, quiz) pair.
type QuizLock struct {
	LockID    string `gorm:"primaryKey;column:lock_id;type:varchar(36)" json:"lock_id"`
	StudentID int    `gorm:"column:student_id;index:idx_student_quiz" json:"student_id"`
	CourseID  int    `gorm:"column:course_id;index" json:"course_id"`
	QuizID    int    `gorm:"column:quiz_id;index:idx_student_quiz" json:"quiz_id"`

	LockReason    string    `gorm:"column:lock_reason" json:"lock_reason"`
	LockTimestamp time.Time `gorm:"column:lock_timestamp" json:"lock_timestamp"`

	// Numeric context captured at lock time.
	LastFailureScore float64 `gorm:"column:last_failure_score" json:"last_failure_score"`
	PassingScore     float64 `gorm:"column:passing_score" json:"passing_score"`
	TotalAttempts    int     `gorm:"column:total_attempts" json:"total_attempts"`
	MaxAttempts      int     `gorm:"column:max_attempts" json:"max_attempts"`

	Status string `gorm:"column:status;index" json:"status"`

	TeacherUnlockCount int `gorm:"column:teacher_unlock_count" json:"teacher_unlock_count"`
	HodUnlockCount     int `gorm:"column:hod_unlock_count" json:"hod_unlock_count"`
	DeanUnlockCount    int `gorm:"column:dean_unlock_count" json:"dean_unlock_count"`
	AdminOverrideCount int `gorm:"column:admin_override_count" json:"admin_override_count"`

	// Bumped on every successful append; the version check is what serializes
	// concurrent unlocks on the same record.
	LockVersion int `gorm:"column:lock_version" json:"-"`

	UnlockHistory []UnlockEvent `gorm:"foreignKey:LockID" json:"unlock_history,omitempty"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName specifies the table name for QuizLock.
func (QuizLock) TableName() string {
	return "quiz_locks"
}

// IsSecurityViolation reports whether this lock came from a security violation.
// Security-violation locks skip the teacher tier entirely.
func (l *QuizLock) IsSecurityViolation() bool {
	return l.LockReason == ReasonSecurityViolation
}

// TotalUnlockCount is the sum of all tier counters. Counters are inherited
// across episodes of the same (student, quiz) pair, so this always equals
// the pair's merged unlock-history length.
func (l *QuizLock) TotalUnlockCount() int {
	return l.TeacherUnlockCount + l.HodUnlockCount + l.DeanUnlockCount + l.AdminOverrideCount
}
