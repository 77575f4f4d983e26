package models

import "time"

// Authorization tiers, lowest to highest.
const (
	TierTeacher = "teacher"
	TierHod     = "hod"
	TierDean    = "dean"
	TierAdmin   = "admin"
)

// UnlockEvent is one entry in a lock's append-only unlock history. Rows are
// inserted inside the same transaction that increments the matching tier
// counter and are never updated or deleted afterwards.
type UnlockEvent struct {
	EventID   string  `gorm:"primaryKey;column:event_id;type:varchar(36)" json:"event_id"`
	LockID    string  `gorm:"column:lock_id;index;type:varchar(36)" json:"lock_id"`
	Tier      string  `gorm:"column:tier;index" json:"tier"`
	ActorID   int     `gorm:"column:actor_id" json:"actor_id"`
	ActorName string  `gorm:"column:actor_name" json:"actor_name"`
	Reason    string  `gorm:"column:reason" json:"reason"`
	Notes     *string `gorm:"column:notes" json:"notes,omitempty"`

	// Set only on admin entries: the tier whose authority the override bypassed.
	OverrideLevel *string   `gorm:"column:override_level" json:"override_level,omitempty"`
	UnlockedAt    time.Time `gorm:"column:unlocked_at;index" json:"unlocked_at"`
}

// TableName specifies the table name for UnlockEvent.
func (UnlockEvent) TableName() string {
	return "unlock_events"
}
