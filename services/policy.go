package services

import "quiz-unlock-api/models"

// Authorization levels reported to dashboards. These drive which action
// button a tier sees and whether a lock is badged as needing escalation.
const (
	LevelTeacher       = "TEACHER"
	LevelHod           = "HOD"
	LevelDean          = "DEAN"
	LevelAdmin         = "ADMIN"
	LevelDeanExhausted = "DEAN_EXHAUSTED"
)

// Decision is the outcome of evaluating an unlock attempt against the tier
// ladder. On a denial, DenyReason and RequiredLevel are set so the caller can
// tell the actor exactly which tier must act instead.
type Decision struct {
	Allowed      bool
	ConsumesTier string
	// Set only for admin decisions: the tier whose authority the override
	// bypasses, recorded on the audit entry but not counted against that
	// tier's quota.
	OverrideLevel string
	DenyReason    string
	RequiredLevel string
}

// Decide evaluates the tier ladder for one unlock attempt. It is a pure
// function over the lock's current counters and the actor's role; it never
// touches the store.
//
// Ladder: teacher handles ordinary locks while its quota lasts, HOD takes
// over on teacher exhaustion or any security violation, dean on HOD
// exhaustion, and admin can always act as a counted-separately override.
func Decide(lock *models.QuizLock, role string) Decision {
	if lock.Status == models.StatusUnlocked {
		return Decision{DenyReason: DenyAlreadyUnlocked}
	}

	required := RequiredLevelFor(lock)

	switch role {
	case models.TierTeacher:
		if required == LevelTeacher {
			return Decision{Allowed: true, ConsumesTier: models.TierTeacher}
		}
		if lock.IsSecurityViolation() {
			// Teachers never touch security-violation locks, quota aside.
			return Decision{DenyReason: DenyInsufficientTier, RequiredLevel: required}
		}
		return Decision{DenyReason: DenyQuotaExhausted, RequiredLevel: required}

	case models.TierHod:
		if required == LevelHod {
			return Decision{Allowed: true, ConsumesTier: models.TierHod}
		}
		if required == LevelTeacher {
			return Decision{DenyReason: DenyInsufficientTier, RequiredLevel: required}
		}
		return Decision{DenyReason: DenyQuotaExhausted, RequiredLevel: required}

	case models.TierDean:
		if required == LevelDean {
			return Decision{Allowed: true, ConsumesTier: models.TierDean}
		}
		if required == LevelDeanExhausted {
			return Decision{DenyReason: DenyQuotaExhausted, RequiredLevel: LevelAdmin}
		}
		return Decision{DenyReason: DenyInsufficientTier, RequiredLevel: required}

	case models.TierAdmin:
		return Decision{
			Allowed:       true,
			ConsumesTier:  models.TierAdmin,
			OverrideLevel: overrideLevelFor(required),
		}
	}

	return Decision{DenyReason: DenyInsufficientTier, RequiredLevel: required}
}

// RequiredLevelFor reports the lowest tier currently empowered to unlock the
// record, or LevelDeanExhausted when only an admin override remains.
func RequiredLevelFor(lock *models.QuizLock) string {
	if !lock.IsSecurityViolation() && lock.TeacherUnlockCount < models.TierQuota {
		return LevelTeacher
	}
	if lock.HodUnlockCount < models.TierQuota {
		return LevelHod
	}
	if lock.DeanUnlockCount < models.TierQuota {
		return LevelDean
	}
	return LevelDeanExhausted
}

// overrideLevelFor maps the level an admin bypassed onto the audit tag.
// With every tier exhausted the dean's authority is the one being overridden.
func overrideLevelFor(required string) string {
	if required == LevelDeanExhausted {
		return LevelDean
	}
	return required
}
