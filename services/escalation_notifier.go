package services

import (
	"fmt"
	"os"
	"strings"

	"quiz-unlock-api/config"
	"quiz-unlock-api/models"
)

// EscalationNotifier mails the next tier's alias when a lock escalates past
// the quota of the tier below. Delivery is best-effort; dashboards remain the
// source of truth.
type EscalationNotifier struct {
	recipients map[string][]string
}

// NewEscalationNotifierFromEnv reads the per-tier alias addresses from
// ESCALATION_EMAIL_HOD, ESCALATION_EMAIL_DEAN and ESCALATION_EMAIL_ADMIN
// (comma-separated). Missing entries simply disable mail for that tier.
func NewEscalationNotifierFromEnv() *EscalationNotifier {
	recipients := map[string][]string{
		LevelHod:   splitAddresses(os.Getenv("ESCALATION_EMAIL_HOD")),
		LevelDean:  splitAddresses(os.Getenv("ESCALATION_EMAIL_DEAN")),
		LevelAdmin: splitAddresses(os.Getenv("ESCALATION_EMAIL_ADMIN")),
	}
	return &EscalationNotifier{recipients: recipients}
}

// NotifyEscalation sends the escalation notice for a lock to the alias of
// the tier now required to act.
func (n *EscalationNotifier) NotifyEscalation(lock *models.QuizLock, requiredLevel string) error {
	level := requiredLevel
	if level == LevelDeanExhausted {
		level = LevelAdmin
	}
	to := n.recipients[level]
	if len(to) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Quiz unlock escalation: student %d, quiz %d", lock.StudentID, lock.QuizID)
	body := fmt.Sprintf(
		"<p>A quiz lock now requires <strong>%s</strong> authorization.</p>"+
			"<ul><li>Student: %d</li><li>Course: %d</li><li>Quiz: %d</li>"+
			"<li>Lock reason: %s</li>"+
			"<li>Unlocks so far: teacher %d, HOD %d, dean %d, admin overrides %d</li></ul>",
		level, lock.StudentID, lock.CourseID, lock.QuizID, lock.LockReason,
		lock.TeacherUnlockCount, lock.HodUnlockCount, lock.DeanUnlockCount, lock.AdminOverrideCount,
	)

	return config.SendMail(to, subject, body)
}

func splitAddresses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
