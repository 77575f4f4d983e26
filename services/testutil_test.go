package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quiz-unlock-api/config"
	"quiz-unlock-api/models"
)

var testDBSeq atomic.Int64

// setupTestDB opens a private in-memory database with the unlock schema.
// A single connection keeps sqlite's write locking out of the picture so
// the tests exercise the service's own version check.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:unlocktest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedLock inserts a LOCKED record directly, bypassing the lock service, so
// tests can start from arbitrary counter states.
func seedLock(t *testing.T, db *gorm.DB, mutate func(*models.QuizLock)) *models.QuizLock {
	t.Helper()

	lock := models.QuizLock{
		LockID:           uuid.NewString(),
		StudentID:        101,
		CourseID:         7,
		QuizID:           42,
		LockReason:       models.ReasonBelowPassingScore,
		LockTimestamp:    time.Now(),
		LastFailureScore: 40,
		PassingScore:     60,
		TotalAttempts:    3,
		MaxAttempts:      3,
		Status:           models.StatusLocked,
	}
	if mutate != nil {
		mutate(&lock)
	}
	if err := db.Create(&lock).Error; err != nil {
		t.Fatalf("seed lock: %v", err)
	}
	return &lock
}

func seedCourse(t *testing.T, db *gorm.DB, courseID, teacherID, departmentID int) {
	t.Helper()

	course := models.Course{
		CourseID:     courseID,
		CourseName:   fmt.Sprintf("Course %d", courseID),
		TeacherID:    teacherID,
		DepartmentID: departmentID,
		SchoolID:     1,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
}

func teacherActor(id int) Actor {
	return Actor{UserID: id, Name: fmt.Sprintf("Teacher %d", id), Role: models.TierTeacher, DepartmentID: 1}
}

func hodActor(id int) Actor {
	return Actor{UserID: id, Name: fmt.Sprintf("HOD %d", id), Role: models.TierHod, DepartmentID: 1}
}

func deanActor(id int) Actor {
	return Actor{UserID: id, Name: fmt.Sprintf("Dean %d", id), Role: models.TierDean, SchoolID: 1}
}

func adminActor(id int) Actor {
	return Actor{UserID: id, Name: fmt.Sprintf("Admin %d", id), Role: models.TierAdmin}
}
