package models

// Course is a read-only projection of the course catalog owned by the
// administrative frontend. The unlock engine only consults it to scope
// teacher and department-head dashboards.
type Course struct {
	CourseID     int    `gorm:"primaryKey;column:course_id" json:"course_id"`
	CourseName   string `gorm:"column:course_name" json:"course_name"`
	TeacherID    int    `gorm:"column:teacher_id;index" json:"teacher_id"`
	DepartmentID int    `gorm:"column:department_id;index" json:"department_id"`
	SchoolID     int    `gorm:"column:school_id" json:"school_id"`
}

// TableName specifies the table name for Course.
func (Course) TableName() string {
	return "courses"
}
