package enroll

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mtihani/core/course"
)

// Enrollment statuses
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCompleted = "completed"
)

// Payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Enrollment struct {
	ID         string    `json:"id" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	CourseID   string    `json:"course_id" db:"course_id"`
	Status     string    `json:"status" db:"status"`
	Progress   int64     `json:"progress" db:"progress"` // percent, 0-100
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
	ExpiresAt  null.Time `json:"expires_at" db:"expires_at"`
}

func (e Enrollment) IsActive() bool {
	if e.Status != StatusActive {
		return false
	}
	if e.ExpiresAt.Valid && time.Now().UTC().After(e.ExpiresAt.Time) {
		return false
	}
	return true
}

type Payment struct {
	ID            string    `json:"id" db:"id"`
	StudentID     string    `json:"student_id" db:"student_id"`
	CourseID      string    `json:"course_id" db:"course_id"`
	Amount        int64     `json:"amount" db:"amount"` // subunits (paise)
	Status        string    `json:"status" db:"status"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// EnrolledCourse pairs an enrollment with its course for student-facing lists.
type EnrolledCourse struct {
	Enrollment Enrollment    `json:"enrollment"`
	Course     course.Course `json:"course"`
}

// Progress summarizes a student's standing in one course.
type Progress struct {
	CourseID   string    `json:"course_id"`
	Status     string    `json:"status"`
	Progress   int64     `json:"progress"`
	EnrolledAt time.Time `json:"enrolled_at"`
	ExpiresAt  null.Time `json:"expires_at"`
}

// DashboardMetrics feeds the admin landing page.
type DashboardMetrics struct {
	TotalStudents     int   `json:"total_students"`
	TotalTeachers     int   `json:"total_teachers"`
	TotalCourses      int   `json:"total_courses"`
	PublishedCourses  int   `json:"published_courses"`
	TotalEnrollments  int   `json:"total_enrollments"`
	ActiveEnrollments int   `json:"active_enrollments"`
	TotalRevenue      int64 `json:"total_revenue"` // subunits, paid payments only
	RecentPayments    int   `json:"recent_payments"`    // last 7 days
	RecentSignups     int   `json:"recent_signups"`     // last 7 days
	RecentEnrollments int   `json:"recent_enrollments"` // last 7 days
}

type PaymentQueryFilter struct {
	StudentID string `query:"studentId"`
	CourseID  string `query:"courseId"`
	Status    string `query:"status"`
}
