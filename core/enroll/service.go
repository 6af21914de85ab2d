package enroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/user"
)

var (
	ErrNotFound    = errors.New("enrollment not found")
	ErrNotEnrolled = errors.New("student is not enrolled in this course")
)

type Repository interface {
	CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
	GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error)
	QueryEnrollmentsByStudentID(ctx context.Context, studentID string) ([]Enrollment, error)
	UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
	CountEnrollments(ctx context.Context, activeOnly bool, since time.Time) (int, error)

	CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
	FilterPayments(ctx context.Context, filter PaymentQueryFilter, paging core.Paging) ([]Payment, int, error)
	SumPaidPayments(ctx context.Context) (int64, error)
	CountPayments(ctx context.Context, since time.Time) (int, error)
}

type Service struct {
	repo   Repository
	crsSvc course.Service
	usrSvc user.Service
}

func NewService(repo Repository, crsSvc course.Service, usrSvc user.Service) Service {
	return Service{
		repo:   repo,
		crsSvc: crsSvc,
		usrSvc: usrSvc,
	}
}

// Enroll records a student's access to a course. A repeat purchase inserts a
// fresh enrollment row alongside the previous one; history is kept as is.
func (svc Service) Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	enr := Enrollment{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     StatusActive,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

// RecordPayment stores a settled gateway transaction.
func (svc Service) RecordPayment(ctx context.Context, studentID, courseID string, amount int64, transactionID string) (Payment, error) {
	now := time.Now().UTC()
	pmt := Payment{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		CourseID:      courseID,
		Amount:        amount,
		Status:        PaymentPaid,
		TransactionID: transactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreatePayment(ctx, pmt)
}

// MyCourses lists the courses a student can access, newest enrollment first.
// A course enrolled twice appears once.
func (svc Service) MyCourses(ctx context.Context, studentID string) ([]EnrolledCourse, error) {
	enrs, err := svc.repo.QueryEnrollmentsByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	res := make([]EnrolledCourse, 0, len(enrs))
	seen := make(map[string]bool, len(enrs))
	for _, enr := range enrs {
		if !enr.IsActive() || seen[enr.CourseID] {
			continue
		}
		crs, err := svc.crsSvc.GetCourse(ctx, enr.CourseID)
		if err != nil {
			if errors.Cause(err) == course.ErrNotFound {
				continue // course since deleted
			}
			return nil, err
		}
		seen[enr.CourseID] = true
		res = append(res, EnrolledCourse{Enrollment: enr, Course: crs})
	}
	return res, nil
}

// CourseProgress reports a student's standing in one course.
func (svc Service) CourseProgress(ctx context.Context, studentID, courseID string) (Progress, error) {
	enr, err := svc.repo.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Progress{}, ErrNotEnrolled
		}
		return Progress{}, err
	}
	return Progress{
		CourseID:   enr.CourseID,
		Status:     enr.Status,
		Progress:   enr.Progress,
		EnrolledAt: enr.EnrolledAt,
		ExpiresAt:  enr.ExpiresAt,
	}, nil
}

func (svc Service) FilterPayments(ctx context.Context, filter PaymentQueryFilter, paging core.Paging) ([]Payment, int, error) {
	paging.Clean()
	return svc.repo.FilterPayments(ctx, filter, paging)
}

// Dashboard aggregates the admin landing page counters. "Recent" spans the
// last 7 days.
func (svc Service) Dashboard(ctx context.Context) (DashboardMetrics, error) {
	var m DashboardMetrics

	_, totalStudents, err := svc.usrSvc.Filter(ctx, user.QueryFilter{Role: user.RoleStudent}, core.Paging{Limit: 1})
	if err != nil {
		return m, errors.Wrap(err, "counting students")
	}
	m.TotalStudents = totalStudents

	_, totalTeachers, err := svc.usrSvc.Filter(ctx, user.QueryFilter{Role: user.RoleTeacher}, core.Paging{Limit: 1})
	if err != nil {
		return m, errors.Wrap(err, "counting teachers")
	}
	m.TotalTeachers = totalTeachers

	courses, totalCourses, err := svc.crsSvc.FilterCourses(ctx, course.QueryFilter{}, core.Paging{Limit: core.MaxPageLimit})
	if err != nil {
		return m, errors.Wrap(err, "counting courses")
	}
	m.TotalCourses = totalCourses
	for _, crs := range courses {
		if crs.Published {
			m.PublishedCourses++
		}
	}

	if m.TotalEnrollments, err = svc.repo.CountEnrollments(ctx, false, time.Time{}); err != nil {
		return m, errors.Wrap(err, "counting enrollments")
	}
	if m.ActiveEnrollments, err = svc.repo.CountEnrollments(ctx, true, time.Time{}); err != nil {
		return m, errors.Wrap(err, "counting active enrollments")
	}
	if m.TotalRevenue, err = svc.repo.SumPaidPayments(ctx); err != nil {
		return m, errors.Wrap(err, "summing revenue")
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if m.RecentPayments, err = svc.repo.CountPayments(ctx, weekAgo); err != nil {
		return m, errors.Wrap(err, "counting recent payments")
	}
	if m.RecentEnrollments, err = svc.repo.CountEnrollments(ctx, false, weekAgo); err != nil {
		return m, errors.Wrap(err, "counting recent enrollments")
	}
	_, recentSignups, err := svc.usrSvc.Filter(ctx, user.QueryFilter{Role: user.RoleStudent, CreatedFrom: weekAgo}, core.Paging{Limit: 1})
	if err != nil {
		return m, errors.Wrap(err, "counting recent signups")
	}
	m.RecentSignups = recentSignups
	return m, nil
}
