package enroll_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
	dummydb "github.com/trezcool/mtihani/storage/database/dummy"
)

func setup(t *testing.T) (enroll.Service, course.Service, user.Service) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	crsSvc := course.NewService(dummydb.NewCourseRepository(db))
	return enroll.NewService(dummydb.NewEnrollRepository(db), crsSvc, usrSvc), crsSvc, usrSvc
}

func TestService_MyCourses(t *testing.T) {
	ctx := context.Background()
	svc, crsSvc, usrSvc := setup(t)

	usr, _ := usrSvc.GetOrCreateByEmail(ctx, "hero@test.cd")
	neet, _ := crsSvc.CreateCourse(ctx, course.NewCourse{Name: "NEET Crash Course", Published: true})
	jee, _ := crsSvc.CreateCourse(ctx, course.NewCourse{Name: "JEE Mains", Published: true})
	gone, _ := crsSvc.CreateCourse(ctx, course.NewCourse{Name: "Removed Course"})

	if _, err := svc.Enroll(ctx, usr.ID, neet.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	// bought twice; listed once
	if _, err := svc.Enroll(ctx, usr.ID, neet.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if _, err := svc.Enroll(ctx, usr.ID, jee.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if _, err := svc.Enroll(ctx, usr.ID, gone.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if err := crsSvc.DeleteCourse(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteCourse() failed: %v", err)
	}

	courses, err := svc.MyCourses(ctx, usr.ID)
	if err != nil {
		t.Fatalf("MyCourses() failed: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("courses = %d; want 2 (deduped, deleted course skipped)", len(courses))
	}
	seen := map[string]bool{}
	for _, ec := range courses {
		seen[ec.Course.ID] = true
	}
	if !seen[neet.ID] || !seen[jee.ID] {
		t.Errorf("courses = %v; want %q and %q", seen, neet.ID, jee.ID)
	}

	// a student with no enrollments gets an empty list
	other, _ := usrSvc.GetOrCreateByEmail(ctx, "other@test.cd")
	if courses, err = svc.MyCourses(ctx, other.ID); err != nil {
		t.Fatalf("MyCourses() failed: %v", err)
	} else if len(courses) != 0 {
		t.Errorf("courses = %d; want 0", len(courses))
	}
}

func TestService_CourseProgress(t *testing.T) {
	ctx := context.Background()
	svc, crsSvc, usrSvc := setup(t)

	usr, _ := usrSvc.GetOrCreateByEmail(ctx, "hero@test.cd")
	crs, _ := crsSvc.CreateCourse(ctx, course.NewCourse{Name: "NEET Crash Course", Published: true})

	if _, err := svc.CourseProgress(ctx, usr.ID, crs.ID); errors.Cause(err) != enroll.ErrNotEnrolled {
		t.Errorf("CourseProgress() error = %v; want ErrNotEnrolled", err)
	}

	enr, err := svc.Enroll(ctx, usr.ID, crs.ID)
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	progress, err := svc.CourseProgress(ctx, usr.ID, crs.ID)
	if err != nil {
		t.Fatalf("CourseProgress() failed: %v", err)
	}
	if progress.CourseID != crs.ID {
		t.Errorf("CourseID = %q; want %q", progress.CourseID, crs.ID)
	}
	if progress.Status != enroll.StatusActive {
		t.Errorf("Status = %q; want %q", progress.Status, enroll.StatusActive)
	}
	if !progress.EnrolledAt.Equal(enr.EnrolledAt) {
		t.Errorf("EnrolledAt = %v; want %v", progress.EnrolledAt, enr.EnrolledAt)
	}
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc, crsSvc, usrSvc := setup(t)

	student, _ := usrSvc.GetOrCreateByEmail(ctx, "hero@test.cd")
	if _, err := usrSvc.Create(ctx, user.NewStaffUser{
		Name:     "Teacher",
		Email:    "teacher@test.cd",
		Password: "s3cr3tW0rd!",
		Role:     user.RoleTeacher,
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	pub, _ := crsSvc.CreateCourse(ctx, course.NewCourse{Name: "NEET Crash Course", Published: true})
	if _, err := crsSvc.CreateCourse(ctx, course.NewCourse{Name: "Draft Course"}); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	if _, err := svc.Enroll(ctx, student.ID, pub.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, student.ID, pub.ID, 499900, "pay_XYZ789"); err != nil {
		t.Fatalf("RecordPayment() failed: %v", err)
	}

	metrics, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}
	if metrics.TotalStudents != 1 {
		t.Errorf("TotalStudents = %d; want 1", metrics.TotalStudents)
	}
	if metrics.TotalTeachers != 1 {
		t.Errorf("TotalTeachers = %d; want 1", metrics.TotalTeachers)
	}
	if metrics.TotalCourses != 2 {
		t.Errorf("TotalCourses = %d; want 2", metrics.TotalCourses)
	}
	if metrics.PublishedCourses != 1 {
		t.Errorf("PublishedCourses = %d; want 1", metrics.PublishedCourses)
	}
	if metrics.TotalEnrollments != 1 {
		t.Errorf("TotalEnrollments = %d; want 1", metrics.TotalEnrollments)
	}
	if metrics.ActiveEnrollments != 1 {
		t.Errorf("ActiveEnrollments = %d; want 1", metrics.ActiveEnrollments)
	}
	if metrics.TotalRevenue != 499900 {
		t.Errorf("TotalRevenue = %d; want 499900", metrics.TotalRevenue)
	}
	if metrics.RecentPayments != 1 {
		t.Errorf("RecentPayments = %d; want 1", metrics.RecentPayments)
	}
	// only student signups count
	if metrics.RecentSignups != 1 {
		t.Errorf("RecentSignups = %d; want 1", metrics.RecentSignups)
	}
	if metrics.RecentEnrollments != 1 {
		t.Errorf("RecentEnrollments = %d; want 1", metrics.RecentEnrollments)
	}
}
