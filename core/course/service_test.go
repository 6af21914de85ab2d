package course_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/course"
	dummydb "github.com/trezcool/mtihani/storage/database/dummy"
)

func setup(t *testing.T) course.Service {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return course.NewService(dummydb.NewCourseRepository(db))
}

func TestService_CreateChildren_denormalizesAncestors(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	crs, err := svc.CreateCourse(ctx, course.NewCourse{Name: "JEE Mains", Price: 299900})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	// children of missing parents are rejected
	if _, err = svc.CreateSubject(ctx, course.NewSubject{CourseID: "nope", Name: "Physics"}); err == nil {
		t.Error("CreateSubject() expected an error for an unknown course")
	}

	sub, err := svc.CreateSubject(ctx, course.NewSubject{CourseID: crs.ID, Name: "Physics"})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	chp, err := svc.CreateChapter(ctx, course.NewChapter{SubjectID: sub.ID, Name: "Kinematics"})
	if err != nil {
		t.Fatalf("CreateChapter() failed: %v", err)
	}
	if chp.CourseID != crs.ID {
		t.Errorf("chapter CourseID = %q; want %q", chp.CourseID, crs.ID)
	}
	top, err := svc.CreateTopic(ctx, course.NewTopic{ChapterID: chp.ID, Name: "Projectile Motion"})
	if err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	if top.SubjectID != sub.ID || top.CourseID != crs.ID {
		t.Errorf("topic ancestors = (%q, %q); want (%q, %q)", top.SubjectID, top.CourseID, sub.ID, crs.ID)
	}
	tst, err := svc.CreateTest(ctx, course.NewTest{TopicID: top.ID, Title: "Mock Test 1", Duration: 60, TotalMarks: 100})
	if err != nil {
		t.Fatalf("CreateTest() failed: %v", err)
	}
	if tst.ChapterID != chp.ID || tst.SubjectID != sub.ID || tst.CourseID != crs.ID {
		t.Errorf("test ancestors = (%q, %q, %q); want (%q, %q, %q)",
			tst.ChapterID, tst.SubjectID, tst.CourseID, chp.ID, sub.ID, crs.ID)
	}
}

func TestService_GetStructure(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	crs, _ := svc.CreateCourse(ctx, course.NewCourse{Name: "NEET Crash Course", Price: 499900})
	phy, _ := svc.CreateSubject(ctx, course.NewSubject{CourseID: crs.ID, Name: "Physics"})
	chem, _ := svc.CreateSubject(ctx, course.NewSubject{CourseID: crs.ID, Name: "Chemistry"})
	kin, _ := svc.CreateChapter(ctx, course.NewChapter{SubjectID: phy.ID, Name: "Kinematics"})
	top, _ := svc.CreateTopic(ctx, course.NewTopic{ChapterID: kin.ID, Name: "Projectile Motion"})
	tst, _ := svc.CreateTest(ctx, course.NewTest{TopicID: top.ID, Title: "Mock Test 1"})

	structure, err := svc.GetStructure(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetStructure() failed: %v", err)
	}
	if structure.Course.ID != crs.ID {
		t.Fatalf("Course.ID = %q; want %q", structure.Course.ID, crs.ID)
	}
	if len(structure.Subjects) != 2 {
		t.Fatalf("subjects = %d; want 2", len(structure.Subjects))
	}

	var phyNode course.StructureSubject
	for _, s := range structure.Subjects {
		if s.Subject.ID == phy.ID {
			phyNode = s
		}
		// leaves are empty slices, never null in JSON
		if s.Chapters == nil {
			t.Errorf("subject %q Chapters is nil; want empty slice", s.Subject.Name)
		}
	}
	if len(phyNode.Chapters) != 1 {
		t.Fatalf("physics chapters = %d; want 1", len(phyNode.Chapters))
	}
	topics := phyNode.Chapters[0].Topics
	if len(topics) != 1 || topics[0].Topic.ID != top.ID {
		t.Fatalf("topics = %+v; want just %q", topics, top.ID)
	}
	if len(topics[0].Tests) != 1 || topics[0].Tests[0].ID != tst.ID {
		t.Errorf("tests = %+v; want just %q", topics[0].Tests, tst.ID)
	}

	// chemistry has no children yet
	for _, s := range structure.Subjects {
		if s.Subject.ID == chem.ID && len(s.Chapters) != 0 {
			t.Errorf("chemistry chapters = %d; want 0", len(s.Chapters))
		}
	}

	if _, err = svc.GetStructure(ctx, "nope"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("GetStructure() error = %v; want ErrNotFound", err)
	}
}

func TestService_TogglePublish(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	crs, _ := svc.CreateCourse(ctx, course.NewCourse{Name: "Draft Course"})
	if crs.Published {
		t.Fatal("new course should start unpublished")
	}

	published, err := svc.PublishedCourses(ctx)
	if err != nil {
		t.Fatalf("PublishedCourses() failed: %v", err)
	}
	if len(published) != 0 {
		t.Fatalf("published = %d; want 0", len(published))
	}

	crs, err = svc.TogglePublish(ctx, crs.ID)
	if err != nil {
		t.Fatalf("TogglePublish() failed: %v", err)
	}
	if !crs.Published {
		t.Error("Published = false; want true")
	}

	if published, _ = svc.PublishedCourses(ctx); len(published) != 1 {
		t.Errorf("published = %d; want 1", len(published))
	}

	crs, _ = svc.TogglePublish(ctx, crs.ID)
	if crs.Published {
		t.Error("Published = true; want false after second toggle")
	}

	if _, err = svc.TogglePublish(ctx, "nope"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("TogglePublish() error = %v; want ErrNotFound", err)
	}
}

func TestService_DeleteCourse_cascades(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	crs, _ := svc.CreateCourse(ctx, course.NewCourse{Name: "Doomed"})
	sub, _ := svc.CreateSubject(ctx, course.NewSubject{CourseID: crs.ID, Name: "Physics"})

	if err := svc.DeleteCourse(ctx, crs.ID); err != nil {
		t.Fatalf("DeleteCourse() failed: %v", err)
	}
	if _, err := svc.GetSubject(ctx, sub.ID); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("GetSubject() error = %v; want ErrNotFound after cascade", err)
	}

	subjects, total, err := svc.FilterSubjects(ctx, course.QueryFilter{CourseID: crs.ID}, core.Paging{})
	if err != nil {
		t.Fatalf("FilterSubjects() failed: %v", err)
	}
	if total != 0 || len(subjects) != 0 {
		t.Errorf("subjects = %d (total %d); want none", len(subjects), total)
	}
}
