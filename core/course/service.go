package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

var (
	ErrNotFound = errors.New("not found")

	errCourseRequired  = core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "course not found"})
	errSubjectRequired = core.NewValidationError(nil, core.FieldError{Field: "subject_id", Error: "subject not found"})
	errChapterRequired = core.NewValidationError(nil, core.FieldError{Field: "chapter_id", Error: "chapter not found"})
	errTopicRequired   = core.NewValidationError(nil, core.FieldError{Field: "topic_id", Error: "topic not found"})
)

type Repository interface {
	CreateCourse(ctx context.Context, crs Course) (Course, error)
	GetCourseByID(ctx context.Context, id string) (Course, error)
	FilterCourses(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Course, int, error)
	QueryPublishedCourses(ctx context.Context) ([]Course, error)
	UpdateCourse(ctx context.Context, crs Course) (Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateSubject(ctx context.Context, sub Subject) (Subject, error)
	GetSubjectByID(ctx context.Context, id string) (Subject, error)
	FilterSubjects(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Subject, int, error)
	QuerySubjectsByCourseID(ctx context.Context, courseID string) ([]Subject, error)
	UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
	DeleteSubject(ctx context.Context, id string) error

	CreateChapter(ctx context.Context, chp Chapter) (Chapter, error)
	GetChapterByID(ctx context.Context, id string) (Chapter, error)
	FilterChapters(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Chapter, int, error)
	QueryChaptersByCourseID(ctx context.Context, courseID string) ([]Chapter, error)
	UpdateChapter(ctx context.Context, chp Chapter) (Chapter, error)
	DeleteChapter(ctx context.Context, id string) error

	CreateTopic(ctx context.Context, top Topic) (Topic, error)
	GetTopicByID(ctx context.Context, id string) (Topic, error)
	FilterTopics(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Topic, int, error)
	QueryTopicsByCourseID(ctx context.Context, courseID string) ([]Topic, error)
	UpdateTopic(ctx context.Context, top Topic) (Topic, error)
	DeleteTopic(ctx context.Context, id string) error

	CreateTest(ctx context.Context, tst Test) (Test, error)
	GetTestByID(ctx context.Context, id string) (Test, error)
	FilterTests(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Test, int, error)
	QueryTestsByCourseID(ctx context.Context, courseID string) ([]Test, error)
	UpdateTest(ctx context.Context, tst Test) (Test, error)
	DeleteTest(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return Service{repo: repo}
}

// Courses

func (svc Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		ID:          uuid.New().String(),
		Name:        nc.Name,
		Description: nc.Description,
		Instructor:  nc.Instructor,
		Price:       nc.Price,
		Thumbnail:   nc.Thumbnail,
		Published:   nc.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc Service) FilterCourses(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Course, int, error) {
	filter.Clean()
	paging.Clean()
	return svc.repo.FilterCourses(ctx, filter, paging)
}

// PublishedCourses lists the courses visible on the public catalog.
func (svc Service) PublishedCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryPublishedCourses(ctx)
}

func (svc Service) UpdateCourse(ctx context.Context, crs Course, uc UpdateCourse) (Course, error) {
	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Description != nil {
		crs.Description = *uc.Description
	}
	if uc.Instructor != nil {
		crs.Instructor = *uc.Instructor
	}
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.Thumbnail != nil {
		crs.Thumbnail = *uc.Thumbnail
	}
	if uc.Published != nil {
		crs.Published = *uc.Published
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// TogglePublish flips a course's catalog visibility.
func (svc Service) TogglePublish(ctx context.Context, id string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	crs.Published = !crs.Published
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc Service) DeleteCourse(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Subjects

func (svc Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetCourseByID(ctx, ns.CourseID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Subject{}, errCourseRequired
		}
		return Subject{}, err
	}

	now := time.Now().UTC()
	sub := Subject{
		ID:          uuid.New().String(),
		CourseID:    ns.CourseID,
		Name:        ns.Name,
		Description: ns.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc Service) FilterSubjects(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Subject, int, error) {
	filter.Clean()
	paging.Clean()
	return svc.repo.FilterSubjects(ctx, filter, paging)
}

func (svc Service) UpdateSubject(ctx context.Context, sub Subject, un UpdateName) (Subject, error) {
	if un.Name != "" {
		sub.Name = core.CleanString(un.Name)
	}
	if un.Description != nil {
		sub.Description = *un.Description
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}

// Chapters

func (svc Service) CreateChapter(ctx context.Context, nc NewChapter) (Chapter, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, nc.SubjectID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Chapter{}, errSubjectRequired
		}
		return Chapter{}, err
	}

	now := time.Now().UTC()
	chp := Chapter{
		ID:          uuid.New().String(),
		SubjectID:   sub.ID,
		CourseID:    sub.CourseID,
		Name:        nc.Name,
		Description: nc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateChapter(ctx, chp)
}

func (svc Service) GetChapter(ctx context.Context, id string) (Chapter, error) {
	return svc.repo.GetChapterByID(ctx, id)
}

func (svc Service) FilterChapters(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Chapter, int, error) {
	filter.Clean()
	paging.Clean()
	return svc.repo.FilterChapters(ctx, filter, paging)
}

func (svc Service) UpdateChapter(ctx context.Context, chp Chapter, un UpdateName) (Chapter, error) {
	if un.Name != "" {
		chp.Name = core.CleanString(un.Name)
	}
	if un.Description != nil {
		chp.Description = *un.Description
	}
	chp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChapter(ctx, chp)
}

func (svc Service) DeleteChapter(ctx context.Context, id string) error {
	return svc.repo.DeleteChapter(ctx, id)
}

// Topics

func (svc Service) CreateTopic(ctx context.Context, nt NewTopic) (Topic, error) {
	chp, err := svc.repo.GetChapterByID(ctx, nt.ChapterID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Topic{}, errChapterRequired
		}
		return Topic{}, err
	}

	now := time.Now().UTC()
	top := Topic{
		ID:                uuid.New().String(),
		ChapterID:         chp.ID,
		SubjectID:         chp.SubjectID,
		CourseID:          chp.CourseID,
		Name:              nt.Name,
		Description:       nt.Description,
		IsFullTestSection: nt.IsFullTestSection,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return svc.repo.CreateTopic(ctx, top)
}

func (svc Service) GetTopic(ctx context.Context, id string) (Topic, error) {
	return svc.repo.GetTopicByID(ctx, id)
}

func (svc Service) FilterTopics(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Topic, int, error) {
	filter.Clean()
	paging.Clean()
	return svc.repo.FilterTopics(ctx, filter, paging)
}

func (svc Service) UpdateTopic(ctx context.Context, top Topic, un UpdateName) (Topic, error) {
	if un.Name != "" {
		top.Name = core.CleanString(un.Name)
	}
	if un.Description != nil {
		top.Description = *un.Description
	}
	top.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTopic(ctx, top)
}

func (svc Service) DeleteTopic(ctx context.Context, id string) error {
	return svc.repo.DeleteTopic(ctx, id)
}

// Tests

func (svc Service) CreateTest(ctx context.Context, nt NewTest) (Test, error) {
	top, err := svc.repo.GetTopicByID(ctx, nt.TopicID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Test{}, errTopicRequired
		}
		return Test{}, err
	}

	now := time.Now().UTC()
	tst := Test{
		ID:           uuid.New().String(),
		CourseID:     top.CourseID,
		SubjectID:    top.SubjectID,
		ChapterID:    top.ChapterID,
		TopicID:      top.ID,
		Title:        nt.Title,
		Description:  nt.Description,
		Instructions: nt.Instructions,
		Duration:     nt.Duration,
		TotalMarks:   nt.TotalMarks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateTest(ctx, tst)
}

func (svc Service) GetTest(ctx context.Context, id string) (Test, error) {
	return svc.repo.GetTestByID(ctx, id)
}

func (svc Service) FilterTests(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Test, int, error) {
	filter.Clean()
	paging.Clean()
	return svc.repo.FilterTests(ctx, filter, paging)
}

func (svc Service) UpdateTest(ctx context.Context, tst Test, utst UpdateTest) (Test, error) {
	if utst.Title != "" {
		tst.Title = utst.Title
	}
	if utst.Description != nil {
		tst.Description = *utst.Description
	}
	if utst.Instructions != nil {
		tst.Instructions = *utst.Instructions
	}
	if utst.Duration != nil {
		tst.Duration = *utst.Duration
	}
	if utst.TotalMarks != nil {
		tst.TotalMarks = *utst.TotalMarks
	}
	tst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTest(ctx, tst)
}

func (svc Service) DeleteTest(ctx context.Context, id string) error {
	return svc.repo.DeleteTest(ctx, id)
}

// GetStructure assembles the full hierarchy of a course in a single pass over
// each level's rows.
func (svc Service) GetStructure(ctx context.Context, courseID string) (Structure, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Structure{}, err
	}

	subjects, err := svc.repo.QuerySubjectsByCourseID(ctx, courseID)
	if err != nil {
		return Structure{}, errors.Wrap(err, "querying subjects")
	}
	chapters, err := svc.repo.QueryChaptersByCourseID(ctx, courseID)
	if err != nil {
		return Structure{}, errors.Wrap(err, "querying chapters")
	}
	topics, err := svc.repo.QueryTopicsByCourseID(ctx, courseID)
	if err != nil {
		return Structure{}, errors.Wrap(err, "querying topics")
	}
	tests, err := svc.repo.QueryTestsByCourseID(ctx, courseID)
	if err != nil {
		return Structure{}, errors.Wrap(err, "querying tests")
	}

	testsByTopic := make(map[string][]Test, len(topics))
	for _, tst := range tests {
		testsByTopic[tst.TopicID] = append(testsByTopic[tst.TopicID], tst)
	}

	topicsByChapter := make(map[string][]StructureTopic, len(chapters))
	for _, top := range topics {
		st := StructureTopic{Topic: top, Tests: testsByTopic[top.ID]}
		if st.Tests == nil {
			st.Tests = []Test{}
		}
		topicsByChapter[top.ChapterID] = append(topicsByChapter[top.ChapterID], st)
	}

	chaptersBySubject := make(map[string][]StructureChapter, len(subjects))
	for _, chp := range chapters {
		sc := StructureChapter{Chapter: chp, Topics: topicsByChapter[chp.ID]}
		if sc.Topics == nil {
			sc.Topics = []StructureTopic{}
		}
		chaptersBySubject[chp.SubjectID] = append(chaptersBySubject[chp.SubjectID], sc)
	}

	structure := Structure{Course: crs, Subjects: make([]StructureSubject, 0, len(subjects))}
	for _, sub := range subjects {
		ss := StructureSubject{Subject: sub, Chapters: chaptersBySubject[sub.ID]}
		if ss.Chapters == nil {
			ss.Chapters = []StructureChapter{}
		}
		structure.Subjects = append(structure.Subjects, ss)
	}
	return structure, nil
}
