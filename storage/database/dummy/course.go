package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// Courses

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(_ context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Course, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if matches(filter.Search, crs.Name, crs.Description, crs.Instructor) {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })

	total := len(courses)
	start, end := pageBounds(total, paging)
	return courses[start:end], total, nil
}

func (repo *courseRepository) QueryPublishedCourses(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if crs.Published {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.courses, id)
	for sid, sub := range repo.db.subjects {
		if sub.CourseID == id {
			delete(repo.db.subjects, sid)
		}
	}
	for cid, chp := range repo.db.chapters {
		if chp.CourseID == id {
			delete(repo.db.chapters, cid)
		}
	}
	for tid, top := range repo.db.topics {
		if top.CourseID == id {
			delete(repo.db.topics, tid)
		}
	}
	for tid, tst := range repo.db.tests {
		if tst.CourseID == id {
			delete(repo.db.tests, tid)
		}
	}
	return nil
}

// Subjects

func (repo *courseRepository) CreateSubject(_ context.Context, sub course.Subject) (course.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *courseRepository) GetSubjectByID(_ context.Context, id string) (course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return course.Subject{}, course.ErrNotFound
}

func (repo *courseRepository) FilterSubjects(_ context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Subject, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]course.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		if filter.CourseID != "" && sub.CourseID != filter.CourseID {
			continue
		}
		if matches(filter.Search, sub.Name, sub.Description) {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].CreatedAt.Before(subjects[j].CreatedAt) })

	total := len(subjects)
	start, end := pageBounds(total, paging)
	return subjects[start:end], total, nil
}

func (repo *courseRepository) QuerySubjectsByCourseID(_ context.Context, courseID string) ([]course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]course.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.CourseID == courseID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].CreatedAt.Before(subjects[j].CreatedAt) })
	return subjects, nil
}

func (repo *courseRepository) UpdateSubject(_ context.Context, sub course.Subject) (course.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return course.Subject{}, course.ErrNotFound
	}
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *courseRepository) DeleteSubject(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.subjects, id)
	for cid, chp := range repo.db.chapters {
		if chp.SubjectID == id {
			delete(repo.db.chapters, cid)
		}
	}
	for tid, top := range repo.db.topics {
		if top.SubjectID == id {
			delete(repo.db.topics, tid)
		}
	}
	for tid, tst := range repo.db.tests {
		if tst.SubjectID == id {
			delete(repo.db.tests, tid)
		}
	}
	return nil
}

// Chapters

func (repo *courseRepository) CreateChapter(_ context.Context, chp course.Chapter) (course.Chapter, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.chapters[chp.ID] = &chp
	return chp, nil
}

func (repo *courseRepository) GetChapterByID(_ context.Context, id string) (course.Chapter, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if chp, ok := repo.db.chapters[id]; ok {
		return *chp, nil
	}
	return course.Chapter{}, course.ErrNotFound
}

func (repo *courseRepository) FilterChapters(_ context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Chapter, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	chapters := make([]course.Chapter, 0, len(repo.db.chapters))
	for _, chp := range repo.db.chapters {
		if filter.CourseID != "" && chp.CourseID != filter.CourseID {
			continue
		}
		if filter.SubjectID != "" && chp.SubjectID != filter.SubjectID {
			continue
		}
		if matches(filter.Search, chp.Name, chp.Description) {
			chapters = append(chapters, *chp)
		}
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].CreatedAt.Before(chapters[j].CreatedAt) })

	total := len(chapters)
	start, end := pageBounds(total, paging)
	return chapters[start:end], total, nil
}

func (repo *courseRepository) QueryChaptersByCourseID(_ context.Context, courseID string) ([]course.Chapter, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	chapters := make([]course.Chapter, 0)
	for _, chp := range repo.db.chapters {
		if chp.CourseID == courseID {
			chapters = append(chapters, *chp)
		}
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].CreatedAt.Before(chapters[j].CreatedAt) })
	return chapters, nil
}

func (repo *courseRepository) UpdateChapter(_ context.Context, chp course.Chapter) (course.Chapter, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.chapters[chp.ID]; !ok {
		return course.Chapter{}, course.ErrNotFound
	}
	repo.db.chapters[chp.ID] = &chp
	return chp, nil
}

func (repo *courseRepository) DeleteChapter(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.chapters, id)
	for tid, top := range repo.db.topics {
		if top.ChapterID == id {
			delete(repo.db.topics, tid)
		}
	}
	for tid, tst := range repo.db.tests {
		if tst.ChapterID == id {
			delete(repo.db.tests, tid)
		}
	}
	return nil
}

// Topics

func (repo *courseRepository) CreateTopic(_ context.Context, top course.Topic) (course.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.topics[top.ID] = &top
	return top, nil
}

func (repo *courseRepository) GetTopicByID(_ context.Context, id string) (course.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if top, ok := repo.db.topics[id]; ok {
		return *top, nil
	}
	return course.Topic{}, course.ErrNotFound
}

func (repo *courseRepository) FilterTopics(_ context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Topic, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	topics := make([]course.Topic, 0, len(repo.db.topics))
	for _, top := range repo.db.topics {
		if filter.CourseID != "" && top.CourseID != filter.CourseID {
			continue
		}
		if filter.ChapterID != "" && top.ChapterID != filter.ChapterID {
			continue
		}
		if matches(filter.Search, top.Name, top.Description) {
			topics = append(topics, *top)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].CreatedAt.Before(topics[j].CreatedAt) })

	total := len(topics)
	start, end := pageBounds(total, paging)
	return topics[start:end], total, nil
}

func (repo *courseRepository) QueryTopicsByCourseID(_ context.Context, courseID string) ([]course.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	topics := make([]course.Topic, 0)
	for _, top := range repo.db.topics {
		if top.CourseID == courseID {
			topics = append(topics, *top)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].CreatedAt.Before(topics[j].CreatedAt) })
	return topics, nil
}

func (repo *courseRepository) UpdateTopic(_ context.Context, top course.Topic) (course.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.topics[top.ID]; !ok {
		return course.Topic{}, course.ErrNotFound
	}
	repo.db.topics[top.ID] = &top
	return top, nil
}

func (repo *courseRepository) DeleteTopic(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.topics, id)
	for tid, tst := range repo.db.tests {
		if tst.TopicID == id {
			delete(repo.db.tests, tid)
		}
	}
	return nil
}

// Tests

func (repo *courseRepository) CreateTest(_ context.Context, tst course.Test) (course.Test, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.tests[tst.ID] = &tst
	return tst, nil
}

func (repo *courseRepository) GetTestByID(_ context.Context, id string) (course.Test, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tst, ok := repo.db.tests[id]; ok {
		return *tst, nil
	}
	return course.Test{}, course.ErrNotFound
}

func (repo *courseRepository) FilterTests(_ context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Test, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tests := make([]course.Test, 0, len(repo.db.tests))
	for _, tst := range repo.db.tests {
		if filter.CourseID != "" && tst.CourseID != filter.CourseID {
			continue
		}
		if filter.TopicID != "" && tst.TopicID != filter.TopicID {
			continue
		}
		if matches(filter.Search, tst.Title, tst.Description) {
			tests = append(tests, *tst)
		}
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].CreatedAt.Before(tests[j].CreatedAt) })

	total := len(tests)
	start, end := pageBounds(total, paging)
	return tests[start:end], total, nil
}

func (repo *courseRepository) QueryTestsByCourseID(_ context.Context, courseID string) ([]course.Test, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tests := make([]course.Test, 0)
	for _, tst := range repo.db.tests {
		if tst.CourseID == courseID {
			tests = append(tests, *tst)
		}
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].CreatedAt.Before(tests[j].CreatedAt) })
	return tests, nil
}

func (repo *courseRepository) UpdateTest(_ context.Context, tst course.Test) (course.Test, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tests[tst.ID]; !ok {
		return course.Test{}, course.ErrNotFound
	}
	repo.db.tests[tst.ID] = &tst
	return tst, nil
}

func (repo *courseRepository) DeleteTest(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.tests, id)
	return nil
}
