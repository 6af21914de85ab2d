package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

var (
	newestFirst = core.DBOrdering{Field: "created_at"}
	oldestFirst = core.DBOrdering{Field: "created_at", Ascending: true}
)

// listQuery builds a filtered, paginated SELECT plus its COUNT counterpart.
type listQuery struct {
	conds []string
	args  []interface{}
}

func (lq *listQuery) arg(v interface{}) string {
	lq.args = append(lq.args, v)
	return fmt.Sprintf("$%d", len(lq.args))
}

func (lq *listQuery) addEq(col, val string) {
	if val != "" {
		lq.conds = append(lq.conds, col+" = "+lq.arg(val))
	}
}

func (lq *listQuery) addSearch(search string, cols ...string) {
	if search == "" {
		return
	}
	p := lq.arg("%" + search + "%")
	like := make([]string, 0, len(cols))
	for _, col := range cols {
		like = append(like, col+" ILIKE "+p)
	}
	lq.conds = append(lq.conds, "("+strings.Join(like, " OR ")+")")
}

func (lq *listQuery) where() string {
	if len(lq.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(lq.conds, " AND ")
}

func (repo *courseRepository) list(ctx context.Context, table string, lq *listQuery, paging core.Paging, order core.DBOrdering, dest interface{}) (int, error) {
	where := lq.where()

	var total int
	if err := repo.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM "+table+where, lq.args...); err != nil {
		return 0, errors.Wrapf(err, "counting %s rows", table)
	}

	q := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s LIMIT %s OFFSET %s",
		table, where, order, lq.arg(paging.Limit), lq.arg(paging.Offset()))
	if err := repo.db.SelectContext(ctx, dest, q, lq.args...); err != nil {
		return 0, errors.Wrapf(err, "selecting %s rows", table)
	}
	return total, nil
}

// Courses

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `
	INSERT INTO course (id, name, description, instructor, price, thumbnail, published, created_at, updated_at)
	VALUES (:id, :name, :description, :instructor, :price, :thumbnail, :published, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, crs); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM course WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return crs, nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Course, int, error) {
	lq := &listQuery{}
	lq.addSearch(filter.Search, "name", "description", "instructor")

	courses := make([]course.Course, 0)
	total, err := repo.list(ctx, "course", lq, paging, newestFirst, &courses)
	return courses, total, err
}

func (repo *courseRepository) QueryPublishedCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := repo.db.SelectContext(ctx, &courses, `SELECT * FROM course WHERE published ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "selecting published courses")
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `
	UPDATE course
	SET name = :name, description = :description, instructor = :instructor, price = :price,
	    thumbnail = :thumbnail, published = :published, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, crs)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	// children go via ON DELETE CASCADE
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

// Subjects

func (repo *courseRepository) CreateSubject(ctx context.Context, sub course.Subject) (course.Subject, error) {
	q := `
	INSERT INTO subject (id, course_id, name, description, created_at, updated_at)
	VALUES (:id, :course_id, :name, :description, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, sub); err != nil {
		return course.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *courseRepository) GetSubjectByID(ctx context.Context, id string) (course.Subject, error) {
	var sub course.Subject
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subject WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Subject{}, course.ErrNotFound
		}
		return course.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return sub, nil
}

func (repo *courseRepository) FilterSubjects(ctx context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Subject, int, error) {
	lq := &listQuery{}
	lq.addEq("course_id", filter.CourseID)
	lq.addSearch(filter.Search, "name", "description")

	subjects := make([]course.Subject, 0)
	total, err := repo.list(ctx, "subject", lq, paging, oldestFirst, &subjects)
	return subjects, total, err
}

func (repo *courseRepository) QuerySubjectsByCourseID(ctx context.Context, courseID string) ([]course.Subject, error) {
	subjects := make([]course.Subject, 0)
	err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subject WHERE course_id = $1 ORDER BY created_at ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}

func (repo *courseRepository) UpdateSubject(ctx context.Context, sub course.Subject) (course.Subject, error) {
	q := `UPDATE subject SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, sub)
	if err != nil {
		return course.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Subject{}, course.ErrNotFound
	}
	return sub, nil
}

func (repo *courseRepository) DeleteSubject(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}

// Chapters

func (repo *courseRepository) CreateChapter(ctx context.Context, chp course.Chapter) (course.Chapter, error) {
	q := `
	INSERT INTO chapter (id, subject_id, course_id, name, description, created_at, updated_at)
	VALUES (:id, :subject_id, :course_id, :name, :description, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, chp); err != nil {
		return course.Chapter{}, errors.Wrap(err, "inserting chapter")
	}
	return chp, nil
}

func (repo *courseRepository) GetChapterByID(ctx context.Context, id string) (course.Chapter, error) {
	var chp course.Chapter
	err := repo.db.GetContext(ctx, &chp, `SELECT * FROM chapter WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Chapter{}, course.ErrNotFound
		}
		return course.Chapter{}, errors.Wrap(err, "selecting chapter")
	}
	return chp, nil
}

func (repo *courseRepository) FilterChapters(ctx context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Chapter, int, error) {
	lq := &listQuery{}
	lq.addEq("course_id", filter.CourseID)
	lq.addEq("subject_id", filter.SubjectID)
	lq.addSearch(filter.Search, "name", "description")

	chapters := make([]course.Chapter, 0)
	total, err := repo.list(ctx, "chapter", lq, paging, oldestFirst, &chapters)
	return chapters, total, err
}

func (repo *courseRepository) QueryChaptersByCourseID(ctx context.Context, courseID string) ([]course.Chapter, error) {
	chapters := make([]course.Chapter, 0)
	err := repo.db.SelectContext(ctx, &chapters, `SELECT * FROM chapter WHERE course_id = $1 ORDER BY created_at ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting chapters")
	}
	return chapters, nil
}

func (repo *courseRepository) UpdateChapter(ctx context.Context, chp course.Chapter) (course.Chapter, error) {
	q := `UPDATE chapter SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, chp)
	if err != nil {
		return course.Chapter{}, errors.Wrap(err, "updating chapter")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Chapter{}, course.ErrNotFound
	}
	return chp, nil
}

func (repo *courseRepository) DeleteChapter(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM chapter WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting chapter")
	}
	return nil
}

// Topics

func (repo *courseRepository) CreateTopic(ctx context.Context, top course.Topic) (course.Topic, error) {
	q := `
	INSERT INTO topic (id, chapter_id, subject_id, course_id, name, description, is_full_test_section, created_at, updated_at)
	VALUES (:id, :chapter_id, :subject_id, :course_id, :name, :description, :is_full_test_section, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, top); err != nil {
		return course.Topic{}, errors.Wrap(err, "inserting topic")
	}
	return top, nil
}

func (repo *courseRepository) GetTopicByID(ctx context.Context, id string) (course.Topic, error) {
	var top course.Topic
	err := repo.db.GetContext(ctx, &top, `SELECT * FROM topic WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Topic{}, course.ErrNotFound
		}
		return course.Topic{}, errors.Wrap(err, "selecting topic")
	}
	return top, nil
}

func (repo *courseRepository) FilterTopics(ctx context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Topic, int, error) {
	lq := &listQuery{}
	lq.addEq("course_id", filter.CourseID)
	lq.addEq("chapter_id", filter.ChapterID)
	lq.addSearch(filter.Search, "name", "description")

	topics := make([]course.Topic, 0)
	total, err := repo.list(ctx, "topic", lq, paging, oldestFirst, &topics)
	return topics, total, err
}

func (repo *courseRepository) QueryTopicsByCourseID(ctx context.Context, courseID string) ([]course.Topic, error) {
	topics := make([]course.Topic, 0)
	err := repo.db.SelectContext(ctx, &topics, `SELECT * FROM topic WHERE course_id = $1 ORDER BY created_at ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting topics")
	}
	return topics, nil
}

func (repo *courseRepository) UpdateTopic(ctx context.Context, top course.Topic) (course.Topic, error) {
	q := `
	UPDATE topic
	SET name = :name, description = :description, is_full_test_section = :is_full_test_section, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, top)
	if err != nil {
		return course.Topic{}, errors.Wrap(err, "updating topic")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Topic{}, course.ErrNotFound
	}
	return top, nil
}

func (repo *courseRepository) DeleteTopic(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM topic WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return nil
}

// Tests

func (repo *courseRepository) CreateTest(ctx context.Context, tst course.Test) (course.Test, error) {
	q := `
	INSERT INTO test (id, course_id, subject_id, chapter_id, topic_id, title, description, instructions, duration, total_marks, created_at, updated_at)
	VALUES (:id, :course_id, :subject_id, :chapter_id, :topic_id, :title, :description, :instructions, :duration, :total_marks, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, tst); err != nil {
		return course.Test{}, errors.Wrap(err, "inserting test")
	}
	return tst, nil
}

func (repo *courseRepository) GetTestByID(ctx context.Context, id string) (course.Test, error) {
	var tst course.Test
	err := repo.db.GetContext(ctx, &tst, `SELECT * FROM test WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Test{}, course.ErrNotFound
		}
		return course.Test{}, errors.Wrap(err, "selecting test")
	}
	return tst, nil
}

func (repo *courseRepository) FilterTests(ctx context.Context, filter course.QueryFilter, paging core.Paging) ([]course.Test, int, error) {
	lq := &listQuery{}
	lq.addEq("course_id", filter.CourseID)
	lq.addEq("topic_id", filter.TopicID)
	lq.addSearch(filter.Search, "title", "description")

	tests := make([]course.Test, 0)
	total, err := repo.list(ctx, "test", lq, paging, oldestFirst, &tests)
	return tests, total, err
}

func (repo *courseRepository) QueryTestsByCourseID(ctx context.Context, courseID string) ([]course.Test, error) {
	tests := make([]course.Test, 0)
	err := repo.db.SelectContext(ctx, &tests, `SELECT * FROM test WHERE course_id = $1 ORDER BY created_at ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting tests")
	}
	return tests, nil
}

func (repo *courseRepository) UpdateTest(ctx context.Context, tst course.Test) (course.Test, error) {
	q := `
	UPDATE test
	SET title = :title, description = :description, instructions = :instructions,
	    duration = :duration, total_marks = :total_marks, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, tst)
	if err != nil {
		return course.Test{}, errors.Wrap(err, "updating test")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Test{}, course.ErrNotFound
	}
	return tst, nil
}

func (repo *courseRepository) DeleteTest(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM test WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return nil
}
