package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
)

type Course struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Instructor  string    `json:"instructor" db:"instructor"`
	Price       int64     `json:"price" db:"price"` // subunits (paise)
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Published   bool      `json:"published" db:"published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type Subject struct {
	ID          string    `json:"id" db:"id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Chapter struct {
	ID          string    `json:"id" db:"id"`
	SubjectID   string    `json:"subject_id" db:"subject_id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Topic struct {
	ID                string    `json:"id" db:"id"`
	ChapterID         string    `json:"chapter_id" db:"chapter_id"`
	SubjectID         string    `json:"subject_id" db:"subject_id"`
	CourseID          string    `json:"course_id" db:"course_id"`
	Name              string    `json:"name" db:"name"`
	Description       string    `json:"description" db:"description"`
	IsFullTestSection bool      `json:"is_full_test_section" db:"is_full_test_section"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type Test struct {
	ID           string    `json:"id" db:"id"`
	CourseID     string    `json:"course_id" db:"course_id"`
	SubjectID    string    `json:"subject_id" db:"subject_id"`
	ChapterID    string    `json:"chapter_id" db:"chapter_id"`
	TopicID      string    `json:"topic_id" db:"topic_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Instructions string    `json:"instructions" db:"instructions"`
	Duration     int64     `json:"duration" db:"duration"` // minutes
	TotalMarks   int64     `json:"total_marks" db:"total_marks"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Structure is the full course hierarchy served to enrolled students.
type (
	Structure struct {
		Course   Course             `json:"course"`
		Subjects []StructureSubject `json:"subjects"`
	}

	StructureSubject struct {
		Subject  Subject            `json:"subject"`
		Chapters []StructureChapter `json:"chapters"`
	}

	StructureChapter struct {
		Chapter Chapter          `json:"chapter"`
		Topics  []StructureTopic `json:"topics"`
	}

	StructureTopic struct {
		Topic Topic  `json:"topic"`
		Tests []Test `json:"tests"`
	}
)

// Bindings

type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Price       int64  `json:"price" validate:"gte=0"`
	Thumbnail   string `json:"thumbnail"`
	Published   bool   `json:"published"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Instructor = core.CleanString(nc.Instructor)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Instructor  *string `json:"instructor"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string `json:"thumbnail"`
	Published   *bool   `json:"published"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}

type NewSubject struct {
	CourseID    string `json:"course_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewChapter struct {
	SubjectID   string `json:"subject_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewChapter) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewTopic struct {
	ChapterID         string `json:"chapter_id" validate:"required"`
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	IsFullTestSection bool   `json:"is_full_test_section"`
}

func (nt *NewTopic) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}

type NewTest struct {
	TopicID      string `json:"topic_id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
	Duration     int64  `json:"duration" validate:"gte=0"`
	TotalMarks   int64  `json:"total_marks" validate:"gte=0"`
}

func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	return validate.Struct(nt)
}

type UpdateName struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UpdateTest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Instructions *string `json:"instructions"`
	Duration     *int64  `json:"duration" validate:"omitempty,gte=0"`
	TotalMarks   *int64  `json:"total_marks" validate:"omitempty,gte=0"`
}

func (ut *UpdateTest) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	return validate.Struct(ut)
}

type QueryFilter struct {
	Search    string `query:"search"`
	CourseID  string `query:"courseId"`
	SubjectID string `query:"subjectId"`
	ChapterID string `query:"chapterId"`
	TopicID   string `query:"topicId"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
