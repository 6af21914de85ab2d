// Package dummydb provides in-memory repositories for local development and
// tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/auth"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
)

type (
	DB struct {
		user       *userTable
		challenge  *challengeTable
		course     *courseTable
		enrollment *enrollmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	challengeTable struct {
		sync.RWMutex
		table map[string]*auth.Challenge // keyed by email
	}

	courseTable struct {
		sync.RWMutex
		courses  map[string]*course.Course
		subjects map[string]*course.Subject
		chapters map[string]*course.Chapter
		topics   map[string]*course.Topic
		tests    map[string]*course.Test
	}

	enrollmentTable struct {
		sync.RWMutex
		enrollments map[string]*enroll.Enrollment
		payments    map[string]*enroll.Payment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		challenge: &challengeTable{table: make(map[string]*auth.Challenge)},
		course: &courseTable{
			courses:  make(map[string]*course.Course),
			subjects: make(map[string]*course.Subject),
			chapters: make(map[string]*course.Chapter),
			topics:   make(map[string]*course.Topic),
			tests:    make(map[string]*course.Test),
		},
		enrollment: &enrollmentTable{
			enrollments: make(map[string]*enroll.Enrollment),
			payments:    make(map[string]*enroll.Payment),
		},
	}
	return db, nil
}

// pageBounds returns the slice bounds for paging over n rows. paging must
// have been cleaned.
func pageBounds(n int, paging core.Paging) (start, end int) {
	start = paging.Offset()
	if start > n {
		start = n
	}
	end = start + paging.Limit
	if end > n {
		end = n
	}
	return start, end
}
