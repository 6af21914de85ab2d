package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/enroll"
)

type enrollRepository struct {
	db *enrollmentTable
}

var _ enroll.Repository = (*enrollRepository)(nil) // interface compliance check

func NewEnrollRepository(db *DB) enroll.Repository {
	return &enrollRepository{db: db.enrollment}
}

func (repo *enrollRepository) CreateEnrollment(_ context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollRepository) GetEnrollment(_ context.Context, studentID, courseID string) (enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var found *enroll.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.StudentID != studentID || enr.CourseID != courseID {
			continue
		}
		// latest enrollment wins
		if found == nil || enr.EnrolledAt.After(found.EnrolledAt) {
			found = enr
		}
	}
	if found == nil {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return *found, nil
}

func (repo *enrollRepository) QueryEnrollmentsByStudentID(_ context.Context, studentID string) ([]enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrs := make([]enroll.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })
	return enrs, nil
}

func (repo *enrollRepository) UpdateEnrollment(_ context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.enrollments[enr.ID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollRepository) CountEnrollments(_ context.Context, activeOnly bool, since time.Time) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, enr := range repo.db.enrollments {
		if activeOnly && !enr.IsActive() {
			continue
		}
		if !since.IsZero() && enr.EnrolledAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}

func (repo *enrollRepository) CreatePayment(_ context.Context, pmt enroll.Payment) (enroll.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *enrollRepository) FilterPayments(_ context.Context, filter enroll.PaymentQueryFilter, paging core.Paging) ([]enroll.Payment, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	pmts := make([]enroll.Payment, 0, len(repo.db.payments))
	for _, pmt := range repo.db.payments {
		if filter.StudentID != "" && pmt.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && pmt.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && pmt.Status != filter.Status {
			continue
		}
		pmts = append(pmts, *pmt)
	}
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].CreatedAt.After(pmts[j].CreatedAt) })

	total := len(pmts)
	start, end := pageBounds(total, paging)
	return pmts[start:end], total, nil
}

func (repo *enrollRepository) SumPaidPayments(_ context.Context) (int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sum int64
	for _, pmt := range repo.db.payments {
		if pmt.Status == enroll.PaymentPaid {
			sum += pmt.Amount
		}
	}
	return sum, nil
}

func (repo *enrollRepository) CountPayments(_ context.Context, since time.Time) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, pmt := range repo.db.payments {
		if !since.IsZero() && pmt.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}
