package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/enroll"
)

type enrollRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollRepository)(nil) // interface compliance check

func NewEnrollRepository(db *sqlx.DB) enroll.Repository {
	return &enrollRepository{db: db}
}

func (repo *enrollRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	q := `
	INSERT INTO enrollment (id, student_id, course_id, status, progress, enrolled_at, expires_at)
	VALUES (:id, :student_id, :course_id, :status, :progress, :enrolled_at, :expires_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, enr); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *enrollRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (enroll.Enrollment, error) {
	var enr enroll.Enrollment
	q := `SELECT * FROM enrollment WHERE student_id = $1 AND course_id = $2 ORDER BY enrolled_at DESC LIMIT 1`
	err := repo.db.GetContext(ctx, &enr, q, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return enroll.Enrollment{}, enroll.ErrNotFound
		}
		return enroll.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	return enr, nil
}

func (repo *enrollRepository) QueryEnrollmentsByStudentID(ctx context.Context, studentID string) ([]enroll.Enrollment, error) {
	enrs := make([]enroll.Enrollment, 0)
	q := `SELECT * FROM enrollment WHERE student_id = $1 ORDER BY enrolled_at DESC`
	if err := repo.db.SelectContext(ctx, &enrs, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	return enrs, nil
}

func (repo *enrollRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	q := `
	UPDATE enrollment
	SET status = :status, progress = :progress, expires_at = :expires_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, enr)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return enr, nil
}

func (repo *enrollRepository) CountEnrollments(ctx context.Context, activeOnly bool, since time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM enrollment WHERE 1=1`
	var args []interface{}
	if activeOnly {
		q += ` AND status = 'active' AND (expires_at IS NULL OR expires_at > NOW())`
	}
	if !since.IsZero() {
		args = append(args, since.UTC())
		q += ` AND enrolled_at >= $1`
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}

func (repo *enrollRepository) CreatePayment(ctx context.Context, pmt enroll.Payment) (enroll.Payment, error) {
	q := `
	INSERT INTO payment (id, student_id, course_id, amount, status, transaction_id, created_at, updated_at)
	VALUES (:id, :student_id, :course_id, :amount, :status, :transaction_id, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, pmt); err != nil {
		return enroll.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo *enrollRepository) FilterPayments(ctx context.Context, filter enroll.PaymentQueryFilter, paging core.Paging) ([]enroll.Payment, int, error) {
	lq := &listQuery{}
	lq.addEq("student_id", filter.StudentID)
	lq.addEq("course_id", filter.CourseID)
	lq.addEq("status", filter.Status)
	where := lq.where()

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payment`+where, lq.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting payments")
	}

	pmts := make([]enroll.Payment, 0)
	q := `SELECT * FROM payment` + where + ` ORDER BY ` + newestFirst.String() + ` LIMIT ` + lq.arg(paging.Limit) + ` OFFSET ` + lq.arg(paging.Offset())
	if err := repo.db.SelectContext(ctx, &pmts, q, lq.args...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting payments")
	}
	return pmts, total, nil
}

func (repo *enrollRepository) SumPaidPayments(ctx context.Context) (int64, error) {
	var sum int64
	q := `SELECT COALESCE(SUM(amount), 0) FROM payment WHERE status = 'paid'`
	if err := repo.db.GetContext(ctx, &sum, q); err != nil {
		return 0, errors.Wrap(err, "summing payments")
	}
	return sum, nil
}

func (repo *enrollRepository) CountPayments(ctx context.Context, since time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM payment`
	var args []interface{}
	if !since.IsZero() {
		args = append(args, since.UTC())
		q += ` WHERE created_at >= $1`
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting payments")
	}
	return count, nil
}
