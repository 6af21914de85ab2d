package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `
	INSERT INTO "user" (id, name, email, phone_number, password_hash, city, gender, dob, profile_pic, role, is_active, last_login, created_at, updated_at)
	VALUES (:id, :name, :email, :phone_number, :password_hash, :city, :gender, :dob, :profile_pic, :role, :is_active, :last_login, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, paging core.Paging) ([]user.User, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR phone_number ILIKE %s)", p, p, p))
	}
	if filter.Role != "" {
		conds = append(conds, "role = "+arg(filter.Role))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM "user"`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}

	q := fmt.Sprintf(`SELECT * FROM "user"%s ORDER BY %s LIMIT %s OFFSET %s`,
		where, newestFirst, arg(paging.Limit), arg(paging.Offset()))
	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting users")
	}
	return users, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `
	UPDATE "user"
	SET name = :name, email = :email, phone_number = :phone_number, password_hash = :password_hash,
	    city = :city, gender = :gender, dob = :dob, profile_pic = :profile_pic, role = :role,
	    is_active = :is_active, last_login = :last_login, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return nil
}
