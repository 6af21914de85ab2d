package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/auth"
)

type authRepository struct {
	db *sqlx.DB
}

var _ auth.Repository = (*authRepository)(nil) // interface compliance check

func NewAuthRepository(db *sqlx.DB) auth.Repository {
	return &authRepository{db: db}
}

func (repo *authRepository) UpsertChallenge(ctx context.Context, ch auth.Challenge) error {
	q := `
	INSERT INTO email_otp (email, code, expires_at, created_at)
	VALUES (:email, :code, :expires_at, :created_at)
	ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`
	if _, err := repo.db.NamedExecContext(ctx, q, ch); err != nil {
		return errors.Wrap(err, "upserting challenge")
	}
	return nil
}

func (repo *authRepository) GetChallengeByEmail(ctx context.Context, email string) (auth.Challenge, error) {
	var ch auth.Challenge
	err := repo.db.GetContext(ctx, &ch, `SELECT * FROM email_otp WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return auth.Challenge{}, auth.ErrNotFound
		}
		return auth.Challenge{}, errors.Wrap(err, "selecting challenge")
	}
	return ch, nil
}

func (repo *authRepository) DeleteChallengeByEmail(ctx context.Context, email string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM email_otp WHERE email = $1`, email); err != nil {
		return errors.Wrap(err, "deleting challenge")
	}
	return nil
}
