package dummydb

import (
	"context"

	"github.com/trezcool/mtihani/core/auth"
)

type authRepository struct {
	db *challengeTable
}

var _ auth.Repository = (*authRepository)(nil) // interface compliance check

func NewAuthRepository(db *DB) auth.Repository {
	return &authRepository{db: db.challenge}
}

func (repo *authRepository) UpsertChallenge(_ context.Context, ch auth.Challenge) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[ch.Email] = &ch
	return nil
}

func (repo *authRepository) GetChallengeByEmail(_ context.Context, email string) (auth.Challenge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ch, ok := repo.db.table[email]; ok {
		return *ch, nil
	}
	return auth.Challenge{}, auth.ErrNotFound
}

func (repo *authRepository) DeleteChallengeByEmail(_ context.Context, email string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, email)
	return nil
}
