package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mtihani/core"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "a user with this email already exists"})
)

type Repository interface {
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	FilterUsers(ctx context.Context, filter QueryFilter, paging core.Paging) ([]User, int, error)
	UpdateUser(ctx context.Context, usr User) (User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return Service{repo: repo}
}

// GetOrCreateByEmail returns the user with the given email, creating a fresh
// active student account on the fly when none exists. The local part of the
// email becomes the initial display name.
func (svc Service) GetOrCreateByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return usr, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, err
	}

	now := time.Now().UTC()
	usr = User{
		ID:        uuid.New().String(),
		Name:      core.EmailLocalPart(email),
		Email:     email,
		Role:      RoleStudent,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Create registers a new staff (teacher or admin) account. nu must have been
// validated beforehand.
func (svc Service) Create(ctx context.Context, nu NewStaffUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc Service) Filter(ctx context.Context, filter QueryFilter, paging core.Paging) ([]User, int, error) {
	filter.Clean()
	paging.Clean()
	return svc.repo.FilterUsers(ctx, filter, paging)
}

// UpdateDetails applies a user's own profile edits. Empty fields are left
// untouched.
func (svc Service) UpdateDetails(ctx context.Context, usr User, ud UpdateDetails) (User, error) {
	if ud.Name != "" {
		usr.Name = ud.Name
	}
	if ud.Email != "" && ud.Email != usr.Email {
		if err := svc.CheckEmailUniqueness(ctx, ud.Email); err != nil {
			return User{}, err
		}
		usr.Email = ud.Email
	}
	if ud.PhoneNumber != "" {
		usr.PhoneNumber = ud.PhoneNumber
	}
	if ud.City != "" {
		usr.City = ud.City
	}
	if ud.Gender != "" {
		usr.Gender = ud.Gender
	}
	if ud.DOB != "" {
		usr.DOB = ud.DOB
	}
	if ud.ProfilePic != "" {
		usr.ProfilePic = ud.ProfilePic
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Update applies an admin's edits to an existing user.
func (svc Service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	usr.Name = uu.Name
	usr.Email = uu.Email
	if uu.PhoneNumber != "" {
		usr.PhoneNumber = uu.PhoneNumber
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUser(ctx, id)
}

// Authenticate checks an admin's email and password and stamps last_login on
// success. Inactive accounts and non-admin roles are rejected.
func (svc Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsAdmin() || !usr.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return svc.SetLastLogin(ctx, usr)
}

var ErrInvalidCredentials = errors.New("invalid email or password")

func (svc Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc Service) CheckEmailUniqueness(ctx context.Context, email string) error {
	_, err := svc.repo.GetUserByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return ErrEmailExists
	}
	if errors.Cause(err) == ErrNotFound {
		return nil
	}
	return err
}
