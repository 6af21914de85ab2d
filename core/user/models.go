package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mtihani/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	City         string    `json:"city" db:"city"`
	Gender       string    `json:"gender" db:"gender"`
	DOB          string    `json:"dob" db:"dob"`
	ProfilePic   string    `json:"profile_pic" db:"profile_pic"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLogin    null.Time `json:"last_login" db:"last_login"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// Public is the minimal projection returned to API clients.
type Public struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewStaffUser contains information needed to create a teacher or admin account.
type NewStaffUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,role"`
}

func (nu *NewStaffUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleTeacher
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information an admin may modify on an existing User.
type UpdateUser struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
	IsActive    *bool  `json:"is_active"`
}

func (uu *UpdateUser) Validate(ctx context.Context, orig User, validate *validator.Validate, svc Service) error {
	uu.Name = core.CleanString(uu.Name)
	if uu.Name == "" {
		uu.Name = orig.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email == "" {
		uu.Email = orig.Email
	} else {
		uu.Email = email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != orig.Email {
		return svc.CheckEmailUniqueness(ctx, uu.Email)
	}
	return nil
}

// UpdateDetails defines the profile fields a user may edit themselves.
type UpdateDetails struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
	Gender      string `json:"gender"`
	DOB         string `json:"dob"`
	ProfilePic  string `json:"profilePic"`
}

func (ud *UpdateDetails) Validate(validate *validator.Validate) error {
	ud.Name = core.CleanString(ud.Name)
	ud.Email = core.CleanString(ud.Email, true /* lower */)
	return validate.Struct(ud)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	CreatedFrom time.Time `query:"createdFrom"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
