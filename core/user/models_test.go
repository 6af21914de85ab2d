package user

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
)

// stubRepository backs validation tests; no user exists.
type stubRepository struct{}

func (stubRepository) CreateUser(ctx context.Context, usr User) (User, error) { return usr, nil }
func (stubRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	return User{}, ErrNotFound
}
func (stubRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return User{}, ErrNotFound
}
func (stubRepository) FilterUsers(ctx context.Context, filter QueryFilter, paging core.Paging) ([]User, int, error) {
	return nil, 0, nil
}
func (stubRepository) UpdateUser(ctx context.Context, usr User) (User, error) { return usr, nil }
func (stubRepository) DeleteUser(ctx context.Context, id string) error        { return nil }

func TestUser_SetCheckPassword(t *testing.T) {
	var usr User
	if err := usr.SetPassword("s3cr3tW0rd!"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if len(usr.PasswordHash) == 0 {
		t.Fatal("PasswordHash is empty")
	}
	if err := usr.CheckPassword("s3cr3tW0rd!"); err != nil {
		t.Errorf("CheckPassword() failed for the right password: %v", err)
	}
	if err := usr.CheckPassword("wr0ngW0rd!"); err == nil {
		t.Error("CheckPassword() passed for the wrong password")
	}
}

func TestUser_roles(t *testing.T) {
	tests := []struct {
		role                          string
		isStudent, isTeacher, isAdmin bool
	}{
		{role: RoleStudent, isStudent: true},
		{role: RoleTeacher, isTeacher: true},
		{role: RoleAdmin, isAdmin: true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			usr := User{Role: tt.role}
			if usr.IsStudent() != tt.isStudent || usr.IsTeacher() != tt.isTeacher || usr.IsAdmin() != tt.isAdmin {
				t.Errorf("User{Role: %q} = (%v, %v, %v); want (%v, %v, %v)",
					tt.role, usr.IsStudent(), usr.IsTeacher(), usr.IsAdmin(), tt.isStudent, tt.isTeacher, tt.isAdmin)
			}
		})
	}
}

func TestNewStaffUser_Validate(t *testing.T) {
	validate, trans := core.NewValidator()
	RegisterValidators(validate, trans)
	ctx := context.Background()
	svc := NewService(stubRepository{})

	newStaff := func(pwd string) NewStaffUser {
		return NewStaffUser{
			Name:     "Jane Doe",
			Email:    "jane@test.cd",
			Password: pwd,
			Role:     RoleTeacher,
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "aB1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "aB1! aB1!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678", wantTag: pwdNotAllNumTag},
		{name: "no special char", pwd: "aB1aB1aB1", wantTag: pwdComplexityTag},
		{name: "no uppercase", pwd: "ab1!ab1!ab1", wantTag: pwdComplexityTag},
		{name: "similar to email", pwd: "Jane@test.cd1", wantTag: pwdAttrSimTag},
		{name: "valid", pwd: "s3cr3tW0rd!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := newStaff(tt.pwd)
			err := nu.Validate(ctx, validate, svc)
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("Validate() failed: %v", err)
				}
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v; want validator.ValidationErrors", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Tag() == tt.wantTag {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v; want tag %q", verrs, tt.wantTag)
			}
		})
	}

	// bad role
	nu := newStaff("s3cr3tW0rd!")
	nu.Role = "superuser"
	if err := nu.Validate(ctx, validate, svc); err == nil {
		t.Error("Validate() expected an error for an unknown role")
	}

	// role defaults to teacher
	nu = newStaff("s3cr3tW0rd!")
	nu.Role = ""
	if err := nu.Validate(ctx, validate, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if nu.Role != RoleTeacher {
		t.Errorf("Role = %q; want %q", nu.Role, RoleTeacher)
	}
}
