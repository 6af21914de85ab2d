package main

import (
	"context"
	"fmt"

	"github.com/trezcool/mtihani/core/user"
)

func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()

	role := user.RoleTeacher
	if isAdmin {
		role = user.RoleAdmin
	}
	ns := user.NewStaffUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
	}
	if err := ns.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(ctx, ns)
	if err != nil {
		return err
	}
	fmt.Printf("%s user created: %s <%s>\n", usr.Role, usr.Name, usr.Email)
	return nil
}
