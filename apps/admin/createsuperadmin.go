package main

import (
	"context"
	"time"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/admin"
)

// createSuperAdmin updates or creates a super admin account.
func (cli *commandLine) createSuperAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	adm, err := cli.admRepo.GetAdmin(ctx, admin.GetFilter{Email: email})
	if err != nil {
		if err != admin.ErrNotFound {
			return err
		}
		adm = admin.Admin{
			FullName:  name,
			Email:     email,
			CreatedAt: now,
		}
	}
	adm.Role = admin.RoleSuperAdmin
	adm.Active = true
	adm.UpdatedAt = now
	if err := adm.SetPassword(pwd); err != nil {
		return err
	}

	if adm.ID == "" {
		_, err = cli.admRepo.CreateAdmin(ctx, adm)
	} else {
		_, err = cli.admRepo.UpdateAdmin(ctx, adm)
	}
	return err
}
