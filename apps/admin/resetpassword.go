package main

import (
	"context"
	"time"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/admin"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	adm, err := cli.admRepo.GetAdmin(ctx, admin.GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if err := adm.SetPassword(pwd); err != nil {
		return err
	}
	adm.UpdatedAt = time.Now().UTC()
	if _, err := cli.admRepo.UpdateAdmin(ctx, adm); err != nil {
		return err
	}
	return nil
}
