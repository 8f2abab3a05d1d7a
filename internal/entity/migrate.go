package entity

import (
	"context"

	"github.com/questx-lab/guildsync/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Credential{},
	)
}
