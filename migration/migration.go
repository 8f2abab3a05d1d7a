package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/questx-lab/guildsync/internal/entity"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

// Migrate brings the schema of the configured database up to date. MySQL is
// migrated with the versioned scripts under mysql/, any other driver falls
// back to gorm's AutoMigrate.
func Migrate(ctx context.Context) error {
	driver := xcontext.Configs(ctx).Database.Driver
	if driver != "mysql" {
		xcontext.Logger(ctx).Infof("Auto migrating %s database", driver)
		return entity.MigrateTable(ctx)
	}

	m, err := newMySQLMigrator(ctx)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	xcontext.Logger(ctx).Infof("Database is at version %d (dirty=%t)", version, dirty)
	return nil
}

func newMySQLMigrator(ctx context.Context) (*migrate.Migrate, error) {
	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(mysqlFS, "mysql")
	if err != nil {
		return nil, fmt.Errorf("cannot load migration scripts: %w", err)
	}

	instance, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, "mysql", instance)
}
