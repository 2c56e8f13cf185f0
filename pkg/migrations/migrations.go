package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds every schema change, registered from init functions in
// this package.
var Migrations = migrate.NewMigrations()

// NewMigrator returns a migrator over Migrations. The bookkeeping tables are
// prefixed so they sort apart from the catalog tables.
func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations,
		migrate.WithTableName("catalog_migrations"),
		migrate.WithLocksTableName("catalog_migration_locks"),
	)
}

// BringUpToDate creates the bookkeeping tables if needed and applies every
// pending migration as one group.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}
