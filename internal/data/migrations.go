package data

import (
	"context"
	"database/sql"

	"github.com/gitwithsonu015/campus-sos/internal/migrate"
)

// RunMigrations sets up the contact-directory schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
