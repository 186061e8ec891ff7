package store

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// MigrationsDir is the label migrations are registered under.
const MigrationsDir = "data/sql/migrations"

// GetMigrationsFS returns the SQL migrations for the users table, rooted at
// the migrations directory.
func GetMigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, MigrationsDir)
	if err != nil {
		panic(err)
	}
	return sub
}
