package postgres

import (
	"embed"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate menjalankan migrasi embedded sampai versi terbaru.
// Driver pgx5 dari golang-migrate pakai scheme URL sendiri.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	url := strings.Replace(dsn, "postgres://", "pgx5://", 1)
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return errors.Wrap(err, "init migrate")
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}
