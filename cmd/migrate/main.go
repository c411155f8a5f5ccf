// Command migrate applies the global schema migrations. Per-session schemas
// are provisioned at runtime; only the shared fishbone tables live here.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	if err := run(*down); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(down bool) error {
	dsn := os.Getenv("CAUSEMAP_DB_DSN")
	if dsn == "" {
		return fmt.Errorf("CAUSEMAP_DB_DSN is required")
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("initialize migrate: %w", err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no schema changes to apply")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}
