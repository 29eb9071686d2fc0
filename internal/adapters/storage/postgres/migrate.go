package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica el esquema embebido con golang-migrate.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

func NewMigrator(db *sql.DB, log *zap.Logger) (*Migrator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	v, dirty, _ := mg.m.Version()
	mg.log.Info("migrations applied", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

// Down revierte todas las migraciones.
func (mg *Migrator) Down() error {
	err := mg.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down: %w", err)
	}
	mg.log.Info("migrations rolled back")
	return nil
}

func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close libera la conexión tomada del pool; el *sql.DB sigue abierto.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}
