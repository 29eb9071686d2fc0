package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pg "kennel-exchange/internal/adapters/storage/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o revierte el esquema de Postgres",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica las migraciones pendientes",
			RunE: func(_ *cobra.Command, _ []string) error {
				return runMigration(func(m *pg.Migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte todas las migraciones",
			RunE: func(_ *cobra.Command, _ []string) error {
				return runMigration(func(m *pg.Migrator) error { return m.Down() })
			},
		},
	)
	return cmd
}

func runMigration(step func(*pg.Migrator) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required to migrate")
	}
	db, err := pg.Open(cfg.Database.DSN, poolOptions(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := pg.NewMigrator(db, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("migrator close", zap.Error(err))
		}
	}()
	return step(m)
}
