package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentrecords/internal/config"
	"studentrecords/internal/db"
	"studentrecords/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	for _, dir := range []db.Direction{db.Up, db.Down, db.Status} {
		dir := dir
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: "Migrate " + string(dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(dir)
			},
		})
	}
	return cmd
}

func migrate(dir db.Direction) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Migrate(gormDB, cfg.Database.Driver, dir); err != nil {
		return err
	}
	logger.Named("migrate").Info("migration finished",
		zap.String("driver", cfg.Database.Driver),
		zap.String("direction", string(dir)))
	return nil
}
