package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/config"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/log"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the queue and run-history schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		ctx := cmd.Context()

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}
		st := store.NewStore(db)
		defer st.Close()

		pool, err := pgxpool.New(ctx, queueDSN(cfg))
		if err != nil {
			return fmt.Errorf("creating queue pool: %w", err)
		}
		defer pool.Close()

		if err := migrations.MigrateStore(ctx, st, pool); err != nil {
			return err
		}

		zap.S().Info("Schemas migrated")
		return nil
	},
}
