package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/config"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/jobs"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/log"
)

var (
	enqueueAudienceID   string
	enqueueAudienceName string
	enqueueSQL          string
	enqueueAccessToken  string
	enqueueContainer    string
	enqueueUserEmail    string
	enqueueReplace      bool
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue an extraction job for one audience",
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

		pool, err := pgxpool.New(ctx, queueDSN(cfg))
		if err != nil {
			return fmt.Errorf("creating queue pool: %w", err)
		}
		defer pool.Close()

		client, err := jobs.NewInsertOnlyClient(pool)
		if err != nil {
			return fmt.Errorf("creating queue client: %w", err)
		}

		jobID, err := client.InsertExtractJob(ctx, jobs.ExtractArgs{
			AudienceID:    enqueueAudienceID,
			AudienceName:  enqueueAudienceName,
			SQL:           enqueueSQL,
			AccessToken:   enqueueAccessToken,
			IsReplace:     enqueueReplace,
			ContainerName: enqueueContainer,
			UserEmail:     enqueueUserEmail,
		})
		if err != nil {
			return err
		}

		zap.S().Infow("extraction job queued", "job_id", jobID, "audience_id", enqueueAudienceID, "replace", enqueueReplace)
		return nil
	},
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueAudienceID, "audience-id", "", "Custom audience id")
	enqueueCmd.Flags().StringVar(&enqueueAudienceName, "audience-name", "", "Custom audience display name")
	enqueueCmd.Flags().StringVar(&enqueueSQL, "sql", "", "Warehouse query returning the identity columns")
	enqueueCmd.Flags().StringVar(&enqueueAccessToken, "access-token", "", "Facebook access token")
	enqueueCmd.Flags().StringVar(&enqueueContainer, "container", "", "Blob container for partition files (default from config)")
	enqueueCmd.Flags().StringVar(&enqueueUserEmail, "user-email", "", "Recipient for result notifications")
	enqueueCmd.Flags().BoolVar(&enqueueReplace, "replace", false, "Replace the audience instead of adding to it")

	_ = enqueueCmd.MarkFlagRequired("audience-id")
	_ = enqueueCmd.MarkFlagRequired("audience-name")
	_ = enqueueCmd.MarkFlagRequired("sql")
	_ = enqueueCmd.MarkFlagRequired("access-token")
	_ = enqueueCmd.MarkFlagRequired("user-email")
}
