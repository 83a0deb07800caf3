package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/blob"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/config"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/jobs"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/notify"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/pipeline"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/platform"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/warehouse"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/log"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/metrics"
)

const gracefulShutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the audience sync worker",
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

		zap.S().Info("Starting audience sync worker")
		defer zap.S().Info("Audience sync worker stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

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

		warehousePool, err := pgxpool.New(ctx, cfg.Warehouse.URL)
		if err != nil {
			return fmt.Errorf("creating warehouse pool: %w", err)
		}
		defer warehousePool.Close()

		blobs, err := blob.NewMinioStore(
			blob.WithEndpoint(cfg.Blob.Endpoint),
			blob.WithAccessKey(cfg.Blob.AccessKey),
			blob.WithSecretKey(cfg.Blob.SecretKey),
			blob.WithSSL(cfg.Blob.UseSSL),
		)
		if err != nil {
			return fmt.Errorf("creating blob store: %w", err)
		}

		statusBaseURL := cfg.Facebook.StatusBaseURL
		if statusBaseURL == "" {
			statusBaseURL = cfg.Facebook.GraphBaseURL
		}
		fb := platform.NewClient(cfg.Facebook.GraphBaseURL, statusBaseURL, &http.Client{Timeout: cfg.Facebook.Timeout})
		notifier := notify.NewMailNotifier(cfg.Mail.BaseURL, &http.Client{Timeout: 30 * time.Second})

		enq := jobs.NewEnqueuer(cfg.Service.StatusCheckDelay)
		extractor := pipeline.NewExtractor(warehouse.NewExecutor(warehousePool), blobs, enq, cfg.Service.FileChunkSize, cfg.Service.DefaultContainer)
		uploader := pipeline.NewUploader(blobs, fb, notifier, enq, st.Run(), cfg.Facebook.PopulateBatchSize, cfg.Facebook.ReplaceBatchSize)
		verifier := pipeline.NewVerifier(fb, notifier, st.Run(), cfg.Facebook.ReadyStatusCode, cfg.Service.AlwaysNotify)

		client, err := jobs.NewClient(pool, extractor, uploader, verifier)
		if err != nil {
			return fmt.Errorf("creating queue client: %w", err)
		}
		if err := client.Start(ctx); err != nil {
			return fmt.Errorf("starting queue client: %w", err)
		}

		metrics.RegisterMetrics()
		metricsServer := newMetricsServer(cfg.Service.MetricsAddress)
		go func() {
			defer cancel()
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.S().Errorw("metrics server failed", "error", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer shutdownCancel()
		if err := client.Stop(shutdownCtx); err != nil {
			zap.S().Errorw("failed to stop queue client cleanly", "error", err)
		}
		_ = metricsServer.Shutdown(shutdownCtx)

		return nil
	},
}

func newMetricsServer(address string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{Addr: address, Handler: mux}
}

func queueDSN(cfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Hostname,
		cfg.Database.Port,
		cfg.Database.Name,
	)
}
