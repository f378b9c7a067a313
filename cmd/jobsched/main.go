// Command jobsched runs the job scheduling optimizer as a standalone
// service: it polls for jobs awaiting a scheduling decision, runs each
// through the orchestrator, and exposes an HTTP health endpoint.
package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dirac-wms/jobsched/pkg/catalog"
	"github.com/dirac-wms/jobsched/pkg/collab"
	"github.com/dirac-wms/jobsched/pkg/config"
	"github.com/dirac-wms/jobsched/pkg/events"
	"github.com/dirac-wms/jobsched/pkg/queue"
	"github.com/dirac-wms/jobsched/pkg/scheduling"
	"github.com/dirac-wms/jobsched/pkg/taskqueue"
	"github.com/dirac-wms/jobsched/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	var configDir string
	var httpPort string

	root := &cobra.Command{
		Use:   "jobsched",
		Short: "Job scheduling optimizer service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configDir, httpPort)
		},
	}
	root.Flags().StringVar(&configDir, "config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	root.Flags().StringVar(&httpPort, "http-port", getEnv("HTTP_PORT", "8080"), "HTTP port for the health endpoint")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("jobsched exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir, httpPort string) error {
	slog.Info("starting", "version", version.Full())

	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	}

	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return err
	}

	client, err := catalog.NewClient(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to postgres and ran migrations")

	jobStore := catalog.NewPostgresJobStore(client)
	siteCatalog := catalog.NewPostgresSiteCatalog(client)
	eventManager := events.NewManager()

	forwarder := taskqueue.NewHTTPForwarder(getEnv("TASKQUEUE_URL", "http://localhost:9090"), nil)
	host := collab.NewDefaultOptimizerHost(jobStore, forwarder, cfg.Operations)
	fileCatalog := collab.NewHTTPFileCatalog(getEnv("FILECATALOG_URL", "http://localhost:9091"), nil)
	stager := collab.NewHTTPStagerClient(getEnv("STAGER_URL", "http://localhost:9092"), nil)

	orch := &scheduling.Orchestrator{
		Jobs:            jobStore,
		Operations:      collab.NewStaticOperations(cfg),
		Registry:        collab.NewStaticRegistry(cfg),
		Files:           fileCatalog,
		Sites:           siteCatalog,
		SEStatus:        siteCatalog,
		Stager:          stager,
		OptimizerParams: jobStore,
		Host:            host,
		Tiers:           siteCatalog,
		Events:          eventManager,
		Config:          cfg.Scheduling,
		NewRNG: func() scheduling.Shuffler {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}

	podID := getEnv("POD_ID", "jobsched-local")
	pool := queue.NewWorkerPool(podID, jobStore, orch, cfg.Queue)
	if err := pool.Start(ctx); err != nil {
		return err
	}
	defer pool.Stop()

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dbHealth, err := catalog.Health(reqCtx, client.DB())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbHealth,
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": dbHealth,
			"queue":    pool.Health(),
		})
	})

	srv := &http.Server{Addr: ":" + httpPort, Handler: router}
	go func() {
		slog.Info("HTTP server listening", "port", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
