package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/delivery/consumer"
	delivery "golang-news-signal/internal/pipeline/delivery/http"
	"golang-news-signal/internal/pipeline/delivery/scheduler"
	_ "golang-news-signal/internal/pipeline/docs"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the API server and the pipeline scheduler",
	Run:   runServe,
}

var (
	runSectors string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Runs the pipeline once and exits",
		Run:   runOnce,
	}
)

var (
	signalsLimit     int
	signalsSector    string
	signalsMinImpact int
	signalsTicker    string

	signalsCmd = &cobra.Command{
		Use:   "signals",
		Short: "Lists the most recent signals",
		Run:   listSignals,
	}
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates or updates the store schema",
	Run:   runMigrate,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Prints signals as they are persisted (requires redis)",
	Run:   watchSignals,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()
	appLogger := a.logger

	appLogger.Info("Starting Pipeline Service", logger.Field("name", a.cfg.App.Name))

	sched, err := scheduler.NewScheduler(a.cfg.Pipeline, a.pipeline, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}
	sched.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	delivery.NewHealthHandler(a.pipeline, a.runs, a.cfg.Pipeline.DefaultSectors, appLogger).RegisterRoutes(e)

	apiV1 := e.Group("/api/v1")
	signalHandler := delivery.NewSignalHandler(a.signals, appLogger)
	signalHandler.RegisterRoutes(apiV1.Group("/signals"))
	signalHandler.RegisterStatsRoutes(apiV1)

	pipelineHandler := delivery.NewPipelineHandler(a.pipeline, a.runs, appLogger)
	pipelineHandler.RegisterRoutes(apiV1.Group("/pipeline"))

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", a.cfg.API.Host, a.cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		appLogger.Warn("Scheduled run did not finish before shutdown")
	}

	appLogger.Info("Server exiting")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if a.cfg.Pipeline.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Pipeline.RunTimeout)
		defer cancel()
	}

	result, err := a.pipeline.Run(ctx, dto.RunRequest{
		Trigger: common.TriggerManual,
		Sectors: utils.SplitCSV(runSectors),
	})
	if err != nil {
		a.logger.Error("Pipeline run failed", logger.ErrorField(err))
		a.Close()
		os.Exit(1)
	}
	fmt.Println(renderRunResult(result))
}

func listSignals(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	signals, err := a.signals.GetSignals(ctx, dto.SignalFilter{
		Limit:     signalsLimit,
		Sector:    signalsSector,
		MinImpact: signalsMinImpact,
		Tickers:   utils.SplitCSV(signalsTicker),
		HideTest:  true,
	})
	if err != nil {
		a.logger.Error("Failed to list signals", logger.ErrorField(err))
		a.Close()
		os.Exit(1)
	}
	if len(signals) == 0 {
		fmt.Println("No signals found.")
		return
	}
	fmt.Println(renderSignals(signals))
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(db.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Applied migrations successfully.")
}

func watchSignals(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if a.redis == nil {
		a.logger.Error("Redis is not enabled or not reachable, nothing to watch")
		return
	}

	c := consumer.NewSignalConsumer(a.redis.Client, a.cfg.Redis.Stream, a.logger)
	c.Start(ctx, func(e dto.SignalEvent) {
		fmt.Printf("%s  %-16s %-14s impact=%-3d conf=%-3d sent=%s  %s  %s\n",
			e.PublishedAt.Format("2006-01-02 15:04"), e.Sector, e.Label, e.Impact, e.Confidence,
			sentimentMark(e.Sentiment), strings.Join(e.Tickers, ","), e.ID)
	})

	<-ctx.Done()
	c.Stop()
}

// @title News Signal Pipeline API
// @version 1.0
// @description Read and curate analyzed news signals and trigger pipeline runs.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")

	runCmd.Flags().StringVar(&runSectors, "sectors", "", "Comma separated sectors (default: configured sectors)")

	signalsCmd.Flags().IntVarP(&signalsLimit, "limit", "n", 20, "Max signals to show")
	signalsCmd.Flags().StringVar(&signalsSector, "sector", "", "Only this sector")
	signalsCmd.Flags().IntVar(&signalsMinImpact, "min-impact", 0, "Minimum impact")
	signalsCmd.Flags().StringVar(&signalsTicker, "ticker", "", "Comma separated tickers, any of")

	rootCmd.AddCommand(serveCmd, runCmd, signalsCmd, watchCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
