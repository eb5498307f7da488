package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog-bootstrapper/core/loader"
	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/core/middleware/auth"
	"catalog-bootstrapper/core/middleware/rayid"
	"catalog-bootstrapper/core/storage"
	"catalog-bootstrapper/feature/export"
	"catalog-bootstrapper/feature/progress"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "catalog-bootstrapper/docs/swagger"
)

// @title Catalog Bootstrapper API
// @version 1.0
// @description API for running catalog bootstraps and exporting catalog specs.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bootstrapper server",
	Long:  `Starts the HTTP server that runs bootstraps in the background and serves their progress.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration and logger
		cfg, logg, err := setup()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()

		// 2. Run journal (optional)
		journal := openJournal(cfg.Database, logg)

		// 3. Storage (optional)
		var docs *storage.Documents
		if d, err := openDocuments(cfg.Storage); err != nil {
			logg.Warn("Storage unavailable, spec keys and reports disabled", zap.Error(err))
		} else if err := d.EnsureBucket(context.Background()); err != nil {
			logg.Warn("Storage bucket unavailable, spec keys and reports disabled", zap.Error(err))
		} else {
			docs = d
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 4. Features
		runOpts := progress.Options{
			Bootstrap:    bootstrapOptions(cfg, logg),
			Logger:       logg,
			MaxRuns:      cfg.Server.RunLimit(),
			ReportPrefix: cfg.Server.ReportPrefix,
		}
		var exportDocs export.Documents
		if journal != nil {
			runOpts.Journal = journal
		}
		if docs != nil {
			runOpts.Documents = docs
			exportDocs = docs
		}
		runs := progress.NewService(runOpts)

		mgr := loader.NewManager()
		mgr.Register(progress.NewFeature(runs, logg))
		mgr.Register(export.NewFeature(export.NewService(bootstrapOptions(cfg, logg), exportDocs, logg)))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Serve
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful shutdown: stop accepting requests, then cancel running bootstraps
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		runs.Close()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
