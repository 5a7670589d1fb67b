package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/cctv-weather/internal/api/http"
	"github.com/i474232898/cctv-weather/internal/config"
	"github.com/i474232898/cctv-weather/internal/render"
	"github.com/i474232898/cctv-weather/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Process every camera once, then serve the result over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		p := newPipeline(cfg)
		report, err := p.service.Run(context.Background())
		if err != nil {
			return err
		}

		memStore := store.NewMemoryStore(1)
		memStore.SaveReport(report)

		app := fiber.New(fiber.Config{
			AppName:               "cctv-weather",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				// Centralized error response
				code := fiber.StatusInternalServerError
				if e, ok := err.(*fiber.Error); ok {
					code = e.Code
				}
				return c.Status(code).JSON(fiber.Map{
					"error":   true,
					"message": err.Error(),
				})
			},
		})

		app.Use(logger.New())
		app.Use(recover.New())

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status":  "ok",
				"service": "cctv-weather",
				"runId":   report.RunID,
			})
		})

		httpapi.RegisterRoutes(app, httpapi.Deps{
			Store:    memStore,
			Renderer: render.NewRenderer(p.icons, "/icons"),
			IconDir:  cfg.IconDir,
			Registry: p.metrics.Registry,
		})

		go func() {
			log.Printf("INFO: serving run %s on :%s", report.RunID, cfg.Port)
			if err := app.Listen(":" + cfg.Port); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()

		// Wait for termination signal
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
