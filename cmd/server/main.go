package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/atelier/console-backend/internal/api"
	"github.com/atelier/console-backend/internal/archive"
	"github.com/atelier/console-backend/internal/chatstate"
	"github.com/atelier/console-backend/internal/config"
	"github.com/atelier/console-backend/internal/gateway"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	store := chatstate.NewStore(cfg.Gateway.MainSessionKey)

	var recorder gateway.TurnRecorder
	if cfg.Archive.Enabled {
		if err := archive.RunMigrations(cfg.Archive.Database); err != nil {
			logrus.WithError(err).Fatal("failed to run archive migrations")
		}
		db, err := archive.Connect(cfg.Archive.Database)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to archive database")
		}
		defer db.Close()
		recorder = archive.NewRecorder(db)
		logrus.Info("conversation archive enabled")
	}

	client := gateway.New(cfg.Gateway.URL, store, recorder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go client.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "Atelier Console Backend",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	api.SetupRoutes(app, store, client)

	go func() {
		<-ctx.Done()
		app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.WithField("addr", addr).Info("console backend starting")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func getOrigins() string {
	origins := os.Getenv("ATELIER_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:1420,http://localhost:5173,http://localhost:3000"
	}
	return origins
}
