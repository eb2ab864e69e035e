package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"picklist/internal/config"
	"picklist/internal/http/handlers"
	applog "picklist/internal/log"
	"picklist/internal/repos"
	"picklist/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server error"})
		},
	})
	// Scans come in as multipart uploads; bound them.
	app.Server().MaxRequestBodySize = 8 << 20 // 8 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, &services.TesseractCLI{Cmd: cfg.OCRCmd})

	api := app.Group("/api/v1")

	// Login throttled harder than the rest of the API.
	api.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, retry later"})
		},
	}), deps.AuthHandler.Login)

	authed := api.Group("", handlers.RequireUser(deps.Auth))
	authed.Post("/import", deps.ImportHandler.Import)
	authed.Post("/lists", deps.ListHandler.Create)
	authed.Get("/lists", deps.ListHandler.List)
	authed.Get("/lists/completed", deps.ListHandler.Completed)
	authed.Get("/lists/active", deps.ListHandler.Active)
	authed.Get("/lists/:id", deps.ListHandler.Get)
	authed.Post("/lists/:id/start", deps.ListHandler.Start)
	authed.Post("/lists/:id/complete", deps.ListHandler.Complete)
	authed.Patch("/lists/:id/items/:pos", deps.ListHandler.ToggleItem)
	authed.Put("/lists/:id/seconds", deps.ListHandler.Seconds)
	authed.Get("/stats", deps.StatsHandler.Get)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
