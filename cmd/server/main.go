package main

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benbeisheim/cheesychess-backend/internal/config"
	"github.com/benbeisheim/cheesychess-backend/internal/controller"
	"github.com/benbeisheim/cheesychess-backend/internal/service"
	"github.com/benbeisheim/cheesychess-backend/internal/storage"
)

func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	store, err := openStorage(cfg.DataDir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	app := fiber.New(fiber.Config{
		AppName: "cheesychess",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Accept-Language",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: !strings.Contains(cfg.AllowOrigins, "*"),
	}))

	// Initialize services
	gameManager := service.NewGameManager()
	hub := service.NewHub()
	gameService := service.NewGameService(gameManager, hub, store)

	controller.SetupRoutes(app, gameService, cfg.Origins(), cfg.Language)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	log.Infow("listening", "addr", cfg.Addr, "dataDir", cfg.DataDir, "lang", cfg.Language.String())
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorw("server stopped", "error", err)
	}
}

// openStorage keeps achievements in memory when no data directory is configured.
func openStorage(dataDir string) (*storage.Storage, error) {
	if dataDir == "" {
		log.Warn("no data directory configured; achievements will not survive a restart")
		return storage.OpenInMemory()
	}
	dbDir, err := storage.DatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	return storage.Open(dbDir)
}
