package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/middleware"
	"github.com/benbeisheim/cheesychess-backend/internal/service"
)

// SetupRoutes mounts the REST and websocket routes on app. lang is the status
// text language for requests that do not ask for one.
func SetupRoutes(app *fiber.App, gameService *service.GameService, origins []string, lang language.Tag) {
	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService)
	requireGame := middleware.RequireGame(gameService)

	app.Get("/ws/game/:gameId",
		requireGame,
		middleware.Language(lang),
		middleware.WebSocketUpgrade(),
		websocket.New(wsController.HandleConnection, websocket.Config{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Origins:         origins,
		}),
	)

	api := app.Group("/api", middleware.Language(lang))
	api.Get("/achievements", gameController.Achievements)
	api.Get("/stats", gameController.Stats)

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Get("/:gameId", requireGame, gameController.GetGameState)
	gameRoutes.Post("/:gameId/select", requireGame, gameController.Select)
	gameRoutes.Get("/:gameId/legal/:pieceId", requireGame, gameController.LegalMoves)
	gameRoutes.Post("/:gameId/move", requireGame, gameController.Move)
	gameRoutes.Post("/:gameId/promote", requireGame, gameController.Promote)
	gameRoutes.Post("/:gameId/abandon", requireGame, gameController.Abandon)
}
