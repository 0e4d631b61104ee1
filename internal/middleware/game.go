package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/locale"
	"github.com/benbeisheim/cheesychess-backend/internal/service"
)

// Locals keys set by this package.
const (
	LocalGame = "game"
	LocalLang = "lang"
)

// RequireGame resolves the :gameId route parameter and stores the game in
// Locals. Unknown games end the request with 404.
func RequireGame(gameService *service.GameService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gameID := c.Params("gameId")
		if gameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "game ID is required",
			})
		}

		game, err := gameService.GetGame(gameID)
		if errors.Is(err, service.ErrGameNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if err != nil {
			return err
		}

		c.Locals(LocalGame, game)
		return c.Next()
	}
}

// Language picks the status text language from a ?lang= query parameter,
// then Accept-Language, then fallback.
func Language(fallback language.Tag) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tag := fallback
		if q := c.Query("lang"); q != "" {
			tag = locale.Parse(q)
		} else if h := c.Get(fiber.HeaderAcceptLanguage); h != "" {
			tag = locale.FromAcceptLanguage(h)
		}
		c.Locals(LocalLang, tag)
		return c.Next()
	}
}
