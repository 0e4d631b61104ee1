package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/middleware"
	"github.com/benbeisheim/cheesychess-backend/internal/model"
	"github.com/benbeisheim/cheesychess-backend/internal/service"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

type selectRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type moveRequest struct {
	PieceID model.PieceID  `json:"pieceId"`
	To      model.Position `json:"to"`
}

type promoteRequest struct {
	PieceID model.PieceID   `json:"pieceId"`
	Piece   model.PieceType `json:"piece"`
}

type moveResponse struct {
	Outcome model.MoveOutcome  `json:"outcome"`
	Reason  model.RejectReason `json:"reason,omitempty"`
	State   model.GameState    `json:"state"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"gameId":  gameID,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	return c.JSON(game(c).GetStateIn(lang(c)))
}

func (gc *GameController) Select(c *fiber.Ctx) error {
	var req selectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	pieceID, selected, err := gc.gameService.Select(game(c).ID, model.Position{X: req.X, Y: req.Y})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"pieceId":  pieceID,
		"selected": selected,
	})
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	pieceID, err := c.ParamsInt("pieceId")
	if err != nil {
		return badRequest(c, "pieceId must be an integer")
	}

	moves, err := gc.gameService.LegalMoves(game(c).ID, model.PieceID(pieceID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(moves)
}

func (gc *GameController) Move(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	g := game(c)
	outcome, reason, err := gc.gameService.Move(g.ID, req.PieceID, req.To)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(moveResponse{
		Outcome: outcome,
		Reason:  reason,
		State:   g.GetStateIn(lang(c)),
	})
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var req promoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	g := game(c)
	outcome, err := gc.gameService.Promote(g.ID, req.PieceID, req.Piece)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(moveResponse{
		Outcome: outcome,
		State:   g.GetStateIn(lang(c)),
	})
}

func (gc *GameController) Abandon(c *fiber.Ctx) error {
	state, err := gc.gameService.Abandon(game(c).ID, lang(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Achievements(c *fiber.Ctx) error {
	statuses, err := gc.gameService.Achievements()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(statuses)
}

func (gc *GameController) Stats(c *fiber.Ctx) error {
	stats, err := gc.gameService.Stats()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

func game(c *fiber.Ctx) *model.Game {
	return c.Locals(middleware.LocalGame).(*model.Game)
}

func lang(c *fiber.Ctx) language.Tag {
	if tag, ok := c.Locals(middleware.LocalLang).(language.Tag); ok {
		return tag
	}
	return language.English
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// writeError maps service and model errors onto HTTP statuses.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidFEN):
		status = fiber.StatusBadRequest
	case errors.Is(err, model.ErrContractViolation):
		status = fiber.StatusConflict
	default:
		log.Errorw("request failed", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
