package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/middleware"
	"github.com/benbeisheim/cheesychess-backend/internal/model"
	"github.com/benbeisheim/cheesychess-backend/internal/service"
	"github.com/benbeisheim/cheesychess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	tag, ok := c.Locals(middleware.LocalLang).(language.Tag)
	if !ok {
		tag = language.English
	}

	connID, err := wsc.gameService.RegisterConnection(gameID, c, tag)
	if err != nil {
		log.Warnw("failed to register connection", "gameId", gameID, "error", err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, connID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugw("websocket closed", "gameId", gameID, "connId", connID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(gameID, connID, ws.ErrorMessage("malformed message"))
			continue
		}

		reply, err := wsc.handleMessage(gameID, tag, msg)
		if err != nil {
			log.Debugw("websocket message failed", "gameId", gameID, "type", msg.Type, "error", err)
			reply = ws.ErrorMessage(err.Error())
		}
		if reply.Type != "" {
			wsc.reply(gameID, connID, reply)
		}
	}
}

// handleMessage applies one inbound message. State changes reach every
// watcher through the hub; the returned message, if any, goes only to the
// sender.
func (wsc *WebSocketController) handleMessage(gameID string, tag language.Tag, msg ws.Message) (ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeSelect:
		var p ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return ws.Message{}, err
		}
		_, _, err := wsc.gameService.Select(gameID, model.Position{X: p.X, Y: p.Y})
		return ws.Message{}, err

	case ws.MessageTypeMove:
		var p ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return ws.Message{}, err
		}
		outcome, reason, err := wsc.gameService.Move(gameID, p.PieceID, p.To)
		if err != nil {
			return ws.Message{}, err
		}
		return ws.NewMessage(ws.MessageTypeMoveResult, ws.MoveResultPayload{Outcome: outcome, Reason: reason})

	case ws.MessageTypePromote:
		var p ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return ws.Message{}, err
		}
		outcome, err := wsc.gameService.Promote(gameID, p.PieceID, p.Piece)
		if err != nil {
			return ws.Message{}, err
		}
		return ws.NewMessage(ws.MessageTypeMoveResult, ws.MoveResultPayload{Outcome: outcome})

	case ws.MessageTypeAbandon:
		_, err := wsc.gameService.Abandon(gameID, tag)
		return ws.Message{}, err

	default:
		return ws.Message{}, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// reply writes through the hub, which serialises writes per connection.
func (wsc *WebSocketController) reply(gameID, connID string, msg ws.Message) {
	if err := wsc.gameService.SendTo(gameID, connID, msg); err != nil {
		log.Debugw("websocket write failed", "error", err)
	}
}
