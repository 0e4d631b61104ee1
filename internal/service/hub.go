package service

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/model"
	"github.com/benbeisheim/cheesychess-backend/internal/ws"
)

// Conn is the part of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type client struct {
	conn Conn
	lang language.Tag
	// websocket connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *client) send(msg ws.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteJSON(msg)
}

// Hub tracks the websocket connections watching each game. Several screens
// may watch the same same-device game.
type Hub struct {
	games map[string]map[string]*client // gameID -> connID -> client
	mu    sync.RWMutex
	// stateLocks holds a *sync.Mutex per game so state renders and their
	// writes happen in the same order.
	stateLocks sync.Map
}

func NewHub() *Hub {
	return &Hub{
		games: make(map[string]map[string]*client),
	}
}

// Register adds conn to gameID and returns the connection ID used to remove it.
func (h *Hub) Register(gameID string, conn Conn, lang language.Tag) string {
	connID := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.games[gameID] == nil {
		h.games[gameID] = make(map[string]*client)
	}
	h.games[gameID][connID] = &client{conn: conn, lang: lang}
	log.Debugw("connection registered", "gameId", gameID, "connId", connID)
	return connID
}

func (h *Hub) Unregister(gameID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[gameID]
	if !ok {
		return
	}
	if _, ok := conns[connID]; ok {
		delete(conns, connID)
		log.Debugw("connection unregistered", "gameId", gameID, "connId", connID)
	}
	if len(conns) == 0 {
		delete(h.games, gameID)
	}
}

// CloseGame closes and forgets every connection of gameID.
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	conns := h.games[gameID]
	delete(h.games, gameID)
	h.mu.Unlock()
	h.stateLocks.Delete(gameID)

	for _, c := range conns {
		c.conn.Close()
	}
}

func (h *Hub) Connections(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.games[gameID])
}

// snapshot copies the connection set so writes happen without the hub lock.
func (h *Hub) snapshot(gameID string) map[string]*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	active := make(map[string]*client, len(h.games[gameID]))
	for connID, c := range h.games[gameID] {
		active[connID] = c
	}
	return active
}

// Send writes msg to a single connection.
func (h *Hub) Send(gameID, connID string, msg ws.Message) error {
	h.mu.RLock()
	c, ok := h.games[gameID][connID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.send(msg)
}

// Broadcast writes msg to every connection of gameID. Connections that fail
// are dropped.
func (h *Hub) Broadcast(gameID string, msg ws.Message) {
	for connID, c := range h.snapshot(gameID) {
		if err := c.send(msg); err != nil {
			log.Warnw("dropping connection after failed write", "gameId", gameID, "connId", connID, "error", err)
			h.Unregister(gameID, connID)
		}
	}
}

// BroadcastState sends each connection the game state rendered in its own
// language. Concurrent calls for one game are serialised, so the last state a
// connection receives is the newest.
func (h *Hub) BroadcastState(game *model.Game) {
	l, _ := h.stateLocks.LoadOrStore(game.ID, &sync.Mutex{})
	stateMu := l.(*sync.Mutex)
	stateMu.Lock()
	defer stateMu.Unlock()

	rendered := make(map[language.Tag]ws.Message)
	for connID, c := range h.snapshot(game.ID) {
		msg, ok := rendered[c.lang]
		if !ok {
			var err error
			msg, err = ws.NewMessage(ws.MessageTypeGameState, game.GetStateIn(c.lang))
			if err != nil {
				log.Errorw("failed to marshal game state", "gameId", game.ID, "error", err)
				return
			}
			rendered[c.lang] = msg
		}
		if err := c.send(msg); err != nil {
			log.Warnw("dropping connection after failed write", "gameId", game.ID, "connId", connID, "error", err)
			h.Unregister(game.ID, connID)
		}
	}
}

// SendState sends the current state to one connection.
func (h *Hub) SendState(game *model.Game, connID string) error {
	h.mu.RLock()
	c, ok := h.games[game.ID][connID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	msg, err := ws.NewMessage(ws.MessageTypeGameState, game.GetStateIn(c.lang))
	if err != nil {
		return err
	}
	return c.send(msg)
}
