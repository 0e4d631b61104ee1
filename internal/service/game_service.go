package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/achievement"
	"github.com/benbeisheim/cheesychess-backend/internal/model"
	"github.com/benbeisheim/cheesychess-backend/internal/storage"
	"github.com/benbeisheim/cheesychess-backend/internal/ws"
)

// FinishedGameTTL is how long a finished game stays readable before it is
// dropped along with its websocket connections.
const FinishedGameTTL = 10 * time.Minute

type GameService struct {
	gameManager *GameManager
	hub         *Hub
	store       *storage.Storage
	now         func() time.Time
	finishedTTL time.Duration
}

func NewGameService(gameManager *GameManager, hub *Hub, store *storage.Storage) *GameService {
	return &GameService{
		gameManager: gameManager,
		hub:         hub,
		store:       store,
		now:         time.Now,
		finishedTTL: FinishedGameTTL,
	}
}

// AchievementStatus is one catalog entry with its unlock, if any.
type AchievementStatus struct {
	achievement.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	GameID     string     `json:"gameId,omitempty"`
}

// CreateGame starts a game from the standard position, or from fen when it is
// not empty, and returns its ID.
func (gs *GameService) CreateGame(fen string) (string, error) {
	gameID := uuid.New().String()

	var (
		game *model.Game
		err  error
	)
	if fen == "" {
		game, err = gs.gameManager.CreateGame(gameID)
	} else {
		game, err = gs.gameManager.CreateGameFromFEN(gameID, fen)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	obs := &gameObserver{gs: gs}
	// Openings and speed records only mean something from the initial position.
	if fen == "" {
		obs.detector = achievement.NewDetector()
	}
	game.AddListener(obs)

	if game.Phase() == model.PhaseGameOver {
		gs.finish(game.ID, game.GetState())
	}
	log.Infow("game created", "gameId", gameID, "fromFen", fen != "")
	return gameID, nil
}

func (gs *GameService) GetGame(gameID string) (*model.Game, error) {
	return gs.gameManager.GetGame(gameID)
}

func (gs *GameService) GetGameState(gameID string, lang language.Tag) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetStateIn(lang), nil
}

func (gs *GameService) Select(gameID string, pos model.Position) (model.PieceID, bool, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.NoPiece, false, err
	}

	id, ok := game.AttemptSelect(pos)
	gs.hub.BroadcastState(game)
	return id, ok, nil
}

func (gs *GameService) LegalMoves(gameID string, id model.PieceID) ([]model.Position, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalDestinations(id), nil
}

// Move attempts a move. A rejected move is not an error; the reason explains it.
func (gs *GameService) Move(gameID string, id model.PieceID, to model.Position) (model.MoveOutcome, model.RejectReason, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.OutcomeRejected, model.RejectNone, err
	}

	outcome := game.AttemptMove(id, to)
	reason := model.RejectNone
	if outcome == model.OutcomeRejected {
		reason = game.LastRejection()
		log.Debugw("move rejected", "gameId", gameID, "pieceId", id, "to", to.String(), "reason", reason)
	}
	gs.hub.BroadcastState(game)
	return outcome, reason, nil
}

func (gs *GameService) Promote(gameID string, id model.PieceID, kind model.PieceType) (model.MoveOutcome, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.OutcomeRejected, err
	}

	outcome, err := game.ResolvePromotion(id, kind)
	if err != nil {
		return outcome, err
	}
	gs.hub.BroadcastState(game)
	return outcome, nil
}

// Abandon ends the game without a result and returns the final state.
func (gs *GameService) Abandon(gameID string, lang language.Tag) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}

	if game.Abandon() {
		log.Infow("game abandoned", "gameId", gameID, "moveCount", game.MoveCount())
		gs.hub.BroadcastState(game)
		gs.finish(gameID, game.GetState())
	}
	return game.GetStateIn(lang), nil
}

// Achievements lists the whole catalog with what has been unlocked so far.
func (gs *GameService) Achievements() ([]AchievementStatus, error) {
	unlocks, err := gs.store.Achievements()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]storage.Unlock, len(unlocks))
	for _, u := range unlocks {
		byID[u.ID] = u
	}

	statuses := make([]AchievementStatus, 0, len(achievement.Catalog))
	for _, a := range achievement.Catalog {
		status := AchievementStatus{Achievement: a}
		if u, ok := byID[string(a.ID)]; ok {
			at := u.UnlockedAt
			status.Unlocked = true
			status.UnlockedAt = &at
			status.GameID = u.GameID
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (gs *GameService) Stats() (*storage.GameStats, error) {
	return gs.store.LoadStats()
}

// RegisterConnection attaches a websocket to a game and sends it the current state.
func (gs *GameService) RegisterConnection(gameID string, conn Conn, lang language.Tag) (string, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}

	connID := gs.hub.Register(gameID, conn, lang)
	if err := gs.hub.SendState(game, connID); err != nil {
		gs.hub.Unregister(gameID, connID)
		return "", fmt.Errorf("failed to send initial state: %w", err)
	}
	return connID, nil
}

func (gs *GameService) UnregisterConnection(gameID, connID string) {
	gs.hub.Unregister(gameID, connID)
}

func (gs *GameService) SendTo(gameID, connID string, msg ws.Message) error {
	return gs.hub.Send(gameID, connID, msg)
}

// finish records a game that just ended and schedules its removal.
func (gs *GameService) finish(gameID string, state model.GameState) {
	if result, ok := storage.ResultOf(gameID, state); ok {
		if err := gs.store.RecordGame(result); err != nil {
			log.Errorw("failed to record game", "gameId", gameID, "error", err)
		}
	}
	time.AfterFunc(gs.finishedTTL, func() { gs.evict(gameID) })
}

// evict forgets a game and closes everything still watching it.
func (gs *GameService) evict(gameID string) {
	gs.gameManager.RemoveGame(gameID)
	gs.hub.CloseGame(gameID)
	log.Debugw("game evicted", "gameId", gameID)
}

func (gs *GameService) unlock(gameID string, id achievement.ID) {
	unlocked, err := gs.store.UnlockAchievement(string(id), gameID, gs.now())
	if err != nil {
		log.Errorw("failed to store achievement", "gameId", gameID, "achievement", id, "error", err)
		return
	}
	if !unlocked {
		return
	}

	a, _ := achievement.Lookup(id)
	log.Infow("achievement unlocked", "gameId", gameID, "achievement", a.Name)
	msg, err := ws.NewMessage(ws.MessageTypeAchievement, a)
	if err != nil {
		log.Errorw("failed to marshal achievement", "error", err)
		return
	}
	gs.hub.Broadcast(gameID, msg)
}

// gameObserver is the move listener attached to every game the service creates.
type gameObserver struct {
	gs       *GameService
	mu       sync.Mutex
	detector *achievement.Detector
}

func (o *gameObserver) MoveCommitted(gameID string, record model.MoveRecord, state model.GameState) {
	log.Debugw("move committed", "gameId", gameID, "ply", record.Ply, "move", record.String())

	if msg, err := ws.NewMessage(ws.MessageTypeMoveRecord, record); err == nil {
		o.gs.hub.Broadcast(gameID, msg)
	}

	if o.detector != nil {
		o.mu.Lock()
		earned := o.detector.Observe(record, state)
		o.mu.Unlock()
		for _, id := range earned {
			o.gs.unlock(gameID, id)
		}
	}

	if state.Phase == model.PhaseGameOver {
		log.Infow("game over", "gameId", gameID, "status", state.Status, "winner", state.Winner, "moveCount", state.MoveCount)
		o.gs.finish(gameID, state)
	}
}
