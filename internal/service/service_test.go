package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/achievement"
	"github.com/benbeisheim/cheesychess-backend/internal/model"
	"github.com/benbeisheim/cheesychess-backend/internal/storage"
	"github.com/benbeisheim/cheesychess-backend/internal/ws"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

func (c *fakeConn) types() []ws.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()

	types := make([]ws.MessageType, 0, len(c.messages))
	for _, m := range c.messages {
		types = append(types, m.Type)
	}
	return types
}

func (c *fakeConn) last(t *testing.T, typ ws.MessageType, v any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Type == typ {
			if err := json.Unmarshal(c.messages[i].Payload, v); err != nil {
				t.Fatal(err)
			}
			return
		}
	}
	t.Fatalf("no %s message received", typ)
}

func newTestService(t *testing.T) *GameService {
	t.Helper()
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	gs := NewGameService(NewGameManager(), NewHub(), store)
	gs.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return gs
}

func playMoves(t *testing.T, gs *GameService, gameID string, moves ...string) model.MoveOutcome {
	t.Helper()
	var outcome model.MoveOutcome
	for _, m := range moves {
		game, err := gs.GetGame(gameID)
		if err != nil {
			t.Fatal(err)
		}
		from, _ := model.ParseSquare(m[:2])
		to, _ := model.ParseSquare(m[2:4])
		id, ok := game.Board().PieceAt(from)
		if !ok {
			t.Fatalf("%s: no piece on %s", m, from)
		}
		var reason model.RejectReason
		outcome, reason, err = gs.Move(gameID, id, to)
		if err != nil {
			t.Fatal(err)
		}
		if outcome == model.OutcomeRejected {
			t.Fatalf("%s rejected: %s", m, reason)
		}
	}
	return outcome
}

func TestCreateGame(t *testing.T) {
	gs := newTestService(t)

	id, err := gs.CreateGame("")
	if err != nil {
		t.Fatal(err)
	}
	state, err := gs.GetGameState(id, language.English)
	if err != nil {
		t.Fatal(err)
	}
	if state.ID != id || state.ToMove != model.White || len(state.Pieces) != 32 {
		t.Errorf("unexpected initial state: id=%s toMove=%s pieces=%d", state.ID, state.ToMove, len(state.Pieces))
	}

	if _, err := gs.CreateGame("not a fen"); !errors.Is(err, model.ErrInvalidFEN) {
		t.Errorf("CreateGame(bad fen) error = %v, want ErrInvalidFEN", err)
	}
	if _, err := gs.GetGameState("missing", language.English); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("GetGameState(missing) error = %v, want ErrGameNotFound", err)
	}
}

func TestGameManager(t *testing.T) {
	gm := NewGameManager()
	if _, err := gm.CreateGame("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := gm.CreateGame("a"); !errors.Is(err, ErrGameExists) {
		t.Errorf("duplicate CreateGame error = %v", err)
	}
	if _, err := gm.CreateGameFromFEN("a", "4k3/8/8/8/8/8/8/4K3 w - -"); !errors.Is(err, ErrGameExists) {
		t.Errorf("duplicate CreateGameFromFEN error = %v", err)
	}
	if gm.Count() != 1 {
		t.Errorf("Count() = %d", gm.Count())
	}
	gm.RemoveGame("a")
	if _, err := gm.GetGame("a"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("GetGame after remove error = %v", err)
	}
}

func TestMoveBroadcasts(t *testing.T) {
	gs := newTestService(t)
	id, _ := gs.CreateGame("")
	conn := &fakeConn{}
	if _, err := gs.RegisterConnection(id, conn, language.English); err != nil {
		t.Fatal(err)
	}

	playMoves(t, gs, id, "e2e4")

	want := []ws.MessageType{ws.MessageTypeGameState, ws.MessageTypeMoveRecord, ws.MessageTypeGameState}
	if diff := cmp.Diff(want, conn.types()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	var record model.MoveRecord
	conn.last(t, ws.MessageTypeMoveRecord, &record)
	if record.String() != "e2e4" || record.Ply != 1 {
		t.Errorf("move record = %+v", record)
	}
}

func TestRejectedMove(t *testing.T) {
	gs := newTestService(t)
	id, _ := gs.CreateGame("")
	game, _ := gs.GetGame(id)
	pawn, _ := game.Board().PieceAt(model.Position{X: 4, Y: 6})

	outcome, reason, err := gs.Move(id, pawn, model.Position{X: 4, Y: 3})
	if err != nil {
		t.Fatal(err)
	}
	if outcome != model.OutcomeRejected || reason != model.RejectIllegalPattern {
		t.Errorf("Move = %s, %s", outcome, reason)
	}
	if _, _, err := gs.Move("missing", pawn, model.Position{}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Move on missing game error = %v", err)
	}
}

func TestSelectAndLegalMoves(t *testing.T) {
	gs := newTestService(t)
	id, _ := gs.CreateGame("")

	pieceID, ok, err := gs.Select(id, model.Position{X: 6, Y: 7})
	if err != nil || !ok {
		t.Fatalf("Select(g1) = %v, %v", ok, err)
	}
	got, err := gs.LegalMoves(id, pieceID)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Position{{X: 5, Y: 5}, {X: 7, Y: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LegalMoves mismatch (-want +got):\n%s", diff)
	}

	if _, ok, _ := gs.Select(id, model.Position{X: 4, Y: 4}); ok {
		t.Error("selecting an empty square should fail")
	}
}

func TestFoolsMateRecordsResultAndAchievements(t *testing.T) {
	gs := newTestService(t)
	id, _ := gs.CreateGame("")
	conn := &fakeConn{}
	gs.RegisterConnection(id, conn, language.German)

	if outcome := playMoves(t, gs, id, "f2f3", "e7e5", "g2g4", "d8h4"); outcome != model.OutcomeCheckmateBlackWins {
		t.Fatalf("outcome = %s", outcome)
	}

	stats, err := gs.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 1 || stats.BlackWins != 1 || stats.ShortestMate != 4 {
		t.Errorf("stats = %+v", stats)
	}

	statuses, err := gs.Achievements()
	if err != nil {
		t.Fatal(err)
	}
	unlocked := map[achievement.ID]bool{}
	for _, s := range statuses {
		if s.Unlocked {
			unlocked[s.ID] = true
		}
	}
	want := map[achievement.ID]bool{achievement.FirstCheckmate: true, achievement.SpeedyVictory: true}
	if diff := cmp.Diff(want, unlocked); diff != "" {
		t.Errorf("unlocked mismatch (-want +got):\n%s", diff)
	}

	var a achievement.Achievement
	conn.last(t, ws.MessageTypeAchievement, &a)
	if a.ID != achievement.SpeedyVictory {
		t.Errorf("last achievement message = %+v", a)
	}
	var state model.GameState
	conn.last(t, ws.MessageTypeGameState, &state)
	if state.StatusText != "Schwarz gewinnt durch Schachmatt!" {
		t.Errorf("status text = %q", state.StatusText)
	}

	// A second mate unlocks nothing new.
	id2, _ := gs.CreateGame("")
	conn2 := &fakeConn{}
	gs.RegisterConnection(id2, conn2, language.English)
	playMoves(t, gs, id2, "f2f3", "e7e5", "g2g4", "d8h4")
	for _, typ := range conn2.types() {
		if typ == ws.MessageTypeAchievement {
			t.Error("an already unlocked achievement was announced again")
		}
	}
}

func TestFENGamesSkipAchievements(t *testing.T) {
	gs := newTestService(t)
	id, err := gs.CreateGame("4k3/P7/8/8/8/8/8/4K3 w - -")
	if err != nil {
		t.Fatal(err)
	}
	game, _ := gs.GetGame(id)
	pawn, _ := game.Board().PieceAt(model.Position{X: 0, Y: 1})

	if outcome := playMoves(t, gs, id, "a7a8"); outcome != model.OutcomePromotionPending {
		t.Fatalf("outcome = %s", outcome)
	}
	if _, err := gs.Promote(id, pawn, model.King); !errors.Is(err, model.ErrContractViolation) {
		t.Errorf("Promote(king) error = %v", err)
	}
	if outcome, err := gs.Promote(id, pawn, model.Queen); err != nil || outcome != model.OutcomeCommitted {
		t.Fatalf("Promote(queen) = %s, %v", outcome, err)
	}

	statuses, _ := gs.Achievements()
	for _, s := range statuses {
		if s.Unlocked {
			t.Errorf("%s unlocked from a FEN game", s.ID)
		}
	}
}

func TestFinishedFENGameIsRecorded(t *testing.T) {
	gs := newTestService(t)
	if _, err := gs.CreateGame("7k/5Q2/6K1/8/8/8/8/8 b - -"); err != nil {
		t.Fatal(err)
	}
	stats, _ := gs.Stats()
	if stats.Stalemates != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAbandon(t *testing.T) {
	gs := newTestService(t)
	id, _ := gs.CreateGame("")
	playMoves(t, gs, id, "e2e4")

	state, err := gs.Abandon(id, language.French)
	if err != nil {
		t.Fatal(err)
	}
	if state.Status != model.StatusAbandoned || state.StatusText != "Partie abandonnée." {
		t.Errorf("state = %s %q", state.Status, state.StatusText)
	}
	// Abandoning twice records one game.
	gs.Abandon(id, language.English)
	stats, _ := gs.Stats()
	if stats.Abandoned != 1 || stats.GamesPlayed != 1 || stats.TotalPlies != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFinishedGamesAreEvicted(t *testing.T) {
	gs := newTestService(t)
	gs.finishedTTL = 10 * time.Millisecond

	finished, _ := gs.CreateGame("")
	ongoing, _ := gs.CreateGame("")
	conn := &fakeConn{}
	if _, err := gs.RegisterConnection(finished, conn, language.English); err != nil {
		t.Fatal(err)
	}
	playMoves(t, gs, finished, "f2f3", "e7e5", "g2g4", "d8h4")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := gs.GetGame(finished); errors.Is(err, ErrGameNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("finished game was never evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed || gs.hub.Connections(finished) != 0 {
		t.Error("eviction left the watcher connected")
	}
	if _, err := gs.GetGame(ongoing); err != nil {
		t.Errorf("ongoing game evicted: %v", err)
	}
	stats, _ := gs.Stats()
	if stats.BlackWins != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestConcurrentMovesEndOnNewestState moves one game from several goroutines;
// the last state a watcher receives must be the game's final state.
func TestConcurrentMovesEndOnNewestState(t *testing.T) {
	gs := newTestService(t)
	id, _ := gs.CreateGame("")
	game, _ := gs.GetGame(id)
	conn := &fakeConn{}
	if _, err := gs.RegisterConnection(id, conn, language.English); err != nil {
		t.Fatal(err)
	}

	// Knights hop back and forth; every worker tries the same shuffle.
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	var wg sync.WaitGroup
	for w := 0; w < 6; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				m := shuffle[i%len(shuffle)]
				from, _ := model.ParseSquare(m[:2])
				to, _ := model.ParseSquare(m[2:])
				if pieceID, ok := game.Board().PieceAt(from); ok {
					gs.Move(id, pieceID, to)
				}
			}
		}()
	}
	wg.Wait()

	var state model.GameState
	conn.last(t, ws.MessageTypeGameState, &state)
	if state.MoveCount != game.MoveCount() {
		t.Errorf("last broadcast move count = %d, game is at %d", state.MoveCount, game.MoveCount())
	}

	var plies []int
	conn.mu.Lock()
	for _, m := range conn.messages {
		if m.Type == ws.MessageTypeMoveRecord {
			var rec model.MoveRecord
			json.Unmarshal(m.Payload, &rec)
			plies = append(plies, rec.Ply)
		}
	}
	conn.mu.Unlock()
	for i, ply := range plies {
		if ply != i+1 {
			t.Fatalf("move records out of order: %v", plies)
		}
	}
}

func TestHubDropsFailedConnections(t *testing.T) {
	h := NewHub()
	good, bad := &fakeConn{}, &fakeConn{fail: true}
	h.Register("g", good, language.English)
	h.Register("g", bad, language.English)

	h.Broadcast("g", ws.ErrorMessage("boom"))
	if h.Connections("g") != 1 {
		t.Errorf("Connections = %d, want 1", h.Connections("g"))
	}
	if len(good.types()) != 1 {
		t.Errorf("good connection got %d messages", len(good.types()))
	}

	h.CloseGame("g")
	if !good.closed || h.Connections("g") != 0 {
		t.Error("CloseGame left the connection open")
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	conn := &fakeConn{}
	connID := h.Register("g", conn, language.English)
	h.Unregister("g", "other")
	if h.Connections("g") != 1 {
		t.Fatal("unregistering an unknown id removed a connection")
	}
	h.Unregister("g", connID)
	h.Unregister("missing", connID)
	if h.Connections("g") != 0 {
		t.Error("connection still registered")
	}
	if err := h.Send("g", connID, ws.ErrorMessage("late")); err != nil {
		t.Errorf("Send to a closed connection = %v", err)
	}
}
