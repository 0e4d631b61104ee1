package model

import (
	"fmt"
	"sync"

	"github.com/benbeisheim/cheesychess-backend/internal/locale"
	"golang.org/x/text/language"
)

type Phase string

const (
	PhaseAwaitingSelection   Phase = "awaitingSelection"
	PhaseAwaitingDestination Phase = "awaitingDestination"
	PhaseAwaitingPromotion   Phase = "awaitingPromotion"
	PhaseGameOver            Phase = "gameOver"
)

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusAbandoned Status = "abandoned"
)

// The Game struct is the turn controller for a single board. Every exported
// method takes the game lock, so one Game may be driven from several goroutines.
type Game struct {
	ID            string
	mu            sync.Mutex
	board         *BoardState
	phase         Phase
	status        Status
	winner        Color
	selected      PieceID
	promotion     *pendingPromotion
	lastRejection RejectReason
	listeners     []MoveListener
	// committed events not yet handed to the listeners, oldest first
	pending    []moveEvent
	delivering bool
}

type pendingPromotion struct {
	piece  PieceID
	record MoveRecord
}

// GameState is a read-only snapshot for presentation layers.
type GameState struct {
	ID              string       `json:"id"`
	Pieces          []Piece      `json:"pieces"`
	ToMove          Color        `json:"toMove"`
	MoveCount       int          `json:"moveCount"`
	Phase           Phase        `json:"phase"`
	Status          Status       `json:"status"`
	StatusText      string       `json:"statusText"`
	Winner          Color        `json:"winner,omitempty"`
	IsCheck         bool         `json:"isCheck"`
	SelectedPiece   *PieceID     `json:"selectedPiece"`
	LegalMoves      []Position   `json:"legalMoves"`
	EnPassantTarget *Position    `json:"enPassantTarget"`
	PromotionSquare *Position    `json:"promotionSquare"`
	LastMove        *MoveRecord  `json:"lastMove"`
	MoveHistory     []MoveRecord `json:"moveHistory"`
}

type moveEvent struct {
	record MoveRecord
	state  GameState
}

// NewGame starts a game from the standard position with white to move.
func NewGame(id string) *Game {
	return newGame(id, NewBoardState())
}

func newGame(id string, board *BoardState) *Game {
	g := &Game{
		ID:       id,
		board:    board,
		phase:    PhaseAwaitingSelection,
		status:   StatusOngoing,
		selected: NoPiece,
	}
	g.evaluate()
	return g
}

func (g *Game) AddListener(l MoveListener) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.listeners = append(g.listeners, l)
}

// AttemptSelect selects the side to move's piece on pos. Anything else clears
// the selection.
func (g *Game) AttemptSelect(pos Position) (PieceID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver || g.phase == PhaseAwaitingPromotion {
		return NoPiece, false
	}
	id, ok := g.board.PieceAt(pos)
	if !ok || g.board.Pieces[id].Color != g.board.SideToMove {
		g.selected = NoPiece
		g.phase = PhaseAwaitingSelection
		return NoPiece, false
	}
	g.selected = id
	g.phase = PhaseAwaitingDestination
	return id, true
}

// AttemptMove moves the piece in slot id to `to` if the move is legal. An
// illegal attempt is a no-op apart from clearing the selection.
func (g *Game) AttemptMove(id PieceID, to Position) MoveOutcome {
	g.mu.Lock()
	outcome, events := g.attemptMove(id, to)
	g.pending = append(g.pending, events...)
	g.mu.Unlock()

	g.deliver()
	return outcome
}

func (g *Game) attemptMove(id PieceID, to Position) (MoveOutcome, []moveEvent) {
	reason := g.rejection(id, to)
	g.lastRejection = reason
	g.selected = NoPiece
	if reason != RejectNone {
		if g.phase == PhaseAwaitingDestination {
			g.phase = PhaseAwaitingSelection
		}
		return OutcomeRejected, nil
	}

	color := g.board.Pieces[id].Color
	record := g.board.applyMove(id, to)
	if record.Piece == Pawn && to.Y == color.promotionRow() {
		g.promotion = &pendingPromotion{piece: id, record: record}
		g.phase = PhaseAwaitingPromotion
		return OutcomePromotionPending, nil
	}
	return g.finishTurn(record)
}

func (g *Game) rejection(id PieceID, to Position) RejectReason {
	switch g.phase {
	case PhaseGameOver:
		return RejectGameAlreadyOver
	case PhaseAwaitingPromotion:
		return RejectPromotionPending
	}
	return g.board.Explain(id, to)
}

// ResolvePromotion completes a pending promotion. Calling it with no
// promotion pending, for another piece, or with a kind other than queen,
// rook, knight or bishop is a contract violation.
func (g *Game) ResolvePromotion(id PieceID, kind PieceType) (MoveOutcome, error) {
	g.mu.Lock()
	outcome, events, err := g.resolvePromotion(id, kind)
	g.pending = append(g.pending, events...)
	g.mu.Unlock()

	g.deliver()
	return outcome, err
}

func (g *Game) resolvePromotion(id PieceID, kind PieceType) (MoveOutcome, []moveEvent, error) {
	if g.phase != PhaseAwaitingPromotion || g.promotion == nil {
		return OutcomeRejected, nil, ErrNoPromotionPending
	}
	if id != g.promotion.piece {
		return OutcomeRejected, nil, fmt.Errorf("%w: got piece %d", ErrPromotionPieceMismatch, id)
	}
	switch kind {
	case Queen, Rook, Knight, Bishop:
	default:
		return OutcomeRejected, nil, fmt.Errorf("%w: got %q", ErrInvalidPromotion, kind)
	}

	g.board.Pieces[id].Type = kind
	record := g.promotion.record
	record.Promotion = kind
	g.promotion = nil
	outcome, events := g.finishTurn(record)
	return outcome, events, nil
}

func (g *Game) finishTurn(record MoveRecord) (MoveOutcome, []moveEvent) {
	record = g.board.completeTurn(record)
	outcome := g.evaluate()
	return outcome, []moveEvent{{record: record, state: g.snapshot(language.English)}}
}

// evaluate runs the terminal-state detector for the side to move.
func (g *Game) evaluate() MoveOutcome {
	side := g.board.SideToMove
	inCheck := g.board.InCheck(side)
	hasMove := g.board.HasAnyLegalMove(side)

	switch {
	case inCheck && !hasMove:
		g.status = StatusCheckmate
		g.winner = side.Opponent()
		g.phase = PhaseGameOver
		if g.winner == White {
			return OutcomeCheckmateWhiteWins
		}
		return OutcomeCheckmateBlackWins
	case !hasMove:
		g.status = StatusStalemate
		g.phase = PhaseGameOver
		return OutcomeStalemate
	case inCheck:
		g.status = StatusCheck
	default:
		g.status = StatusOngoing
	}
	g.phase = PhaseAwaitingSelection
	return OutcomeCommitted
}

// Abandon ends the game without a result. It reports false if the game was
// already over.
func (g *Game) Abandon() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return false
	}
	g.phase = PhaseGameOver
	g.status = StatusAbandoned
	g.selected = NoPiece
	g.promotion = nil
	return true
}

// deliver hands queued events to the listeners in ply order, without holding
// the game lock. One goroutine delivers at a time; a caller that finds another
// delivery running leaves its events to that goroutine and returns at once.
func (g *Game) deliver() {
	g.mu.Lock()
	if g.delivering {
		g.mu.Unlock()
		return
	}
	g.delivering = true
	for len(g.pending) > 0 {
		ev := g.pending[0]
		g.pending = g.pending[1:]
		listeners := g.listeners
		g.mu.Unlock()

		for _, l := range listeners {
			l.MoveCommitted(g.ID, ev.record, ev.state)
		}
		g.mu.Lock()
	}
	g.delivering = false
	g.mu.Unlock()
}

func (g *Game) statusKey() string {
	side := g.board.SideToMove
	switch g.status {
	case StatusCheckmate:
		if g.winner == White {
			return locale.WhiteWins
		}
		return locale.BlackWins
	case StatusStalemate:
		return locale.Stalemate
	case StatusAbandoned:
		return locale.Abandoned
	}
	if g.phase == PhaseAwaitingPromotion {
		if side == White {
			return locale.WhitePromotes
		}
		return locale.BlackPromotes
	}
	if g.status == StatusCheck {
		if side == White {
			return locale.WhiteInCheck
		}
		return locale.BlackInCheck
	}
	if side == White {
		return locale.WhiteToMove
	}
	return locale.BlackToMove
}

func (g *Game) StatusText() string {
	return g.StatusTextIn(language.English)
}

func (g *Game) StatusTextIn(tag language.Tag) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return locale.Text(tag, g.statusKey())
}

func (g *Game) MoveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.MoveCount
}

func (g *Game) SideToMove() Color {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.SideToMove
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.phase
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.status
}

// Winner is empty unless the game ended in checkmate.
func (g *Game) Winner() Color {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.winner
}

func (g *Game) Selected() PieceID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.selected
}

// LastRejection explains the most recent AttemptMove; RejectNone after a
// successful one.
func (g *Game) LastRejection() RejectReason {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.lastRejection
}

func (g *Game) PendingPromotion() (PieceID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.promotion == nil {
		return NoPiece, false
	}
	return g.promotion.piece, true
}

func (g *Game) LegalDestinations(id PieceID) []Position {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver || g.phase == PhaseAwaitingPromotion {
		return []Position{}
	}
	return g.board.LegalDestinations(id)
}

// Board returns a copy of the position that the caller may freely inspect.
func (g *Game) Board() *BoardState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.Clone()
}

func (g *Game) GetState() GameState {
	return g.GetStateIn(language.English)
}

func (g *Game) GetStateIn(tag language.Tag) GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot(tag)
}

func (g *Game) snapshot(tag language.Tag) GameState {
	b := g.board
	state := GameState{
		ID:          g.ID,
		Pieces:      append(b.ActivePieces(White), b.ActivePieces(Black)...),
		ToMove:      b.SideToMove,
		MoveCount:   b.MoveCount,
		Phase:       g.phase,
		Status:      g.status,
		StatusText:  locale.Text(tag, g.statusKey()),
		Winner:      g.winner,
		IsCheck:     g.status == StatusCheck || g.status == StatusCheckmate,
		LegalMoves:  []Position{},
		MoveHistory: append([]MoveRecord{}, b.History...),
	}
	if g.selected != NoPiece {
		id := g.selected
		state.SelectedPiece = &id
		state.LegalMoves = b.LegalDestinations(id)
	}
	if b.EnPassantTarget != nil && b.LastDoubleStep == b.MoveCount {
		target := *b.EnPassantTarget
		state.EnPassantTarget = &target
	}
	if g.promotion != nil {
		square := b.Pieces[g.promotion.piece].Position
		state.PromotionSquare = &square
	}
	if n := len(b.History); n > 0 {
		last := b.History[n-1]
		state.LastMove = &last
	}
	return state
}
