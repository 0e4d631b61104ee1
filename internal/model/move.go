package model

import "strings"

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// MoveRecord is the immutable log entry for one committed half-move.
type MoveRecord struct {
	Ply       int             `json:"ply"`
	Color     Color           `json:"color"`
	Piece     PieceType       `json:"piece"`
	From      Position        `json:"from"`
	To        Position        `json:"to"`
	Capture   bool            `json:"capture"`
	Captured  PieceType       `json:"captured,omitempty"`
	EnPassant bool            `json:"enPassant,omitempty"`
	Castle    *CastleRookMove `json:"castle,omitempty"`
	Promotion PieceType       `json:"promotion,omitempty"`
}

// String renders the move in coordinate form, e.g. "e2e4" or "e7e8q".
func (m MoveRecord) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != "" {
		s += strings.ToLower(m.Promotion.getPieceNotation())
	}
	return s
}

type MoveOutcome string

const (
	OutcomeRejected           MoveOutcome = "rejected"
	OutcomeCommitted          MoveOutcome = "committed"
	OutcomePromotionPending   MoveOutcome = "promotionPending"
	OutcomeCheckmateWhiteWins MoveOutcome = "checkmateWhiteWins"
	OutcomeCheckmateBlackWins MoveOutcome = "checkmateBlackWins"
	OutcomeStalemate          MoveOutcome = "stalemate"
)

// MoveListener observes committed half-moves. It is called after the game's
// lock is released, so it may read or drive the game again. Calls for one game
// never overlap and arrive in ply order.
type MoveListener interface {
	MoveCommitted(gameID string, record MoveRecord, state GameState)
}

type MoveListenerFunc func(gameID string, record MoveRecord, state GameState)

func (f MoveListenerFunc) MoveCommitted(gameID string, record MoveRecord, state GameState) {
	f(gameID, record, state)
}

// applyMove performs capture, relocation, en passant bookkeeping and the
// castling rook move. Turn alternation is left to completeTurn so promotion
// can suspend it.
func (b *BoardState) applyMove(id PieceID, to Position) MoveRecord {
	piece := b.Pieces[id]
	from := piece.Position
	record := MoveRecord{Color: piece.Color, Piece: piece.Type, From: from, To: to}

	enPassant := b.isEnPassant(id, to)
	if victim, ok := b.PieceAt(to); ok && victim != id {
		b.Pieces[victim].Active = false
		record.Capture = true
		record.Captured = b.Pieces[victim].Type
	} else if enPassant {
		if victim, ok := b.PieceAt(Position{X: to.X, Y: from.Y}); ok {
			b.Pieces[victim].Active = false
			record.Capture = true
			record.Captured = b.Pieces[victim].Type
			record.EnPassant = true
		}
	}

	b.Pieces[id].Position = to
	b.Pieces[id].HasMoved = true

	if piece.Type == Pawn && abs(to.Y-from.Y) == 2 {
		b.EnPassantTarget = &Position{X: to.X, Y: from.Y + piece.Color.forward()}
		b.LastDoubleStep = b.MoveCount + 1
	} else {
		b.EnPassantTarget = nil
		b.LastDoubleStep = -1
	}

	if piece.Type == King && abs(to.X-from.X) == 2 {
		record.Castle = b.castleRook(from, to)
	}
	return record
}

// castleRook moves the rook onto the square the king crossed.
func (b *BoardState) castleRook(from, to Position) *CastleRookMove {
	rookFrom := Position{X: 0, Y: from.Y}
	if to.X > from.X {
		rookFrom.X = 7
	}
	rookTo := Position{X: (from.X + to.X) / 2, Y: from.Y}
	rid, ok := b.PieceAt(rookFrom)
	if !ok || b.Pieces[rid].Type != Rook {
		return nil
	}
	b.Pieces[rid].Position = rookTo
	b.Pieces[rid].HasMoved = true
	return &CastleRookMove{From: rookFrom, To: rookTo}
}

// completeTurn flips the side to move, advances the ply counter and logs record.
func (b *BoardState) completeTurn(record MoveRecord) MoveRecord {
	b.SideToMove = b.SideToMove.Opponent()
	b.MoveCount++
	record.Ply = b.MoveCount
	b.History = append(b.History, record)
	return record
}
