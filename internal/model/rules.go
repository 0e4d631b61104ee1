package model

// RejectReason says why a candidate move was refused. Rejections are never
// errors: the turn controller reports them as OutcomeRejected.
type RejectReason string

const (
	RejectNone             RejectReason = ""
	RejectOutOfBounds      RejectReason = "outOfBounds"
	RejectWrongTurn        RejectReason = "wrongTurn"
	RejectObstructed       RejectReason = "obstructed"
	RejectIllegalPattern   RejectReason = "illegalPattern"
	RejectOwnPiece         RejectReason = "ownPiece"
	RejectSelfCheck        RejectReason = "selfCheck"
	RejectNoPieceSelected  RejectReason = "noPieceSelected"
	RejectGameAlreadyOver  RejectReason = "gameAlreadyOver"
	RejectPromotionPending RejectReason = "promotionPending"
)

// PseudoLegal reports whether the piece in slot id may move to `to` by its
// movement rules, ignoring whether the move would expose its own king.
func (b *BoardState) PseudoLegal(id PieceID, to Position) bool {
	if !to.InBounds() || !b.valid(id) {
		return false
	}
	if b.Pieces[id].Color != b.SideToMove {
		return false
	}
	return b.reaches(id, to, true)
}

// reaches evaluates the per-kind geometry for the piece in slot id. Castling is
// considered only when castle is set; attack queries never castle.
func (b *BoardState) reaches(id PieceID, to Position, castle bool) bool {
	piece := b.Pieces[id]
	if occupant, ok := b.PieceAt(to); ok && b.Pieces[occupant].Color == piece.Color {
		return false
	}
	dx := to.X - piece.Position.X
	dy := to.Y - piece.Position.Y

	switch piece.Type {
	case Pawn:
		return b.pawnReaches(piece, to, dx, dy)
	case Rook:
		return (dx == 0 || dy == 0) && b.pathClear(piece.Position, to)
	case Knight:
		return (abs(dx) == 2 && abs(dy) == 1) || (abs(dx) == 1 && abs(dy) == 2)
	case Bishop:
		return abs(dx) == abs(dy) && b.pathClear(piece.Position, to)
	case Queen:
		return (dx == 0 || dy == 0 || abs(dx) == abs(dy)) && b.pathClear(piece.Position, to)
	case King:
		if abs(dx) <= 1 && abs(dy) <= 1 {
			return true
		}
		return castle && b.canCastle(id, to)
	}
	return false
}

func (b *BoardState) pawnReaches(piece Piece, to Position, dx, dy int) bool {
	fwd := piece.Color.forward()
	switch {
	case dx == 0 && dy == fwd:
		return !b.IsOccupied(to)
	case dx == 0 && dy == 2*fwd:
		passed := Position{X: to.X, Y: piece.Position.Y + fwd}
		return !piece.HasMoved && piece.Position.Y == piece.Color.pawnRow() &&
			!b.IsOccupied(passed) && !b.IsOccupied(to)
	case abs(dx) == 1 && dy == fwd:
		return b.IsOccupiedByOpponent(to, piece.Color) || b.enPassantLive(to)
	}
	return false
}

// enPassantLive reports whether to is the en passant target and it has not expired.
func (b *BoardState) enPassantLive(to Position) bool {
	return b.EnPassantTarget != nil && *b.EnPassantTarget == to && b.MoveCount == b.LastDoubleStep
}

func (b *BoardState) isEnPassant(id PieceID, to Position) bool {
	piece := b.Pieces[id]
	return piece.Type == Pawn && abs(to.X-piece.Position.X) == 1 && b.enPassantLive(to)
}

// canCastle checks every castling precondition. Each square the king crosses,
// destination included, is probed for check with the king moved there and
// then put back.
func (b *BoardState) canCastle(id PieceID, to Position) bool {
	king := b.Pieces[id]
	dx := to.X - king.Position.X
	if king.HasMoved || to.Y != king.Position.Y || abs(dx) != 2 {
		return false
	}
	rookPos := Position{X: 0, Y: king.Position.Y}
	if dx > 0 {
		rookPos.X = 7
	}
	rid, ok := b.PieceAt(rookPos)
	if !ok {
		return false
	}
	rook := b.Pieces[rid]
	if rook.Type != Rook || rook.Color != king.Color || rook.HasMoved {
		return false
	}
	if !b.pathClear(king.Position, rookPos) {
		return false
	}
	if b.InCheck(king.Color) {
		return false
	}
	step := sign(dx)
	for x := king.Position.X + step; x != to.X+step; x += step {
		snap := b.speculate(id, Position{X: x, Y: king.Position.Y})
		attacked := b.InCheck(king.Color)
		b.restore(snap)
		if attacked {
			return false
		}
	}
	return true
}

// pathClear reports whether every square strictly between from and to is empty.
func (b *BoardState) pathClear(from, to Position) bool {
	dx := to.X - from.X
	dy := to.Y - from.Y
	steps := max(abs(dx), abs(dy))
	stepX, stepY := sign(dx), sign(dy)
	for i := 1; i < steps; i++ {
		if b.IsOccupied(Position{X: from.X + i*stepX, Y: from.Y + i*stepY}) {
			return false
		}
	}
	return true
}

// Explain classifies a candidate move. It returns RejectNone for a legal move.
func (b *BoardState) Explain(id PieceID, to Position) RejectReason {
	if !b.valid(id) {
		return RejectNoPieceSelected
	}
	if !to.InBounds() {
		return RejectOutOfBounds
	}
	piece := b.Pieces[id]
	if piece.Color != b.SideToMove {
		return RejectWrongTurn
	}
	if occupant, ok := b.PieceAt(to); ok && b.Pieces[occupant].Color == piece.Color {
		return RejectOwnPiece
	}
	if !b.reaches(id, to, true) {
		return b.explainUnreachable(piece, to)
	}
	if !b.LegalAfterMove(id, to) {
		return RejectSelfCheck
	}
	return RejectNone
}

func (b *BoardState) explainUnreachable(piece Piece, to Position) RejectReason {
	dx := to.X - piece.Position.X
	dy := to.Y - piece.Position.Y
	line := dx == 0 || dy == 0
	diagonal := abs(dx) == abs(dy)

	switch piece.Type {
	case Rook:
		if line {
			return RejectObstructed
		}
	case Bishop:
		if diagonal {
			return RejectObstructed
		}
	case Queen:
		if line || diagonal {
			return RejectObstructed
		}
	case Pawn:
		fwd := piece.Color.forward()
		if dx == 0 && (dy == fwd || (dy == 2*fwd && !piece.HasMoved && piece.Position.Y == piece.Color.pawnRow())) {
			return RejectObstructed
		}
	case King:
		if dy == 0 && abs(dx) == 2 && !piece.HasMoved {
			rookPos := Position{X: 0, Y: piece.Position.Y}
			if dx > 0 {
				rookPos.X = 7
			}
			if rid, ok := b.PieceAt(rookPos); ok && b.Pieces[rid].Type == Rook && !b.Pieces[rid].HasMoved {
				if !b.pathClear(piece.Position, rookPos) {
					return RejectObstructed
				}
				return RejectSelfCheck
			}
		}
	}
	return RejectIllegalPattern
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
