package model

// snapshot holds everything speculate changed so restore can undo it exactly.
type snapshot struct {
	mover    Piece
	captured [2]PieceID
}

// speculate moves the piece in slot id to `to`, deactivating whatever it would
// capture (including an en passant victim). The board must be restored with
// the returned snapshot before anything else reads it.
func (b *BoardState) speculate(id PieceID, to Position) snapshot {
	s := snapshot{mover: b.Pieces[id], captured: [2]PieceID{NoPiece, NoPiece}}
	if victim, ok := b.PieceAt(to); ok && victim != id {
		b.Pieces[victim].Active = false
		s.captured[0] = victim
	}
	if b.isEnPassant(id, to) {
		passed := Position{X: to.X, Y: s.mover.Position.Y}
		if victim, ok := b.PieceAt(passed); ok {
			b.Pieces[victim].Active = false
			s.captured[1] = victim
		}
	}
	b.Pieces[id].Position = to
	return s
}

func (b *BoardState) restore(s snapshot) {
	b.Pieces[s.mover.ID] = s.mover
	for _, id := range s.captured {
		if id != NoPiece {
			b.Pieces[id].Active = true
		}
	}
}

// LegalAfterMove reports whether the mover's king would be safe after moving
// the piece in slot id to `to`. Callers are expected to have checked
// PseudoLegal first. The board is left exactly as it was.
func (b *BoardState) LegalAfterMove(id PieceID, to Position) bool {
	if !b.valid(id) || !to.InBounds() {
		return false
	}
	s := b.speculate(id, to)
	inCheck := b.InCheck(s.mover.Color)
	b.restore(s)
	return !inCheck
}

// IsLegal is PseudoLegal and LegalAfterMove together.
func (b *BoardState) IsLegal(id PieceID, to Position) bool {
	return b.PseudoLegal(id, to) && b.LegalAfterMove(id, to)
}
