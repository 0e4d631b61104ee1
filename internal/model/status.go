package model

// movable is IsLegal without the turn gate, so either side can be searched.
func (b *BoardState) movable(id PieceID, to Position) bool {
	return to.InBounds() && b.reaches(id, to, true) && b.LegalAfterMove(id, to)
}

// HasAnyLegalMove searches every destination of every active piece of color
// and stops at the first legal one.
func (b *BoardState) HasAnyLegalMove(color Color) bool {
	for i := range b.Pieces {
		if !b.Pieces[i].Active || b.Pieces[i].Color != color {
			continue
		}
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if b.movable(PieceID(i), Position{X: x, Y: y}) {
					return true
				}
			}
		}
	}
	return false
}

func (b *BoardState) IsCheckmate(color Color) bool {
	return b.InCheck(color) && !b.HasAnyLegalMove(color)
}

func (b *BoardState) IsStalemate(color Color) bool {
	return !b.InCheck(color) && !b.HasAnyLegalMove(color)
}

// LegalDestinations lists every square the piece in slot id may legally move to.
func (b *BoardState) LegalDestinations(id PieceID) []Position {
	moves := []Position{}
	if !b.valid(id) {
		return moves
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			to := Position{X: x, Y: y}
			if b.IsLegal(id, to) {
				moves = append(moves, to)
			}
		}
	}
	return moves
}
