package model

// InCheck reports whether color's king is attacked by any active opposing
// piece. A side without a king is never in check.
func (b *BoardState) InCheck(color Color) bool {
	kid, ok := b.King(color)
	if !ok {
		return false
	}
	target := b.Pieces[kid].Position
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if p.Active && p.Color != color && b.reaches(PieceID(i), target, false) {
			return true
		}
	}
	return false
}
