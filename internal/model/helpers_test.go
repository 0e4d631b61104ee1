package model

import (
	"testing"
)

func mustFEN(t *testing.T, fen string) *BoardState {
	t.Helper()
	b, err := NewBoardStateFromFEN(fen)
	if err != nil {
		t.Fatalf("NewBoardStateFromFEN(%q) error: %v", fen, err)
	}
	return b
}

func mustGameFEN(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := NewGameFromFEN("test", fen)
	if err != nil {
		t.Fatalf("NewGameFromFEN(%q) error: %v", fen, err)
	}
	return g
}

func sq(t *testing.T, s string) Position {
	t.Helper()
	pos, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return pos
}

func pieceOn(t *testing.T, b *BoardState, s string) PieceID {
	t.Helper()
	id, ok := b.PieceAt(sq(t, s))
	if !ok {
		t.Fatalf("no piece on %s\n%s", s, b)
	}
	return id
}

// move plays a coordinate move such as "e2e4" and returns the outcome.
// A fifth character resolves the promotion it triggers.
func move(t *testing.T, g *Game, uci string) MoveOutcome {
	t.Helper()
	if len(uci) != 4 && len(uci) != 5 {
		t.Fatalf("bad move %q", uci)
	}
	id := pieceOn(t, g.board, uci[:2])
	outcome := g.AttemptMove(id, sq(t, uci[2:4]))
	if len(uci) == 5 && outcome == OutcomePromotionPending {
		kinds := map[byte]PieceType{'q': Queen, 'r': Rook, 'n': Knight, 'b': Bishop}
		var err error
		outcome, err = g.ResolvePromotion(id, kinds[uci[4]])
		if err != nil {
			t.Fatalf("ResolvePromotion(%s): %v", uci, err)
		}
	}
	return outcome
}

// play commits each move, failing the test if any is rejected.
func play(t *testing.T, g *Game, moves ...string) MoveOutcome {
	t.Helper()
	var outcome MoveOutcome
	for _, m := range moves {
		outcome = move(t, g, m)
		if outcome == OutcomeRejected {
			t.Fatalf("move %s rejected (%s)\n%s", m, g.LastRejection(), g.board)
		}
	}
	return outcome
}
