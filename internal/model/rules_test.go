package model

import (
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestPseudoLegal(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		to   string
		want bool
	}{
		{"pawn single step", startFEN, "e2", "e3", true},
		{"pawn double step", startFEN, "e2", "e4", true},
		{"pawn triple step", startFEN, "e2", "e5", false},
		{"pawn diagonal onto empty", startFEN, "e2", "d3", false},
		{"knight jumps", startFEN, "g1", "f3", true},
		{"knight onto own pawn", startFEN, "b1", "d2", false},
		{"bishop blocked", startFEN, "f1", "c4", false},
		{"rook blocked", startFEN, "a1", "a3", false},
		{"castle through pieces", startFEN, "e1", "g1", false},
		{"wrong turn", startFEN, "e7", "e5", false},

		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - -", "e4", "d5", true},
		{"pawn push", "4k3/8/8/3p4/4P3/8/8/4K3 w - -", "e4", "e5", true},
		{"pawn capture onto empty", "4k3/8/8/3p4/4P3/8/8/4K3 w - -", "e4", "f5", false},
		{"pawn double step blocked", "4k3/8/8/8/8/4p3/4P3/4K3 w - -", "e2", "e4", false},
		{"pawn single step blocked", "4k3/8/8/8/8/4p3/4P3/4K3 w - -", "e2", "e3", false},
		{"black pawn double step", "4k3/4p3/8/8/8/8/8/4K3 b - -", "e7", "e5", true},
		{"black pawn backwards", "4k3/4p3/8/8/8/8/8/4K3 b - -", "e7", "e8", false},
		{"moved pawn double step", "4k3/8/8/8/8/4P3/8/4K3 w - -", "e3", "e5", false},
		{"en passant", "4k3/8/8/3Pp3/8/8/8/4K3 w - e6", "d5", "e6", true},
		{"en passant wrong file", "4k3/8/8/3Pp3/8/8/8/4K3 w - e6", "d5", "c6", false},

		{"bishop diagonal", "4k3/8/8/8/8/8/8/2B1K3 w - -", "c1", "h6", true},
		{"bishop straight", "4k3/8/8/8/8/8/8/2B1K3 w - -", "c1", "c2", false},
		{"queen file", "4k3/8/8/8/8/8/8/3QK3 w - -", "d1", "d8", true},
		{"queen diagonal", "4k3/8/8/8/8/8/8/3QK3 w - -", "d1", "h5", true},
		{"queen knight jump", "4k3/8/8/8/8/8/8/3QK3 w - -", "d1", "e3", false},
		{"king step", "4k3/8/8/8/8/8/8/4K3 w - -", "e1", "e2", true},
		{"king two steps", "4k3/8/8/8/8/8/8/4K3 w - -", "e1", "e3", false},
		{"rook open file", "4k3/8/8/8/8/8/8/r3K2R w - -", "h1", "h8", true},

		{"castle kingside", "4k3/8/8/8/8/8/8/R3K2R w KQ -", "e1", "g1", true},
		{"castle queenside", "4k3/8/8/8/8/8/8/R3K2R w KQ -", "e1", "c1", true},
		{"castle through attacked square", "4kr2/8/8/8/8/8/8/R3K2R w KQ -", "e1", "g1", false},
		{"other side unaffected", "4kr2/8/8/8/8/8/8/R3K2R w KQ -", "e1", "c1", true},
		{"castle out of check", "4k3/4r3/8/8/8/8/8/R3K2R w KQ -", "e1", "g1", false},
		{"castle out of check queenside", "4k3/4r3/8/8/8/8/8/R3K2R w KQ -", "e1", "c1", false},
		{"castle into check", "4k1r1/8/8/8/8/8/8/R3K2R w KQ -", "e1", "g1", false},
		{"b-file attack does not stop long castle", "1r2k3/8/8/8/8/8/8/R3K2R w KQ -", "e1", "c1", true},
		{"rook has moved", "4k3/8/8/8/8/8/8/R3K2R w Q -", "e1", "g1", false},
		{"other rook unmoved", "4k3/8/8/8/8/8/8/R3K2R w Q -", "e1", "c1", true},
		{"knight between king and rook", "4k3/8/8/8/8/8/8/RN2K2R w KQ -", "e1", "c1", false},
		{"black castles", "r3k2r/8/8/8/8/8/8/4K3 b kq -", "e8", "g8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			id := pieceOn(t, b, tt.from)
			if got := b.PseudoLegal(id, sq(t, tt.to)); got != tt.want {
				t.Errorf("PseudoLegal(%s%s) = %v, want %v\n%s", tt.from, tt.to, got, tt.want, b)
			}
		})
	}
}

func TestPseudoLegalOutOfBounds(t *testing.T) {
	b := NewBoardState()
	id := pieceOn(t, b, "a1")
	for _, to := range []Position{{X: -1, Y: 7}, {X: 0, Y: 8}, {X: 8, Y: 0}} {
		if b.PseudoLegal(id, to) {
			t.Errorf("PseudoLegal accepted %+v", to)
		}
	}
	if b.PseudoLegal(NoPiece, sq(t, "a3")) {
		t.Error("PseudoLegal accepted NoPiece")
	}
}

func TestEnPassantExpiresByMoveCount(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/3Pp3/8/8/8/4K3 w - e6")
	id := pieceOn(t, b, "d5")
	if !b.PseudoLegal(id, sq(t, "e6")) {
		t.Fatal("en passant should be live on the next ply")
	}
	b.MoveCount++
	if b.PseudoLegal(id, sq(t, "e6")) {
		t.Error("en passant must expire once the move count moves on")
	}
}

func TestPathClear(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/3p4/8/8/R3K3 w - -")
	tests := []struct {
		from, to string
		want     bool
	}{
		{"a1", "a8", true},
		{"a1", "d1", true},
		{"a1", "e1", true},
		{"a1", "f1", false},
		{"a1", "b1", true},
		{"a1", "a1", true},
		{"b2", "f6", false},
		{"h8", "e5", true},
	}
	for _, tt := range tests {
		if got := b.pathClear(sq(t, tt.from), sq(t, tt.to)); got != tt.want {
			t.Errorf("pathClear(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		to   string
		want RejectReason
	}{
		{"legal", startFEN, "e2", "e4", RejectNone},
		{"pattern", startFEN, "e2", "e5", RejectIllegalPattern},
		{"obstructed rook", startFEN, "a1", "a3", RejectObstructed},
		{"obstructed bishop", startFEN, "c1", "e3", RejectObstructed},
		{"own piece", startFEN, "b1", "d2", RejectOwnPiece},
		{"wrong turn", startFEN, "e7", "e5", RejectWrongTurn},
		{"pinned bishop", "4k3/4r3/8/8/8/8/4B3/4K3 w - -", "e2", "d3", RejectSelfCheck},
		{"king into attack", "4k3/3r4/8/8/8/8/8/4K3 w - -", "e1", "d1", RejectSelfCheck},
		{"castle blocked", "4k3/8/8/8/8/8/8/RN2K2R w KQ -", "e1", "c1", RejectObstructed},
		{"castle through check", "4kr2/8/8/8/8/8/8/R3K2R w KQ -", "e1", "g1", RejectSelfCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			if got := b.Explain(pieceOn(t, b, tt.from), sq(t, tt.to)); got != tt.want {
				t.Errorf("Explain(%s%s) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}

	b := NewBoardState()
	if got := b.Explain(NoPiece, sq(t, "e4")); got != RejectNoPieceSelected {
		t.Errorf("Explain(NoPiece) = %q", got)
	}
	if got := b.Explain(pieceOn(t, b, "e2"), Position{X: 4, Y: 9}); got != RejectOutOfBounds {
		t.Errorf("Explain(off board) = %q", got)
	}
}
