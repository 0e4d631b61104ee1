package model

import (
	"fmt"
	"strings"
)

var fenPieces = map[rune]PieceType{
	'p': Pawn, 'r': Rook, 'n': Knight, 'b': Bishop, 'q': Queen, 'k': King,
}

// NewBoardStateFromFEN builds a position from a FEN string. Only placement is
// required; side to move defaults to white and, when the castling field is
// missing, every king and rook on its home square keeps its castling right.
// Move counters are ignored: the position starts at move count zero, and an
// en passant square is capturable on the first ply.
//
// Positions no game can reach are refused: anything but one king per colour,
// a pawn on its first or last rank, the side not to move standing in check,
// or an en passant square with no pawn that just passed it.
func NewBoardStateFromFEN(fen string) (*BoardState, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidFEN)
	}

	b := emptyBoardState()
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	next := 0
	for y, rank := range ranks {
		x := 0
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				x += int(ch - '0')
				continue
			}
			kind, ok := fenPieces[toLower(ch)]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			if x > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-y)
			}
			if kind == Pawn && (y == 0 || y == 7) {
				return nil, fmt.Errorf("%w: pawn on rank %d", ErrInvalidFEN, 8-y)
			}
			if next >= maxPieces {
				return nil, fmt.Errorf("%w: more than %d pieces", ErrInvalidFEN, maxPieces)
			}
			color := Black
			if ch >= 'A' && ch <= 'Z' {
				color = White
			}
			b.Pieces[next] = Piece{
				ID:       PieceID(next),
				Type:     kind,
				Color:    color,
				Position: Position{X: x, Y: y},
				Active:   true,
				HasMoved: kind == Pawn && y != color.pawnRow(),
			}
			next++
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-y, x)
		}
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			b.SideToMove = White
		case "b":
			b.SideToMove = Black
		default:
			return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
		}
	}

	castling := "KQkq"
	if len(fields) > 2 {
		castling = fields[2]
	}
	if err := b.applyCastlingRights(castling); err != nil {
		return nil, err
	}

	if len(fields) > 3 && fields[3] != "-" {
		target, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		if err := b.checkEnPassantTarget(target); err != nil {
			return nil, err
		}
		b.EnPassantTarget = &target
		b.LastDoubleStep = b.MoveCount
	}

	for _, c := range []Color{White, Black} {
		kings := 0
		for _, p := range b.ActivePieces(c) {
			if p.Type == King {
				kings++
			}
		}
		if kings != 1 {
			return nil, fmt.Errorf("%w: %d %s kings", ErrInvalidFEN, kings, c)
		}
	}
	if b.InCheck(b.SideToMove.Opponent()) {
		return nil, fmt.Errorf("%w: %s is in check but not to move", ErrInvalidFEN, b.SideToMove.Opponent())
	}
	return b, nil
}

// checkEnPassantTarget accepts target only if the opponent's last move can
// have been a double step over it: the target and the pawn's start square are
// empty and the opponent's pawn stands just beyond the target.
func (b *BoardState) checkEnPassantTarget(target Position) error {
	mover := b.SideToMove.Opponent()
	dir := mover.forward()
	start := mover.pawnRow()
	if target.Y != start+dir {
		return fmt.Errorf("%w: en passant square %s is not on %s's skipped rank", ErrInvalidFEN, target, mover)
	}
	if b.IsOccupied(target) || b.IsOccupied(Position{X: target.X, Y: start}) {
		return fmt.Errorf("%w: en passant square %s is not empty behind the pawn", ErrInvalidFEN, target)
	}
	id, ok := b.PieceAt(Position{X: target.X, Y: target.Y + dir})
	if !ok || b.Pieces[id].Type != Pawn || b.Pieces[id].Color != mover {
		return fmt.Errorf("%w: no %s pawn passed %s", ErrInvalidFEN, mover, target)
	}
	return nil
}

// applyCastlingRights marks every king and rook as moved, then clears the
// flag for the pairs the rights string grants.
func (b *BoardState) applyCastlingRights(rights string) error {
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if p.Active && (p.Type == King || p.Type == Rook) {
			p.HasMoved = true
		}
	}
	if rights == "-" {
		return nil
	}
	for _, r := range rights {
		color := Black
		if r >= 'A' && r <= 'Z' {
			color = White
		}
		rookX := 0
		switch toLower(r) {
		case 'k':
			rookX = 7
		case 'q':
		default:
			return fmt.Errorf("%w: castling right %q", ErrInvalidFEN, r)
		}
		row := color.backRow()
		kid, kok := b.PieceAt(Position{X: 4, Y: row})
		rid, rok := b.PieceAt(Position{X: rookX, Y: row})
		if !kok || !rok {
			continue
		}
		king, rook := &b.Pieces[kid], &b.Pieces[rid]
		if king.Type == King && king.Color == color && rook.Type == Rook && rook.Color == color {
			king.HasMoved = false
			rook.HasMoved = false
		}
	}
	return nil
}

// NewGameFromFEN starts a game from an arbitrary position. The position is
// evaluated immediately, so a mated or stalemated setup starts game over.
func NewGameFromFEN(id, fen string) (*Game, error) {
	board, err := NewBoardStateFromFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(id, board), nil
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
