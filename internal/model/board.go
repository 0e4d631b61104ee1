package model

import (
	"fmt"
	"strings"
)

type PieceType string

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// forward is the row delta of a pawn advance for c.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

func (c Color) pawnRow() int {
	if c == White {
		return 6
	}
	return 1
}

func (c Color) promotionRow() int {
	if c == White {
		return 0
	}
	return 7
}

func (c Color) backRow() int {
	if c == White {
		return 7
	}
	return 0
}

// PieceID is a stable slot index into the piece arena.
type PieceID int

const NoPiece PieceID = -1

const maxPieces = 32

type Piece struct {
	ID       PieceID   `json:"id"`
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
	Active   bool      `json:"active"`
	HasMoved bool      `json:"hasMoved"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

func (p Position) String() string {
	if !p.InBounds() {
		return "-"
	}
	return fmt.Sprintf("%c%d", p.X+'a', 8-p.Y)
}

// ParseSquare converts algebraic coordinates such as "e4" into a Position.
func ParseSquare(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	return Position{X: int(s[0] - 'a'), Y: 8 - int(s[1]-'0')}, nil
}

// BoardState is the full position: the piece arena plus turn and en passant bookkeeping.
type BoardState struct {
	Pieces          [maxPieces]Piece `json:"pieces"`
	SideToMove      Color            `json:"sideToMove"`
	EnPassantTarget *Position        `json:"enPassantTarget"`
	// LastDoubleStep is the MoveCount value at which EnPassantTarget may be
	// captured into, or -1 when there is no target.
	LastDoubleStep int          `json:"lastDoubleStep"`
	MoveCount      int          `json:"moveCount"`
	History        []MoveRecord `json:"history"`
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoardState returns the standard starting position with white to move.
func NewBoardState() *BoardState {
	b := emptyBoardState()
	id := PieceID(0)
	for x := 0; x < 8; x++ {
		for _, c := range []Color{White, Black} {
			b.Pieces[id] = Piece{ID: id, Type: backRank[x], Color: c, Position: Position{X: x, Y: c.backRow()}, Active: true}
			id++
			b.Pieces[id] = Piece{ID: id, Type: Pawn, Color: c, Position: Position{X: x, Y: c.pawnRow()}, Active: true}
			id++
		}
	}
	return b
}

func emptyBoardState() *BoardState {
	b := &BoardState{
		SideToMove:     White,
		LastDoubleStep: -1,
		History:        make([]MoveRecord, 0),
	}
	for i := range b.Pieces {
		b.Pieces[i].ID = PieceID(i)
	}
	return b
}

// Clone returns a deep copy that shares nothing with b.
func (b *BoardState) Clone() *BoardState {
	c := *b
	if b.EnPassantTarget != nil {
		t := *b.EnPassantTarget
		c.EnPassantTarget = &t
	}
	c.History = append(make([]MoveRecord, 0, len(b.History)), b.History...)
	return &c
}

func (b *BoardState) valid(id PieceID) bool {
	return id >= 0 && int(id) < maxPieces && b.Pieces[id].Active
}

// Piece returns the record in slot id; ok is false for inactive or unknown slots.
func (b *BoardState) Piece(id PieceID) (Piece, bool) {
	if !b.valid(id) {
		return Piece{}, false
	}
	return b.Pieces[id], true
}

// PieceAt returns the active piece standing on pos.
func (b *BoardState) PieceAt(pos Position) (PieceID, bool) {
	for i := range b.Pieces {
		if b.Pieces[i].Active && b.Pieces[i].Position == pos {
			return PieceID(i), true
		}
	}
	return NoPiece, false
}

func (b *BoardState) IsOccupied(pos Position) bool {
	_, ok := b.PieceAt(pos)
	return ok
}

func (b *BoardState) IsOccupiedByOpponent(pos Position, color Color) bool {
	id, ok := b.PieceAt(pos)
	return ok && b.Pieces[id].Color != color
}

func (b *BoardState) King(color Color) (PieceID, bool) {
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if p.Active && p.Type == King && p.Color == color {
			return PieceID(i), true
		}
	}
	return NoPiece, false
}

// ActivePieces lists the active pieces of color in slot order.
func (b *BoardState) ActivePieces(color Color) []Piece {
	pieces := make([]Piece, 0, 16)
	for _, p := range b.Pieces {
		if p.Active && p.Color == color {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// String draws the board from white's side, uppercase for white pieces.
func (b *BoardState) String() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		fmt.Fprintf(&sb, "%d ", 8-y)
		for x := 0; x < 8; x++ {
			ch := "."
			if id, ok := b.PieceAt(Position{X: x, Y: y}); ok {
				ch = b.Pieces[id].Type.getPieceNotation()
				if b.Pieces[id].Color == Black {
					ch = strings.ToLower(ch)
				}
			}
			sb.WriteString(ch)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
