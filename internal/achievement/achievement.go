// Package achievement recognises openings and milestones in the stream of
// committed moves. It only observes games; it never changes them.
package achievement

import (
	"strings"

	"github.com/benbeisheim/cheesychess-backend/internal/model"
)

type ID string

const (
	MarshallDefense ID = "marshallDefense"
	ItalianGame     ID = "italianGame"
	SicilianDefense ID = "sicilianDefense"
	FirstCheckmate  ID = "firstCheckmate"
	SpeedyVictory   ID = "speedyVictory"
	Pacifist        ID = "pacifist"
	PawnPower       ID = "pawnPower"
)

type Achievement struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists every achievement in display order.
var Catalog = []Achievement{
	{MarshallDefense, "Marshall Defense", "Play 1. d4 d5 2. c4 Nf6 3. cxd5 Nxd5 4. e4 Nf6 5. Nc3 e6"},
	{ItalianGame, "Italian Game", "Play 1. e4 e5 2. Nf3 Nc6 3. Bc4"},
	{SicilianDefense, "Sicilian Defense", "Play 1. e4 c5"},
	{FirstCheckmate, "First Checkmate", "Win a game by checkmate"},
	{SpeedyVictory, "Speedy Victory", "Win a game by checkmate within 10 half-moves"},
	{Pacifist, "Pacifist", "Play 10 half-moves in a row without a capture"},
	{PawnPower, "Pawn Power", "Promote a pawn to a queen"},
}

func Lookup(id ID) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Openings are matched against the first moves of a game in coordinate form.
var openings = map[ID][]string{
	MarshallDefense: strings.Fields("d2d4 d7d5 c2c4 g8f6 c4d5 f6d5 e2e4 d5f6 b1c3 e7e6"),
	ItalianGame:     strings.Fields("e2e4 e7e5 g1f3 b8c6 f1c4"),
	SicilianDefense: strings.Fields("e2e4 c7c5"),
}

const (
	pacifistPlies      = 10
	speedyVictoryPlies = 10
)

// Detector follows a single game. It is not safe for concurrent use; the
// owning game's listener calls it once per committed half-move.
type Detector struct {
	moves      []string
	quietPlies int
	earned     map[ID]bool
}

func NewDetector() *Detector {
	return &Detector{earned: make(map[ID]bool)}
}

// Observe feeds one committed half-move and the state after it, returning the
// achievements earned for the first time in this game. A record that is not
// the next ply of the game is ignored.
func (d *Detector) Observe(record model.MoveRecord, state model.GameState) []ID {
	if record.Ply != len(d.moves)+1 {
		return nil
	}
	d.moves = append(d.moves, record.String())
	if record.Capture {
		d.quietPlies = 0
	} else {
		d.quietPlies++
	}

	var earned []ID
	award := func(id ID) {
		if !d.earned[id] {
			d.earned[id] = true
			earned = append(earned, id)
		}
	}

	for _, entry := range Catalog {
		line, ok := openings[entry.ID]
		if ok && d.playedOpening(line) {
			award(entry.ID)
		}
	}
	if d.quietPlies >= pacifistPlies {
		award(Pacifist)
	}
	if record.Promotion == model.Queen {
		award(PawnPower)
	}
	if state.Status == model.StatusCheckmate {
		award(FirstCheckmate)
		if state.MoveCount <= speedyVictoryPlies {
			award(SpeedyVictory)
		}
	}
	return earned
}

// Earned reports whether id has been earned in this game.
func (d *Detector) Earned(id ID) bool {
	return d.earned[id]
}

func (d *Detector) playedOpening(line []string) bool {
	if len(d.moves) != len(line) {
		return false
	}
	for i, m := range line {
		if d.moves[i] != m {
			return false
		}
	}
	return true
}
