package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/achievement"
	"github.com/benbeisheim/cheesychess-backend/internal/locale"
	"github.com/benbeisheim/cheesychess-backend/internal/model"
	"github.com/benbeisheim/cheesychess-backend/internal/storage"
)

const (
	squareWidth  = 5
	squareHeight = 2
	boardLeft    = 4
	boardTop     = 1
)

var glyphs = map[model.Color]map[model.PieceType]rune{
	model.White: {model.King: '♔', model.Queen: '♕', model.Rook: '♖', model.Bishop: '♗', model.Knight: '♘', model.Pawn: '♙'},
	model.Black: {model.King: '♚', model.Queen: '♛', model.Rook: '♜', model.Bishop: '♝', model.Knight: '♞', model.Pawn: '♟'},
}

var promotionKeys = map[rune]model.PieceType{
	'q': model.Queen, 'r': model.Rook, 'b': model.Bishop, 'n': model.Knight,
}

var (
	lightSquare = tcell.StyleDefault.Background(tcell.NewRGBColor(240, 217, 181)).Foreground(tcell.ColorBlack)
	darkSquare  = tcell.StyleDefault.Background(tcell.NewRGBColor(181, 136, 99)).Foreground(tcell.ColorBlack)
	cursorStyle = tcell.StyleDefault.Background(tcell.ColorSteelBlue).Foreground(tcell.ColorBlack)
	selectStyle = tcell.StyleDefault.Background(tcell.ColorGold).Foreground(tcell.ColorBlack)
	targetStyle = tcell.StyleDefault.Background(tcell.ColorDarkSeaGreen).Foreground(tcell.ColorBlack)
	textStyle   = tcell.StyleDefault
)

// ui is the same-device terminal front end. Both players share the cursor.
type ui struct {
	screen  tcell.Screen
	store   *storage.Storage
	lang    language.Tag
	fen     string
	game    *model.Game
	cursor  model.Position
	notices []string
	quit    bool
}

func newUI(screen tcell.Screen, store *storage.Storage, lang language.Tag, fen string) (*ui, error) {
	u := &ui{screen: screen, store: store, lang: lang, fen: fen}
	if err := u.newGame(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *ui) newGame() error {
	game := model.NewGame("local")
	var detector *achievement.Detector
	if u.fen != "" {
		var err error
		if game, err = model.NewGameFromFEN("local", u.fen); err != nil {
			return err
		}
	} else {
		detector = achievement.NewDetector()
	}

	game.AddListener(model.MoveListenerFunc(func(gameID string, record model.MoveRecord, state model.GameState) {
		if detector != nil {
			for _, id := range detector.Observe(record, state) {
				u.unlock(gameID, id)
			}
		}
		if state.Phase == model.PhaseGameOver {
			u.record(gameID, state)
		}
	}))

	u.game = game
	u.cursor = model.Position{X: 4, Y: 6}
	u.notices = nil
	return nil
}

func (u *ui) unlock(gameID string, id achievement.ID) {
	if u.store == nil {
		return
	}
	unlocked, err := u.store.UnlockAchievement(string(id), gameID, time.Now())
	if err != nil {
		u.notices = append(u.notices, locale.Textf(u.lang, locale.SaveFailed, err))
		return
	}
	if unlocked {
		a, _ := achievement.Lookup(id)
		u.notices = append(u.notices, locale.Textf(u.lang, locale.AchievementUnlocked, a.Name))
	}
}

func (u *ui) record(gameID string, state model.GameState) {
	if u.store == nil {
		return
	}
	result, ok := storage.ResultOf(gameID, state)
	if !ok {
		return
	}
	if err := u.store.RecordGame(result); err != nil {
		u.notices = append(u.notices, locale.Textf(u.lang, locale.SaveFailed, err))
	}
}

// handle applies one terminal event.
func (u *ui) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		u.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return
		}
		x, y := ev.Position()
		pos := model.Position{X: (x - boardLeft) / squareWidth, Y: (y - boardTop) / squareHeight}
		if x < boardLeft || y < boardTop || !pos.InBounds() {
			return
		}
		u.cursor = pos
		u.activate()
	case *tcell.EventResize:
		u.screen.Sync()
	}
}

func (u *ui) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		u.quit = true
	case tcell.KeyEscape:
		if u.game.Abandon() {
			u.record(u.game.ID, u.game.GetState())
			return
		}
		u.quit = true
	case tcell.KeyUp:
		u.move(0, -1)
	case tcell.KeyDown:
		u.move(0, 1)
	case tcell.KeyLeft:
		u.move(-1, 0)
	case tcell.KeyRight:
		u.move(1, 0)
	case tcell.KeyEnter:
		u.activate()
	case tcell.KeyRune:
		u.handleRune(ev.Rune())
	}
}

func (u *ui) handleRune(r rune) {
	if id, ok := u.game.PendingPromotion(); ok {
		if kind, ok := promotionKeys[r]; ok {
			u.game.ResolvePromotion(id, kind)
		}
		return
	}
	switch r {
	case ' ':
		u.activate()
	case 'x':
		if u.game.Phase() == model.PhaseGameOver {
			u.quit = true
		}
	case 'N':
		if u.game.Phase() == model.PhaseGameOver {
			if err := u.newGame(); err != nil {
				u.notices = append(u.notices, err.Error())
			}
		}
	}
}

func (u *ui) move(dx, dy int) {
	next := model.Position{X: u.cursor.X + dx, Y: u.cursor.Y + dy}
	if next.InBounds() {
		u.cursor = next
	}
}

// activate selects the piece under the cursor, or moves the selected piece
// there when the square does not hold one of the mover's own pieces.
func (u *ui) activate() {
	selected := u.game.Selected()
	if selected != model.NoPiece {
		board := u.game.Board()
		id, ok := board.PieceAt(u.cursor)
		if !ok || board.Pieces[id].Color != board.SideToMove {
			u.game.AttemptMove(selected, u.cursor)
			return
		}
	}
	u.game.AttemptSelect(u.cursor)
}

func (u *ui) draw() {
	u.screen.Clear()
	state := u.game.GetStateIn(u.lang)

	targets := make(map[model.Position]bool, len(state.LegalMoves))
	for _, p := range state.LegalMoves {
		targets[p] = true
	}
	var selectedAt *model.Position
	pieces := make(map[model.Position]model.Piece, len(state.Pieces))
	for _, p := range state.Pieces {
		pieces[p.Position] = p
		if state.SelectedPiece != nil && p.ID == *state.SelectedPiece {
			pos := p.Position
			selectedAt = &pos
		}
	}

	for y := 0; y < 8; y++ {
		u.text(1, boardTop+y*squareHeight, fmt.Sprint(8-y), textStyle)
		for x := 0; x < 8; x++ {
			pos := model.Position{X: x, Y: y}
			style := lightSquare
			if (x+y)%2 == 1 {
				style = darkSquare
			}
			switch {
			case pos == u.cursor:
				style = cursorStyle
			case selectedAt != nil && pos == *selectedAt:
				style = selectStyle
			case targets[pos]:
				style = targetStyle
			}

			left, top := boardLeft+x*squareWidth, boardTop+y*squareHeight
			for dy := 0; dy < squareHeight; dy++ {
				for dx := 0; dx < squareWidth; dx++ {
					u.screen.SetContent(left+dx, top+dy, ' ', nil, style)
				}
			}
			if p, ok := pieces[pos]; ok {
				u.screen.SetContent(left+squareWidth/2, top, glyphs[p.Color][p.Type], nil, style)
			}
		}
	}
	for x := 0; x < 8; x++ {
		u.screen.SetContent(boardLeft+x*squareWidth+squareWidth/2, boardTop+8*squareHeight, rune('a'+x), nil, textStyle)
	}

	row := boardTop + 8*squareHeight + 2
	u.text(boardLeft, row, state.StatusText, textStyle.Bold(true))
	row++
	u.text(boardLeft, row, u.help(state), textStyle.Dim(true))
	row++
	if n := len(state.MoveHistory); n > 0 {
		u.text(boardLeft, row, fmt.Sprintf("%d. %s", n, state.MoveHistory[n-1].String()), textStyle)
	}
	for i, notice := range u.notices {
		u.text(boardLeft, row+1+i, notice, textStyle.Foreground(tcell.ColorGreen))
	}
	u.screen.Show()
}

func (u *ui) help(state model.GameState) string {
	switch state.Phase {
	case model.PhaseAwaitingPromotion:
		return locale.Text(u.lang, locale.HelpPromotion)
	case model.PhaseGameOver:
		return locale.Text(u.lang, locale.HelpGameOver)
	}
	return locale.Text(u.lang, locale.HelpPlaying)
}

func (u *ui) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (u *ui) run() {
	for !u.quit {
		u.draw()
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		u.handle(ev)
	}
}
