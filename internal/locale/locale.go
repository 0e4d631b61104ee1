// Package locale translates the status line and terminal prompts shown to
// players.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	WhiteToMove   = "White to move"
	BlackToMove   = "Black to move"
	WhiteInCheck  = "White is in check!"
	BlackInCheck  = "Black is in check!"
	WhiteWins     = "White wins by checkmate!"
	BlackWins     = "Black wins by checkmate!"
	Stalemate     = "Stalemate! Game is a draw."
	Abandoned     = "Game abandoned."
	WhitePromotes = "White to choose a promotion piece"
	BlackPromotes = "Black to choose a promotion piece"

	// terminal client
	HelpPlaying         = "arrows/mouse move  enter select  esc abandon"
	HelpPromotion       = "q queen  r rook  b bishop  n knight"
	HelpGameOver        = "N new game  x quit"
	AchievementUnlocked = "Achievement unlocked: %s"
	SaveFailed          = "Could not save: %v"
)

// Supported lists the languages with a translation, English first.
var Supported = []language.Tag{language.English, language.German, language.French}

var translations = map[language.Tag]map[string]string{
	language.German: {
		WhiteToMove:   "Weiß am Zug",
		BlackToMove:   "Schwarz am Zug",
		WhiteInCheck:  "Weiß steht im Schach!",
		BlackInCheck:  "Schwarz steht im Schach!",
		WhiteWins:     "Weiß gewinnt durch Schachmatt!",
		BlackWins:     "Schwarz gewinnt durch Schachmatt!",
		Stalemate:     "Patt! Die Partie endet remis.",
		Abandoned:     "Partie abgebrochen.",
		WhitePromotes: "Weiß wählt eine Umwandlungsfigur",
		BlackPromotes: "Schwarz wählt eine Umwandlungsfigur",

		HelpPlaying:         "Pfeile/Maus bewegen  Enter wählen  Esc aufgeben",
		HelpPromotion:       "q Dame  r Turm  b Läufer  n Springer",
		HelpGameOver:        "N neue Partie  x beenden",
		AchievementUnlocked: "Erfolg freigeschaltet: %s",
		SaveFailed:          "Speichern fehlgeschlagen: %v",
	},
	language.French: {
		WhiteToMove:   "Aux blancs de jouer",
		BlackToMove:   "Aux noirs de jouer",
		WhiteInCheck:  "Les blancs sont en échec !",
		BlackInCheck:  "Les noirs sont en échec !",
		WhiteWins:     "Les blancs gagnent par échec et mat !",
		BlackWins:     "Les noirs gagnent par échec et mat !",
		Stalemate:     "Pat ! La partie est nulle.",
		Abandoned:     "Partie abandonnée.",
		WhitePromotes: "Les blancs choisissent une pièce de promotion",
		BlackPromotes: "Les noirs choisissent une pièce de promotion",

		HelpPlaying:         "flèches/souris déplacer  entrée choisir  échap abandonner",
		HelpPromotion:       "q dame  r tour  b fou  n cavalier",
		HelpGameOver:        "N nouvelle partie  x quitter",
		AchievementUnlocked: "Succès débloqué : %s",
		SaveFailed:          "Échec de l'enregistrement : %v",
	},
}

var (
	cat     catalog.Catalog
	matcher = language.NewMatcher(Supported)
)

func init() {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	cat = b
}

// Printer returns a message printer backed by the status catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Best(tag), message.Catalog(cat))
}

// Text translates key into tag's language, falling back to English.
func Text(tag language.Tag, key string) string {
	return Printer(tag).Sprintf(message.Key(key, key))
}

// Textf is Text for keys with printf verbs.
func Textf(tag language.Tag, key string, args ...interface{}) string {
	return Printer(tag).Sprintf(message.Key(key, key), args...)
}

// Best maps any tag onto the closest supported one.
func Best(tags ...language.Tag) language.Tag {
	if len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// FromAcceptLanguage picks a supported tag from an HTTP Accept-Language header.
func FromAcceptLanguage(header string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return language.English
	}
	return Best(tags...)
}

// Parse resolves a configured language name such as "de" or "fr-CA".
func Parse(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	return Best(tag)
}
