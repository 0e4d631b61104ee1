// Command chesstui is a same-device chess board for the terminal: two players
// take turns on one keyboard or mouse.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/benbeisheim/cheesychess-backend/internal/config"
	"github.com/benbeisheim/cheesychess-backend/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "chesstui:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadClient("chesstui", args)
	if errors.Is(err, config.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	var store *storage.Storage
	if cfg.DataDir != "" {
		dbDir, err := storage.DatabaseDir(cfg.DataDir)
		if err != nil {
			return err
		}
		if store, err = storage.Open(dbDir); err != nil {
			return err
		}
		defer store.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	u, err := newUI(screen, store, cfg.Language, cfg.FEN)
	if err != nil {
		return err
	}
	u.run()
	return nil
}
