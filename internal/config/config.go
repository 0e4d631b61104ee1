// Package config resolves server and terminal-client settings from command
// line flags, falling back to CHESS_* environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/text/language"

	"github.com/benbeisheim/cheesychess-backend/internal/locale"
	"github.com/benbeisheim/cheesychess-backend/internal/storage"
)

const (
	envAddr     = "CHESS_ADDR"
	envOrigins  = "CHESS_ORIGINS"
	envDataDir  = "CHESS_DATA_DIR"
	envLogLevel = "CHESS_LOG_LEVEL"
	envLang     = "CHESS_LANG"
)

// ErrHelp is returned by Load when -h or -help was given.
var ErrHelp = flag.ErrHelp

type Config struct {
	Addr string
	// AllowOrigins is a comma separated CORS origin list.
	AllowOrigins string
	// DataDir holds the achievement database. Empty keeps everything in memory.
	DataDir  string
	LogLevel log.Level
	// Language is the status text language when a request does not ask for one.
	Language language.Tag
	// FEN, when set, is the position the terminal client starts from.
	FEN string
}

func Default() *Config {
	dataDir, err := storage.DataDir()
	if err != nil {
		dataDir = ""
	}
	return &Config{
		Addr:         ":3000",
		AllowOrigins: "http://localhost:5173",
		DataDir:      dataDir,
		LogLevel:     log.LevelInfo,
		Language:     language.English,
	}
}

// Load parses the server's args (without the program name). Environment
// variables replace the defaults and flags replace both.
func Load(name string, args []string) (*Config, error) {
	return load(name, args, false)
}

// LoadClient is Load for the terminal client, which has no listener and may
// start from a FEN position.
func LoadClient(name string, args []string) (*Config, error) {
	return load(name, args, true)
}

func load(name string, args []string, client bool) (*Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	level := "info"
	if !client {
		fs.StringVar(&cfg.Addr, "addr", envOr(envAddr, cfg.Addr), "HTTP listen address")
		fs.StringVar(&cfg.AllowOrigins, "origins", envOr(envOrigins, cfg.AllowOrigins), "comma separated CORS origins")
		fs.StringVar(&level, "log-level", envOr(envLogLevel, level), "trace, debug, info, warn or error")
	}
	fs.StringVar(&cfg.DataDir, "data", envOr(envDataDir, cfg.DataDir), "data directory; empty keeps achievements in memory")
	lang := fs.String("lang", envOr(envLang, "en"), "status text language (en, de, fr)")
	if client {
		fs.StringVar(&cfg.FEN, "fen", "", "start the game from this FEN position")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = lvl
	cfg.Language = locale.Parse(*lang)
	return cfg, nil
}

// Origins splits AllowOrigins into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

var errUnknownLevel = errors.New("unknown log level")

func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: %q", errUnknownLevel, s)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
