package main

import (
	"context"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/turtlesoup/internal/ai"
	"github.com/myrjola/turtlesoup/internal/envstruct"
	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/game"
	"github.com/myrjola/turtlesoup/internal/logging"
	"github.com/myrjola/turtlesoup/internal/pprofserver"
	"github.com/myrjola/turtlesoup/internal/repositories"
	"github.com/myrjola/turtlesoup/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	coordinator    *game.Coordinator
	participants   *repositories.ParticipantRepository
	templates      map[string]*template.Template
	pollInterval   time.Duration
}

type config struct {
	Addr         string `env:"TURTLESOUP_ADDR"          envDefault:"localhost:4000"`
	SqliteURL    string `env:"TURTLESOUP_SQLITE_URL"    envDefault:"./turtlesoup.sqlite"`
	PprofPort    string `env:"TURTLESOUP_PPROF_PORT"    envDefault:":6060"`
	PollInterval string `env:"TURTLESOUP_POLL_INTERVAL" envDefault:"2s"`
}

func run(
	ctx context.Context,
	logger *slog.Logger,
	lookupEnv func(string) (string, bool),
	oracle game.Oracle,
) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse environment")
	}

	pollInterval, err := time.ParseDuration(cfg.PollInterval)
	if err != nil {
		return errors.Wrap(err, "parse poll interval", slog.String("value", cfg.PollInterval))
	}

	// pprof listens on localhost only so that it's not open to the world.
	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	participants := repositories.NewParticipantRepository(dbs, logger)
	puzzles := repositories.NewPuzzleRepository(dbs, logger)
	transcripts := repositories.NewTranscriptRepository(dbs, logger)

	coordinator := game.NewCoordinator(oracle, participants, puzzles, transcripts, logger)

	templates, err := newTemplateCache()
	if err != nil {
		return errors.Wrap(err, "build template cache")
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		coordinator:    coordinator,
		participants:   participants,
		templates:      templates,
		pollInterval:   pollInterval,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// Missing .env is fine, the environment may be configured externally.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error("load .env", errors.SlogError(err))
	}

	oracle := ai.NewClient()

	ctx := context.Background()
	if err := run(ctx, logger, os.LookupEnv, &oracle); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}
