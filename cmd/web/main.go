package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/envstruct"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/flightrecorder"
	"github.com/mkarvone/repsmith/internal/importer"
	"github.com/mkarvone/repsmith/internal/logging"
	"github.com/mkarvone/repsmith/internal/pprofserver"
	"github.com/mkarvone/repsmith/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	importService  *importer.Service
	catalogRepo    *catalog.Repository
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"REPSMITH_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"REPSMITH_SQLITE_URL" envDefault:"./repsmith.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"REPSMITH_PPROF_ADDR" envDefault:""`
	// TracesDirectory is where timeout traces are written. Empty disables the flight recorder.
	TracesDirectory string `env:"REPSMITH_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var recorder *flightrecorder.Recorder
	if cfg.TracesDirectory != "" {
		if recorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:    logger,
			Directory: cfg.TracesDirectory,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	app := application{
		logger:         logger,
		importService:  importer.NewService(db, logger),
		catalogRepo:    catalog.NewRepository(db),
		flightRecorder: recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
