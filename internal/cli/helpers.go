package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oklahomahail/plotboard/internal/config"
	"github.com/oklahomahail/plotboard/internal/importer"
	"github.com/oklahomahail/plotboard/internal/render"
	"github.com/oklahomahail/plotboard/internal/store"
)

// app bundles everything a command needs: config, the board store, the
// import engine, and a renderer bound to stdout.
type app struct {
	Config   *config.Config
	Store    *store.Store
	Engine   *importer.Engine
	Renderer *render.Renderer
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Output = output
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	return &app{
		Config:   cfg,
		Store:    st,
		Engine:   importer.New(nil, nil, logger),
		Renderer: render.NewRenderer(os.Stdout, render.Format(cfg.Output)),
	}, nil
}

func (a *app) Close() {
	_ = a.Store.Close()
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
