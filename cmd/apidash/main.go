package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	Config   string `short:"c" type:"path" help:"Path to config.yml (defaults to ./config.yml, ./config/config.yml)."`
	EnvFile  string `name:"env-file" type:"path" help:"Path to a .env file (defaults to ./.env when present)."`
	LogLevel string `name:"log-level" help:"Override logging.level (trace, debug, info, warn, error, disabled)."`
}

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" default:"1" help:"Serve the dashboard page, JSON API and live updates."`
	Snapshot snapshotCmd `cmd:"" help:"Load every widget once and print the resulting regions."`
	Key      keyCmd      `cmd:"" help:"Manage the stored TMDB API key."`
	Manifest manifestCmd `cmd:"" help:"Print or write the default widget manifest."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("apidash"),
		kong.Description("A single-page dashboard of widgets backed by public web APIs."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	kctx.FatalIfErrorf(kctx.Run())
}
