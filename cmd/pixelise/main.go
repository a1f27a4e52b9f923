package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/pixelise-mcp/internal/cli"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	var c cli.CLI
	kctx := kong.Parse(&c, cli.Options(Version)...)

	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(); err != nil {
		slog.Error("pixelise failed", "error", err)
		stop()
		os.Exit(1)
	}
}
