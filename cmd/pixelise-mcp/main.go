package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/pixelise-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `pixelise-mcp - MCP server that pixelates images with a mode filter

Every tile is repainted with its most frequent exact colour; nothing is
averaged or resampled. Source files are never modified.

Usage: pixelise-mcp [--version | --help]

Tools:
  image_pixelate        pixelate an image or region, write it or return a preview
  image_pixelate_text   find text (Tesseract or heuristic) and pixelate it
  image_find_text       list text boxes without changing the image
  image_tile_modes      report each tile's mode colour
  image_tile_grid       draw the tile grid over the image
  image_preview, image_load, image_dimensions, image_sample_color

Environment:
  PIXELISE_MCP_LOG_LEVEL=debug   debug logging on stderr

Messages are JSON-RPC on stdin/stdout, one per line.
`

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pixelise-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Print(usage)
			return
		}
	}

	// Log to stderr; stdout is for MCP protocol
	level := slog.LevelInfo
	if os.Getenv("PIXELISE_MCP_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Debug("starting pixelise-mcp", "version", Version, "built", BuildTime, "commit", GitCommit)

	if Version != "dev" {
		server.Version = Version
	}
	srv := server.NewWithLogger(logger)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
