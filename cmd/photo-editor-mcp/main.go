package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/photo-editor-mcp/internal/config"
	"github.com/ironsheep/photo-editor-mcp/internal/editor"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/removebg"
	"github.com/ironsheep/photo-editor-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("photo-editor-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("photo-editor-mcp - MCP server for interactive photo adjustment")
			fmt.Println()
			fmt.Println("Usage: photo-editor-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PHOTO_EDITOR_LOG_LEVEL=debug         Log level (debug, info, warn, error)")
			fmt.Println("  PHOTO_EDITOR_JPEG_QUALITY=90         JPEG export quality (1-100)")
			fmt.Println("  PHOTO_EDITOR_MAX_INPUT_BYTES=N       Largest accepted input file")
			fmt.Println("  REMOVE_BG_API_KEY=key                API key for background removal")
			fmt.Println("  REMOVE_BG_ENDPOINT=url               Background removal endpoint")
			fmt.Println("  REMOVE_BG_TIMEOUT=60s                Background removal request timeout")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// Log to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: cfg.LogLevel <= slog.LevelDebug,
	}))
	slog.SetDefault(logger)
	editor.SetLogger(logger)

	logger.Debug("starting photo-editor-mcp", "version", Version, "built", BuildTime, "commit", GitCommit)
	if cfg.RemoveBG.APIKey == "" {
		logger.Warn("REMOVE_BG_API_KEY not set; background removal will fail")
	}

	session := editor.New(editor.Options{
		Remover: removebg.NewClient(cfg.RemoveBG),
		Export:  imaging.ExportOptions{JPEGQuality: cfg.JPEGQuality},
	})

	srv := server.New(session, server.Options{
		MaxInputBytes: cfg.MaxInputBytes,
		Version:       Version,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
