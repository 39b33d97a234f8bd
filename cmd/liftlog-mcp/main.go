package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Stdout is the MCP transport; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.Database.Path); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	db, err := storage.New(context.Background(), cfg.Database.Path)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	s := mcp.New(db, Version, log)
	if err := server.ServeStdio(s); err != nil && err != io.EOF {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
