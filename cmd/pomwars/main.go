// Package main provides the entry point for the Pom Wars bot.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/graaaaa/pomwars/internal/bot"
	"github.com/graaaaa/pomwars/internal/chat/discord"
	"github.com/graaaaa/pomwars/internal/config"
	"github.com/graaaaa/pomwars/internal/content"
	"github.com/graaaaa/pomwars/internal/ledger"
	"github.com/graaaaa/pomwars/internal/scoreboard"
	"github.com/graaaaa/pomwars/internal/store"
	"github.com/graaaaa/pomwars/internal/war"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.BotToken.IsEmpty() {
		log.Fatal("POMWARS_BOT_TOKEN is required")
	}

	// 2. Open SQLite store
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Optional debug wipe (no-op unless built with the debug tag)
	if cfg.DropRowsOnStart {
		if err := db.DropAllRows(ctx); err != nil {
			log.Printf("Warning: drop rows on start: %v", err)
		}
	}

	// 4. Load flavor content up front and watch for edits
	library, err := content.Load(cfg.ContentDir)
	if err != nil {
		log.Fatalf("Failed to load content from %s: %v", cfg.ContentDir, err)
	}
	go func() {
		if err := library.Watch(ctx, logger); err != nil && ctx.Err() == nil {
			logger.Warn("content watcher stopped", "error", err)
		}
	}()

	// 5. Connect the chat client
	client, err := discord.New(ctx, cfg.BotToken, discord.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to connect to Discord: %v", err)
	}

	// 6. Wire the core
	led := ledger.New(db,
		ledger.WithLogger(logger),
		ledger.WithMultilineDescriptions(cfg.AllowMultiline))
	board := scoreboard.New(db, client, cfg.JoinChannel, cfg.JoinEmoji,
		scoreboard.WithLogger(logger))
	resolver := war.NewResolver(db, library,
		war.WithScoreboard(board),
		war.WithResolverLogger(logger),
		war.WithBaseDamage(cfg.BaseDamageNormal, cfg.BaseDamageHeavy))
	teams := war.NewTeamPolicy(cfg.KnightOnlyGuilds, cfg.VikingOnlyGuilds, db, war.DefaultRNG())

	b := bot.New(cfg, client, db, led, resolver, board, teams,
		bot.WithLogger(logger))
	defer b.Close()

	// 7. Bring the scoreboard up to date before serving events
	if err := board.Update(ctx); err != nil {
		logger.Warn("startup scoreboard update failed", "error", err)
	}

	// 8. Serve gateway events until interrupted
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening for events",
			"prefix", cfg.CommandPrefix, "join_channel", cfg.JoinChannel)
		errCh <- client.Listen(ctx, discord.Events{
			OnMessage:  b.HandleMessage,
			OnReaction: b.HandleReaction,
		})
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-done:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			log.Fatalf("Gateway error: %v", err)
		}
	}
}
