package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lumideck/lumideck/src/features/config"
	"github.com/lumideck/lumideck/src/features/hosting"
	"github.com/lumideck/lumideck/src/features/library"
	"github.com/lumideck/lumideck/src/features/logging"
	"github.com/lumideck/lumideck/src/features/metrics"
	"github.com/lumideck/lumideck/src/features/moods"
	"github.com/lumideck/lumideck/src/features/playback"
	"github.com/lumideck/lumideck/src/features/playlists"
	"github.com/lumideck/lumideck/src/features/slideshow"
	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/infra/audio"
	"github.com/lumideck/lumideck/src/infra/audio/mock"
	"github.com/lumideck/lumideck/src/infra/bus"
	"github.com/lumideck/lumideck/src/infra/database"
	"github.com/lumideck/lumideck/src/infra/files"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the persistence gateway
	gateway, err := database.NewSqliteGateway(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer gateway.Close()

	// Create the event bus and state store
	eventBus := bus.NewSyncBus()
	store := state.NewStore(gateway, logger)
	if err := store.Hydrate(ctx); err != nil {
		log.Fatalf("failed to hydrate state: %v", err)
	}
	go store.Run(ctx)
	store.BindPlayback(eventBus)

	// Create the file store and library service
	fileStore, err := files.NewStore(cfgManager.Get().LibraryPath, cfgManager.Get().Import.ThumbnailWidth)
	if err != nil {
		log.Fatalf("failed to create file store: %v", err)
	}
	libraryService := library.NewService(store, fileStore, logger)

	// Start the drop directory watcher if enabled
	watcher, err := library.NewWatcher(libraryService)
	if err != nil {
		slog.Error("Failed to create drop watcher", "error", err)
	} else if cfgManager.Get().Import.AutoStartWatcher {
		if err := watcher.Start(ctx, cfgManager.Get().Import.DropPath); err != nil {
			slog.Error("Failed to start drop watcher", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	// Create the playback engine
	var output playback.Output
	if cfgManager.Get().Playback.Silent {
		output = mock.New()
		slog.Info("Audio output disabled, running silent")
	} else {
		output = audio.NewSpeaker()
	}
	tickInterval := time.Duration(cfgManager.Get().Playback.UpdateIntervalMs) * time.Millisecond
	engine := playback.NewEngine(output, eventBus, logger, tickInterval)
	engine.Start(ctx)
	defer engine.Stop()

	// Restore the previous session: volume, repeat mode and selected queue
	snap := store.Snapshot()
	engine.SetVolume(snap.Volume)
	if id := snap.SelectedMusicPlaylistID; id != "" {
		if playlist := store.MusicPlaylist(id); playlist != nil {
			engine.SetRepeatMode(playlist.RepeatMode)
			engine.SetPlaylist(store.QueueForPlaylist(id))
		}
	}

	// Create the feature services
	playlistService := playlists.NewService(store, engine, logger)
	moodService := moods.NewService(store, logger)

	// Create the slideshow rotator
	rotator := slideshow.NewRotator(store, eventBus, logger)
	if cfgManager.Get().Slideshow.Enabled {
		go rotator.Run(ctx)
	}

	// Start the metrics listener if enabled
	if cfgManager.Get().Metrics.Enabled {
		metricsService := metrics.NewService(store, eventBus, logger)
		metricsService.Start(cfgManager.Get().Metrics.Port)
		defer metricsService.Stop(ctx)
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, store, engine, libraryService, playlistService, moodService, rotator)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}

	// Stop background work and flush pending state writes
	cancel()
	store.Drain()
	if err := output.Close(); err != nil {
		slog.Error("Failed to close audio output", "error", err)
	}
	slog.Info("Server gracefully shut down.")
}
