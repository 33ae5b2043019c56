package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"github.com/lumideck/lumideck/src/features/config"
	"github.com/lumideck/lumideck/src/features/library"
	"github.com/lumideck/lumideck/src/features/moods"
	"github.com/lumideck/lumideck/src/features/playback"
	"github.com/lumideck/lumideck/src/features/playlists"
	"github.com/lumideck/lumideck/src/features/slideshow"
	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/media"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, store *state.Store, engine *playback.Engine, libraryService *library.Service, playlistService *playlists.Service, moodService *moods.Service, rotator *slideshow.Rotator) *Server {
	engineViews := html.New("./views", ".html")
	engineViews.Debug(cfg.Get().Logger.Level == "debug")
	engineViews.AddFunc("duration", func(seconds int) string {
		if seconds == 0 {
			return "0:00"
		}
		minutes := seconds / 60
		remainingSeconds := seconds % 60
		return fmt.Sprintf("%d:%02d", minutes, remainingSeconds)
	})
	engineViews.AddFunc("totalDuration", func(songs []media.Song) string {
		totalSeconds := 0
		for _, song := range songs {
			totalSeconds += song.DurationSec
		}
		if totalSeconds == 0 {
			return "0 min"
		}
		hours := totalSeconds / 3600
		minutes := (totalSeconds % 3600) / 60
		if hours > 0 {
			return fmt.Sprintf("%d hr %d min", hours, minutes)
		}
		return fmt.Sprintf("%d min", minutes)
	})

	app := fiber.New(fiber.Config{
		Views: engineViews,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "LumiDeck",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             1000 * 1024 * 1024,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Static("/", "./public")
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/", func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		return c.Render("main", fiber.Map{
			"Theme": snap.Theme,
			"View":  snap.View,
		})
	})

	playback.RegisterRoutes(app, engine)
	library.RegisterRoutes(app, library.NewHandler(libraryService, store, libraryService.Files()))
	playlists.RegisterRoutes(app, playlists.NewHandler(playlistService, store))
	moods.RegisterRoutes(app, moods.NewHandler(moodService, store))
	slideshow.RegisterRoutes(app, slideshow.NewHandler(rotator, store))
	state.RegisterRoutes(app, store)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
