// Package metrics exposes playback and library counters on a Prometheus
// endpoint. It runs on its own listener so the scrape surface stays off the
// app port.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/media"
)

// Service counts transport and slideshow events from the bus and reports
// library sizes from the state store.
type Service struct {
	registry *prometheus.Registry
	logger   *slog.Logger
	server   *http.Server

	tracksEnded   prometheus.Counter
	trackChanges  prometheus.Counter
	playStarts    prometheus.Counter
	photoAdvances prometheus.Counter
	volumeChanges prometheus.Counter
	eventsTotal   *prometheus.CounterVec
}

// NewService creates the metrics service, registers all collectors and hooks
// the bus.
func NewService(store *state.Store, b media.Bus, logger *slog.Logger) *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		logger:   logger,
		tracksEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumideck_tracks_ended_total",
			Help: "Tracks that played to their natural end.",
		}),
		trackChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumideck_track_changes_total",
			Help: "Track loads, whether from advancement or selection.",
		}),
		playStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumideck_play_starts_total",
			Help: "Transitions into the playing state.",
		}),
		photoAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumideck_photo_advances_total",
			Help: "Slideshow advancements.",
		}),
		volumeChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumideck_volume_changes_total",
			Help: "Volume adjustments.",
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumideck_bus_events_total",
			Help: "Events published on the bus by type.",
		}, []string{"type"}),
	}

	registry.MustRegister(
		s.tracksEnded, s.trackChanges, s.playStarts, s.photoAdvances,
		s.volumeChanges, s.eventsTotal,
	)
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lumideck_library_songs",
		Help: "Songs in the library.",
	}, func() float64 { return float64(len(store.Songs())) }))
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lumideck_library_photos",
		Help: "Photos in the library.",
	}, func() float64 { return float64(len(store.Photos())) }))
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lumideck_music_playlists",
		Help: "Music playlists.",
	}, func() float64 { return float64(len(store.MusicPlaylists())) }))
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lumideck_photo_playlists",
		Help: "Photo playlists.",
	}, func() float64 { return float64(len(store.PhotoPlaylists())) }))

	b.SubscribeAll(func(e media.Event) {
		s.eventsTotal.WithLabelValues(string(e.Type())).Inc()
		switch ev := e.(type) {
		case media.TrackEndedEvent:
			s.tracksEnded.Inc()
		case media.TrackChangedEvent:
			s.trackChanges.Inc()
		case media.PlayStateChangedEvent:
			if ev.Playing {
				s.playStarts.Inc()
			}
		case media.PhotoAdvancedEvent:
			s.photoAdvances.Inc()
		case media.VolumeChangedEvent:
			s.volumeChanges.Inc()
		}
	})
	return s
}

// Start serves /metrics on its own port.
func (s *Service) Start(port uint32) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		s.logger.Info("Metrics listener started", "port", port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics listener failed", "error", err)
		}
	}()
}

// Stop shuts the metrics listener down.
func (s *Service) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
