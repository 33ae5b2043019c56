// Package slideshow advances the background photo through the selected
// photo playlist.
package slideshow

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/media"
)

// Rotator drives photo advancement. Wraparound lives here, not in the state
// store: the rotator moves through the playlist modulo its length, while the
// store just records the index it is told.
//
// Timing follows the selected playlist's rule: a seconds rule advances on a
// clock, a songchange rule advances when the playback engine loads a new
// track, and a manual rule advances only on explicit calls.
type Rotator struct {
	store  *state.Store
	bus    media.Bus
	logger *slog.Logger

	mu          sync.Mutex
	lastAdvance time.Time
}

// NewRotator creates a rotator and hooks it to track changes on the bus.
func NewRotator(store *state.Store, b media.Bus, logger *slog.Logger) *Rotator {
	r := &Rotator{
		store:       store,
		bus:         b,
		logger:      logger,
		lastAdvance: time.Now(),
	}
	b.Subscribe(media.EventTrackChanged, func(media.Event) {
		if rule, ok := r.timingRule(); ok && rule.Mode == media.TimingSongChange {
			r.Next()
		}
	})
	return r
}

// Run polls the clock for seconds-mode playlists until ctx is cancelled.
func (r *Rotator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tickClock()
		}
	}
}

func (r *Rotator) tickClock() {
	rule, ok := r.timingRule()
	if !ok || rule.Mode != media.TimingSeconds {
		return
	}
	interval := time.Duration(rule.DurationSec) * time.Second
	if interval <= 0 {
		interval = 8 * time.Second
	}

	r.mu.Lock()
	due := time.Since(r.lastAdvance) >= interval
	r.mu.Unlock()
	if due {
		r.Next()
	}
}

// Next moves to the following photo, wrapping past the end. Randomized
// playlists jump to a random other photo instead.
func (r *Rotator) Next() {
	r.step(1)
}

// Previous moves to the preceding photo, wrapping before the start.
func (r *Rotator) Previous() {
	r.step(-1)
}

func (r *Rotator) step(delta int) {
	snap := r.store.Snapshot()
	photos := r.store.ResolvePhotoPlaylist(snap.SelectedPhotoPlaylistID)
	if len(photos) == 0 {
		return
	}

	current := snap.CurrentPhotoIndex
	if current < 0 || current >= len(photos) {
		current = 0
	}

	next := ((current+delta)%len(photos) + len(photos)) % len(photos)
	if playlist := r.store.PhotoPlaylist(snap.SelectedPhotoPlaylistID); playlist != nil && playlist.Randomize && len(photos) > 1 {
		next = rand.Intn(len(photos) - 1)
		if next >= current {
			next++
		}
	}

	r.mu.Lock()
	r.lastAdvance = time.Now()
	r.mu.Unlock()

	r.store.SetCurrentPhotoIndex(next)
	r.bus.Publish(media.NewPhotoAdvancedEvent(photos[next].ID, next))
	r.logger.Debug("Slideshow advanced", "index", next, "photo", photos[next].ID)
}

func (r *Rotator) timingRule() (media.TimingRule, bool) {
	snap := r.store.Snapshot()
	if snap.SelectedPhotoPlaylistID == "" {
		return media.TimingRule{}, false
	}
	playlist := r.store.PhotoPlaylist(snap.SelectedPhotoPlaylistID)
	if playlist == nil {
		return media.TimingRule{}, false
	}
	return playlist.Timing, true
}
