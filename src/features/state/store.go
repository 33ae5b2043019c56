// Package state holds the authoritative in-memory application state and its
// write-behind persistence. All mutations pass through the Store one at a
// time, so cross-collection invariants (playlist id lists never referencing
// removed entities for long, selections never pointing at removed playlists)
// hold at every observable point.
package state

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/lumideck/lumideck/src/media"
)

// Store is the single writer for application state. Reads return copies;
// callers never see internal slices.
type Store struct {
	actions chan func()
	done    chan struct{}

	gw      media.Gateway
	logger  *slog.Logger
	persist *persister

	songs          []media.Song
	photos         []media.Photo
	musicPlaylists []media.MusicPlaylist
	photoPlaylists []media.PhotoPlaylist
	moodPresets    []media.MoodPreset
	snapshot       media.AppStateSnapshot

	// transient playback mirror, never persisted
	isPlaying bool
	position  time.Duration
	duration  time.Duration
}

// NewStore creates an empty store. Call Hydrate before serving requests and
// Run to start the action loop and the persistence queue.
func NewStore(gw media.Gateway, logger *slog.Logger) *Store {
	return &Store{
		actions:  make(chan func()),
		done:     make(chan struct{}),
		gw:       gw,
		logger:   logger,
		persist:  newPersister(logger),
		snapshot: media.DefaultSnapshot(),
	}
}

// Run drives the action loop and the write-behind persister until ctx is
// cancelled. Every mutation and read runs on this goroutine, which is what
// linearizes concurrent callers.
func (s *Store) Run(ctx context.Context) {
	go s.persist.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			close(s.done)
			return
		case action := <-s.actions:
			action()
		}
	}
}

// Drain blocks until the action loop has stopped and the persister has
// flushed its queue. Call after cancelling the Run context, before closing
// the gateway.
func (s *Store) Drain() {
	<-s.done
	<-s.persist.flushed
}

// do runs fn on the store goroutine and waits for it to finish.
func (s *Store) do(fn func()) {
	doneCh := make(chan struct{})
	select {
	case s.actions <- func() {
		fn()
		close(doneCh)
	}:
		<-doneCh
	case <-s.done:
	}
}

// Hydrate loads every collection and the snapshot from the gateway. An empty
// preset collection is seeded with the built-in defaults, and a missing
// snapshot starts from the default one. Hydrate runs before the action loop,
// so it touches the fields directly.
func (s *Store) Hydrate(ctx context.Context) error {
	songs, err := s.gw.ListSongs(ctx)
	if err != nil {
		return err
	}
	photos, err := s.gw.ListPhotos(ctx)
	if err != nil {
		return err
	}
	musicPlaylists, err := s.gw.ListMusicPlaylists(ctx)
	if err != nil {
		return err
	}
	photoPlaylists, err := s.gw.ListPhotoPlaylists(ctx)
	if err != nil {
		return err
	}
	presets, err := s.gw.ListMoodPresets(ctx)
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		presets = media.DefaultMoodPresets()
		for _, p := range presets {
			if err := s.gw.UpsertMoodPreset(ctx, p); err != nil {
				s.logger.Error("Failed to seed mood preset", "preset", p.ID, "error", err)
			}
		}
		s.logger.Info("Seeded default mood presets", "count", len(presets))
	}
	snap, err := s.gw.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		def := media.DefaultSnapshot()
		snap = &def
		if err := s.gw.SaveSnapshot(ctx, def); err != nil {
			s.logger.Error("Failed to save initial snapshot", "error", err)
		}
	}
	snap.Volume = media.ClampVolume(snap.Volume)

	s.songs = songs
	s.photos = photos
	s.musicPlaylists = musicPlaylists
	s.photoPlaylists = photoPlaylists
	s.moodPresets = presets
	s.snapshot = *snap

	s.logger.Info("State hydrated",
		"songs", len(songs),
		"photos", len(photos),
		"music_playlists", len(musicPlaylists),
		"photo_playlists", len(photoPlaylists),
		"mood_presets", len(presets))
	return nil
}

// --- reads ---

// Songs returns a copy of the song collection.
func (s *Store) Songs() []media.Song {
	var out []media.Song
	s.do(func() {
		out = make([]media.Song, len(s.songs))
		copy(out, s.songs)
	})
	return out
}

// Song returns one song by id, nil when unknown.
func (s *Store) Song(id string) *media.Song {
	var out *media.Song
	s.do(func() {
		if i := indexByID(s.songs, id, func(x media.Song) string { return x.ID }); i >= 0 {
			song := s.songs[i]
			out = &song
		}
	})
	return out
}

// Photos returns a copy of the photo collection.
func (s *Store) Photos() []media.Photo {
	var out []media.Photo
	s.do(func() {
		out = make([]media.Photo, len(s.photos))
		copy(out, s.photos)
	})
	return out
}

// Photo returns one photo by id, nil when unknown.
func (s *Store) Photo(id string) *media.Photo {
	var out *media.Photo
	s.do(func() {
		if i := indexByID(s.photos, id, func(x media.Photo) string { return x.ID }); i >= 0 {
			photo := s.photos[i]
			out = &photo
		}
	})
	return out
}

// MusicPlaylists returns a copy of the music playlist collection.
func (s *Store) MusicPlaylists() []media.MusicPlaylist {
	var out []media.MusicPlaylist
	s.do(func() {
		out = make([]media.MusicPlaylist, len(s.musicPlaylists))
		copy(out, s.musicPlaylists)
	})
	return out
}

// MusicPlaylist returns one music playlist by id, nil when unknown.
func (s *Store) MusicPlaylist(id string) *media.MusicPlaylist {
	var out *media.MusicPlaylist
	s.do(func() {
		if i := indexByID(s.musicPlaylists, id, func(x media.MusicPlaylist) string { return x.ID }); i >= 0 {
			p := s.musicPlaylists[i]
			p.SongIDs = append([]string(nil), p.SongIDs...)
			out = &p
		}
	})
	return out
}

// PhotoPlaylists returns a copy of the photo playlist collection.
func (s *Store) PhotoPlaylists() []media.PhotoPlaylist {
	var out []media.PhotoPlaylist
	s.do(func() {
		out = make([]media.PhotoPlaylist, len(s.photoPlaylists))
		copy(out, s.photoPlaylists)
	})
	return out
}

// PhotoPlaylist returns one photo playlist by id, nil when unknown.
func (s *Store) PhotoPlaylist(id string) *media.PhotoPlaylist {
	var out *media.PhotoPlaylist
	s.do(func() {
		if i := indexByID(s.photoPlaylists, id, func(x media.PhotoPlaylist) string { return x.ID }); i >= 0 {
			p := s.photoPlaylists[i]
			p.PhotoIDs = append([]string(nil), p.PhotoIDs...)
			out = &p
		}
	})
	return out
}

// MoodPresets returns a copy of the mood preset collection.
func (s *Store) MoodPresets() []media.MoodPreset {
	var out []media.MoodPreset
	s.do(func() {
		out = make([]media.MoodPreset, len(s.moodPresets))
		copy(out, s.moodPresets)
	})
	return out
}

// MoodPreset returns one preset by id, nil when unknown.
func (s *Store) MoodPreset(id string) *media.MoodPreset {
	var out *media.MoodPreset
	s.do(func() {
		if i := indexByID(s.moodPresets, id, func(x media.MoodPreset) string { return x.ID }); i >= 0 {
			p := s.moodPresets[i]
			out = &p
		}
	})
	return out
}

// Snapshot returns the current persisted-state snapshot.
func (s *Store) Snapshot() media.AppStateSnapshot {
	var out media.AppStateSnapshot
	s.do(func() { out = s.snapshot })
	return out
}

// PlaybackMirror reports the transient playback fields tracked from the bus.
func (s *Store) PlaybackMirror() (playing bool, position, duration time.Duration) {
	s.do(func() {
		playing = s.isPlaying
		position = s.position
		duration = s.duration
	})
	return playing, position, duration
}

// --- song and photo mutations ---

// UpsertSong inserts or replaces a song.
func (s *Store) UpsertSong(song media.Song) {
	s.do(func() {
		s.songs = upsert(s.songs, song, func(x media.Song) string { return x.ID })
		s.persist.enqueue("upsert song", func(ctx context.Context) error {
			return s.gw.UpsertSong(ctx, song)
		})
	})
}

// RemoveSongs deletes songs and strips their ids from every music playlist
// in the same action, so no observer ever sees a playlist pointing at a
// deleted song after the removal completes.
func (s *Store) RemoveSongs(ids []string) {
	s.do(func() {
		s.songs = removeByIDs(s.songs, ids, func(x media.Song) string { return x.ID })

		for i := range s.musicPlaylists {
			kept, changed := media.WithoutIDs(s.musicPlaylists[i].SongIDs, ids)
			if changed {
				s.musicPlaylists[i].SongIDs = kept
				s.musicPlaylists[i].UpdatedAt = time.Now()
				p := s.musicPlaylists[i]
				s.persist.enqueue("cascade music playlist", func(ctx context.Context) error {
					return s.gw.UpsertMusicPlaylist(ctx, p)
				})
			}
		}

		for _, id := range ids {
			if s.snapshot.CurrentTrackID == id {
				s.snapshot.CurrentTrackID = ""
				s.enqueueSnapshot()
				break
			}
		}

		removed := append([]string(nil), ids...)
		s.persist.enqueue("remove songs", func(ctx context.Context) error {
			return s.gw.RemoveSongs(ctx, removed)
		})
	})
}

// UpdateSongDuration backfills a probed duration. It reports false when the
// song was removed while the probe was running, in which case nothing is
// written.
func (s *Store) UpdateSongDuration(id string, seconds int) bool {
	var ok bool
	s.do(func() {
		i := indexByID(s.songs, id, func(x media.Song) string { return x.ID })
		if i < 0 {
			return
		}
		s.songs[i].DurationSec = seconds
		song := s.songs[i]
		s.persist.enqueue("update song duration", func(ctx context.Context) error {
			return s.gw.UpsertSong(ctx, song)
		})
		ok = true
	})
	return ok
}

// UpsertPhoto inserts or replaces a photo.
func (s *Store) UpsertPhoto(photo media.Photo) {
	s.do(func() {
		s.photos = upsert(s.photos, photo, func(x media.Photo) string { return x.ID })
		s.persist.enqueue("upsert photo", func(ctx context.Context) error {
			return s.gw.UpsertPhoto(ctx, photo)
		})
	})
}

// RemovePhotos deletes photos and strips their ids from every photo playlist
// in the same action.
func (s *Store) RemovePhotos(ids []string) {
	s.do(func() {
		s.photos = removeByIDs(s.photos, ids, func(x media.Photo) string { return x.ID })

		for i := range s.photoPlaylists {
			kept, changed := media.WithoutIDs(s.photoPlaylists[i].PhotoIDs, ids)
			if changed {
				s.photoPlaylists[i].PhotoIDs = kept
				s.photoPlaylists[i].UpdatedAt = time.Now()
				p := s.photoPlaylists[i]
				s.persist.enqueue("cascade photo playlist", func(ctx context.Context) error {
					return s.gw.UpsertPhotoPlaylist(ctx, p)
				})
			}
		}

		removed := append([]string(nil), ids...)
		s.persist.enqueue("remove photos", func(ctx context.Context) error {
			return s.gw.RemovePhotos(ctx, removed)
		})
	})
}

// UpdatePhotoDimensions backfills probed dimensions. It reports false when
// the photo was removed while the probe was running.
func (s *Store) UpdatePhotoDimensions(id string, width, height int) bool {
	var ok bool
	s.do(func() {
		i := indexByID(s.photos, id, func(x media.Photo) string { return x.ID })
		if i < 0 {
			return
		}
		s.photos[i].Width = width
		s.photos[i].Height = height
		photo := s.photos[i]
		s.persist.enqueue("update photo dimensions", func(ctx context.Context) error {
			return s.gw.UpsertPhoto(ctx, photo)
		})
		ok = true
	})
	return ok
}

// --- playlist mutations ---

// UpsertMusicPlaylist inserts or replaces a music playlist.
func (s *Store) UpsertMusicPlaylist(p media.MusicPlaylist) {
	s.do(func() {
		s.musicPlaylists = upsert(s.musicPlaylists, p, func(x media.MusicPlaylist) string { return x.ID })
		s.persist.enqueue("upsert music playlist", func(ctx context.Context) error {
			return s.gw.UpsertMusicPlaylist(ctx, p)
		})
	})
}

// UpdateMusicPlaylist applies mutate to the stored playlist under the action
// lock and persists the result. It reports false when the playlist is
// unknown.
func (s *Store) UpdateMusicPlaylist(id string, mutate func(*media.MusicPlaylist)) bool {
	var ok bool
	s.do(func() {
		i := indexByID(s.musicPlaylists, id, func(x media.MusicPlaylist) string { return x.ID })
		if i < 0 {
			return
		}
		mutate(&s.musicPlaylists[i])
		s.musicPlaylists[i].UpdatedAt = time.Now()
		p := s.musicPlaylists[i]
		s.persist.enqueue("update music playlist", func(ctx context.Context) error {
			return s.gw.UpsertMusicPlaylist(ctx, p)
		})
		ok = true
	})
	return ok
}

// RemoveMusicPlaylists deletes music playlists, clearing the selection when
// it pointed at one of them.
func (s *Store) RemoveMusicPlaylists(ids []string) {
	s.do(func() {
		s.musicPlaylists = removeByIDs(s.musicPlaylists, ids, func(x media.MusicPlaylist) string { return x.ID })
		for _, id := range ids {
			if s.snapshot.SelectedMusicPlaylistID == id {
				s.snapshot.SelectedMusicPlaylistID = ""
				s.snapshot.CurrentTrackID = ""
				s.enqueueSnapshot()
				break
			}
		}
		removed := append([]string(nil), ids...)
		s.persist.enqueue("remove music playlists", func(ctx context.Context) error {
			return s.gw.RemoveMusicPlaylists(ctx, removed)
		})
	})
}

// UpsertPhotoPlaylist inserts or replaces a photo playlist.
func (s *Store) UpsertPhotoPlaylist(p media.PhotoPlaylist) {
	s.do(func() {
		s.photoPlaylists = upsert(s.photoPlaylists, p, func(x media.PhotoPlaylist) string { return x.ID })
		s.persist.enqueue("upsert photo playlist", func(ctx context.Context) error {
			return s.gw.UpsertPhotoPlaylist(ctx, p)
		})
	})
}

// UpdatePhotoPlaylist applies mutate to the stored playlist under the action
// lock and persists the result. It reports false when the playlist is
// unknown.
func (s *Store) UpdatePhotoPlaylist(id string, mutate func(*media.PhotoPlaylist)) bool {
	var ok bool
	s.do(func() {
		i := indexByID(s.photoPlaylists, id, func(x media.PhotoPlaylist) string { return x.ID })
		if i < 0 {
			return
		}
		mutate(&s.photoPlaylists[i])
		s.photoPlaylists[i].UpdatedAt = time.Now()
		p := s.photoPlaylists[i]
		s.persist.enqueue("update photo playlist", func(ctx context.Context) error {
			return s.gw.UpsertPhotoPlaylist(ctx, p)
		})
		ok = true
	})
	return ok
}

// RemovePhotoPlaylists deletes photo playlists, clearing the selection when
// it pointed at one of them.
func (s *Store) RemovePhotoPlaylists(ids []string) {
	s.do(func() {
		s.photoPlaylists = removeByIDs(s.photoPlaylists, ids, func(x media.PhotoPlaylist) string { return x.ID })
		for _, id := range ids {
			if s.snapshot.SelectedPhotoPlaylistID == id {
				s.snapshot.SelectedPhotoPlaylistID = ""
				s.snapshot.CurrentPhotoIndex = 0
				s.enqueueSnapshot()
				break
			}
		}
		removed := append([]string(nil), ids...)
		s.persist.enqueue("remove photo playlists", func(ctx context.Context) error {
			return s.gw.RemovePhotoPlaylists(ctx, removed)
		})
	})
}

// --- mood presets ---

// UpsertMoodPreset inserts or replaces a preset, clamping the intensity.
func (s *Store) UpsertMoodPreset(p media.MoodPreset) {
	s.do(func() {
		p.Intensity = media.ClampIntensity(p.Intensity)
		s.moodPresets = upsert(s.moodPresets, p, func(x media.MoodPreset) string { return x.ID })
		s.persist.enqueue("upsert mood preset", func(ctx context.Context) error {
			return s.gw.UpsertMoodPreset(ctx, p)
		})
	})
}

// SelectMoodPreset records the active preset. It reports false when the
// preset is unknown, leaving the selection untouched.
func (s *Store) SelectMoodPreset(id string) bool {
	var ok bool
	s.do(func() {
		if id != "" && indexByID(s.moodPresets, id, func(x media.MoodPreset) string { return x.ID }) < 0 {
			return
		}
		s.snapshot.MoodPresetID = id
		s.enqueueSnapshot()
		ok = true
	})
	return ok
}

// --- selections and UI state ---

// SelectMusicPlaylist records the active music playlist. It reports false
// when the playlist is unknown.
func (s *Store) SelectMusicPlaylist(id string) bool {
	var ok bool
	s.do(func() {
		if id != "" && indexByID(s.musicPlaylists, id, func(x media.MusicPlaylist) string { return x.ID }) < 0 {
			return
		}
		s.snapshot.SelectedMusicPlaylistID = id
		s.enqueueSnapshot()
		ok = true
	})
	return ok
}

// SelectPhotoPlaylist records the active photo playlist and rewinds the
// slideshow to its first photo. It reports false when the playlist is
// unknown.
func (s *Store) SelectPhotoPlaylist(id string) bool {
	var ok bool
	s.do(func() {
		if id != "" && indexByID(s.photoPlaylists, id, func(x media.PhotoPlaylist) string { return x.ID }) < 0 {
			return
		}
		s.snapshot.SelectedPhotoPlaylistID = id
		s.snapshot.CurrentPhotoIndex = 0
		s.enqueueSnapshot()
		ok = true
	})
	return ok
}

// SetCurrentPhotoIndex records the slideshow position.
func (s *Store) SetCurrentPhotoIndex(index int) {
	s.do(func() {
		if index < 0 {
			index = 0
		}
		s.snapshot.CurrentPhotoIndex = index
		s.enqueueSnapshot()
	})
}

// SetTheme records the UI theme preference.
func (s *Store) SetTheme(theme media.Theme) {
	s.do(func() {
		s.snapshot.Theme = theme
		s.enqueueSnapshot()
	})
}

// SetView records the active screen.
func (s *Store) SetView(view media.View) {
	s.do(func() {
		s.snapshot.View = view
		s.enqueueSnapshot()
	})
}

// --- resolution ---

// ResolveMusicPlaylist returns the playlist's songs in stored order, silently
// dropping ids whose song no longer exists. Unknown playlists resolve to nil.
func (s *Store) ResolveMusicPlaylist(id string) []media.Song {
	var out []media.Song
	s.do(func() { out = s.resolveMusicPlaylist(id) })
	return out
}

func (s *Store) resolveMusicPlaylist(id string) []media.Song {
	i := indexByID(s.musicPlaylists, id, func(x media.MusicPlaylist) string { return x.ID })
	if i < 0 {
		return nil
	}
	byID := make(map[string]media.Song, len(s.songs))
	for _, song := range s.songs {
		byID[song.ID] = song
	}
	out := make([]media.Song, 0, len(s.musicPlaylists[i].SongIDs))
	for _, songID := range s.musicPlaylists[i].SongIDs {
		if song, ok := byID[songID]; ok {
			out = append(out, song)
		}
	}
	return out
}

// ResolvePhotoPlaylist returns the playlist's photos in stored order, with
// dangling ids dropped. Unknown playlists resolve to nil.
func (s *Store) ResolvePhotoPlaylist(id string) []media.Photo {
	var out []media.Photo
	s.do(func() { out = s.resolvePhotoPlaylist(id) })
	return out
}

func (s *Store) resolvePhotoPlaylist(id string) []media.Photo {
	i := indexByID(s.photoPlaylists, id, func(x media.PhotoPlaylist) string { return x.ID })
	if i < 0 {
		return nil
	}
	byID := make(map[string]media.Photo, len(s.photos))
	for _, photo := range s.photos {
		byID[photo.ID] = photo
	}
	out := make([]media.Photo, 0, len(s.photoPlaylists[i].PhotoIDs))
	for _, photoID := range s.photoPlaylists[i].PhotoIDs {
		if photo, ok := byID[photoID]; ok {
			out = append(out, photo)
		}
	}
	return out
}

// QueueForPlaylist resolves a music playlist and applies its play order.
// Weighted ordering currently draws a plain shuffle.
func (s *Store) QueueForPlaylist(id string) []media.Song {
	var out []media.Song
	var order media.PlayOrder
	s.do(func() {
		out = s.resolveMusicPlaylist(id)
		if i := indexByID(s.musicPlaylists, id, func(x media.MusicPlaylist) string { return x.ID }); i >= 0 {
			order = s.musicPlaylists[i].PlayOrder
		}
	})

	switch order {
	case media.OrderReverse:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	case media.OrderShuffle, media.OrderWeighted:
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}

// CurrentPhoto returns the photo the slideshow is on, or nil when no photo
// playlist is selected, the selected playlist resolves empty, or the stored
// index points past the end. The store never wraps the index itself.
func (s *Store) CurrentPhoto() *media.Photo {
	var out *media.Photo
	s.do(func() {
		photos := s.resolvePhotoPlaylist(s.snapshot.SelectedPhotoPlaylistID)
		idx := s.snapshot.CurrentPhotoIndex
		if len(photos) == 0 || idx < 0 || idx >= len(photos) {
			return
		}
		photo := photos[idx]
		out = &photo
	})
	return out
}

// --- playback mirroring ---

// BindPlayback subscribes the store to transport events so the snapshot
// tracks the current track and volume, and the transient mirror tracks the
// clock and the playing flag.
func (s *Store) BindPlayback(b media.Bus) {
	b.Subscribe(media.EventTimeUpdate, func(e media.Event) {
		ev := e.(media.TimeUpdateEvent)
		s.do(func() {
			s.position = ev.Position
			s.duration = ev.Duration
		})
	})
	b.Subscribe(media.EventPlayStateChanged, func(e media.Event) {
		ev := e.(media.PlayStateChangedEvent)
		s.do(func() { s.isPlaying = ev.Playing })
	})
	b.Subscribe(media.EventTrackChanged, func(e media.Event) {
		ev := e.(media.TrackChangedEvent)
		s.do(func() {
			s.snapshot.CurrentTrackID = ev.Track.ID
			s.enqueueSnapshot()
		})
	})
	b.Subscribe(media.EventVolumeChanged, func(e media.Event) {
		ev := e.(media.VolumeChangedEvent)
		s.do(func() {
			s.snapshot.Volume = media.ClampVolume(ev.Volume)
			s.enqueueSnapshot()
		})
	})
	b.Subscribe(media.EventPhotoAdvanced, func(e media.Event) {
		ev := e.(media.PhotoAdvancedEvent)
		s.do(func() {
			s.snapshot.CurrentPhotoIndex = ev.Index
			s.enqueueSnapshot()
		})
	})
}

// enqueueSnapshot queues a write of the current snapshot. Runs on the action
// goroutine.
func (s *Store) enqueueSnapshot() {
	s.snapshot.LastSaved = time.Now()
	snap := s.snapshot
	s.persist.enqueue("save snapshot", func(ctx context.Context) error {
		return s.gw.SaveSnapshot(ctx, snap)
	})
}

// --- slice helpers ---

func indexByID[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}

func upsert[T any](items []T, item T, key func(T) string) []T {
	if i := indexByID(items, key(item), key); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

func removeByIDs[T any](items []T, ids []string, key func(T) string) []T {
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	kept := items[:0]
	for _, item := range items {
		if _, ok := gone[key(item)]; !ok {
			kept = append(kept, item)
		}
	}
	return kept
}
