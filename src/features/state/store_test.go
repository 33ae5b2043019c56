package state

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumideck/lumideck/src/infra/bus"
	"github.com/lumideck/lumideck/src/media"
)

// fakeGateway is an in-memory media.Gateway safe for the write-behind
// goroutine to hit while tests read it.
type fakeGateway struct {
	mu             sync.Mutex
	songs          map[string]media.Song
	photos         map[string]media.Photo
	musicPlaylists map[string]media.MusicPlaylist
	photoPlaylists map[string]media.PhotoPlaylist
	presets        map[string]media.MoodPreset
	snapshot       *media.AppStateSnapshot
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		songs:          map[string]media.Song{},
		photos:         map[string]media.Photo{},
		musicPlaylists: map[string]media.MusicPlaylist{},
		photoPlaylists: map[string]media.PhotoPlaylist{},
		presets:        map[string]media.MoodPreset{},
	}
}

func (g *fakeGateway) ListSongs(context.Context) ([]media.Song, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.Song, 0, len(g.songs))
	for _, s := range g.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) GetSong(_ context.Context, id string) (*media.Song, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.songs[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (g *fakeGateway) UpsertSong(_ context.Context, song media.Song) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.songs[song.ID] = song
	return nil
}

func (g *fakeGateway) RemoveSongs(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.songs, id)
	}
	return nil
}

func (g *fakeGateway) ListPhotos(context.Context) ([]media.Photo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.Photo, 0, len(g.photos))
	for _, p := range g.photos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) GetPhoto(_ context.Context, id string) (*media.Photo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.photos[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *fakeGateway) UpsertPhoto(_ context.Context, photo media.Photo) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photos[photo.ID] = photo
	return nil
}

func (g *fakeGateway) RemovePhotos(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.photos, id)
	}
	return nil
}

func (g *fakeGateway) ListMusicPlaylists(context.Context) ([]media.MusicPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.MusicPlaylist, 0, len(g.musicPlaylists))
	for _, p := range g.musicPlaylists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) GetMusicPlaylist(_ context.Context, id string) (*media.MusicPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.musicPlaylists[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *fakeGateway) UpsertMusicPlaylist(_ context.Context, playlist media.MusicPlaylist) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.musicPlaylists[playlist.ID] = playlist
	return nil
}

func (g *fakeGateway) RemoveMusicPlaylists(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.musicPlaylists, id)
	}
	return nil
}

func (g *fakeGateway) ListPhotoPlaylists(context.Context) ([]media.PhotoPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.PhotoPlaylist, 0, len(g.photoPlaylists))
	for _, p := range g.photoPlaylists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) GetPhotoPlaylist(_ context.Context, id string) (*media.PhotoPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.photoPlaylists[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *fakeGateway) UpsertPhotoPlaylist(_ context.Context, playlist media.PhotoPlaylist) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photoPlaylists[playlist.ID] = playlist
	return nil
}

func (g *fakeGateway) RemovePhotoPlaylists(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.photoPlaylists, id)
	}
	return nil
}

func (g *fakeGateway) ListMoodPresets(context.Context) ([]media.MoodPreset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.MoodPreset, 0, len(g.presets))
	for _, p := range g.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) GetMoodPreset(_ context.Context, id string) (*media.MoodPreset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.presets[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *fakeGateway) UpsertMoodPreset(_ context.Context, preset media.MoodPreset) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.presets[preset.ID] = preset
	return nil
}

func (g *fakeGateway) Snapshot(context.Context) (*media.AppStateSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return nil, nil
	}
	snap := *g.snapshot
	return &snap, nil
}

func (g *fakeGateway) SaveSnapshot(_ context.Context, snapshot media.AppStateSnapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshot = &snapshot
	return nil
}

func (g *fakeGateway) storedMusicPlaylist(id string) *media.MusicPlaylist {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.musicPlaylists[id]; ok {
		return &p
	}
	return nil
}

func (g *fakeGateway) storedSnapshot() *media.AppStateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return nil
	}
	snap := *g.snapshot
	return &snap
}

func newTestStore(t *testing.T) (*Store, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	store := NewStore(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.Hydrate(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go store.Run(ctx)
	return store, gw
}

func TestStore_HydrateSeedsDefaultPresetsAndSnapshot(t *testing.T) {
	store, gw := newTestStore(t)

	presets := store.MoodPresets()
	require.Len(t, presets, 6)
	assert.Equal(t, "glowy-techno", presets[0].ID)

	snap := store.Snapshot()
	assert.Equal(t, 0.8, snap.Volume)
	assert.Equal(t, media.ThemeSystem, snap.Theme)
	assert.Equal(t, media.ViewNowPlaying, snap.View)

	// the seed and the initial snapshot were written through
	require.Eventually(t, func() bool {
		stored, _ := gw.ListMoodPresets(context.Background())
		return len(stored) == 6 && gw.storedSnapshot() != nil
	}, time.Second, 10*time.Millisecond)
}

func TestStore_HydrateKeepsExistingPresets(t *testing.T) {
	gw := newFakeGateway()
	custom := media.MoodPreset{ID: "custom", Name: "Custom", Intensity: 50}
	require.NoError(t, gw.UpsertMoodPreset(context.Background(), custom))

	store := NewStore(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.Hydrate(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go store.Run(ctx)

	presets := store.MoodPresets()
	require.Len(t, presets, 1)
	assert.Equal(t, "custom", presets[0].ID)
}

func TestStore_RemoveSongsCascadesThroughPlaylists(t *testing.T) {
	store, gw := newTestStore(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One"})
	store.UpsertSong(media.Song{ID: "s2", Title: "Two"})
	store.UpsertSong(media.Song{ID: "s3", Title: "Three"})
	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "pl1", Name: "Mix", SongIDs: []string{"s1", "s2", "s3"},
		PlayOrder: media.OrderSequential, RepeatMode: media.RepeatNone,
	})
	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "pl2", Name: "Other", SongIDs: []string{"s2"},
		PlayOrder: media.OrderSequential, RepeatMode: media.RepeatNone,
	})

	store.RemoveSongs([]string{"s2"})

	pl1 := store.MusicPlaylist("pl1")
	require.NotNil(t, pl1)
	assert.Equal(t, []string{"s1", "s3"}, pl1.SongIDs)
	pl2 := store.MusicPlaylist("pl2")
	require.NotNil(t, pl2)
	assert.Empty(t, pl2.SongIDs)

	// the cascade reached the gateway as well
	require.Eventually(t, func() bool {
		stored := gw.storedMusicPlaylist("pl2")
		return stored != nil && len(stored.SongIDs) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStore_RemoveSongsClearsCurrentTrack(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One"})
	b := bus.NewSyncBus()
	store.BindPlayback(b)
	b.Publish(media.NewTrackChangedEvent(media.Song{ID: "s1"}, 0))
	require.Equal(t, "s1", store.Snapshot().CurrentTrackID)

	store.RemoveSongs([]string{"s1"})

	assert.Empty(t, store.Snapshot().CurrentTrackID)
}

func TestStore_RemovePhotosCascadesThroughPlaylists(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertPhoto(media.Photo{ID: "p1", Title: "Dawn"})
	store.UpsertPhoto(media.Photo{ID: "p2", Title: "Dusk"})
	store.UpsertPhotoPlaylist(media.PhotoPlaylist{
		ID: "pp1", Name: "Sky", PhotoIDs: []string{"p1", "p2"}, Timing: media.DefaultTiming(),
	})

	store.RemovePhotos([]string{"p1"})

	pl := store.PhotoPlaylist("pp1")
	require.NotNil(t, pl)
	assert.Equal(t, []string{"p2"}, pl.PhotoIDs)
	assert.Len(t, store.Photos(), 1)
}

func TestStore_ResolutionDropsDanglingIDs(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One"})
	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "pl1", Name: "Mix", SongIDs: []string{"ghost", "s1", "gone"},
		PlayOrder: media.OrderSequential, RepeatMode: media.RepeatNone,
	})

	songs := store.ResolveMusicPlaylist("pl1")
	require.Len(t, songs, 1)
	assert.Equal(t, "s1", songs[0].ID)
}

func TestStore_CurrentPhoto(t *testing.T) {
	store, _ := newTestStore(t)

	// no selection
	assert.Nil(t, store.CurrentPhoto())

	store.UpsertPhoto(media.Photo{ID: "p1", Title: "Dawn"})
	store.UpsertPhoto(media.Photo{ID: "p2", Title: "Dusk"})
	store.UpsertPhotoPlaylist(media.PhotoPlaylist{
		ID: "pp1", Name: "Sky", PhotoIDs: []string{"p1", "p2"}, Timing: media.DefaultTiming(),
	})
	require.True(t, store.SelectPhotoPlaylist("pp1"))

	photo := store.CurrentPhoto()
	require.NotNil(t, photo)
	assert.Equal(t, "p1", photo.ID)

	// stored index past the end resolves to nothing, no wraparound
	store.SetCurrentPhotoIndex(5)
	assert.Nil(t, store.CurrentPhoto())
}

func TestStore_SelectPhotoPlaylistRewindsIndex(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertPhotoPlaylist(media.PhotoPlaylist{ID: "pp1", Name: "A", Timing: media.DefaultTiming()})
	store.UpsertPhotoPlaylist(media.PhotoPlaylist{ID: "pp2", Name: "B", Timing: media.DefaultTiming()})
	require.True(t, store.SelectPhotoPlaylist("pp1"))
	store.SetCurrentPhotoIndex(3)

	require.True(t, store.SelectPhotoPlaylist("pp2"))

	assert.Equal(t, 0, store.Snapshot().CurrentPhotoIndex)
}

func TestStore_SelectUnknownPlaylistIsRejected(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.SelectMusicPlaylist("nope"))
	assert.False(t, store.SelectPhotoPlaylist("nope"))
	assert.False(t, store.SelectMoodPreset("nope"))
	assert.Empty(t, store.Snapshot().SelectedMusicPlaylistID)
}

func TestStore_RemoveSelectedMusicPlaylistClearsSelection(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "pl1", Name: "Mix", PlayOrder: media.OrderSequential, RepeatMode: media.RepeatNone,
	})
	require.True(t, store.SelectMusicPlaylist("pl1"))

	store.RemoveMusicPlaylists([]string{"pl1"})

	snap := store.Snapshot()
	assert.Empty(t, snap.SelectedMusicPlaylistID)
	assert.Empty(t, snap.CurrentTrackID)
}

func TestStore_DurationBackfillSkipsRemovedSong(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One"})
	store.RemoveSongs([]string{"s1"})

	// the probe finished after the song was already gone
	assert.False(t, store.UpdateSongDuration("s1", 240))
	assert.Empty(t, store.Songs())
}

func TestStore_DurationBackfillUpdatesExistingSong(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One"})

	require.True(t, store.UpdateSongDuration("s1", 240))
	assert.Equal(t, 240, store.Song("s1").DurationSec)
}

func TestStore_DimensionBackfillSkipsRemovedPhoto(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertPhoto(media.Photo{ID: "p1", Title: "Dawn"})
	store.RemovePhotos([]string{"p1"})

	assert.False(t, store.UpdatePhotoDimensions("p1", 1920, 1080))
}

func TestStore_UpsertMoodPresetClampsIntensity(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertMoodPreset(media.MoodPreset{ID: "hot", Name: "Hot", Intensity: 250})

	preset := store.MoodPreset("hot")
	require.NotNil(t, preset)
	assert.Equal(t, 100, preset.Intensity)
}

func TestStore_QueueForPlaylistAppliesPlayOrder(t *testing.T) {
	store, _ := newTestStore(t)

	for _, id := range []string{"s1", "s2", "s3"} {
		store.UpsertSong(media.Song{ID: id, Title: id})
	}
	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "rev", Name: "Reversed", SongIDs: []string{"s1", "s2", "s3"},
		PlayOrder: media.OrderReverse, RepeatMode: media.RepeatNone,
	})
	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "shuf", Name: "Shuffled", SongIDs: []string{"s1", "s2", "s3"},
		PlayOrder: media.OrderShuffle, RepeatMode: media.RepeatNone,
	})

	rev := store.QueueForPlaylist("rev")
	require.Len(t, rev, 3)
	assert.Equal(t, "s3", rev[0].ID)
	assert.Equal(t, "s1", rev[2].ID)

	shuf := store.QueueForPlaylist("shuf")
	ids := map[string]bool{}
	for _, s := range shuf {
		ids[s.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestStore_BindPlaybackMirrorsTransportEvents(t *testing.T) {
	store, gw := newTestStore(t)

	b := bus.NewSyncBus()
	store.BindPlayback(b)

	b.Publish(media.NewPlayStateChangedEvent(true))
	b.Publish(media.NewTimeUpdateEvent(12*time.Second, 3*time.Minute))
	b.Publish(media.NewVolumeChangedEvent(0.4))

	playing, position, duration := store.PlaybackMirror()
	assert.True(t, playing)
	assert.Equal(t, 12*time.Second, position)
	assert.Equal(t, 3*time.Minute, duration)
	assert.Equal(t, 0.4, store.Snapshot().Volume)

	// the volume change was persisted; the clock and playing flag never are
	require.Eventually(t, func() bool {
		snap := gw.storedSnapshot()
		return snap != nil && snap.Volume == 0.4
	}, time.Second, 10*time.Millisecond)
}

func TestStore_UpdateMusicPlaylistMutatesUnderTheLock(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpsertMusicPlaylist(media.MusicPlaylist{
		ID: "pl1", Name: "Mix", SongIDs: []string{"s1"},
		PlayOrder: media.OrderSequential, RepeatMode: media.RepeatNone,
	})

	ok := store.UpdateMusicPlaylist("pl1", func(p *media.MusicPlaylist) {
		p.SongIDs = append(p.SongIDs, "s2")
		p.RepeatMode = media.RepeatAll
	})
	require.True(t, ok)

	pl := store.MusicPlaylist("pl1")
	assert.Equal(t, []string{"s1", "s2"}, pl.SongIDs)
	assert.Equal(t, media.RepeatAll, pl.RepeatMode)

	assert.False(t, store.UpdateMusicPlaylist("nope", func(*media.MusicPlaylist) {}))
}
