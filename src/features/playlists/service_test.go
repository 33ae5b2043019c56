package playlists

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumideck/lumideck/src/features/playback"
	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/infra/audio/mock"
	"github.com/lumideck/lumideck/src/infra/bus"
	"github.com/lumideck/lumideck/src/infra/database"
	"github.com/lumideck/lumideck/src/media"
)

func newTestService(t *testing.T) (*Service, *state.Store, *playback.Engine) {
	t.Helper()

	store := state.NewStore(database.NewMemoryGateway(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.Hydrate(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go store.Run(ctx)

	engine := playback.NewEngine(mock.New(), bus.NewSyncBus(), slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	return NewService(store, engine, slog.New(slog.NewTextHandler(io.Discard, nil))), store, engine
}

func TestService_CreateMusicPlaylistDefaults(t *testing.T) {
	svc, store, _ := newTestService(t)

	playlist, err := svc.CreateMusicPlaylist(context.Background(), "Evening Mix")
	require.NoError(t, err)

	assert.Equal(t, media.OrderSequential, playlist.PlayOrder)
	assert.Equal(t, media.RepeatNone, playlist.RepeatMode)
	assert.Empty(t, playlist.SongIDs)
	assert.NotNil(t, store.MusicPlaylist(playlist.ID))
}

func TestService_CreateMusicPlaylistRejectsEmptyName(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateMusicPlaylist(context.Background(), "   ")
	assert.Error(t, err)
}

func TestService_AddSongRequiresExistingSong(t *testing.T) {
	svc, store, _ := newTestService(t)

	playlist, err := svc.CreateMusicPlaylist(context.Background(), "Mix")
	require.NoError(t, err)

	assert.Error(t, svc.AddSongToMusicPlaylist(context.Background(), playlist.ID, "ghost"))

	store.UpsertSong(media.Song{ID: "s1", Title: "One"})
	require.NoError(t, svc.AddSongToMusicPlaylist(context.Background(), playlist.ID, "s1"))
	// adding twice keeps a single entry
	require.NoError(t, svc.AddSongToMusicPlaylist(context.Background(), playlist.ID, "s1"))

	assert.Equal(t, []string{"s1"}, store.MusicPlaylist(playlist.ID).SongIDs)
}

func TestService_SelectMusicPlaylistHandsQueueToEngine(t *testing.T) {
	svc, store, engine := newTestService(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One", Src: "/lib/1.mp3"})
	store.UpsertSong(media.Song{ID: "s2", Title: "Two", Src: "/lib/2.mp3"})
	playlist, err := svc.CreateMusicPlaylist(context.Background(), "Mix")
	require.NoError(t, err)
	_, err = svc.UpdateMusicPlaylist(context.Background(), playlist.ID, MusicPlaylistChanges{
		SongIDs:    []string{"s1", "s2"},
		RepeatMode: repeatPtr(media.RepeatAll),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SelectMusicPlaylist(context.Background(), playlist.ID))

	st := engine.Status()
	assert.Equal(t, playback.StatePaused, st.State)
	assert.Equal(t, "s1", st.Track.ID)
	assert.Equal(t, media.RepeatAll, st.Repeat)
	assert.Equal(t, playlist.ID, store.Snapshot().SelectedMusicPlaylistID)
}

func TestService_SelectUnknownMusicPlaylistFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Error(t, svc.SelectMusicPlaylist(context.Background(), "nope"))
}

func TestService_DeleteSelectedMusicPlaylistClearsEngine(t *testing.T) {
	svc, store, engine := newTestService(t)

	store.UpsertSong(media.Song{ID: "s1", Title: "One", Src: "/lib/1.mp3"})
	playlist, err := svc.CreateMusicPlaylist(context.Background(), "Mix")
	require.NoError(t, err)
	require.NoError(t, svc.AddSongToMusicPlaylist(context.Background(), playlist.ID, "s1"))
	require.NoError(t, svc.SelectMusicPlaylist(context.Background(), playlist.ID))

	require.NoError(t, svc.DeleteMusicPlaylist(context.Background(), playlist.ID))

	assert.Equal(t, playback.StateIdle, engine.Status().State)
	assert.Empty(t, store.Snapshot().SelectedMusicPlaylistID)
}

func TestService_UpdateMusicPlaylistValidates(t *testing.T) {
	svc, _, _ := newTestService(t)

	playlist, err := svc.CreateMusicPlaylist(context.Background(), "Mix")
	require.NoError(t, err)

	bad := media.PlayOrder("sideways")
	_, err = svc.UpdateMusicPlaylist(context.Background(), playlist.ID, MusicPlaylistChanges{PlayOrder: &bad})
	assert.Error(t, err)
}

func TestService_CreatePhotoPlaylistDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	playlist, err := svc.CreatePhotoPlaylist(context.Background(), "Skies", "sunsets mostly")
	require.NoError(t, err)

	assert.Equal(t, media.TimingSeconds, playlist.Timing.Mode)
	assert.Equal(t, 8, playlist.Timing.DurationSec)
	assert.Equal(t, media.TransitionCrossfade, playlist.Timing.Transition)
}

func TestService_SelectPhotoPlaylistRecordsSelection(t *testing.T) {
	svc, store, _ := newTestService(t)

	playlist, err := svc.CreatePhotoPlaylist(context.Background(), "Skies", "")
	require.NoError(t, err)

	require.NoError(t, svc.SelectPhotoPlaylist(context.Background(), playlist.ID))

	snap := store.Snapshot()
	assert.Equal(t, playlist.ID, snap.SelectedPhotoPlaylistID)
	assert.Equal(t, 0, snap.CurrentPhotoIndex)
}

func TestService_RemovePhotoFromPhotoPlaylist(t *testing.T) {
	svc, store, _ := newTestService(t)

	store.UpsertPhoto(media.Photo{ID: "p1", Title: "Dawn"})
	store.UpsertPhoto(media.Photo{ID: "p2", Title: "Dusk"})
	playlist, err := svc.CreatePhotoPlaylist(context.Background(), "Skies", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddPhotoToPhotoPlaylist(context.Background(), playlist.ID, "p1"))
	require.NoError(t, svc.AddPhotoToPhotoPlaylist(context.Background(), playlist.ID, "p2"))

	require.NoError(t, svc.RemovePhotoFromPhotoPlaylist(context.Background(), playlist.ID, "p1"))

	assert.Equal(t, []string{"p2"}, store.PhotoPlaylist(playlist.ID).PhotoIDs)
}

func repeatPtr(m media.RepeatMode) *media.RepeatMode { return &m }
