package slideshow

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/infra/bus"
	"github.com/lumideck/lumideck/src/infra/database"
	"github.com/lumideck/lumideck/src/media"
)

func newTestRotator(t *testing.T, photoIDs []string, timing media.TimingRule, randomize bool) (*Rotator, *state.Store, *bus.SyncBus) {
	t.Helper()

	store := state.NewStore(database.NewMemoryGateway(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.Hydrate(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go store.Run(ctx)

	for _, id := range photoIDs {
		store.UpsertPhoto(media.Photo{ID: id, Title: id})
	}
	store.UpsertPhotoPlaylist(media.PhotoPlaylist{
		ID: "pp1", Name: "Show", PhotoIDs: photoIDs, Timing: timing, Randomize: randomize,
	})
	require.True(t, store.SelectPhotoPlaylist("pp1"))

	b := bus.NewSyncBus()
	return NewRotator(store, b, slog.New(slog.NewTextHandler(io.Discard, nil))), store, b
}

func TestRotator_NextWrapsAround(t *testing.T) {
	r, store, _ := newTestRotator(t, []string{"p1", "p2", "p3"}, media.DefaultTiming(), false)

	r.Next()
	assert.Equal(t, 1, store.Snapshot().CurrentPhotoIndex)
	r.Next()
	assert.Equal(t, 2, store.Snapshot().CurrentPhotoIndex)
	r.Next()
	// past the last photo the rotator wraps to the first
	assert.Equal(t, 0, store.Snapshot().CurrentPhotoIndex)
}

func TestRotator_PreviousWrapsBeforeStart(t *testing.T) {
	r, store, _ := newTestRotator(t, []string{"p1", "p2", "p3"}, media.DefaultTiming(), false)

	r.Previous()
	assert.Equal(t, 2, store.Snapshot().CurrentPhotoIndex)
}

func TestRotator_EmptyPlaylistIsNoOp(t *testing.T) {
	r, store, _ := newTestRotator(t, nil, media.DefaultTiming(), false)

	r.Next()
	assert.Equal(t, 0, store.Snapshot().CurrentPhotoIndex)
}

func TestRotator_PublishesPhotoAdvanced(t *testing.T) {
	r, _, b := newTestRotator(t, []string{"p1", "p2"}, media.DefaultTiming(), false)

	var events []media.PhotoAdvancedEvent
	b.Subscribe(media.EventPhotoAdvanced, func(e media.Event) {
		events = append(events, e.(media.PhotoAdvancedEvent))
	})

	r.Next()

	require.Len(t, events, 1)
	assert.Equal(t, "p2", events[0].PhotoID)
	assert.Equal(t, 1, events[0].Index)
}

func TestRotator_SongChangeModeFollowsTrackChanges(t *testing.T) {
	timing := media.TimingRule{Mode: media.TimingSongChange, Transition: media.TransitionCut}
	r, store, b := newTestRotator(t, []string{"p1", "p2"}, timing, false)
	_ = r

	b.Publish(media.NewTrackChangedEvent(media.Song{ID: "s1"}, 0))

	assert.Equal(t, 1, store.Snapshot().CurrentPhotoIndex)
}

func TestRotator_SecondsModeIgnoresTrackChanges(t *testing.T) {
	r, store, b := newTestRotator(t, []string{"p1", "p2"}, media.DefaultTiming(), false)
	_ = r

	b.Publish(media.NewTrackChangedEvent(media.Song{ID: "s1"}, 0))

	assert.Equal(t, 0, store.Snapshot().CurrentPhotoIndex)
}

func TestRotator_RandomizeNeverRepeatsCurrentPhoto(t *testing.T) {
	r, store, _ := newTestRotator(t, []string{"p1", "p2", "p3"}, media.DefaultTiming(), true)

	for i := 0; i < 20; i++ {
		before := store.Snapshot().CurrentPhotoIndex
		r.Next()
		assert.NotEqual(t, before, store.Snapshot().CurrentPhotoIndex)
	}
}

func TestRotator_DanglingIndexRecoversOnAdvance(t *testing.T) {
	r, store, _ := newTestRotator(t, []string{"p1", "p2", "p3"}, media.DefaultTiming(), false)

	// stored index left pointing past the end after photos were removed
	store.SetCurrentPhotoIndex(7)
	r.Next()

	assert.Equal(t, 1, store.Snapshot().CurrentPhotoIndex)
}
