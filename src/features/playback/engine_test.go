package playback

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumideck/lumideck/src/infra/audio/mock"
	"github.com/lumideck/lumideck/src/infra/bus"
	"github.com/lumideck/lumideck/src/media"
)

func testSongs(n int) []media.Song {
	songs := make([]media.Song, n)
	for i := range songs {
		songs[i] = media.Song{
			ID:      fmt.Sprintf("song-%d", i+1),
			Title:   fmt.Sprintf("Track %d", i+1),
			SrcKind: media.SourceFile,
			Src:     fmt.Sprintf("/library/track-%d.mp3", i+1),
		}
	}
	return songs
}

type recorder struct {
	events []media.Event
}

func (r *recorder) handle(e media.Event) { r.events = append(r.events, e) }

func (r *recorder) types() []media.EventType {
	out := make([]media.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *mock.Output, *recorder) {
	t.Helper()
	out := mock.New()
	b := bus.NewSyncBus()
	rec := &recorder{}
	b.SubscribeAll(rec.handle)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(out, b, logger, 0), out, rec
}

func TestEngine_SetPlaylistLoadsFirstTrackPaused(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(3))

	st := e.Status()
	assert.Equal(t, StatePaused, st.State)
	require.NotNil(t, st.Track)
	assert.Equal(t, "song-1", st.Track.ID)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "/library/track-1.mp3", out.Src())
	assert.False(t, out.Playing())

	require.Len(t, rec.events, 1)
	assert.Equal(t, media.EventTrackChanged, rec.events[0].Type())
}

func TestEngine_SetPlaylistEmptyGoesIdle(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.Play()
	e.SetPlaylist(nil)

	st := e.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Nil(t, st.Track)
	assert.False(t, out.Playing())
	// stopping audible playback announces the state change
	last := rec.events[len(rec.events)-1]
	require.Equal(t, media.EventPlayStateChanged, last.Type())
	assert.False(t, last.(media.PlayStateChangedEvent).Playing)
}

func TestEngine_SetPlaylistCopiesInput(t *testing.T) {
	e, _, _ := newTestEngine(t)

	songs := testSongs(2)
	e.SetPlaylist(songs)
	songs[0].ID = "mutated"
	songs[0].Title = "Mutated"

	assert.Equal(t, "song-1", e.Status().Track.ID)
}

func TestEngine_PlayPause(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(1))
	e.Play()
	assert.Equal(t, StatePlaying, e.Status().State)
	assert.True(t, out.Playing())

	e.Pause()
	assert.Equal(t, StatePaused, e.Status().State)
	assert.False(t, out.Playing())

	assert.Equal(t, []media.EventType{
		media.EventTrackChanged,
		media.EventPlayStateChanged,
		media.EventPlayStateChanged,
	}, rec.types())
	assert.True(t, rec.events[1].(media.PlayStateChangedEvent).Playing)
	assert.False(t, rec.events[2].(media.PlayStateChangedEvent).Playing)
}

func TestEngine_PlayWhileIdleIsNoOp(t *testing.T) {
	e, _, rec := newTestEngine(t)

	e.Play()
	e.Pause()
	e.Next()
	e.Previous()

	assert.Equal(t, StateIdle, e.Status().State)
	assert.Empty(t, rec.events)
}

func TestEngine_RejectedPlayIsAbsorbed(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(1))
	out.FailNextPlay(fmt.Errorf("device busy"))
	e.Play()

	assert.Equal(t, StatePaused, e.Status().State)
	last := rec.events[len(rec.events)-1]
	require.Equal(t, media.EventPlayStateChanged, last.Type())
	assert.False(t, last.(media.PlayStateChangedEvent).Playing)
}

func TestEngine_NextPreservesPlayingState(t *testing.T) {
	e, out, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(3))
	e.Play()
	e.Next()

	st := e.Status()
	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, 1, st.Index)
	assert.True(t, out.Playing())

	e.Pause()
	e.Next()
	st = e.Status()
	assert.Equal(t, StatePaused, st.State)
	assert.Equal(t, 2, st.Index)
	assert.False(t, out.Playing())
}

func TestEngine_NextPastEndPausesOnLastTrack(t *testing.T) {
	e, _, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.Play()
	e.Next()
	e.Next()

	st := e.Status()
	assert.Equal(t, StatePaused, st.State)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, "song-2", st.Track.ID)

	last := rec.events[len(rec.events)-1]
	require.Equal(t, media.EventPlayStateChanged, last.Type())
	assert.False(t, last.(media.PlayStateChangedEvent).Playing)
}

func TestEngine_NextPastEndWrapsWithRepeatAll(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.SetRepeatMode(media.RepeatAll)
	e.Play()
	e.Next()
	e.Next()

	st := e.Status()
	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, 0, st.Index)
}

func TestEngine_PreviousBeforeStartRestartsFirstTrack(t *testing.T) {
	e, out, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(3))
	e.Play()
	out.Advance(30 * time.Second)
	e.Previous()

	// still on the first track, but reloaded from the beginning
	st := e.Status()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, time.Duration(0), out.Position())
}

func TestEngine_PreviousBeforeStartWrapsWithRepeatAll(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(3))
	e.SetRepeatMode(media.RepeatAll)
	e.Play()
	e.Previous()

	st := e.Status()
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, StatePlaying, st.State)
}

func TestEngine_NaturalEndAdvancesAndKeepsPlaying(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.Play()
	out.FinishTrack()
	e.publish(e.tick())

	st := e.Status()
	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, 1, st.Index)

	// the ended notification precedes the advance
	types := rec.types()
	require.GreaterOrEqual(t, len(types), 4)
	assert.Equal(t, media.EventTrackEnded, types[2])
	assert.Equal(t, media.EventTrackChanged, types[3])
	assert.Equal(t, "song-1", rec.events[2].(media.TrackEndedEvent).Track.ID)
	assert.Equal(t, "song-2", rec.events[3].(media.TrackChangedEvent).Track.ID)
}

func TestEngine_NaturalEndOnLastTrackPauses(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(1))
	e.Play()
	out.FinishTrack()
	e.publish(e.tick())

	st := e.Status()
	assert.Equal(t, StatePaused, st.State)
	assert.Equal(t, 0, st.Index)

	types := rec.types()
	assert.Equal(t, media.EventTrackEnded, types[len(types)-2])
	assert.Equal(t, media.EventPlayStateChanged, types[len(types)-1])
}

func TestEngine_NaturalEndWrapsWithRepeatAll(t *testing.T) {
	e, out, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.SetRepeatMode(media.RepeatAll)
	e.Play()
	e.Next()
	out.FinishTrack()
	e.publish(e.tick())

	st := e.Status()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, StatePlaying, st.State)
}

func TestEngine_RepeatOneReplaysOnNaturalEndButNotOnNext(t *testing.T) {
	e, out, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.SetRepeatMode(media.RepeatOne)
	e.Play()

	out.FinishTrack()
	e.publish(e.tick())
	st := e.Status()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, StatePlaying, st.State)

	// an explicit skip still advances
	e.Next()
	assert.Equal(t, 1, e.Status().Index)
}

func TestEngine_TickPublishesTimeUpdates(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(1))
	e.Play()
	out.Advance(5 * time.Second)
	e.publish(e.tick())

	last := rec.events[len(rec.events)-1]
	require.Equal(t, media.EventTimeUpdate, last.Type())
	assert.Equal(t, 5*time.Second, last.(media.TimeUpdateEvent).Position)
}

func TestEngine_TickWhileIdlePublishesNothing(t *testing.T) {
	e, _, rec := newTestEngine(t)

	e.publish(e.tick())

	assert.Empty(t, rec.events)
}

func TestEngine_SetVolumeClampsAndAnnouncesClampedValue(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetVolume(1.7)
	assert.Equal(t, 1.0, out.Volume())
	last := rec.events[len(rec.events)-1]
	require.Equal(t, media.EventVolumeChanged, last.Type())
	assert.Equal(t, 1.0, last.(media.VolumeChangedEvent).Volume)

	e.SetVolume(-0.3)
	assert.Equal(t, 0.0, out.Volume())
	last = rec.events[len(rec.events)-1]
	assert.Equal(t, 0.0, last.(media.VolumeChangedEvent).Volume)
}

func TestEngine_VolumeSurvivesTrackChanges(t *testing.T) {
	e, out, _ := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.SetVolume(0.25)
	e.Next()

	assert.Equal(t, 0.25, out.Volume())
}

func TestEngine_SeekWhileIdleIsNoOp(t *testing.T) {
	e, out, _ := newTestEngine(t)

	e.Seek(10 * time.Second)

	assert.Equal(t, time.Duration(0), out.Position())
}

func TestEngine_LoadFailureLeavesEnginePaused(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(2))
	e.Play()
	out.FailNextLoad(fmt.Errorf("file vanished"))
	e.Next()

	st := e.Status()
	assert.Equal(t, StatePaused, st.State)
	assert.Equal(t, 1, st.Index)
	last := rec.events[len(rec.events)-1]
	require.Equal(t, media.EventPlayStateChanged, last.Type())
	assert.False(t, last.(media.PlayStateChangedEvent).Playing)
}

// A sequential listen-through of a three track queue, the way a user would
// run it on a long drive.
func TestEngine_RoadTripScenario(t *testing.T) {
	e, out, rec := newTestEngine(t)

	e.SetPlaylist(testSongs(3))
	e.Play()

	// first two tracks end naturally
	out.FinishTrack()
	e.publish(e.tick())
	out.FinishTrack()
	e.publish(e.tick())

	st := e.Status()
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, StatePlaying, st.State)

	// the last one too, and the deck falls silent on it
	out.FinishTrack()
	e.publish(e.tick())

	st = e.Status()
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, StatePaused, st.State)

	var ended, changed int
	for _, ev := range rec.events {
		switch ev.Type() {
		case media.EventTrackEnded:
			ended++
		case media.EventTrackChanged:
			changed++
		}
	}
	assert.Equal(t, 3, ended)
	// initial load plus two advances
	assert.Equal(t, 3, changed)
}
