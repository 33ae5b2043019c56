// Package playback implements the track queue state machine that drives
// audio output and publishes transport events.
package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lumideck/lumideck/src/media"
)

// State is the engine's transport state.
type State string

const (
	// StateIdle means no track is loaded. Transport commands other than
	// SetPlaylist are no-ops in this state.
	StateIdle State = "idle"
	// StatePaused means a track is loaded but not audible.
	StatePaused State = "paused"
	// StatePlaying means a track is loaded and audible.
	StatePlaying State = "playing"
)

// Output is the audio backend the engine drives. Implementations decode and
// play one track at a time; the engine owns all queue and transport logic.
type Output interface {
	// Load prepares a track for playback, replacing any previous one.
	Load(src string) error
	// Play starts or resumes the loaded track. It may fail, for example
	// when the underlying device rejects the stream.
	Play() error
	// Pause suspends playback without losing position.
	Pause()
	// Stop unloads the current track.
	Stop()
	// Seek moves the playback position of the loaded track.
	Seek(position time.Duration) error
	// Position reports the current playback position.
	Position() time.Duration
	// Duration reports the loaded track's length, zero if unknown.
	Duration() time.Duration
	// Finished reports whether the loaded track has played to its end.
	Finished() bool
	// SetVolume applies a volume in [0,1].
	SetVolume(volume float64)
	// Close releases the backend.
	Close() error
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	State    State
	Track    *media.Song
	Index    int
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Repeat   media.RepeatMode
}

// Engine sequences a queue of tracks over an Output and publishes transport
// events on the bus. All methods are safe for concurrent use. Events are
// collected while the lock is held and published after it is released, so
// subscribers may call back into the engine.
type Engine struct {
	mu       sync.Mutex
	out      Output
	bus      media.Bus
	logger   *slog.Logger
	playlist []media.Song
	index    int
	state    State
	volume   float64
	repeat   media.RepeatMode
	interval time.Duration
	cancel   context.CancelFunc
}

// NewEngine creates an idle engine with volume 0.8 and no repeat.
func NewEngine(out Output, bus media.Bus, logger *slog.Logger, tickInterval time.Duration) *Engine {
	if tickInterval <= 0 {
		tickInterval = 333 * time.Millisecond
	}
	e := &Engine{
		out:      out,
		bus:      bus,
		logger:   logger,
		state:    StateIdle,
		volume:   0.8,
		repeat:   media.RepeatNone,
		interval: tickInterval,
	}
	out.SetVolume(e.volume)
	return e
}

// Start launches the progress ticker. It publishes TimeUpdate events while a
// track is loaded and detects natural track ends.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.publish(e.tick())
			}
		}
	}()
}

// Stop halts the ticker and the output.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.out.Stop()
	e.state = StateIdle
	e.playlist = nil
	e.index = 0
	e.mu.Unlock()
}

// SetPlaylist replaces the queue with a copy of songs and loads the first
// track paused. An empty queue unloads the output and leaves the engine idle.
func (e *Engine) SetPlaylist(songs []media.Song) {
	e.mu.Lock()
	events := e.setPlaylistLocked(songs)
	e.mu.Unlock()
	e.publish(events)
}

func (e *Engine) setPlaylistLocked(songs []media.Song) []media.Event {
	e.playlist = make([]media.Song, len(songs))
	copy(e.playlist, songs)
	e.index = 0

	if len(e.playlist) == 0 {
		wasPlaying := e.state == StatePlaying
		e.out.Stop()
		e.state = StateIdle
		if wasPlaying {
			return []media.Event{media.NewPlayStateChangedEvent(false)}
		}
		return nil
	}
	return e.loadLocked(0, false)
}

// SetRepeatMode changes how the queue behaves at its boundaries.
func (e *Engine) SetRepeatMode(mode media.RepeatMode) {
	e.mu.Lock()
	e.repeat = mode
	e.mu.Unlock()
}

// Play starts or resumes the loaded track. Idle engines ignore it. A
// rejected start is absorbed: the engine stays paused and announces the
// actual state instead of returning an error.
func (e *Engine) Play() {
	e.mu.Lock()
	events := e.playLocked()
	e.mu.Unlock()
	e.publish(events)
}

func (e *Engine) playLocked() []media.Event {
	if e.state == StateIdle {
		return nil
	}
	if err := e.out.Play(); err != nil {
		e.logger.Warn("Playback start rejected", "error", err, "track", e.playlist[e.index].Title)
		e.state = StatePaused
		return []media.Event{media.NewPlayStateChangedEvent(false)}
	}
	e.state = StatePlaying
	return []media.Event{media.NewPlayStateChangedEvent(true)}
}

// Pause suspends playback, keeping the position.
func (e *Engine) Pause() {
	e.mu.Lock()
	var events []media.Event
	if e.state == StatePlaying {
		e.out.Pause()
		e.state = StatePaused
		events = []media.Event{media.NewPlayStateChangedEvent(false)}
	}
	e.mu.Unlock()
	e.publish(events)
}

// Next moves to the following track, preserving the playing state. Past the
// last track it wraps to the first when repeat is "all", otherwise it pauses
// on the last track.
func (e *Engine) Next() {
	e.mu.Lock()
	events := e.nextLocked()
	e.mu.Unlock()
	e.publish(events)
}

func (e *Engine) nextLocked() []media.Event {
	if e.state == StateIdle {
		return nil
	}
	keepPlaying := e.state == StatePlaying
	if e.index+1 < len(e.playlist) {
		return e.loadLocked(e.index+1, keepPlaying)
	}
	if e.repeat == media.RepeatAll {
		return e.loadLocked(0, keepPlaying)
	}
	if keepPlaying {
		e.out.Pause()
		e.state = StatePaused
		return []media.Event{media.NewPlayStateChangedEvent(false)}
	}
	return nil
}

// Previous moves to the preceding track, preserving the playing state. Before
// the first track it wraps to the last when repeat is "all", otherwise it
// stays on the first track and restarts it from the beginning.
func (e *Engine) Previous() {
	e.mu.Lock()
	events := e.previousLocked()
	e.mu.Unlock()
	e.publish(events)
}

func (e *Engine) previousLocked() []media.Event {
	if e.state == StateIdle {
		return nil
	}
	keepPlaying := e.state == StatePlaying
	if e.index-1 >= 0 {
		return e.loadLocked(e.index-1, keepPlaying)
	}
	if e.repeat == media.RepeatAll {
		return e.loadLocked(len(e.playlist)-1, keepPlaying)
	}
	return e.loadLocked(0, keepPlaying)
}

// Seek moves the position within the loaded track. Idle engines ignore it.
func (e *Engine) Seek(position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return
	}
	if position < 0 {
		position = 0
	}
	if err := e.out.Seek(position); err != nil {
		e.logger.Warn("Seek failed", "error", err, "position", position)
	}
}

// SetVolume applies a volume, silently clamping it to [0,1]. The announced
// value is the clamped one.
func (e *Engine) SetVolume(volume float64) {
	e.mu.Lock()
	v := media.ClampVolume(volume)
	e.volume = v
	e.out.SetVolume(v)
	e.mu.Unlock()
	e.publish([]media.Event{media.NewVolumeChangedEvent(v)})
}

// Status reports a snapshot of the engine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		State:  e.state,
		Index:  e.index,
		Volume: e.volume,
		Repeat: e.repeat,
	}
	if e.state != StateIdle {
		track := e.playlist[e.index]
		st.Track = &track
		st.Position = e.out.Position()
		st.Duration = e.out.Duration()
	}
	return st
}

// loadLocked loads the track at index on the output and restores the playing
// state. A failed load or rejected start leaves the engine paused on the new
// track; the TrackChanged notification is published either way.
func (e *Engine) loadLocked(index int, keepPlaying bool) []media.Event {
	song := e.playlist[index]
	e.index = index

	events := []media.Event{media.NewTrackChangedEvent(song, index)}
	if err := e.out.Load(song.Src); err != nil {
		e.logger.Error("Failed to load track", "error", err, "track", song.Title, "src", song.Src)
		wasPlaying := e.state == StatePlaying
		e.state = StatePaused
		if wasPlaying || keepPlaying {
			events = append(events, media.NewPlayStateChangedEvent(false))
		}
		return events
	}
	e.out.SetVolume(e.volume)

	if keepPlaying {
		if err := e.out.Play(); err != nil {
			e.logger.Warn("Playback start rejected", "error", err, "track", song.Title)
			e.state = StatePaused
			events = append(events, media.NewPlayStateChangedEvent(false))
			return events
		}
		e.state = StatePlaying
	} else {
		e.state = StatePaused
	}
	return events
}

// tick drives the progress clock and natural track-end handling. Exposed to
// the ticker goroutine and to tests.
func (e *Engine) tick() []media.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return nil
	}

	if e.state == StatePlaying && e.out.Finished() {
		return e.trackEndedLocked()
	}
	return []media.Event{media.NewTimeUpdateEvent(e.out.Position(), e.out.Duration())}
}

// trackEndedLocked handles a track finishing on its own. The ended
// notification always precedes the one for the track the queue advances to.
func (e *Engine) trackEndedLocked() []media.Event {
	ended := e.playlist[e.index]
	events := []media.Event{media.NewTrackEndedEvent(ended)}

	switch {
	case e.repeat == media.RepeatOne:
		events = append(events, e.loadLocked(e.index, true)...)
	case e.index+1 < len(e.playlist):
		events = append(events, e.loadLocked(e.index+1, true)...)
	case e.repeat == media.RepeatAll:
		events = append(events, e.loadLocked(0, true)...)
	default:
		e.out.Pause()
		e.state = StatePaused
		events = append(events, media.NewPlayStateChangedEvent(false))
	}
	return events
}

func (e *Engine) publish(events []media.Event) {
	for _, ev := range events {
		e.bus.Publish(ev)
	}
}
