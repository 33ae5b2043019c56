package media

import "time"

// Events published by the playback engine and slideshow rotator. Delivery is
// fire-and-forget: subscribers get no acknowledgment and exert no
// backpressure. For a single transition the emission order is fixed (a
// TrackEnded always precedes the TrackChanged of the advance it triggers),
// so subscribers may rely on sequence, not just final state.

// EventType identifies a kind of notification.
type EventType string

const (
	EventTimeUpdate       EventType = "time.update"
	EventTrackEnded       EventType = "track.ended"
	EventTrackChanged     EventType = "track.changed"
	EventPlayStateChanged EventType = "playstate.changed"
	EventVolumeChanged    EventType = "volume.changed"
	EventPhotoAdvanced    EventType = "photo.advanced"
)

// Event is the base interface for all notifications.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// EventHandler is a subscriber callback. A slow handler blocks delivery of
// the event it is handling, never playback itself.
type EventHandler func(Event)

// SubscriptionID identifies an event subscription for later removal.
type SubscriptionID string

// Bus is an ordered, synchronous fan-out channel for events.
type Bus interface {
	Publish(event Event)
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID
	SubscribeAll(handler EventHandler) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Close() error
}

type baseEvent struct {
	at time.Time
}

func (e baseEvent) Timestamp() time.Time { return e.at }

func newBaseEvent() baseEvent { return baseEvent{at: time.Now()} }

// TimeUpdateEvent carries the playback clock, fired on a best-effort
// periodic cadence while a track is loaded.
type TimeUpdateEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

func (TimeUpdateEvent) Type() EventType { return EventTimeUpdate }

// NewTimeUpdateEvent creates a TimeUpdateEvent.
func NewTimeUpdateEvent(position, duration time.Duration) TimeUpdateEvent {
	return TimeUpdateEvent{baseEvent: newBaseEvent(), Position: position, Duration: duration}
}

// TrackEndedEvent is published when a track finishes naturally, carrying the
// just-finished track. It is emitted before the advance notification.
type TrackEndedEvent struct {
	baseEvent
	Track Song
}

func (TrackEndedEvent) Type() EventType { return EventTrackEnded }

// NewTrackEndedEvent creates a TrackEndedEvent.
func NewTrackEndedEvent(track Song) TrackEndedEvent {
	return TrackEndedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackChangedEvent is published when a new track is loaded.
type TrackChangedEvent struct {
	baseEvent
	Track Song
	Index int
}

func (TrackChangedEvent) Type() EventType { return EventTrackChanged }

// NewTrackChangedEvent creates a TrackChangedEvent.
func NewTrackChangedEvent(track Song, index int) TrackChangedEvent {
	return TrackChangedEvent{baseEvent: newBaseEvent(), Track: track, Index: index}
}

// PlayStateChangedEvent reflects the engine's actual playing state,
// including after a rejected playback start.
type PlayStateChangedEvent struct {
	baseEvent
	Playing bool
}

func (PlayStateChangedEvent) Type() EventType { return EventPlayStateChanged }

// NewPlayStateChangedEvent creates a PlayStateChangedEvent.
func NewPlayStateChangedEvent(playing bool) PlayStateChangedEvent {
	return PlayStateChangedEvent{baseEvent: newBaseEvent(), Playing: playing}
}

// VolumeChangedEvent carries the applied (clamped) volume, which may differ
// from what the caller passed in.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

func (VolumeChangedEvent) Type() EventType { return EventVolumeChanged }

// NewVolumeChangedEvent creates a VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// PhotoAdvancedEvent is published when the slideshow moves to another photo.
type PhotoAdvancedEvent struct {
	baseEvent
	PhotoID string
	Index   int
}

func (PhotoAdvancedEvent) Type() EventType { return EventPhotoAdvanced }

// NewPhotoAdvancedEvent creates a PhotoAdvancedEvent.
func NewPhotoAdvancedEvent(photoID string, index int) PhotoAdvancedEvent {
	return PhotoAdvancedEvent{baseEvent: newBaseEvent(), PhotoID: photoID, Index: index}
}
