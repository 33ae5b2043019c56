package media

import (
	"fmt"
	"strings"
	"time"
)

// PlayOrder governs the order songs are drawn from a music playlist.
type PlayOrder string

const (
	OrderSequential PlayOrder = "sequential"
	OrderReverse    PlayOrder = "reverse"
	OrderShuffle    PlayOrder = "shuffle"
	OrderWeighted   PlayOrder = "weighted"
)

// Valid reports whether the play order is one of the known values.
func (o PlayOrder) Valid() bool {
	switch o {
	case OrderSequential, OrderReverse, OrderShuffle, OrderWeighted:
		return true
	}
	return false
}

// RepeatMode governs end-of-list wraparound during playback.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatOne  RepeatMode = "one"
	RepeatAll  RepeatMode = "all"
)

// Valid reports whether the repeat mode is one of the known values.
func (m RepeatMode) Valid() bool {
	switch m {
	case RepeatNone, RepeatOne, RepeatAll:
		return true
	}
	return false
}

// MusicPlaylist is a named, ordered list of song ids plus playback policy.
// Song ids are soft references: they may point at removed songs transiently,
// and resolution drops ids that no longer exist.
type MusicPlaylist struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SongIDs      []string   `json:"songIds"`
	PlayOrder    PlayOrder  `json:"playOrder"`
	RepeatMode   RepeatMode `json:"repeatMode"`
	CrossfadeSec float64    `json:"crossfadeSec,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Validate validates the playlist fields.
func (p *MusicPlaylist) Validate() error {
	if err := validatePlaylistName(p.Name); err != nil {
		return err
	}
	if !p.PlayOrder.Valid() {
		return fmt.Errorf("unknown play order: %q", p.PlayOrder)
	}
	if !p.RepeatMode.Valid() {
		return fmt.Errorf("unknown repeat mode: %q", p.RepeatMode)
	}
	if p.CrossfadeSec < 0 {
		return fmt.Errorf("crossfade seconds cannot be negative, got %f", p.CrossfadeSec)
	}
	return nil
}

// ContainsSong checks if a song id is in the playlist.
func (p *MusicPlaylist) ContainsSong(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// TimingMode says what drives advancement through a photo playlist.
type TimingMode string

const (
	TimingSeconds    TimingMode = "seconds"
	TimingSongChange TimingMode = "songchange"
	TimingManual     TimingMode = "manual"
)

// Valid reports whether the timing mode is one of the known values.
func (m TimingMode) Valid() bool {
	switch m {
	case TimingSeconds, TimingSongChange, TimingManual:
		return true
	}
	return false
}

// Transition names the visual transition between photos.
type Transition string

const (
	TransitionCrossfade Transition = "crossfade"
	TransitionCut       Transition = "cut"
	TransitionKenBurns  Transition = "kenburns"
)

// Valid reports whether the transition is one of the known values.
func (t Transition) Valid() bool {
	switch t {
	case TransitionCrossfade, TransitionCut, TransitionKenBurns:
		return true
	}
	return false
}

// TimingRule describes when and how a photo playlist advances.
type TimingRule struct {
	Mode         TimingMode `json:"mode"`
	DurationSec  int        `json:"durationSec,omitempty"`
	Transition   Transition `json:"transition"`
	TransitionMs int        `json:"transitionDurationMs,omitempty"`
}

// PhotoPlaylist is a named, ordered list of photo ids plus timing policy.
// Photo ids follow the same soft-reference rules as song ids.
type PhotoPlaylist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PhotoIDs    []string   `json:"photoIds"`
	Timing      TimingRule `json:"timingRules"`
	Randomize   bool       `json:"randomize"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Validate validates the playlist fields.
func (p *PhotoPlaylist) Validate() error {
	if err := validatePlaylistName(p.Name); err != nil {
		return err
	}
	if len(p.Description) > 1000 {
		return fmt.Errorf("playlist description cannot exceed 1000 characters, got %d", len(p.Description))
	}
	if !p.Timing.Mode.Valid() {
		return fmt.Errorf("unknown timing mode: %q", p.Timing.Mode)
	}
	if !p.Timing.Transition.Valid() {
		return fmt.Errorf("unknown transition: %q", p.Timing.Transition)
	}
	if p.Timing.DurationSec < 0 {
		return fmt.Errorf("timing duration cannot be negative, got %d", p.Timing.DurationSec)
	}
	return nil
}

// DefaultTiming is the timing rule new photo playlists start with.
func DefaultTiming() TimingRule {
	return TimingRule{
		Mode:         TimingSeconds,
		DurationSec:  8,
		Transition:   TransitionCrossfade,
		TransitionMs: 1000,
	}
}

// WithoutIDs returns ids with every member of removed stripped, preserving
// order. The second return reports whether anything was removed.
func WithoutIDs(ids []string, removed []string) ([]string, bool) {
	gone := make(map[string]struct{}, len(removed))
	for _, id := range removed {
		gone[id] = struct{}{}
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := gone[id]; !ok {
			kept = append(kept, id)
		}
	}
	return kept, len(kept) != len(ids)
}

func validatePlaylistName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("playlist name cannot be empty")
	}
	if len(name) > 200 {
		return fmt.Errorf("playlist name cannot exceed 200 characters, got %d", len(name))
	}
	return nil
}
