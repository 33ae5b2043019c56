package media

import "time"

// Theme is the UI color theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// View names the screen the presentation layer is showing.
type View string

const (
	ViewNowPlaying  View = "nowplaying"
	ViewMenu        View = "menu"
	ViewMusicEditor View = "musiceditor"
	ViewPhotoEditor View = "photoeditor"
	ViewMood        View = "mood"
)

// AppStateSnapshot is the persisted subset of application state: selections,
// volume, theme. Transient playback fields (clock, playing flag) are
// deliberately absent; they are re-derived from the playback engine each
// session.
type AppStateSnapshot struct {
	SelectedMusicPlaylistID string    `json:"selectedMusicPlaylistId,omitempty"`
	SelectedPhotoPlaylistID string    `json:"selectedPhotoPlaylistId,omitempty"`
	MoodPresetID            string    `json:"moodPresetId,omitempty"`
	CurrentTrackID          string    `json:"currentTrackId,omitempty"`
	CurrentPhotoIndex       int       `json:"currentPhotoIndex"`
	Volume                  float64   `json:"volume"`
	Theme                   Theme     `json:"theme"`
	View                    View      `json:"view"`
	LastSaved               time.Time `json:"lastSaved"`
}

// DefaultSnapshot is the state a fresh install boots with.
func DefaultSnapshot() AppStateSnapshot {
	return AppStateSnapshot{
		Volume:            0.8,
		Theme:             ThemeSystem,
		View:              ViewNowPlaying,
		CurrentPhotoIndex: 0,
		LastSaved:         time.Now(),
	}
}

// ClampVolume forces v into [0,1]. Always applied before a snapshot is
// persisted or a volume reaches the audio output.
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
