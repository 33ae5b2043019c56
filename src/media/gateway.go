package media

import "context"

// The persistence gateway contracts. Concrete storage (SQLite today, a
// remote service tomorrow) is swappable behind these interfaces. All
// operations may fail and report the failure to the caller; "not found" is
// returned as (nil, nil).

// SongRepository is data access for the song collection.
type SongRepository interface {
	ListSongs(ctx context.Context) ([]Song, error)
	GetSong(ctx context.Context, id string) (*Song, error)
	UpsertSong(ctx context.Context, song Song) error
	RemoveSongs(ctx context.Context, ids []string) error
}

// MusicPlaylistRepository is data access for music playlists.
type MusicPlaylistRepository interface {
	ListMusicPlaylists(ctx context.Context) ([]MusicPlaylist, error)
	GetMusicPlaylist(ctx context.Context, id string) (*MusicPlaylist, error)
	UpsertMusicPlaylist(ctx context.Context, playlist MusicPlaylist) error
	RemoveMusicPlaylists(ctx context.Context, ids []string) error
}

// PhotoRepository is data access for the photo collection.
type PhotoRepository interface {
	ListPhotos(ctx context.Context) ([]Photo, error)
	GetPhoto(ctx context.Context, id string) (*Photo, error)
	UpsertPhoto(ctx context.Context, photo Photo) error
	RemovePhotos(ctx context.Context, ids []string) error
}

// PhotoPlaylistRepository is data access for photo playlists.
type PhotoPlaylistRepository interface {
	ListPhotoPlaylists(ctx context.Context) ([]PhotoPlaylist, error)
	GetPhotoPlaylist(ctx context.Context, id string) (*PhotoPlaylist, error)
	UpsertPhotoPlaylist(ctx context.Context, playlist PhotoPlaylist) error
	RemovePhotoPlaylists(ctx context.Context, ids []string) error
}

// MoodPresetRepository is data access for mood presets. Presets are never
// removed, only listed, read and upserted.
type MoodPresetRepository interface {
	ListMoodPresets(ctx context.Context) ([]MoodPreset, error)
	GetMoodPreset(ctx context.Context, id string) (*MoodPreset, error)
	UpsertMoodPreset(ctx context.Context, preset MoodPreset) error
}

// SnapshotStore holds the singleton app-state snapshot. The snapshot is
// created with defaults on first boot and overwritten, never deleted.
type SnapshotStore interface {
	Snapshot(ctx context.Context) (*AppStateSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot AppStateSnapshot) error
}

// Gateway bundles every collection plus the snapshot singleton. Per-call
// atomicity only: there are no multi-collection transactions, so cascades
// are applied in memory first and persisted best-effort.
type Gateway interface {
	SongRepository
	MusicPlaylistRepository
	PhotoRepository
	PhotoPlaylistRepository
	MoodPresetRepository
	SnapshotStore
}
