package database

import (
	"context"
	"sort"
	"sync"

	"github.com/lumideck/lumideck/src/media"
)

// MemoryGateway is a map-backed media.Gateway for tests and ephemeral runs.
type MemoryGateway struct {
	mu             sync.Mutex
	songs          map[string]media.Song
	photos         map[string]media.Photo
	musicPlaylists map[string]media.MusicPlaylist
	photoPlaylists map[string]media.PhotoPlaylist
	presets        map[string]media.MoodPreset
	snapshot       *media.AppStateSnapshot
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		songs:          make(map[string]media.Song),
		photos:         make(map[string]media.Photo),
		musicPlaylists: make(map[string]media.MusicPlaylist),
		photoPlaylists: make(map[string]media.PhotoPlaylist),
		presets:        make(map[string]media.MoodPreset),
	}
}

func (g *MemoryGateway) ListSongs(context.Context) ([]media.Song, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.Song, 0, len(g.songs))
	for _, s := range g.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (g *MemoryGateway) GetSong(_ context.Context, id string) (*media.Song, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.songs[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (g *MemoryGateway) UpsertSong(_ context.Context, song media.Song) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.songs[song.ID] = song
	return nil
}

func (g *MemoryGateway) RemoveSongs(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.songs, id)
	}
	return nil
}

func (g *MemoryGateway) ListPhotos(context.Context) ([]media.Photo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.Photo, 0, len(g.photos))
	for _, p := range g.photos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (g *MemoryGateway) GetPhoto(_ context.Context, id string) (*media.Photo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.photos[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *MemoryGateway) UpsertPhoto(_ context.Context, photo media.Photo) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photos[photo.ID] = photo
	return nil
}

func (g *MemoryGateway) RemovePhotos(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.photos, id)
	}
	return nil
}

func (g *MemoryGateway) ListMusicPlaylists(context.Context) ([]media.MusicPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.MusicPlaylist, 0, len(g.musicPlaylists))
	for _, p := range g.musicPlaylists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (g *MemoryGateway) GetMusicPlaylist(_ context.Context, id string) (*media.MusicPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.musicPlaylists[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *MemoryGateway) UpsertMusicPlaylist(_ context.Context, playlist media.MusicPlaylist) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.musicPlaylists[playlist.ID] = playlist
	return nil
}

func (g *MemoryGateway) RemoveMusicPlaylists(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.musicPlaylists, id)
	}
	return nil
}

func (g *MemoryGateway) ListPhotoPlaylists(context.Context) ([]media.PhotoPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.PhotoPlaylist, 0, len(g.photoPlaylists))
	for _, p := range g.photoPlaylists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (g *MemoryGateway) GetPhotoPlaylist(_ context.Context, id string) (*media.PhotoPlaylist, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.photoPlaylists[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *MemoryGateway) UpsertPhotoPlaylist(_ context.Context, playlist media.PhotoPlaylist) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photoPlaylists[playlist.ID] = playlist
	return nil
}

func (g *MemoryGateway) RemovePhotoPlaylists(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		delete(g.photoPlaylists, id)
	}
	return nil
}

func (g *MemoryGateway) ListMoodPresets(context.Context) ([]media.MoodPreset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]media.MoodPreset, 0, len(g.presets))
	for _, p := range g.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (g *MemoryGateway) GetMoodPreset(_ context.Context, id string) (*media.MoodPreset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.presets[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (g *MemoryGateway) UpsertMoodPreset(_ context.Context, preset media.MoodPreset) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.presets[preset.ID] = preset
	return nil
}

func (g *MemoryGateway) Snapshot(context.Context) (*media.AppStateSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return nil, nil
	}
	snap := *g.snapshot
	return &snap, nil
}

func (g *MemoryGateway) SaveSnapshot(_ context.Context, snapshot media.AppStateSnapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshot = &snapshot
	return nil
}

var _ media.Gateway = (*MemoryGateway)(nil)
