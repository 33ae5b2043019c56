// Package playlists manages music and photo playlists: creation, editing,
// deletion and activation.
package playlists

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumideck/lumideck/src/features/playback"
	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/media"
)

// Service owns playlist lifecycle. Activating a music playlist hands its
// resolved queue to the playback engine; activating a photo playlist only
// records the selection, the slideshow rotator picks it up from there.
type Service struct {
	store  *state.Store
	engine *playback.Engine
	logger *slog.Logger
}

// NewService creates a new playlists service.
func NewService(store *state.Store, engine *playback.Engine, logger *slog.Logger) *Service {
	return &Service{store: store, engine: engine, logger: logger}
}

// CreateMusicPlaylist creates an empty music playlist with default playback
// policy.
func (s *Service) CreateMusicPlaylist(ctx context.Context, name string) (*media.MusicPlaylist, error) {
	now := time.Now()
	playlist := media.MusicPlaylist{
		ID:         media.NewID(),
		Name:       name,
		SongIDs:    []string{},
		PlayOrder:  media.OrderSequential,
		RepeatMode: media.RepeatNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := playlist.Validate(); err != nil {
		return nil, err
	}
	s.store.UpsertMusicPlaylist(playlist)
	s.logger.Info("Music playlist created", "id", playlist.ID, "name", playlist.Name)
	return &playlist, nil
}

// UpdateMusicPlaylist applies changes to an existing playlist. Nil fields in
// changes are left untouched.
func (s *Service) UpdateMusicPlaylist(ctx context.Context, id string, changes MusicPlaylistChanges) (*media.MusicPlaylist, error) {
	var validationErr error
	ok := s.store.UpdateMusicPlaylist(id, func(p *media.MusicPlaylist) {
		next := *p
		next.SongIDs = append([]string(nil), p.SongIDs...)
		if changes.Name != nil {
			next.Name = *changes.Name
		}
		if changes.SongIDs != nil {
			next.SongIDs = append([]string(nil), changes.SongIDs...)
		}
		if changes.PlayOrder != nil {
			next.PlayOrder = *changes.PlayOrder
		}
		if changes.RepeatMode != nil {
			next.RepeatMode = *changes.RepeatMode
		}
		if changes.CrossfadeSec != nil {
			next.CrossfadeSec = *changes.CrossfadeSec
		}
		if validationErr = next.Validate(); validationErr != nil {
			return
		}
		*p = next
	})
	if !ok {
		return nil, fmt.Errorf("music playlist not found: %s", id)
	}
	if validationErr != nil {
		return nil, validationErr
	}

	// keep the live queue and repeat mode in sync when the active playlist
	// was edited
	if s.store.Snapshot().SelectedMusicPlaylistID == id {
		updated := s.store.MusicPlaylist(id)
		s.engine.SetRepeatMode(updated.RepeatMode)
	}
	return s.store.MusicPlaylist(id), nil
}

// MusicPlaylistChanges is a partial update for a music playlist.
type MusicPlaylistChanges struct {
	Name         *string           `json:"name"`
	SongIDs      []string          `json:"songIds"`
	PlayOrder    *media.PlayOrder  `json:"playOrder"`
	RepeatMode   *media.RepeatMode `json:"repeatMode"`
	CrossfadeSec *float64          `json:"crossfadeSec"`
}

// AddSongToMusicPlaylist appends a song id if it isn't already present.
func (s *Service) AddSongToMusicPlaylist(ctx context.Context, playlistID, songID string) error {
	if s.store.Song(songID) == nil {
		return fmt.Errorf("song not found: %s", songID)
	}
	ok := s.store.UpdateMusicPlaylist(playlistID, func(p *media.MusicPlaylist) {
		if !p.ContainsSong(songID) {
			p.SongIDs = append(p.SongIDs, songID)
		}
	})
	if !ok {
		return fmt.Errorf("music playlist not found: %s", playlistID)
	}
	return nil
}

// RemoveSongFromMusicPlaylist strips a song id from a playlist.
func (s *Service) RemoveSongFromMusicPlaylist(ctx context.Context, playlistID, songID string) error {
	ok := s.store.UpdateMusicPlaylist(playlistID, func(p *media.MusicPlaylist) {
		p.SongIDs, _ = media.WithoutIDs(p.SongIDs, []string{songID})
	})
	if !ok {
		return fmt.Errorf("music playlist not found: %s", playlistID)
	}
	return nil
}

// DeleteMusicPlaylist removes a playlist. When it was the active one the
// engine queue is cleared as well.
func (s *Service) DeleteMusicPlaylist(ctx context.Context, id string) error {
	if s.store.MusicPlaylist(id) == nil {
		return fmt.Errorf("music playlist not found: %s", id)
	}
	wasSelected := s.store.Snapshot().SelectedMusicPlaylistID == id
	s.store.RemoveMusicPlaylists([]string{id})
	if wasSelected {
		s.engine.SetPlaylist(nil)
	}
	s.logger.Info("Music playlist deleted", "id", id)
	return nil
}

// SelectMusicPlaylist activates a playlist: the selection is recorded and
// the resolved queue, in the playlist's play order, is handed to the engine.
func (s *Service) SelectMusicPlaylist(ctx context.Context, id string) error {
	playlist := s.store.MusicPlaylist(id)
	if playlist == nil {
		return fmt.Errorf("music playlist not found: %s", id)
	}
	s.store.SelectMusicPlaylist(id)
	s.engine.SetRepeatMode(playlist.RepeatMode)
	s.engine.SetPlaylist(s.store.QueueForPlaylist(id))
	s.logger.Info("Music playlist selected", "id", id, "name", playlist.Name)
	return nil
}

// CreatePhotoPlaylist creates an empty photo playlist with default timing.
func (s *Service) CreatePhotoPlaylist(ctx context.Context, name, description string) (*media.PhotoPlaylist, error) {
	now := time.Now()
	playlist := media.PhotoPlaylist{
		ID:          media.NewID(),
		Name:        name,
		Description: description,
		PhotoIDs:    []string{},
		Timing:      media.DefaultTiming(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := playlist.Validate(); err != nil {
		return nil, err
	}
	s.store.UpsertPhotoPlaylist(playlist)
	s.logger.Info("Photo playlist created", "id", playlist.ID, "name", playlist.Name)
	return &playlist, nil
}

// PhotoPlaylistChanges is a partial update for a photo playlist.
type PhotoPlaylistChanges struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	PhotoIDs    []string          `json:"photoIds"`
	Timing      *media.TimingRule `json:"timingRules"`
	Randomize   *bool             `json:"randomize"`
}

// UpdatePhotoPlaylist applies changes to an existing photo playlist.
func (s *Service) UpdatePhotoPlaylist(ctx context.Context, id string, changes PhotoPlaylistChanges) (*media.PhotoPlaylist, error) {
	var validationErr error
	ok := s.store.UpdatePhotoPlaylist(id, func(p *media.PhotoPlaylist) {
		next := *p
		next.PhotoIDs = append([]string(nil), p.PhotoIDs...)
		if changes.Name != nil {
			next.Name = *changes.Name
		}
		if changes.Description != nil {
			next.Description = *changes.Description
		}
		if changes.PhotoIDs != nil {
			next.PhotoIDs = append([]string(nil), changes.PhotoIDs...)
		}
		if changes.Timing != nil {
			next.Timing = *changes.Timing
		}
		if changes.Randomize != nil {
			next.Randomize = *changes.Randomize
		}
		if validationErr = next.Validate(); validationErr != nil {
			return
		}
		*p = next
	})
	if !ok {
		return nil, fmt.Errorf("photo playlist not found: %s", id)
	}
	if validationErr != nil {
		return nil, validationErr
	}
	return s.store.PhotoPlaylist(id), nil
}

// AddPhotoToPhotoPlaylist appends a photo id if it isn't already present.
func (s *Service) AddPhotoToPhotoPlaylist(ctx context.Context, playlistID, photoID string) error {
	if s.store.Photo(photoID) == nil {
		return fmt.Errorf("photo not found: %s", photoID)
	}
	ok := s.store.UpdatePhotoPlaylist(playlistID, func(p *media.PhotoPlaylist) {
		for _, id := range p.PhotoIDs {
			if id == photoID {
				return
			}
		}
		p.PhotoIDs = append(p.PhotoIDs, photoID)
	})
	if !ok {
		return fmt.Errorf("photo playlist not found: %s", playlistID)
	}
	return nil
}

// RemovePhotoFromPhotoPlaylist strips a photo id from a playlist.
func (s *Service) RemovePhotoFromPhotoPlaylist(ctx context.Context, playlistID, photoID string) error {
	ok := s.store.UpdatePhotoPlaylist(playlistID, func(p *media.PhotoPlaylist) {
		p.PhotoIDs, _ = media.WithoutIDs(p.PhotoIDs, []string{photoID})
	})
	if !ok {
		return fmt.Errorf("photo playlist not found: %s", playlistID)
	}
	return nil
}

// DeletePhotoPlaylist removes a photo playlist.
func (s *Service) DeletePhotoPlaylist(ctx context.Context, id string) error {
	if s.store.PhotoPlaylist(id) == nil {
		return fmt.Errorf("photo playlist not found: %s", id)
	}
	s.store.RemovePhotoPlaylists([]string{id})
	s.logger.Info("Photo playlist deleted", "id", id)
	return nil
}

// SelectPhotoPlaylist activates a photo playlist, rewinding the slideshow to
// its first photo.
func (s *Service) SelectPhotoPlaylist(ctx context.Context, id string) error {
	if !s.store.SelectPhotoPlaylist(id) {
		return fmt.Errorf("photo playlist not found: %s", id)
	}
	s.logger.Info("Photo playlist selected", "id", id)
	return nil
}
