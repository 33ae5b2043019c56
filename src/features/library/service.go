// Package library implements media imports and removals: uploads, remote
// references, the drop-directory watcher and the metadata backfill probes.
package library

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/infra/files"
	"github.com/lumideck/lumideck/src/infra/probe"
	"github.com/lumideck/lumideck/src/media"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Service imports media into the library and removes it again. Imports are
// registered immediately; durations, dimensions and thumbnails are
// backfilled by background probes that re-check the entity still exists
// before writing.
type Service struct {
	store  *state.Store
	fs     *files.Store
	logger *slog.Logger
}

// NewService creates a new library service.
func NewService(store *state.Store, fs *files.Store, logger *slog.Logger) *Service {
	return &Service{store: store, fs: fs, logger: logger}
}

// Files exposes the on-disk store so handlers can resolve paths.
func (s *Service) Files() *files.Store {
	return s.fs
}

// ImportSong stores an uploaded audio file and registers it. The title and
// artist come from the file's tags when present, otherwise from the
// filename.
func (s *Service) ImportSong(ctx context.Context, filename string, r io.Reader) (*media.Song, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !audioExtensions[ext] {
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}

	id := media.NewID()
	saved, err := s.fs.SaveSong(id, filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store audio file: %w", err)
	}

	song := media.Song{
		ID:       id,
		Title:    titleFromFilename(filename),
		SrcKind:  media.SourceFile,
		Src:      saved.Path,
		Hash:     saved.Hash,
		Filename: filename,
		FileSize: saved.Size,
		AddedAt:  time.Now(),
	}
	if tags, err := probe.ReadTags(saved.Path); err == nil {
		if tags.Title != "" {
			song.Title = tags.Title
		}
		song.Artist = tags.Artist
	} else {
		s.logger.Debug("No readable tags, using filename", "file", filename, "error", err)
	}

	if err := song.Validate(); err != nil {
		s.fs.Remove(saved.Path)
		return nil, err
	}
	s.store.UpsertSong(song)
	s.logger.Info("Song imported", "id", song.ID, "title", song.Title, "size", song.FileSize)

	go s.backfillDuration(song.ID, saved.Path)
	return &song, nil
}

// AddRemoteSong registers a song whose bytes live at a URL. Remote songs get
// no probes; the duration stays unknown until playback learns it.
func (s *Service) AddRemoteSong(ctx context.Context, title, rawURL string) (*media.Song, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}
	song := media.Song{
		ID:       media.NewID(),
		Title:    title,
		SrcKind:  media.SourceURL,
		Src:      rawURL,
		Filename: path.Base(rawURL),
		AddedAt:  time.Now(),
	}
	if err := song.Validate(); err != nil {
		return nil, err
	}
	s.store.UpsertSong(song)
	s.logger.Info("Remote song added", "id", song.ID, "title", song.Title)
	return &song, nil
}

// ImportPhoto stores an uploaded image file and registers it.
func (s *Service) ImportPhoto(ctx context.Context, filename string, r io.Reader) (*media.Photo, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return nil, fmt.Errorf("unsupported image format: %s", ext)
	}

	id := media.NewID()
	saved, err := s.fs.SavePhoto(id, filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store image file: %w", err)
	}

	photo := media.Photo{
		ID:       id,
		Title:    titleFromFilename(filename),
		SrcKind:  media.SourceFile,
		Src:      saved.Path,
		Hash:     saved.Hash,
		Filename: filename,
		FileSize: saved.Size,
		AddedAt:  time.Now(),
	}
	if err := photo.Validate(); err != nil {
		s.fs.Remove(saved.Path)
		return nil, err
	}
	s.store.UpsertPhoto(photo)
	s.logger.Info("Photo imported", "id", photo.ID, "title", photo.Title, "size", photo.FileSize)

	go s.backfillPhoto(photo.ID, saved.Path)
	return &photo, nil
}

// AddRemotePhoto registers a photo whose bytes live at a URL.
func (s *Service) AddRemotePhoto(ctx context.Context, title, rawURL string) (*media.Photo, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}
	photo := media.Photo{
		ID:       media.NewID(),
		Title:    title,
		SrcKind:  media.SourceURL,
		Src:      rawURL,
		Filename: path.Base(rawURL),
		AddedAt:  time.Now(),
	}
	if err := photo.Validate(); err != nil {
		return nil, err
	}
	s.store.UpsertPhoto(photo)
	s.logger.Info("Remote photo added", "id", photo.ID, "title", photo.Title)
	return &photo, nil
}

// RemoveSongs deletes songs from the library and their stored files from
// disk. Playlist references are cascaded by the state store.
func (s *Service) RemoveSongs(ctx context.Context, ids []string) {
	var paths []string
	for _, id := range ids {
		if song := s.store.Song(id); song != nil && song.SrcKind == media.SourceFile {
			paths = append(paths, song.Src)
		}
	}
	s.store.RemoveSongs(ids)
	for _, p := range paths {
		if err := s.fs.Remove(p); err != nil {
			s.logger.Error("Failed to delete song file", "path", p, "error", err)
		}
	}
	s.logger.Info("Songs removed", "count", len(ids))
}

// RemovePhotos deletes photos, their stored files and their thumbnails.
func (s *Service) RemovePhotos(ctx context.Context, ids []string) {
	var paths []string
	for _, id := range ids {
		if photo := s.store.Photo(id); photo != nil && photo.SrcKind == media.SourceFile {
			paths = append(paths, photo.Src)
		}
		paths = append(paths, s.fs.ThumbnailPath(id))
	}
	s.store.RemovePhotos(ids)
	for _, p := range paths {
		if err := s.fs.Remove(p); err != nil {
			s.logger.Error("Failed to delete photo file", "path", p, "error", err)
		}
	}
	s.logger.Info("Photos removed", "count", len(ids))
}

// backfillDuration probes an audio file's length and writes it back. The
// store rejects the write when the song was removed in the meantime.
func (s *Service) backfillDuration(id, path string) {
	secs, err := probe.AudioDuration(path)
	if err != nil {
		s.logger.Warn("Failed to probe audio duration", "id", id, "error", err)
		return
	}
	if !s.store.UpdateSongDuration(id, secs) {
		s.logger.Debug("Song removed before duration probe finished", "id", id)
	}
}

// backfillPhoto probes image dimensions and builds a thumbnail.
func (s *Service) backfillPhoto(id, path string) {
	if w, h, err := probe.ImageDimensions(path); err != nil {
		s.logger.Warn("Failed to probe image dimensions", "id", id, "error", err)
	} else if !s.store.UpdatePhotoDimensions(id, w, h) {
		s.logger.Debug("Photo removed before dimension probe finished", "id", id)
		return
	}
	if _, err := s.fs.BuildThumbnail(id, path); err != nil {
		s.logger.Warn("Failed to build thumbnail", "id", id, "error", err)
	}
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
