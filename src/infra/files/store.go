// Package files stores imported media under the library path and builds
// photo thumbnails.
package files

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/gosimple/unidecode"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	songsDir  = "songs"
	photosDir = "photos"
	thumbsDir = "thumbs"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Store writes media files under a root directory, one subdirectory per
// collection. Stored names are id-prefixed so they never collide.
type Store struct {
	root       string
	thumbWidth uint
}

// NewStore creates a file store rooted at root. Thumbnails are resized to
// thumbWidth pixels wide.
func NewStore(root string, thumbWidth int) (*Store, error) {
	if thumbWidth <= 0 {
		thumbWidth = 320
	}
	for _, dir := range []string{songsDir, photosDir, thumbsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}
	return &Store{root: root, thumbWidth: uint(thumbWidth)}, nil
}

// SaveResult describes a stored file.
type SaveResult struct {
	Path string
	Hash string
	Size int64
}

// SaveSong stores an uploaded audio file.
func (s *Store) SaveSong(id, filename string, r io.Reader) (*SaveResult, error) {
	return s.save(songsDir, id, filename, r)
}

// SavePhoto stores an uploaded image file.
func (s *Store) SavePhoto(id, filename string, r io.Reader) (*SaveResult, error) {
	return s.save(photosDir, id, filename, r)
}

func (s *Store) save(dir, id, filename string, r io.Reader) (*SaveResult, error) {
	name := fmt.Sprintf("%s-%s", id, SanitizeFilename(filename))
	path := filepath.Join(s.root, dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	slog.Debug("Stored media file", "path", path, "size", size)
	return &SaveResult{
		Path: path,
		Hash: hex.EncodeToString(hasher.Sum(nil)),
		Size: size,
	}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ThumbnailPath is where the thumbnail for a photo id lives.
func (s *Store) ThumbnailPath(id string) string {
	return filepath.Join(s.root, thumbsDir, id+".jpg")
}

// BuildThumbnail decodes the photo at srcPath and writes a width-bound JPEG
// thumbnail for the given id.
func (s *Store) BuildThumbnail(id, srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode photo: %w", err)
	}

	thumb := resize.Resize(s.thumbWidth, 0, img, resize.Lanczos3)
	dest := s.ThumbnailPath(id)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return dest, nil
}

// SanitizeFilename transliterates a name to ASCII and strips characters that
// are unsafe in stored filenames.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unidecode.Unidecode(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return name
}
