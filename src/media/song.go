package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceKind says where a song or photo's bytes live.
type SourceKind string

const (
	// SourceFile is a file stored under the local library path.
	SourceFile SourceKind = "file"
	// SourceURL is a remote resource referenced by URL.
	SourceURL SourceKind = "url"
)

// Valid reports whether the source kind is one of the known values.
func (k SourceKind) Valid() bool {
	return k == SourceFile || k == SourceURL
}

// Song represents a single audio entry in the library.
// DurationSec is zero until the metadata probe backfills it.
type Song struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist,omitempty"`
	DurationSec int        `json:"durationSec,omitempty"`
	SrcKind     SourceKind `json:"srcKind"`
	Src         string     `json:"src"`
	Hash        string     `json:"hash,omitempty"`
	Filename    string     `json:"filename"`
	FileSize    int64      `json:"fileSize"`
	AddedAt     time.Time  `json:"addedAt"`
}

// Validate validates the song fields.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title cannot be empty")
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("song title cannot exceed 500 characters, got %d", len(s.Title))
	}
	if !s.SrcKind.Valid() {
		return fmt.Errorf("unknown source kind: %q", s.SrcKind)
	}
	if strings.TrimSpace(s.Src) == "" {
		return fmt.Errorf("song source cannot be empty")
	}
	if s.DurationSec < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", s.DurationSec)
	}
	return nil
}

// NewID creates a UUID for a library entity.
func NewID() string {
	return uuid.New().String()
}
