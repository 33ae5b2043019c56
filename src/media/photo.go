package media

import (
	"fmt"
	"strings"
	"time"
)

// Photo represents a single background image in the library.
// Width and Height are zero until the dimension probe backfills them.
type Photo struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	SrcKind  SourceKind `json:"srcKind"`
	Src      string     `json:"src"`
	Width    int        `json:"width,omitempty"`
	Height   int        `json:"height,omitempty"`
	Hash     string     `json:"hash,omitempty"`
	Filename string     `json:"filename"`
	FileSize int64      `json:"fileSize"`
	AddedAt  time.Time  `json:"addedAt"`
}

// Validate validates the photo fields.
func (p *Photo) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("photo title cannot be empty")
	}
	if len(p.Title) > 500 {
		return fmt.Errorf("photo title cannot exceed 500 characters, got %d", len(p.Title))
	}
	if !p.SrcKind.Valid() {
		return fmt.Errorf("unknown source kind: %q", p.SrcKind)
	}
	if strings.TrimSpace(p.Src) == "" {
		return fmt.Errorf("photo source cannot be empty")
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("photo dimensions cannot be negative, got %dx%d", p.Width, p.Height)
	}
	return nil
}
