package media

import (
	"fmt"
	"strings"
)

// MoodOptions are extra layers applied on top of the base filter.
type MoodOptions struct {
	Vignette bool `json:"vignette"`
	Grain    bool `json:"grain"`
}

// MoodPreset is a named visual-filter configuration applied to the
// background photo. Intensity runs 0-100 and is clamped at edit time, so a
// stored preset is never out of range.
type MoodPreset struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Intensity int         `json:"intensity"`
	Filter    string      `json:"filter"`
	Options   MoodOptions `json:"options"`
}

// Validate validates the preset fields.
func (m *MoodPreset) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if m.Intensity < 0 || m.Intensity > 100 {
		return fmt.Errorf("preset intensity must be within [0,100], got %d", m.Intensity)
	}
	return nil
}

// ComposedFilter returns the filter descriptor the presentation layer
// applies, or "none" for a preset without one.
func (m *MoodPreset) ComposedFilter() string {
	if strings.TrimSpace(m.Filter) == "" {
		return "none"
	}
	return m.Filter
}

// ClampIntensity forces v into the valid [0,100] range.
func ClampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// DefaultMoodPresets returns the built-in presets seeded into an empty
// library on first boot.
func DefaultMoodPresets() []MoodPreset {
	return []MoodPreset{
		{
			ID:        "glowy-techno",
			Name:      "Glowy Techno",
			Intensity: 75,
			Filter:    "brightness(1.1) saturate(1.4) blur(0.5px) hue-rotate(15deg)",
			Options:   MoodOptions{Vignette: false, Grain: false},
		},
		{
			ID:        "bright-day",
			Name:      "Bright Day",
			Intensity: 60,
			Filter:    "brightness(1.3) saturate(1.1) contrast(1.1)",
			Options:   MoodOptions{Vignette: false, Grain: false},
		},
		{
			ID:        "nocturne",
			Name:      "Nocturne",
			Intensity: 80,
			Filter:    "brightness(0.7) contrast(1.2) saturate(0.8) hue-rotate(-10deg)",
			Options:   MoodOptions{Vignette: true, Grain: false},
		},
		{
			ID:        "neon-city",
			Name:      "Neon City",
			Intensity: 90,
			Filter:    "saturate(1.6) hue-rotate(45deg) contrast(1.1) brightness(1.1)",
			Options:   MoodOptions{Vignette: false, Grain: false},
		},
		{
			ID:        "warm-film",
			Name:      "Warm Film",
			Intensity: 65,
			Filter:    "sepia(0.3) saturate(1.2) brightness(1.05) contrast(1.05)",
			Options:   MoodOptions{Vignette: true, Grain: true},
		},
		{
			ID:        "mono-noir",
			Name:      "Mono Noir",
			Intensity: 85,
			Filter:    "grayscale(1) contrast(1.3) brightness(0.9)",
			Options:   MoodOptions{Vignette: true, Grain: true},
		},
	}
}
