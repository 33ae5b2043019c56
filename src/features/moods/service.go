// Package moods manages the visual mood presets applied to the background
// photo.
package moods

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/media"
)

// Service owns mood preset edits and selection. Presets are never deleted;
// the built-in six can be retuned but always exist.
type Service struct {
	store  *state.Store
	logger *slog.Logger
}

// NewService creates a new moods service.
func NewService(store *state.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// PresetChanges is a partial update for a mood preset.
type PresetChanges struct {
	Name      *string            `json:"name"`
	Intensity *int               `json:"intensity"`
	Filter    *string            `json:"filter"`
	Options   *media.MoodOptions `json:"options"`
}

// UpdatePreset applies changes to an existing preset. Intensity is clamped
// to [0,100] rather than rejected.
func (s *Service) UpdatePreset(ctx context.Context, id string, changes PresetChanges) (*media.MoodPreset, error) {
	preset := s.store.MoodPreset(id)
	if preset == nil {
		return nil, fmt.Errorf("mood preset not found: %s", id)
	}

	if changes.Name != nil {
		preset.Name = *changes.Name
	}
	if changes.Intensity != nil {
		preset.Intensity = media.ClampIntensity(*changes.Intensity)
	}
	if changes.Filter != nil {
		preset.Filter = *changes.Filter
	}
	if changes.Options != nil {
		preset.Options = *changes.Options
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}

	s.store.UpsertMoodPreset(*preset)
	s.logger.Info("Mood preset updated", "id", id, "intensity", preset.Intensity)
	return s.store.MoodPreset(id), nil
}

// CreatePreset adds a custom preset alongside the built-in ones.
func (s *Service) CreatePreset(ctx context.Context, name, filter string, intensity int, options media.MoodOptions) (*media.MoodPreset, error) {
	preset := media.MoodPreset{
		ID:        media.NewID(),
		Name:      name,
		Intensity: media.ClampIntensity(intensity),
		Filter:    filter,
		Options:   options,
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	s.store.UpsertMoodPreset(preset)
	s.logger.Info("Mood preset created", "id", preset.ID, "name", preset.Name)
	return &preset, nil
}

// SelectPreset records the active preset. An empty id clears the selection.
func (s *Service) SelectPreset(ctx context.Context, id string) error {
	if !s.store.SelectMoodPreset(id) {
		return fmt.Errorf("mood preset not found: %s", id)
	}
	s.logger.Info("Mood preset selected", "id", id)
	return nil
}
