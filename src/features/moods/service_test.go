package moods

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/infra/database"
	"github.com/lumideck/lumideck/src/media"
)

func newTestService(t *testing.T) (*Service, *state.Store) {
	t.Helper()

	store := state.NewStore(database.NewMemoryGateway(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.Hydrate(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go store.Run(ctx)

	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestService_UpdatePresetClampsIntensity(t *testing.T) {
	svc, _ := newTestService(t)

	high := 400
	preset, err := svc.UpdatePreset(context.Background(), "nocturne", PresetChanges{Intensity: &high})
	require.NoError(t, err)
	assert.Equal(t, 100, preset.Intensity)

	low := -20
	preset, err = svc.UpdatePreset(context.Background(), "nocturne", PresetChanges{Intensity: &low})
	require.NoError(t, err)
	assert.Equal(t, 0, preset.Intensity)
}

func TestService_UpdateUnknownPresetFails(t *testing.T) {
	svc, _ := newTestService(t)

	v := 50
	_, err := svc.UpdatePreset(context.Background(), "ghost", PresetChanges{Intensity: &v})
	assert.Error(t, err)
}

func TestService_SelectPreset(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, svc.SelectPreset(context.Background(), "warm-film"))
	assert.Equal(t, "warm-film", store.Snapshot().MoodPresetID)

	assert.Error(t, svc.SelectPreset(context.Background(), "ghost"))
	assert.Equal(t, "warm-film", store.Snapshot().MoodPresetID)

	// clearing is always allowed
	require.NoError(t, svc.SelectPreset(context.Background(), ""))
	assert.Empty(t, store.Snapshot().MoodPresetID)
}

func TestService_CreatePresetClampsAndPersistsAlongsideDefaults(t *testing.T) {
	svc, store := newTestService(t)

	preset, err := svc.CreatePreset(context.Background(), "Icy", "saturate(0.5) brightness(1.2)", 130, media.MoodOptions{})
	require.NoError(t, err)

	assert.Equal(t, 100, preset.Intensity)
	assert.Len(t, store.MoodPresets(), 7)
}
