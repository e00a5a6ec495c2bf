package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	"github.com/MarkCruse/k3y-open-sessions/pkg/storage"
)

func newSettingsRepo(t *testing.T) (*SettingsRepository, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewSettingsRepository(store, "settings.json", zap.NewNop()), store
}

func TestSettingsRepositoryDefaultsWhenMissing(t *testing.T) {
	repo, _ := newSettingsRepo(t)

	settings, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestSettingsRepositoryRoundTrip(t *testing.T) {
	repo, _ := newSettingsRepo(t)
	ctx := context.Background()
	want := models.Settings{TimeZone: "CST", Area: "K3Y/9", LocalDayStart: "08:00", LocalDayEnd: "22:00"}

	require.NoError(t, repo.Save(ctx, want))
	got, found, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestSettingsRepositoryPartialDocument(t *testing.T) {
	repo, store := newSettingsRepo(t)
	_, err := store.Save("settings.json", []byte(`{"K3Y_AREA": "K3Y/2"}`))
	require.NoError(t, err)

	got, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "K3Y/2", got.Area)
	assert.Equal(t, "EST", got.TimeZone)
	assert.Equal(t, "07:00 AM", got.LocalDayStart)
}

func TestSettingsRepositoryCorruptDocument(t *testing.T) {
	repo, store := newSettingsRepo(t)
	_, err := store.Save("settings.json", []byte(`K3Y_AREA = 'K3Y/2'`))
	require.NoError(t, err)

	got, _, err := repo.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.DefaultSettings(), got)
}
