package repository

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
)

type fileStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

// SettingsRepository persists operator settings as a flat JSON document.
type SettingsRepository struct {
	store    fileStore
	filename string
	logger   *zap.Logger
}

// NewSettingsRepository constructs a settings repository backed by store.
func NewSettingsRepository(store fileStore, filename string, logger *zap.Logger) *SettingsRepository {
	if filename == "" {
		filename = "settings.json"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsRepository{store: store, filename: filename, logger: logger}
}

// Load reads the settings document. A missing document yields the defaults
// and found=false; fields absent from the document keep their defaults.
func (r *SettingsRepository) Load(_ context.Context) (models.Settings, bool, error) {
	defaults := models.DefaultSettings()

	f, err := r.store.Open(r.filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Info("settings file missing, using defaults", zap.String("file", r.filename))
			return defaults, false, nil
		}
		return defaults, false, err
	}
	defer f.Close() //nolint:errcheck

	raw, err := io.ReadAll(f)
	if err != nil {
		return defaults, false, err
	}

	var stored models.Settings
	if err := json.Unmarshal(raw, &stored); err != nil {
		return defaults, false, err
	}
	r.logger.Debug("settings loaded", zap.String("file", r.filename))
	return defaults.Merge(stored), true, nil
}

// Save writes the settings document, replacing any previous version.
func (r *SettingsRepository) Save(_ context.Context, settings models.Settings) error {
	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if _, err := r.store.Save(r.filename, append(payload, '\n')); err != nil {
		return err
	}
	r.logger.Info("settings saved", zap.String("file", r.filename))
	return nil
}
