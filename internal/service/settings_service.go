package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/availability"
	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

type settingsRepository interface {
	Load(ctx context.Context) (models.Settings, bool, error)
	Save(ctx context.Context, settings models.Settings) error
}

// SettingsService reads, validates and persists operator settings.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the service and registers the settings
// validation tags on validate.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SettingsService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("tz_abbr", func(fl validator.FieldLevel) bool {
		return availability.IsTimeZone(fl.Field().String())
	})
	svc.validator.RegisterValidation("k3y_area", func(fl validator.FieldLevel) bool {
		_, ok := models.NormalizeArea(fl.Field().String())
		return ok
	})
	svc.validator.RegisterValidation("clock_time", func(fl validator.FieldLevel) bool {
		return availability.IsClock(fl.Field().String())
	})
	return svc
}

// Get returns the stored settings, or the defaults when none are stored. A
// corrupt document is reported together with the defaults.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	settings, _, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("settings unreadable, using defaults", zap.Error(err))
		return models.DefaultSettings(), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read settings")
	}
	return normalizeSettings(settings), nil
}

// Update validates the full settings document and persists it.
func (s *SettingsService) Update(ctx context.Context, settings models.Settings) (models.Settings, error) {
	settings = normalizeSettings(settings)
	if err := s.validate(settings); err != nil {
		return models.Settings{}, err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return models.Settings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return settings, nil
}

// Resolve applies the non-empty overrides to the stored settings and
// validates the result. Unreadable stored settings fall back to defaults.
func (s *SettingsService) Resolve(ctx context.Context, overrides models.Settings) (models.Settings, error) {
	base, _ := s.Get(ctx)
	resolved := normalizeSettings(base.Merge(overrides))
	if err := s.validate(resolved); err != nil {
		return models.Settings{}, err
	}
	return resolved, nil
}

func (s *SettingsService) validate(settings models.Settings) error {
	err := s.validator.Struct(settings)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings")
	}
	fe := verrs[0]
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "tz_abbr":
		_, lookupErr := availability.LookupTimeZone(value)
		return lookupErr
	case "k3y_area":
		return invalidArea(value)
	case "clock_time":
		return appErrors.Clone(appErrors.ErrInvalidClockTime, fmt.Sprintf("invalid %s '%s'. Use HH:MM or hh:mm AM/PM", settingsKey(fe.StructField()), value))
	default:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s is %s", settingsKey(fe.StructField()), fe.Tag()))
	}
}

func invalidArea(raw string) error {
	return appErrors.Clone(appErrors.ErrInvalidArea, fmt.Sprintf(
		"invalid area '%s'. Must be one of: %s", raw, strings.Join(models.Areas(), ", ")))
}

func normalizeSettings(s models.Settings) models.Settings {
	s.TimeZone = strings.ToUpper(strings.TrimSpace(s.TimeZone))
	s.Area, _ = models.NormalizeArea(s.Area)
	s.LocalDayStart = strings.TrimSpace(s.LocalDayStart)
	s.LocalDayEnd = strings.TrimSpace(s.LocalDayEnd)
	return s
}

func settingsKey(field string) string {
	switch field {
	case "TimeZone":
		return "TIME_ZONE_ABBR"
	case "Area":
		return "K3Y_AREA"
	case "LocalDayStart":
		return "LOCAL_DAY_START"
	case "LocalDayEnd":
		return "LOCAL_DAY_END"
	default:
		return field
	}
}
