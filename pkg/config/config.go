package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Schedule source identifiers.
const (
	SourceJSON = "json"
	SourceHTML = "html"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log      LogConfig
	CORS     CORSConfig
	Schedule ScheduleConfig
	Settings SettingsConfig
	Exports  ExportsConfig
	Cache    CacheConfig
	Redis    RedisConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ScheduleConfig selects and tunes the upstream schedule source.
type ScheduleConfig struct {
	Source      string
	JSONURL     string
	HTMLURL     string
	JSONTimeout time.Duration
	HTMLTimeout time.Duration
	MinInterval time.Duration
}

// SettingsConfig locates the persisted operator settings document.
type SettingsConfig struct {
	Dir  string
	File string
}

// ExportsConfig controls where rendered CSV/PDF files are written.
type ExportsConfig struct {
	Dir string
}

// CacheConfig governs memoisation of open-slot results.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	source := strings.ToLower(strings.TrimSpace(v.GetString("SCHEDULE_SOURCE")))
	if source != SourceHTML {
		source = SourceJSON
	}
	cfg.Schedule = ScheduleConfig{
		Source:      source,
		JSONURL:     v.GetString("SCHEDULE_JSON_URL"),
		HTMLURL:     v.GetString("SCHEDULE_HTML_URL"),
		JSONTimeout: parseDuration(v.GetString("SCHEDULE_JSON_TIMEOUT"), 20*time.Second),
		HTMLTimeout: parseDuration(v.GetString("SCHEDULE_HTML_TIMEOUT"), 10*time.Second),
		MinInterval: parseDuration(v.GetString("SCHEDULE_MIN_INTERVAL"), 2*time.Second),
	}

	cfg.Settings = SettingsConfig{
		Dir:  v.GetString("SETTINGS_DIR"),
		File: v.GetString("SETTINGS_FILE"),
	}

	cfg.Exports = ExportsConfig{Dir: v.GetString("EXPORTS_DIR")}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("SCHEDULE_SOURCE", SourceJSON)
	v.SetDefault("SCHEDULE_JSON_URL", "https://raw.githubusercontent.com/MarkCruse/k3y-schedule-updater/main/data/schedule-cache.json")
	v.SetDefault("SCHEDULE_HTML_URL", "https://www.skccgroup.com/k3y/slot_list.php")
	v.SetDefault("SCHEDULE_JSON_TIMEOUT", "20s")
	v.SetDefault("SCHEDULE_HTML_TIMEOUT", "10s")
	v.SetDefault("SCHEDULE_MIN_INTERVAL", "2s")

	v.SetDefault("SETTINGS_DIR", ".")
	v.SetDefault("SETTINGS_FILE", "settings.json")
	v.SetDefault("EXPORTS_DIR", "./exports")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
