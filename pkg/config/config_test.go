package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, SourceJSON, cfg.Schedule.Source)
	assert.Equal(t, 20*time.Second, cfg.Schedule.JSONTimeout)
	assert.Equal(t, 10*time.Second, cfg.Schedule.HTMLTimeout)
	assert.Equal(t, "settings.json", cfg.Settings.File)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Contains(t, cfg.Schedule.HTMLURL, "slot_list.php")
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULE_SOURCE", " HTML ")
	v.Set("SCHEDULE_HTML_TIMEOUT", "3s")
	v.Set("CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, SourceHTML, cfg.Schedule.Source)
	assert.Equal(t, 3*time.Second, cfg.Schedule.HTMLTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestUnknownSourceFallsBackToJSON(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULE_SOURCE", "ftp")

	assert.Equal(t, SourceJSON, fromViper(v).Schedule.Source)
}
