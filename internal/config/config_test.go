package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SUBMISSION_DAILY_LIMIT", "5")
	t.Setenv("KMS_PROVIDER", "local")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 5, cfg.RateLimit.MaxSubmissions)
	assert.Equal(t, "local", cfg.KMS.Provider)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, int64(10<<20), cfg.Intake.MaxAttachmentBytes)
	assert.Equal(t, 24*time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, "broker-api-key", cfg.KMS.KeyID)
	assert.Empty(t, cfg.AMQP.URL)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Kolkata"}
	loc := cfg.Location()
	assert.Equal(t, "Asia/Kolkata", loc.String())

	cfg.Timezone = "Nowhere/Invalid"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvInt64(t *testing.T) {
	key := "TEST_INT64_VAR"
	t.Setenv(key, "1048576")
	assert.Equal(t, int64(1048576), getEnvInt64(key, 0))

	t.Setenv(key, "nope")
	assert.Equal(t, int64(7), getEnvInt64(key, 7))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	t.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}
