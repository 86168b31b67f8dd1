package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8000", cfg.HTTPAddress)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "habit_events", cfg.HabitEventsTopic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "*", cfg.CORSAllowedOrigin)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.EventsEnabled)
	assert.False(t, cfg.AuthEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadCustomEnv(t *testing.T) {
	os.Clearenv()
	t.Setenv("ENV", "production")
	t.Setenv("HABIT_STORE", "Postgres")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("HABIT_TIMEZONE", "Europe/Berlin")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	os.Clearenv()
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("AUTH_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.AuthEnabled)
}

func TestValidateReportsMissingSettings(t *testing.T) {
	cfg := Config{
		Store:       StoreFirestore,
		AuthEnabled: true,
		Timezone:    "Mars/Olympus",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIRESTORE_PROJECT_ID")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "HABIT_TIMEZONE")
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := Config{Store: "redis", Timezone: "UTC"}
	assert.ErrorContains(t, cfg.Validate(), `unknown HABIT_STORE "redis"`)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HABIT_STORE=mongo\nHTTP_ADDRESS=:9999\n"), 0o600))
	t.Setenv("HTTP_ADDRESS", ":7000")

	require.NoError(t, LoadDotEnv(path))
	cfg := Load()

	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, ":7000", cfg.HTTPAddress)
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
