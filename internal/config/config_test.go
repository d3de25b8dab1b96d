package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "reminders", cfg.DynamoTables.Reminders)
	assert.Equal(t, 100, cfg.Push.BatchSize)
	assert.Equal(t, 15*time.Second, cfg.Push.Timeout)
	assert.Equal(t, "app", cfg.DeepLinkScheme)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PUSH_BATCH_SIZE", "50")
	t.Setenv("PUSH_CHUNKS_PER_SECOND", "0.5")
	t.Setenv("PUSH_TIMEOUT", "3s")
	t.Setenv("DYNAMO_TABLE_REMINDERS", "hw_reminders")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()
	assert.Equal(t, 50, cfg.Push.BatchSize)
	assert.Equal(t, 0.5, cfg.Push.ChunksPerSecond)
	assert.Equal(t, 3*time.Second, cfg.Push.Timeout)
	assert.Equal(t, "hw_reminders", cfg.DynamoTables.Reminders)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("PUSH_BATCH_SIZE", "lots")
	t.Setenv("JWT_EXPIRY", "a week")

	cfg := Load()
	assert.Equal(t, 100, cfg.Push.BatchSize)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
}
