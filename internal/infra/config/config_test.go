package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExternalDependenciesDefaultToUnset(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "REDIS_ADDR", "KAFKA_BROKERS", "S3_ENDPOINT", "SMTP_HOST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	// every external system is opt-in, the binary must boot on fallbacks alone
	assert.Empty(t, cfg.MongoURI)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.S3Endpoint)
	assert.Empty(t, cfg.SMTPHost)
}

func TestLoadS3EndpointOptIn(t *testing.T) {
	t.Setenv("S3_ENDPOINT", "minio.internal:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", cfg.S3Endpoint)
	assert.Equal(t, "staybook-pictures", cfg.S3Bucket)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}
