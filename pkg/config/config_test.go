package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Source.Driver)

	assert.Equal(t, "label_propagation", cfg.Partition.Engine)
	assert.Equal(t, 1.0, cfg.Partition.Resolution)
	assert.Equal(t, -1, cfg.Partition.Iterations)
	assert.Equal(t, int64(1), cfg.Partition.Seed)
	assert.Equal(t, 1, cfg.Partition.MinSize)
	assert.Equal(t, 10, cfg.Partition.MaxLevels)

	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, 0.6, cfg.CircuitBreaker.ReadyToTripRatio)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHECKPOINT_DIR", "/tmp/checkpoints")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.NLP.APIKey)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/checkpoints", cfg.Checkpoint.Dir)
}

func TestNeo4jEnvSelectsDriver(t *testing.T) {
	viper.Reset()
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "neo4j", cfg.Source.Driver)
	assert.Equal(t, "bolt://localhost:7687", cfg.Source.URI)
	assert.Equal(t, "neo4j", cfg.Source.Username)
	assert.Equal(t, "secret", cfg.Source.Password)
}

func TestInvalidPortEnvIgnored(t *testing.T) {
	viper.Reset()
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
