package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/routetree/internal/errors"
)

func TestParseEnvDefaults(t *testing.T) {
	e, err := ParseEnv(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "routes.json", e.Routes)
	assert.Equal(t, "localhost:4040", e.Addr)
	assert.Equal(t, slog.LevelInfo, e.LogLevel)
	assert.True(t, e.Metrics)
	assert.Empty(t, e.RemoteOptions())
}

func TestParseEnv(t *testing.T) {
	e, err := ParseEnv(map[string]string{
		"ROUTETREE_ROUTES":        "s3://maps/routes.yaml",
		"ROUTETREE_ADDR":          ":8080",
		"ROUTETREE_LOG_LEVEL":     "debug",
		"ROUTETREE_METRICS":       "false",
		"ROUTETREE_S3_REGION":     "eu-west-1",
		"ROUTETREE_S3_ENDPOINT":   "http://localhost:9000",
		"ROUTETREE_S3_ACCESS_KEY": "key",
		"ROUTETREE_S3_SECRET_KEY": "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "s3://maps/routes.yaml", e.Routes)
	assert.Equal(t, ":8080", e.Addr)
	assert.Equal(t, slog.LevelDebug, e.LogLevel)
	assert.False(t, e.Metrics)
	assert.Len(t, e.RemoteOptions(), 3)
}

func TestParseEnvInvalid(t *testing.T) {
	_, err := ParseEnv(map[string]string{"ROUTETREE_METRICS": "sometimes"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.New(errors.CodeConfigEnv)))

	_, err = ParseEnv(map[string]string{"ROUTETREE_LOG_LEVEL": "loud"})
	assert.True(t, stderrors.Is(err, errors.New(errors.CodeConfigEnv)))
}

func TestLoadEnvFile(t *testing.T) {
	// Register cleanup for variables the .env file sets.
	for _, key := range []string{"ROUTETREE_ADDR", "ROUTETREE_ROUTES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("ROUTETREE_ROUTES", "from-env.json")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ROUTETREE_ADDR=:9999\nROUTETREE_ROUTES=from-file.json\n"), 0644))

	e, err := LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", e.Addr)
	assert.Equal(t, "from-env.json", e.Routes, "existing variables win")

	_, err = LoadEnv(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}
