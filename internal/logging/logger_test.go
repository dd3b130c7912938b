package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, closer, err := New(Config{Development: true})
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer closer.Close() //nolint:errcheck // nothing to release
	defer logger.Sync()  //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, closer, err := New(Config{})
	require.NoError(t, err)
	defer closer.Close() //nolint:errcheck // nothing to release
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewWritesRotatedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "webanalysis.log")
	logger, closer, err := New(Config{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)

	logger.Info("chart written", zap.String("artifact", "run/status.html"))
	_ = logger.Sync()
	require.NoError(t, closer.Close())

	// #nosec G304 -- test reads from the controlled temp directory.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(raw))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "chart written", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "run/status.html", entry["artifact"])
	assert.Contains(t, entry, "ts")
}
