package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:21234", cfg.ServerAddr)
	assert.Equal(t, ":8080", cfg.RadarAddr)
	assert.Equal(t, 5.0, cfg.StrikeDelaySeconds)
	assert.NotEmpty(t, cfg.Token, "empty token must be generated")
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte(`
server: "10.0.0.1:9000"
token: "secret"
strike_delay_s: 1.5
tuning:
  broadcast_redundancy: 5
  freshness_window_ms: 2000
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 1.5, cfg.StrikeDelaySeconds)

	tn := cfg.BuildTuning()
	assert.Equal(t, 5, tn.BroadcastRedundancy())
	assert.Equal(t, DefaultThrustRedundancy, tn.ThrustRedundancy())
	assert.InDelta(t, 2.0, tn.FreshnessWindow(), 1e-9)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestTuningClampsToMinimum(t *testing.T) {
	tn := NewTuning()
	tn.SetBroadcastRedundancy(0)
	tn.SetThrustRedundancy(-3)
	assert.Equal(t, 1, tn.BroadcastRedundancy())
	assert.Equal(t, 1, tn.ThrustRedundancy())
}

func TestGeneratedTokensDiffer(t *testing.T) {
	a, err := LoadConfig("")
	require.NoError(t, err)
	b, err := LoadConfig("")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}
