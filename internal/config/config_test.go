package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdown/tickdown-go/pkg/duration"
	"github.com/tickdown/tickdown-go/pkg/persistence"
)

func TestParse(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	cfg, err := Parse([]byte(`
data_dir: /var/lib/tickdown
backend: sqlite
tick_interval: 500ms
event_log: /tmp/events.tlog
log:
  level: debug
  format: json
timers:
  - key: daily-bonus
    duration: 1m50s
  - key: chest
    duration: 4h
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tickdown", cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "/tmp/events.tlog", cfg.EventLog)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	require.Len(t, cfg.Timers, 2)
	assert.Equal(t, TimerConfig{Key: "daily-bonus", Duration: 110 * time.Second}, cfg.Timers[0])

	timer, ok := cfg.Timer("chest")
	assert.True(t, ok)
	assert.Equal(t, 4*time.Hour, timer.Duration)
	_, ok = cfg.Timer("missing")
	assert.False(t, ok)
}

func TestParseKeepsDefaults(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	cfg, err := Parse([]byte("log:\n  level: warn\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.DataDir, cfg.DataDir)
	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"backend":   "backend: redis\n",
		"interval":  "tick_interval: -1s\n",
		"level":     "log:\n  level: loud\n",
		"format":    "log:\n  format: xml\n",
		"key":       "timers:\n  - key: ../x\n    duration: 1s\n",
		"duplicate": "timers:\n  - key: a\n    duration: 1s\n  - key: a\n    duration: 2s\n",
		"duration":  "timers:\n  - key: a\n    duration: 0s\n",
		"yaml":      "timers: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	dir := t.TempDir()

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte("backend: memory\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, BackendMemory, cfg.Backend)
	})

	t.Run("error names the file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend: nope\n"), 0644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.yaml")
	})
}

func TestEnvOverridesDataDir(t *testing.T) {
	t.Setenv(EnvDataDir, "/srv/timers")

	cfg, err := Parse([]byte("data_dir: /ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/timers", cfg.DataDir)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/timers", cfg.DataDir)
}

func TestOpenStore(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, backend := range []string{BackendFile, BackendSQLite, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			cfg := Default()
			cfg.Backend = backend
			cfg.DataDir = filepath.Join(t.TempDir(), "data")

			store, err := cfg.OpenStore()
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Save("k", duration.New(0, 0, 1, 0), now))
			ok, err := store.Exists("k")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}

	t.Run("file backend layout", func(t *testing.T) {
		cfg := Default()
		cfg.DataDir = t.TempDir()
		store, err := cfg.OpenStore()
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Save("k", duration.New(0, 0, 1, 0), now))
		_, err = os.Stat(filepath.Join(cfg.DataDir, "k"+persistence.FileExtension))
		assert.NoError(t, err)
	})
}
