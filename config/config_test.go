package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/photozip/config"
)

// writeConfig marshals doc to a YAML file and returns its path.
func writeConfig(t *testing.T, name string, doc map[string]any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// clearLegacyEnv makes sure the host environment does not leak into tests.
func clearLegacyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PHOTOS_DIR", "PORT", "DELAY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearLegacyEnv(t)

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "test_photos", cfg.Photos.Dir)
	assert.Equal(t, "zip", cfg.Archive.Command)
	assert.Equal(t, []string{"-"}, cfg.Archive.Args)
	assert.Equal(t, 100, cfg.Archive.BatchSize)
	assert.Equal(t, 100*1024, cfg.Archive.BatchBytes())
	assert.Equal(t, time.Duration(0), cfg.Archive.ChunkDelay)
	assert.Equal(t, "7kna", cfg.Heartbeat.Token)
	assert.Equal(t, time.Second, cfg.Heartbeat.Interval)
	assert.Empty(t, cfg.Pages.Index)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearLegacyEnv(t)

	path := writeConfig(t, "config.yaml", map[string]any{
		"env": "prod",
		"server": map[string]any{
			"host":             "127.0.0.1",
			"port":             9000,
			"shutdown_timeout": "5s",
		},
		"photos": map[string]any{"dir": "/srv/photos"},
		"archive": map[string]any{
			"command":     "/usr/local/bin/zip",
			"args":        []string{"-q", "-0", "-"},
			"batch_size":  64,
			"chunk_delay": "250ms",
		},
		"heartbeat": map[string]any{"token": "ping", "interval": "2s"},
		"pages":     map[string]any{"index": "/srv/index.html"},
		"log":       map[string]any{"level": "debug"},
	})

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/srv/photos", cfg.Photos.Dir)
	assert.Equal(t, "/usr/local/bin/zip", cfg.Archive.Command)
	assert.Equal(t, []string{"-q", "-0", "-"}, cfg.Archive.Args)
	assert.Equal(t, 64<<10, cfg.Archive.BatchBytes())
	assert.Equal(t, 250*time.Millisecond, cfg.Archive.ChunkDelay)
	assert.Equal(t, "ping", cfg.Heartbeat.Token)
	assert.Equal(t, 2*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, "/srv/index.html", cfg.Pages.Index)
	assert.Equal(t, "debug", cfg.Log.Level)

	archiver := cfg.Archive.Archiver()
	assert.Equal(t, "/usr/local/bin/zip", archiver.Command)
	assert.Equal(t, []string{"-q", "-0", "-"}, archiver.Args)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	clearLegacyEnv(t)

	base := writeConfig(t, "base.yaml", map[string]any{
		"server": map[string]any{"port": 8081},
		"photos": map[string]any{"dir": "/srv/photos"},
		"log":    map[string]any{"level": "warn"},
	})
	override := writeConfig(t, "override.yaml", map[string]any{
		"server": map[string]any{"port": 9001},
	})

	cfg, err := config.Load([]string{base, override}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "/srv/photos", cfg.Photos.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_WithCORS(t *testing.T) {
	clearLegacyEnv(t)

	path := writeConfig(t, "config.yaml", map[string]any{
		"cors": map[string]any{
			"enabled":         true,
			"allowed_origins": []string{"https://example.com"},
			"allowed_methods": []string{"GET"},
			"max_age":         600,
		},
	})

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tt := []struct {
		Name string
		Doc  map[string]any
	}{
		{Name: "port too large", Doc: map[string]any{"server": map[string]any{"port": 99999}}},
		{Name: "empty photos dir", Doc: map[string]any{"photos": map[string]any{"dir": ""}}},
		{Name: "empty archiver", Doc: map[string]any{"archive": map[string]any{"command": ""}}},
		{Name: "zero batch size", Doc: map[string]any{"archive": map[string]any{"batch_size": 0}}},
		{Name: "negative delay", Doc: map[string]any{"archive": map[string]any{"chunk_delay": "-1s"}}},
		{Name: "zero heartbeat interval", Doc: map[string]any{"heartbeat": map[string]any{"interval": "0s"}}},
		{Name: "bad log level", Doc: map[string]any{"log": map[string]any{"level": "verbose"}}},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			clearLegacyEnv(t)
			path := writeConfig(t, "config.yaml", tc.Doc)

			_, err := config.Load([]string{path}, nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("PHOTOZIP_SERVER_PORT", "9090")
	t.Setenv("PHOTOZIP_PHOTOS_DIR", "/data/photos")
	t.Setenv("PHOTOZIP_ARCHIVE_CHUNK_DELAY", "1s")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/photos", cfg.Photos.Dir)
	assert.Equal(t, time.Second, cfg.Archive.ChunkDelay)
}

func TestLoad_LegacyEnvironmentVariables(t *testing.T) {
	t.Setenv("PHOTOS_DIR", "/legacy/photos")
	t.Setenv("PORT", "7000")
	t.Setenv("DELAY", "3")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "/legacy/photos", cfg.Photos.Dir)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Archive.ChunkDelay)
}

func TestLoad_LegacyEnvLosesToConfigFile(t *testing.T) {
	t.Setenv("PHOTOS_DIR", "/legacy/photos")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("DELAY", "")

	path := writeConfig(t, "config.yaml", map[string]any{
		"photos": map[string]any{"dir": "/configured/photos"},
	})

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/configured/photos", cfg.Photos.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Flags(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("PHOTOZIP_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.String("photos-dir", "", "")
	flags.Duration("delay", 0, "")
	flags.Int("batch-size", 100, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{
		"--port", "6000",
		"--photos-dir", "/flag/photos",
		"--delay", "500ms",
	}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, "/flag/photos", cfg.Photos.Dir)
	assert.Equal(t, 500*time.Millisecond, cfg.Archive.ChunkDelay)
	// Unset flags do not override defaults.
	assert.Equal(t, 100, cfg.Archive.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestContext_RoundTrip(t *testing.T) {
	clearLegacyEnv(t)
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	ctx := config.WithContext(context.Background(), cfg)
	got, err := config.FromContext(ctx)

	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestFromContext_Missing(t *testing.T) {
	_, err := config.FromContext(context.Background())

	assert.Error(t, err)
}
