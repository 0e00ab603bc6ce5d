package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"defaultTag": "Rush",
		"window": { "host": "sdl", "width": 800 }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "Rush", viper.GetString("defaultTag"))
	assert.Equal(t, "sdl", viper.GetString("window.host"))
	assert.Equal(t, 800, viper.GetInt("window.width"))
	assert.Equal(t, 320, viper.GetInt("window.height"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "http://localhost:5000", viper.GetString("api.serverUrl"))
	assert.Equal(t, "", viper.GetString("api.apiKey"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, 10*time.Second, viper.GetDuration("monitor.interval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are in place even when the file is missing
	assert.Equal(t, 480, GetWindowConfig().Width)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetWindowConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg := GetWindowConfig()
	assert.Equal(t, "glfw", cfg.Host)
	assert.Equal(t, 480, cfg.Width)
	assert.Equal(t, 320, cfg.Height)
	assert.Equal(t, "Interborough Rapid Transit", cfg.Title)
}

func TestGetRenderConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg := GetRenderConfig()
	assert.Equal(t, "station", cfg.View)
	assert.Equal(t, "corner", cfg.Normals)
	assert.Equal(t, "segmented", cfg.TrackStrategy)
	assert.Equal(t, "", cfg.Texture)
}

func TestGetAnimationConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{ "animation": { "fps": 60, "wrap": "forward" } }`)))

	cfg := GetAnimationConfig()
	assert.Equal(t, 60, cfg.FPS)
	assert.InDelta(t, 0.1, cfg.Step, 1e-6)
	assert.Equal(t, float32(1000), cfg.FrustumDepth)
	assert.Equal(t, "forward", cfg.Wrap)
}

func TestGetRecorderConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg := GetRecorderConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "interborough", cfg.SessionName)
	assert.Equal(t, 30, cfg.SampleEvery)
	assert.Equal(t, 10000, cfg.BufferSize)
	assert.False(t, cfg.Upload)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./recordings", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "trains", cfg.Influx.Bucket)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m" },
			"websocket": { "url": "ws://example:1/stream", "authToken": "secret" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "ws://example:1/stream", sc.WebSocket.URL)
	assert.Equal(t, "secret", sc.WebSocket.AuthToken)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "interborough", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetGeoConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{ "geo": { "unitMeters": 2.5 } }`)))

	gc := GetGeoConfig()
	assert.InDelta(t, -73.9866, gc.Longitude, 1e-9)
	assert.InDelta(t, 40.7559, gc.Latitude, 1e-9)
	assert.InDelta(t, 2.5, gc.UnitMeters, 1e-9)
}
