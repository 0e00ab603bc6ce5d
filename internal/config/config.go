package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "interborough.cfg.json"

// WindowConfig sizes the window and picks the host.
type WindowConfig struct {
	Host   string `json:"host" mapstructure:"host"`
	Width  int    `json:"width" mapstructure:"width"`
	Height int    `json:"height" mapstructure:"height"`
	Title  string `json:"title" mapstructure:"title"`
}

// RenderConfig holds scene drawing options.
type RenderConfig struct {
	View          string `json:"view" mapstructure:"view"`
	Normals       string `json:"normals" mapstructure:"normals"`
	TrackStrategy string `json:"trackStrategy" mapstructure:"trackStrategy"`
	Texture       string `json:"texture" mapstructure:"texture"`
}

// AnimationConfig holds the update loop settings.
type AnimationConfig struct {
	FPS          int     `json:"fps" mapstructure:"fps"`
	Step         float32 `json:"step" mapstructure:"step"`
	FrustumDepth float32 `json:"frustumDepth" mapstructure:"frustumDepth"`
	Wrap         string  `json:"wrap" mapstructure:"wrap"`
}

// RecorderConfig controls session recording.
type RecorderConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	SessionName string `json:"sessionName" mapstructure:"sessionName"`
	SampleEvery int    `json:"sampleEvery" mapstructure:"sampleEvery"`
	BufferSize  int    `json:"bufferSize" mapstructure:"bufferSize"`
	Upload      bool   `json:"upload" mapstructure:"upload"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	OutputDir    string        `json:"outputDir" mapstructure:"outputDir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// PostgresConfig holds Postgres connection settings
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// WebSocketConfig holds streaming backend settings
type WebSocketConfig struct {
	URL       string `json:"url" mapstructure:"url"`
	AuthToken string `json:"authToken" mapstructure:"authToken"`
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// StorageConfig selects and configures the recording backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig  `json:"postgres" mapstructure:"postgres"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	Influx    InfluxConfig    `json:"influx" mapstructure:"influx"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GeoConfig anchors the scene origin on the globe.
type GeoConfig struct {
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	// UnitMeters is how many meters one scene unit spans.
	UnitMeters float64 `json:"unitMeters" mapstructure:"unitMeters"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; callers that
// carry on without a config file rely on it having run.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("defaultTag", "Demo")

	viper.SetDefault("window.host", "glfw")
	viper.SetDefault("window.width", 480)
	viper.SetDefault("window.height", 320)
	viper.SetDefault("window.title", "Interborough Rapid Transit")

	viper.SetDefault("render.view", "station")
	viper.SetDefault("render.normals", "corner")
	viper.SetDefault("render.trackStrategy", "segmented")
	viper.SetDefault("render.texture", "")

	viper.SetDefault("animation.fps", 30)
	viper.SetDefault("animation.step", 0.1)
	viper.SetDefault("animation.frustumDepth", 1000)
	viper.SetDefault("animation.wrap", "symmetric")

	viper.SetDefault("recorder.enabled", false)
	viper.SetDefault("recorder.sessionName", "interborough")
	viper.SetDefault("recorder.sampleEvery", 30)
	viper.SetDefault("recorder.bufferSize", 10000)
	viper.SetDefault("recorder.upload", false)

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.outputDir", "./recordings")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "interborough")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/api/v1/stream")
	viper.SetDefault("storage.websocket.authToken", "")
	viper.SetDefault("storage.influx.host", "localhost")
	viper.SetDefault("storage.influx.port", "8086")
	viper.SetDefault("storage.influx.protocol", "http")
	viper.SetDefault("storage.influx.token", "supersecrettoken")
	viper.SetDefault("storage.influx.org", "interborough")
	viper.SetDefault("storage.influx.bucket", "trains")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("monitor.interval", "10s")

	viper.SetDefault("geo.longitude", -73.9866)
	viper.SetDefault("geo.latitude", 40.7559)
	viper.SetDefault("geo.unitMeters", 1.0)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "interborough")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetWindowConfig returns the window settings.
func GetWindowConfig() WindowConfig {
	return WindowConfig{
		Host:   viper.GetString("window.host"),
		Width:  viper.GetInt("window.width"),
		Height: viper.GetInt("window.height"),
		Title:  viper.GetString("window.title"),
	}
}

// GetRenderConfig returns the scene drawing options.
func GetRenderConfig() RenderConfig {
	return RenderConfig{
		View:          viper.GetString("render.view"),
		Normals:       viper.GetString("render.normals"),
		TrackStrategy: viper.GetString("render.trackStrategy"),
		Texture:       viper.GetString("render.texture"),
	}
}

// GetAnimationConfig returns the update loop settings.
func GetAnimationConfig() AnimationConfig {
	return AnimationConfig{
		FPS:          viper.GetInt("animation.fps"),
		Step:         float32(viper.GetFloat64("animation.step")),
		FrustumDepth: float32(viper.GetFloat64("animation.frustumDepth")),
		Wrap:         viper.GetString("animation.wrap"),
	}
}

// GetRecorderConfig returns the session recording settings.
func GetRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Enabled:     viper.GetBool("recorder.enabled"),
		SessionName: viper.GetString("recorder.sessionName"),
		SampleEvery: viper.GetInt("recorder.sampleEvery"),
		BufferSize:  viper.GetInt("recorder.bufferSize"),
		Upload:      viper.GetBool("recorder.upload"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			OutputDir:    viper.GetString("storage.sqlite.outputDir"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
		WebSocket: WebSocketConfig{
			URL:       viper.GetString("storage.websocket.url"),
			AuthToken: viper.GetString("storage.websocket.authToken"),
		},
		Influx: InfluxConfig{
			Host:     viper.GetString("storage.influx.host"),
			Port:     viper.GetString("storage.influx.port"),
			Protocol: viper.GetString("storage.influx.protocol"),
			Token:    viper.GetString("storage.influx.token"),
			Org:      viper.GetString("storage.influx.org"),
			Bucket:   viper.GetString("storage.influx.bucket"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGeoConfig returns the scene's geographic anchor.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		Longitude:  viper.GetFloat64("geo.longitude"),
		Latitude:   viper.GetFloat64("geo.latitude"),
		UnitMeters: viper.GetFloat64("geo.unitMeters"),
	}
}
