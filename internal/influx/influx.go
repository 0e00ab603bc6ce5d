// Package influx writes recorded samples to InfluxDB as line protocol,
// falling back to a gzipped backup file when the server is unreachable.
package influx

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/pkg/core"
)

// Measurement names.
const (
	MeasurementTrain = "train_state"
	MeasurementKey   = "key_event"
)

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	cfg        config.InfluxConfig
	Client     influxdb2.Client
	Writer     influxdb2_api.WriteAPI
	IsValid    bool
	Logger     zerolog.Logger
	BackupPath string

	mu           sync.Mutex
	backupFile   *os.File
	BackupWriter *gzip.Writer
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Manager {
	return &Manager{cfg: cfg, Logger: log, BackupPath: backupPath}
}

// URL is the server address built from protocol, host and port.
func (m *Manager) URL() string {
	return fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port)
}

// Connect pings the server. When it does not answer, writes go to the
// backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	m.Client = influxdb2.NewClientWithOptions(
		m.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Info().Str("backupPath", m.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")

		file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("error creating backup file: %v", err)
		}
		m.backupFile = file
		m.BackupWriter = gzip.NewWriter(file)
		return nil
	}

	m.IsValid = true
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())

	m.Logger.Info().Str("url", m.URL()).Msg("InfluxDB client initialized")
	return nil
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	line := PointLine(point)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := m.BackupWriter.Write([]byte(line)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}

// Close flushes pending points and releases the client or backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return nil
	}
	err := m.BackupWriter.Close()
	if cerr := m.backupFile.Close(); err == nil {
		err = cerr
	}
	m.BackupWriter = nil
	return err
}

// TrainStatePoint builds a point for a train sample. lon and lat are
// written only when anchored is true.
func TrainStatePoint(session string, s core.TrainState, lon, lat float64, anchored bool) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementTrain).
		AddTag("direction", s.Direction.String()).
		AddTag("session", session).
		AddTag("track", fmt.Sprint(s.Track)).
		AddField("tick", int64(s.Tick)).
		AddField("x", s.Position.X).
		AddField("y", s.Position.Y).
		AddField("z", s.Position.Z).
		AddField("paused", s.Paused).
		SetTime(s.Time)
	if anchored {
		p.AddField("lon", lon).AddField("lat", lat)
	}
	return p
}

// KeyEventPoint builds a point for a key press.
func KeyEventPoint(session string, e core.KeyEvent) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(MeasurementKey).
		AddTag("key", e.Key).
		AddTag("session", session).
		AddField("tick", int64(e.Tick)).
		AddField("handled", e.Handled).
		AddField("controlled", e.Controlled).
		SetTime(e.Time)
}

// PointLine renders a point as one line of line protocol.
func PointLine(p *influxdb2_write.Point) string {
	return influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
}
