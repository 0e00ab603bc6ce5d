package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/interborough/transit/internal/api"
	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/internal/recorder"
	"github.com/interborough/transit/internal/storage"
	"github.com/interborough/transit/pkg/core"
)

// startRecorder builds the configured backend and opens a session on it.
func (a *app) startRecorder() error {
	storageCfg := config.GetStorageConfig()
	recCfg := config.GetRecorderConfig()
	geoCfg := config.GetGeoConfig()

	origin := core.GeoOrigin{Longitude: geoCfg.Longitude, Latitude: geoCfg.Latitude}
	proj, err := geo.NewProjector(origin, geoCfg.UnitMeters)
	if err != nil {
		a.logger.Warn("Invalid geo anchor, recording without coordinates", "error", err)
		proj = nil
	}

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		Projector:  proj,
		LogManager: SlogManager,
		Zerolog:    Zerolog,
		QueueLimit: recCfg.BufferSize,
		Depth:      a.anim.Depth,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}

	var uploader recorder.Uploader
	if recCfg.Upload {
		uploader = newUploader(a.logger)
	}

	a.rec = recorder.New(recorder.Config{
		Name:        recCfg.SessionName,
		Tag:         viper.GetString("defaultTag"),
		AppVersion:  CurrentVersion,
		Origin:      origin,
		Settings:    a.settings(),
		SampleEvery: recCfg.SampleEvery,
		BufferSize:  recCfg.BufferSize,
	}, backend, a.d, SessionContext, a.state, uploader, a.logger)

	if err := a.rec.Start(a.loop.Period()); err != nil {
		return err
	}
	a.loop.Observe(a.rec.OnTick)
	a.logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}

// settings are stored with the session so a recording can be replayed with
// the options it was made with.
func (a *app) settings() map[string]any {
	return map[string]any{
		"view":          a.render.View,
		"normals":       a.render.Normals,
		"trackStrategy": a.render.TrackStrategy,
		"texture":       a.render.Texture,
		"fps":           a.anim.FPS,
		"step":          a.anim.Step,
		"frustumDepth":  a.anim.Depth,
		"wrap":          viper.GetString("animation.wrap"),
		"headless":      a.opts.Headless,
	}
}

// newUploader returns an api client after checking the frontend is up. The
// check only logs; the upload itself reports the failure.
func newUploader(logger *slog.Logger) *api.Client {
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Healthcheck(ctx); err != nil {
		logger.Warn("Web frontend unreachable", "error", err, "url", viper.GetString("api.serverUrl"))
	} else {
		logger.Info("Web frontend reachable", "url", viper.GetString("api.serverUrl"))
	}
	return client
}
