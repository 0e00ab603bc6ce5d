package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionExport is the root JSON structure.
type SessionExport struct {
	AppVersion   string      `json:"appVersion"`
	SessionName  string      `json:"sessionName"`
	Tag          string      `json:"tag"`
	StartTime    string      `json:"startTime"`
	TickPeriodMs int64       `json:"tickPeriodMs"`
	EndTick      uint64      `json:"endTick"`
	Origin       [2]float64  `json:"origin"` // lon, lat
	Tracks       []TrackJSON `json:"tracks"`
	Keys         [][]any     `json:"keys"`
}

// TrackJSON is one track slot and its train positions.
type TrackJSON struct {
	Index     int     `json:"index"`
	Offset    float32 `json:"offset"`
	Direction string  `json:"direction"`
	ShowTrain bool    `json:"showTrain"`
	// Positions rows are [tick, x, y, z, paused] or, when the scene is
	// anchored, [tick, x, y, z, paused, lon, lat].
	Positions [][]any `json:"positions"`
}

// exportJSON writes the session to a JSON file, gzipped when configured.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	name := strings.ReplaceAll(b.session.Name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := b.session.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", name, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	b.lastExportMeta.SessionName = b.session.Name
	b.lastExportMeta.Tag = b.session.Tag
	b.lastExportMeta.Duration = (b.session.TickPeriod * time.Duration(b.endTick)).Seconds()
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		AppVersion:   b.session.AppVersion,
		SessionName:  b.session.Name,
		Tag:          b.session.Tag,
		StartTime:    b.session.StartTime.UTC().Format(time.RFC3339),
		TickPeriodMs: b.session.TickPeriod.Milliseconds(),
		EndTick:      b.endTick,
		Origin:       [2]float64{b.session.Origin.Longitude, b.session.Origin.Latitude},
		Tracks:       make([]TrackJSON, 0, len(b.trains)),
		Keys:         make([][]any, 0, len(b.keyEvents)),
	}

	for _, rec := range b.sortedTracks() {
		track := TrackJSON{
			Index:     rec.Slot.Index,
			Offset:    rec.Slot.Offset,
			Direction: rec.Slot.Direction.String(),
			ShowTrain: rec.Slot.ShowTrain,
			Positions: make([][]any, 0, len(rec.States)),
		}
		for _, s := range rec.States {
			row := []any{s.Tick, s.Position.X, s.Position.Y, s.Position.Z, boolToInt(s.Paused)}
			if b.proj != nil {
				lon, lat := b.proj.LonLat(s.Position)
				row = append(row, lon, lat)
			}
			track.Positions = append(track.Positions, row)
		}
		export.Tracks = append(export.Tracks, track)
	}

	for _, e := range b.keyEvents {
		export.Keys = append(export.Keys, []any{e.Tick, e.Key, boolToInt(e.Handled), e.Controlled})
	}
	return export
}

func writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
