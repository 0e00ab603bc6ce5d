package postgres

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/database"
	"github.com/interborough/transit/internal/model"
	"github.com/interborough/transit/internal/model/convert"
	"github.com/interborough/transit/pkg/core"
)

func TestInit_ConnectError(t *testing.T) {
	b := New(config.PostgresConfig{Host: "nowhere"}, nil, nil, 0).
		WithOpener(func(config.PostgresConfig) (*gorm.DB, error) {
			return nil, errors.New("refused")
		})

	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres: refused")
	assert.NoError(t, b.Close())
}

func TestInit_PassesConfig(t *testing.T) {
	var got config.PostgresConfig
	cfg := config.PostgresConfig{Host: "db", Port: "5432", Database: "interborough"}

	b := New(cfg, convert.New(nil, 100), nil, 0).
		WithOpener(func(c config.PostgresConfig) (*gorm.DB, error) {
			got = c
			return database.OpenSQLite(filepath.Join(t.TempDir(), "pg.db"))
		})
	require.NoError(t, b.Init())
	defer b.Close()
	assert.Equal(t, cfg, got)

	s := &core.Session{Name: "demo"}
	require.NoError(t, b.StartSession(s))
	require.NoError(t, b.RecordKeyEvent(&core.KeyEvent{Key: "r"}))
	require.NoError(t, b.EndSession())

	var count int64
	require.NoError(t, b.DB().Model(&model.KeyEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
