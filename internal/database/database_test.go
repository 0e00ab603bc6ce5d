package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/model"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     "5432",
		Username: "u",
		Password: "p",
		Database: "interborough",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=interborough sslmode=disable", dsn)
}

func TestOpenSQLite_FileMigrateAndDump(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenSQLite(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m))
	}

	s := model.Session{Name: "demo", StartTime: time.Now()}
	require.NoError(t, db.Create(&s).Error)
	assert.NotZero(t, s.ID)

	out := filepath.Join(dir, "dump.db")
	require.NoError(t, DumpMemoryToDisk(db, out))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryToDisk(db, out))

	copyDB, err := OpenSQLite(out)
	require.NoError(t, err)
	var count int64
	require.NoError(t, copyDB.Model(&model.Session{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryToDisk_NoPath(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.EqualError(t, DumpMemoryToDisk(db, ""), "sqlite file path not set")
}
