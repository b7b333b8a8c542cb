package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations_OrderedAndVersioned(t *testing.T) {
	got, err := EmbeddedMigrations()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)

	for i, m := range got {
		assert.Equal(t, int64(i+1), m.Version, m.Source)
		assert.False(t, m.Registered, "sql migrations only")
	}
	assert.Equal(t, "00001_init", migrationName(got[0]))
	assert.Equal(t, "00002_product_category_fk", migrationName(got[1]))

	current, err := got.Current(2)
	require.NoError(t, err)
	assert.Equal(t, "00002_product_category_fk", migrationName(current))
}

func TestEmbeddedMigrations_HaveUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		raw, err := fs.ReadFile(migrationFiles, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		body := string(raw)

		up := strings.Index(body, "-- +goose Up")
		down := strings.Index(body, "-- +goose Down")
		require.GreaterOrEqual(t, up, 0, e.Name())
		require.Greater(t, down, up, e.Name())
		assert.NotEmpty(t, strings.TrimSpace(body[down+len("-- +goose Down"):]), e.Name())
	}
}

func TestEmbeddedMigrations_RangeSelection(t *testing.T) {
	require.NoError(t, setupGoose())

	all, err := EmbeddedMigrations()
	require.NoError(t, err)

	pending, err := goose.CollectMigrations(migrationsDir, 1, all[len(all)-1].Version)
	require.NoError(t, err)
	assert.Len(t, pending, len(all)-1)
	assert.Equal(t, int64(2), pending[0].Version)
}
