package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 5432, User: "clover", Password: "secret", Name: "clover"}
	assert.Equal(t, "host=localhost port=5432 user=clover password=secret dbname=clover sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestInsertBuilder_OnConflictDoNothing(t *testing.T) {
	ib := NewInsertBuilder()
	ib.InsertInto("common_names").Cols("name").Values("SMITH")
	ib.OnConflictDoNothing()

	sql, args := ib.Build()
	assert.Equal(t, "INSERT INTO common_names (name) VALUES ($1) ON CONFLICT DO NOTHING", sql)
	assert.Equal(t, []any{"SMITH"}, args)
}

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_entities.up.sql",
		"000001_entities.down.sql",
		"000003_common_names.up.sql",
		"000002_aliases.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	v, err := LatestVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = LatestVersion(t.TempDir())
	assert.Error(t, err)
}
