//go:build integration

// Package testsupport starts throwaway infrastructure for integration tests.
package testsupport

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Ramsey-B/clover/pkg/database"
)

// MigrationFolder is the absolute path of db/pg.
func MigrationFolder() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "pg")
}

// Postgres starts a Postgres container, applies every migration and returns
// a connected instance. The container is terminated when the test ends.
func Postgres(t *testing.T) *database.Instance {
	t.Helper()
	ctx := context.Background()
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "clover",
			"POSTGRES_PASSWORD": "clover",
			"POSTGRES_DB":       "clover",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.Open(database.Config{
		Host:     host,
		Port:     port.Int(),
		User:     "clover",
		Password: "clover",
		Name:     "clover",
	}, logger)
	require.NoError(t, err, fmt.Sprintf("connecting to %s:%s", host, port.Port()))
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Start(ctx))
	require.NoError(t, database.NewMigrator(database.MigrationConfig{Folder: MigrationFolder()}, logger).Up(db.DB.DB))
	return db
}
