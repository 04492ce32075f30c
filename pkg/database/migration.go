package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	pkgerrors "github.com/pkg/errors"
)

// migrationLogger adapts ectologger to migrate.Logger.
type migrationLogger struct {
	ectologger.Logger
}

func (l migrationLogger) Verbose() bool { return true }

func (l migrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

// MigrationConfig controls how migrations are applied.
type MigrationConfig struct {
	Folder  string
	Version uint // target version; zero means latest
	Force   int  // force the recorded version before migrating; zero means no force
}

// Migrator applies the SQL migrations in a folder.
type Migrator struct {
	cfg    MigrationConfig
	logger ectologger.Logger
}

// NewMigrator creates a Migrator.
func NewMigrator(cfg MigrationConfig, logger ectologger.Logger) *Migrator {
	return &Migrator{cfg: cfg, logger: logger}
}

// resolveFolder returns the folder as given if it exists, else relative to
// the working directory.
func (m *Migrator) resolveFolder() string {
	if _, err := os.Stat(m.cfg.Folder); err == nil || filepath.IsAbs(m.cfg.Folder) {
		return m.cfg.Folder
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, m.cfg.Folder)
}

func (m *Migrator) open(db *sql.DB) (*migrate.Migrate, error) {
	folder := m.resolveFolder()
	if _, err := os.Stat(folder); err != nil {
		return nil, pkgerrors.Wrapf(err, "migration folder %s does not exist", folder)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create migration driver")
	}

	mig, err := migrate.NewWithDatabaseInstance("file://"+folder, "postgres", driver)
	if err != nil {
		m.logger.WithError(err).Error("Failed to create migrate instance")
		return nil, err
	}
	mig.Log = migrationLogger{Logger: m.logger}
	return mig, nil
}

// Up migrates to the configured version, or the latest one.
func (m *Migrator) Up(db *sql.DB) error {
	mig, err := m.open(db)
	if err != nil {
		return err
	}

	if m.cfg.Force != 0 {
		if err := mig.Force(m.cfg.Force); err != nil {
			m.logger.WithError(err).Errorf("Failed to force database to version %d", m.cfg.Force)
			return err
		}
	}

	if m.cfg.Version != 0 {
		err = mig.Migrate(m.cfg.Version)
	} else {
		err = mig.Up()
	}
	return m.handleError(mig, err)
}

// Down rolls back the given number of migrations.
func (m *Migrator) Down(db *sql.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	mig, err := m.open(db)
	if err != nil {
		return err
	}
	return m.handleError(mig, mig.Steps(-steps))
}

// Version returns the applied version and whether it is dirty.
func (m *Migrator) Version(db *sql.DB) (uint, bool, error) {
	mig, err := m.open(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) handleError(mig *migrate.Migrate, err error) error {
	switch {
	case err == nil:
		m.logger.Info("Successfully applied migrations")
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("No new migrations to apply")
		return nil
	}

	version, dirty, versionErr := mig.Version()
	if versionErr != nil && !errors.Is(versionErr, migrate.ErrNilVersion) {
		m.logger.WithError(versionErr).Error("Failed to get current migration version")
	}
	m.logger.WithError(err).Errorf("Failed to apply migrations. Database version is dirty=%t at version %d", dirty, version)
	return err
}

var migrationFile = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

// LatestVersion returns the highest version among the up migrations in a
// folder.
func LatestVersion(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, err
	}

	var versions []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matches := migrationFile.FindStringSubmatch(e.Name())
		if len(matches) < 2 {
			continue
		}
		v, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, err
		}
		versions = append(versions, v)
	}

	if len(versions) == 0 {
		return 0, fmt.Errorf("no migration files found in %s", folder)
	}
	return slices.Max(versions), nil
}
