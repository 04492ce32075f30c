// Package database provides the Postgres connection, query builders,
// transactions and schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// DB is the subset of *sqlx.DB the repositories use.
type DB interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	PingContext(ctx context.Context) error
}

// Config holds Postgres connection configuration.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// Instance is an open connection pool. It is registered with the startup
// sequence so the application waits for Postgres before serving.
type Instance struct {
	*sqlx.DB
	logger ectologger.Logger
}

// Open creates the connection pool. No connection is made until Start or the
// first query.
func Open(cfg Config, logger ectologger.Logger) (*Instance, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return NewInstance(db, logger), nil
}

// NewInstance wraps an existing pool.
func NewInstance(db *sqlx.DB, logger ectologger.Logger) *Instance {
	return &Instance{DB: db, logger: logger}
}

// GetName implements startup.StartupDependency.
func (i *Instance) GetName() string { return "postgres" }

// DependsOn implements startup.StartupDependency.
func (i *Instance) DependsOn() []string { return nil }

// Start verifies the database is reachable.
func (i *Instance) Start(ctx context.Context) error {
	if err := i.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	i.logger.WithContext(ctx).Info("Connected to Postgres")
	return nil
}

// Stop closes the pool.
func (i *Instance) Stop(context.Context) error {
	return i.Close()
}
