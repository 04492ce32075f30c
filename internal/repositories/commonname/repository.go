package commonname

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/commonnames"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const tableName = "common_names"

// ErrBlankName is returned when a blank name is created.
var ErrBlankName = errors.New("common name is blank")

// Repository stores common last names in their standardized form.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

var _ commonnames.Includer = (*Repository)(nil)

// NewRepository creates a new common name repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Includes reports whether the standardized name is stored.
func (r *Repository) Includes(ctx context.Context, name string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "CommonNameRepository.Includes")
	defer span.End()

	name = commonnames.Standardize(name)
	if name == "" {
		return false, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDatabaseQuery("common_name_includes", time.Since(start).Seconds()) }()

	query, args := includesQuery(name).Build()

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to look up common name")
		return false, errors.Wrap(err, "failed to look up common name")
	}
	return exists, nil
}

// Create stores a name. Creating a name that already exists is not an error.
// It returns the standardized form.
func (r *Repository) Create(ctx context.Context, name string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "CommonNameRepository.Create")
	defer span.End()

	name = commonnames.Standardize(name)
	if name == "" {
		return "", ErrBlankName
	}

	query, args := createQuery(name).Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create common name")
		return "", errors.Wrap(err, "failed to create common name")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"name": name,
	}).Info("created common name")

	return name, nil
}

// List returns every stored name in alphabetical order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "CommonNameRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("name")
	sb.From(tableName)
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list common names")
		return nil, errors.Wrap(err, "failed to list common names")
	}
	return out, nil
}

func includesQuery(name string) *sqlbuilder.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select("COUNT(1) > 0")
	sb.From(tableName)
	sb.Where(sb.Equal("name", name))
	return sb
}

func createQuery(name string) *database.InsertBuilder {
	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("name")
	ib.Values(name)
	ib.OnConflictDoNothing()
	return ib
}
