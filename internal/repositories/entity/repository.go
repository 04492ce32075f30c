package entity

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	entitiesTable      = "entities"
	personsTable       = "persons"
	aliasesTable       = "aliases"
	relationshipsTable = "relationships"
)

// RelatedSource supplies relationships kept outside Postgres, such as the
// graph database.
type RelatedSource interface {
	RelatedIDs(ctx context.Context, ids []int64) (map[int64][]int64, error)
}

// Repository loads entity snapshots for matching.
type Repository struct {
	db      database.DB
	related RelatedSource
	logger  ectologger.Logger
}

var _ matching.RecordStore = (*Repository)(nil)

// NewRepository creates a new entity repository. related may be nil.
func NewRepository(db database.DB, related RelatedSource, logger ectologger.Logger) *Repository {
	return &Repository{
		db:      db,
		related: related,
		logger:  logger,
	}
}

type entityRow struct {
	ID         int64  `db:"id"`
	Kind       string `db:"kind"`
	Name       string `db:"name"`
	Blurb      string `db:"blurb"`
	Summary    string `db:"summary"`
	NamePrefix string `db:"name_prefix"`
	NameFirst  string `db:"name_first"`
	NameMiddle string `db:"name_middle"`
	NameLast   string `db:"name_last"`
	NameSuffix string `db:"name_suffix"`
	NameNick   string `db:"name_nick"`
}

type aliasRow struct {
	EntityID int64  `db:"entity_id"`
	Name     string `db:"name"`
}

type relationshipRow struct {
	Entity1ID int64 `db:"entity1_id"`
	Entity2ID int64 `db:"entity2_id"`
}

// FetchByID loads one entity. A missing or deleted entity wraps
// matching.ErrNotFound.
func (r *Repository) FetchByID(ctx context.Context, id int64) (matching.Record, error) {
	records, err := r.FetchByIDs(ctx, []int64{id})
	if err != nil {
		return matching.Record{}, err
	}
	if len(records) == 0 {
		return matching.Record{}, errors.Wrapf(matching.ErrNotFound, "entity %d", id)
	}
	return records[0], nil
}

// FetchByIDs loads the entities with the given ids, in the order the ids were
// given. Unknown and deleted ids are skipped.
func (r *Repository) FetchByIDs(ctx context.Context, ids []int64) ([]matching.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "EntityRepository.FetchByIDs")
	defer span.End()

	if len(ids) == 0 {
		return []matching.Record{}, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDatabaseQuery("fetch_entities", time.Since(start).Seconds()) }()

	var rows []entityRow
	query, args := selectEntities(ids).Build()
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to select entities")
		return nil, errors.Wrap(err, "failed to select entities")
	}
	if len(rows) == 0 {
		return []matching.Record{}, nil
	}

	found := make([]int64, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.ID)
	}

	aliases, err := r.aliases(ctx, found)
	if err != nil {
		return nil, err
	}
	related, err := r.relatedIDs(ctx, found)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]matching.Record, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"entity_id": row.ID}).Warn("skipping entity with unknown kind")
			continue
		}
		rec.Aliases = aliases[row.ID]
		rec.RelatedIDs = related[row.ID]
		byID[row.ID] = rec
	}

	records := make([]matching.Record, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			records = append(records, rec)
			delete(byID, id)
		}
	}
	return records, nil
}

// ListIDs returns up to limit live entity ids greater than afterID, in
// ascending order.
func (r *Repository) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "EntityRepository.ListIDs")
	defer span.End()

	start := time.Now()
	defer func() { metrics.RecordDatabaseQuery("list_entity_ids", time.Since(start).Seconds()) }()

	ids := []int64{}
	query, args := selectIDsAfter(afterID, limit).Build()
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list entity ids")
		return nil, errors.Wrap(err, "failed to list entity ids")
	}
	return ids, nil
}

func (r *Repository) aliases(ctx context.Context, ids []int64) (map[int64][]string, error) {
	var rows []aliasRow
	query, args := selectAliases(ids).Build()
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to select aliases")
		return nil, errors.Wrap(err, "failed to select aliases")
	}

	out := make(map[int64][]string, len(ids))
	for _, row := range rows {
		out[row.EntityID] = append(out[row.EntityID], row.Name)
	}
	return out, nil
}

// relatedIDs merges Postgres relationships with the related source, if any.
func (r *Repository) relatedIDs(ctx context.Context, ids []int64) (map[int64][]int64, error) {
	var rows []relationshipRow
	query, args := selectRelationships(ids).Build()
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to select relationships")
		return nil, errors.Wrap(err, "failed to select relationships")
	}

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	out := make(map[int64][]int64, len(ids))
	add := func(id, other int64) {
		if id != other && wanted[id] && !slices.Contains(out[id], other) {
			out[id] = append(out[id], other)
		}
	}
	for _, row := range rows {
		add(row.Entity1ID, row.Entity2ID)
		add(row.Entity2ID, row.Entity1ID)
	}

	if r.related != nil {
		extra, err := r.related.RelatedIDs(ctx, ids)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load related entities")
		}
		for id, others := range extra {
			for _, other := range others {
				add(id, other)
			}
		}
	}

	for id := range out {
		slices.Sort(out[id])
	}
	return out, nil
}

// Save inserts a new entity with its person name parts and aliases and
// returns its id.
func (r *Repository) Save(ctx context.Context, rec matching.Record) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "EntityRepository.Save")
	defer span.End()

	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ib := database.NewInsertBuilder()
		ib.InsertInto(entitiesTable)
		ib.Cols("kind", "name", "blurb", "summary")
		ib.Values(rec.Kind.String(), rec.Name, nullable(rec.Blurb), nullable(rec.Summary))
		ib.SQL("RETURNING id")

		query, args := ib.Build()
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			return errors.Wrap(err, "failed to insert entity")
		}

		if rec.Kind == matching.KindPerson {
			query, args := insertPerson(id, rec.Person).Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrap(err, "failed to insert person")
			}
		}

		if len(rec.Aliases) > 0 {
			query, args := insertAliases(id, rec.Aliases).Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrap(err, "failed to insert aliases")
			}
		}
		return nil
	})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to save entity")
		return 0, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_id": id,
		"kind":      rec.Kind.String(),
	}).Info("saved entity")
	return id, nil
}

// Relate records a relationship between two entities.
func (r *Repository) Relate(ctx context.Context, entity1ID, entity2ID int64) error {
	ctx, span := tracing.StartSpan(ctx, "EntityRepository.Relate")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto(relationshipsTable)
	ib.Cols("entity1_id", "entity2_id")
	ib.Values(entity1ID, entity2ID)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to insert relationship")
		return errors.Wrap(err, "failed to insert relationship")
	}
	return nil
}

func selectEntities(ids []int64) *sqlbuilder.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select(
		"e.id",
		"e.kind",
		"e.name",
		"COALESCE(e.blurb, '') AS blurb",
		"COALESCE(e.summary, '') AS summary",
		"COALESCE(p.name_prefix, '') AS name_prefix",
		"COALESCE(p.name_first, '') AS name_first",
		"COALESCE(p.name_middle, '') AS name_middle",
		"COALESCE(p.name_last, '') AS name_last",
		"COALESCE(p.name_suffix, '') AS name_suffix",
		"COALESCE(p.name_nick, '') AS name_nick",
	)
	sb.From(sb.As(entitiesTable, "e"))
	sb.JoinWithOption(sqlbuilder.LeftJoin, sb.As(personsTable, "p"), "p.entity_id = e.id")
	sb.Where(
		sb.In("e.id", sqlbuilder.Flatten(ids)...),
		sb.IsNull("e.deleted_at"),
	)
	return sb
}

func selectIDsAfter(afterID int64, limit int) *sqlbuilder.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select("id")
	sb.From(entitiesTable)
	sb.Where(
		sb.GreaterThan("id", afterID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id")
	sb.Limit(limit)
	return sb
}

func selectAliases(ids []int64) *sqlbuilder.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select("a.entity_id", "a.name")
	sb.From(sb.As(aliasesTable, "a"))
	sb.Join(sb.As(entitiesTable, "e"), "e.id = a.entity_id")
	sb.Where(
		sb.In("a.entity_id", sqlbuilder.Flatten(ids)...),
		"a.is_primary = FALSE",
		"a.name <> e.name",
	)
	sb.OrderBy("a.entity_id", "a.id")
	return sb
}

func selectRelationships(ids []int64) *sqlbuilder.SelectBuilder {
	sb := database.NewSelectBuilder()
	flat := sqlbuilder.Flatten(ids)
	sb.Select("entity1_id", "entity2_id")
	sb.From(relationshipsTable)
	sb.Where(
		sb.Or(
			sb.In("entity1_id", flat...),
			sb.In("entity2_id", flat...),
		),
		sb.IsNull("deleted_at"),
	)
	return sb
}

func insertPerson(entityID int64, p names.PersonName) *database.InsertBuilder {
	ib := database.NewInsertBuilder()
	ib.InsertInto(personsTable)
	ib.Cols("entity_id", "name_prefix", "name_first", "name_middle", "name_last", "name_suffix", "name_nick")
	ib.Values(entityID, nullable(p.Prefix), p.First, nullable(p.Middle), p.Last, nullable(p.Suffix), nullable(p.Nick))
	return ib
}

func insertAliases(entityID int64, aliases []string) *database.InsertBuilder {
	ib := database.NewInsertBuilder()
	ib.InsertInto(aliasesTable)
	ib.Cols("entity_id", "name")
	for _, alias := range aliases {
		ib.Values(entityID, alias)
	}
	ib.OnConflictDoNothing()
	return ib
}

func (row entityRow) record() (matching.Record, error) {
	kind, err := matching.ParseKind(row.Kind)
	if err != nil {
		return matching.Record{}, err
	}

	rec := matching.Record{
		ID:      row.ID,
		Kind:    kind,
		Name:    row.Name,
		Blurb:   row.Blurb,
		Summary: row.Summary,
	}
	if kind == matching.KindPerson {
		rec.Person = names.PersonName{
			Prefix: row.NamePrefix,
			First:  row.NameFirst,
			Middle: row.NameMiddle,
			Last:   row.NameLast,
			Suffix: row.NameSuffix,
			Nick:   row.NameNick,
		}
	}
	return rec, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
