package entities

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
	"github.com/Ramsey-B/clover/pkg/routes"
)

// Store persists entities. *entity.Repository implements it.
type Store interface {
	Save(ctx context.Context, rec matching.Record) (int64, error)
	Relate(ctx context.Context, entity1ID, entity2ID int64) error
}

// Indexer writes a record into the search index. *indexer.Indexer
// implements it.
type Indexer interface {
	IndexRecord(ctx context.Context, rec matching.Record) error
}

// Searcher runs raw name searches. *matching.Matcher implements it.
type Searcher interface {
	SearchNames(ctx context.Context, values ...string) (matching.NameSearch, error)
}

// CreateRequest describes a new entity. A person takes either a free-text
// name or its parts.
type CreateRequest struct {
	Kind string `json:"kind" validate:"required,oneof=org person"`
	Name string `json:"name"`
	names.PersonName
	Aliases    []string `json:"aliases" validate:"omitempty,dive,required"`
	Blurb      string   `json:"blurb"`
	Summary    string   `json:"summary"`
	RelatedIDs []int64  `json:"related_ids" validate:"omitempty,dive,gt=0"`
}

type CreateResponse struct {
	ID      int64 `json:"id"`
	Indexed bool  `json:"indexed"`
}

type SearchResponse struct {
	Query   query.Expression  `json:"query"`
	Total   int64             `json:"total"`
	Results []matching.Record `json:"results"`
}

// Handler serves entity ingest and raw name search.
type Handler struct {
	store    Store
	indexer  Indexer
	searcher Searcher
	logger   ectologger.Logger
}

func NewHandler(store Store, indexer Indexer, searcher Searcher, logger ectologger.Logger) *Handler {
	return &Handler{
		store:    store,
		indexer:  indexer,
		searcher: searcher,
		logger:   logger,
	}
}

// Register registers entity routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("/search", h.Search)
}

// Create stores an entity with its relationships and indexes it. An index
// failure is logged and reported in the response; the entity stays stored.
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := routes.BindRequest[CreateRequest](c)
	if err != nil {
		return err
	}

	rec, err := req.record()
	if err != nil {
		return err
	}

	id, err := h.store.Save(ctx, rec)
	if err != nil {
		return fmt.Errorf("%w: saving entity: %w", matching.ErrUnavailable, err)
	}
	rec.ID = id

	for _, other := range rec.RelatedIDs {
		if err := h.store.Relate(ctx, id, other); err != nil {
			return fmt.Errorf("%w: relating entity %d to %d: %w", matching.ErrUnavailable, id, other, err)
		}
	}

	resp := CreateResponse{ID: id, Indexed: true}
	if err := h.indexer.IndexRecord(ctx, rec); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("entity_id", id).Warn("Stored entity was not indexed")
		resp.Indexed = false
	}

	return c.JSON(http.StatusCreated, resp)
}

// Search finds entities of any kind by name, alias or nickname. Repeat the
// name parameter to search several names at once.
func (h *Handler) Search(c echo.Context) error {
	values := c.QueryParams()["name"]
	if len(values) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	found, err := h.searcher.SearchNames(c.Request().Context(), values...)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SearchResponse{
		Query:   found.Query,
		Total:   found.Total,
		Results: found.Records,
	})
}

// record builds the entity and checks it can be matched later.
func (r CreateRequest) record() (matching.Record, error) {
	kind, err := matching.ParseKind(r.Kind)
	if err != nil {
		return matching.Record{}, fmt.Errorf("%s: %w", err.Error(), matching.ErrInvalidInput)
	}

	rec := matching.Record{
		Kind:       kind,
		Name:       strings.TrimSpace(r.Name),
		Aliases:    r.Aliases,
		Blurb:      r.Blurb,
		Summary:    r.Summary,
		RelatedIDs: r.RelatedIDs,
	}

	if kind == matching.KindPerson {
		rec.Person = r.PersonName.Trimmed()
		if rec.Person.Last == "" && rec.Name != "" {
			rec.Person = names.ParsePerson(rec.Name)
		}
		if rec.Name == "" {
			rec.Name = rec.Person.Full()
		}
	}

	if rec.Name == "" {
		return matching.Record{}, httperror.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if _, err := matching.FromRecord(rec); err != nil {
		return matching.Record{}, err
	}
	return rec, nil
}
