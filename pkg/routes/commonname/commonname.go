package commonname

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/commonnames"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/routes"
)

// Creator stores common names.
type Creator interface {
	Create(ctx context.Context, name string) (string, error)
}

// Invalidator drops a cached lookup.
type Invalidator interface {
	Invalidate(ctx context.Context, name string) error
}

type CreateRequest struct {
	Name string `json:"name" validate:"required"`
}

type Response struct {
	Name   string `json:"name"`
	Common bool   `json:"common"`
}

// Handler serves the common name dictionary.
type Handler struct {
	lookup  commonnames.Lookup
	creator Creator
	cache   Invalidator
	logger  ectologger.Logger
}

// NewHandler creates the handler. cache may be nil.
func NewHandler(lookup commonnames.Lookup, creator Creator, cache Invalidator, logger ectologger.Logger) *Handler {
	return &Handler{
		lookup:  lookup,
		creator: creator,
		cache:   cache,
		logger:  logger,
	}
}

// Register registers common name routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/:name", h.Get)
	g.POST("", h.Create)
}

// Get reports whether a last name is common.
func (h *Handler) Get(c echo.Context) error {
	name := commonnames.Standardize(c.Param("name"))
	if name == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	common, err := h.lookup.IsCommon(c.Request().Context(), name)
	if err != nil {
		return fmt.Errorf("%w: common name lookup: %w", matching.ErrUnavailable, err)
	}

	return c.JSON(http.StatusOK, Response{Name: name, Common: common})
}

// Create adds a name to the dictionary.
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := routes.BindRequest[CreateRequest](c)
	if err != nil {
		return err
	}
	if commonnames.Standardize(req.Name) == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	name, err := h.creator.Create(ctx, req.Name)
	if err != nil {
		return fmt.Errorf("%w: storing common name: %w", matching.ErrUnavailable, err)
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, name); err != nil {
			h.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"name": name,
			}).Warn("Failed to invalidate cached common name")
		}
	}

	return c.JSON(http.StatusCreated, Response{Name: name, Common: true})
}
