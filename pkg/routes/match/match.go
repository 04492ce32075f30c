package match

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
	"github.com/Ramsey-B/clover/pkg/routes"
)

// Service runs matches. *matching.Matcher implements it.
type Service interface {
	Match(ctx context.Context, tc matching.TestCase, perPage int) (matching.Outcome, error)
	EntityTestCase(ctx context.Context, id int64, opts ...matching.Option) (matching.TestCase, error)
}

type OrgRequest struct {
	Name          string   `json:"name" validate:"required"`
	AssociatedIDs []int64  `json:"associated_ids"`
	Keywords      []string `json:"keywords"`
	PerPage       int      `json:"per_page" validate:"gte=0,lte=100"`
}

// PersonRequest takes either a free-text name or its parts.
type PersonRequest struct {
	Name string `json:"name"`
	names.PersonName
	AssociatedIDs []int64  `json:"associated_ids"`
	Keywords      []string `json:"keywords"`
	PerPage       int      `json:"per_page" validate:"gte=0,lte=100"`
}

type EntityRequest struct {
	Keywords []string `json:"keywords"`
	PerPage  int      `json:"per_page" validate:"gte=0,lte=100"`
}

type Response struct {
	Query         query.Expression  `json:"query"`
	Automatchable matching.Signal   `json:"automatchable"`
	Automatch     *matching.Result  `json:"automatch"`
	Results       []matching.Result `json:"results"`
}

// NewResponse renders a match outcome.
func NewResponse(outcome matching.Outcome) Response {
	resp := Response{
		Query:         outcome.Query,
		Automatchable: outcome.Results.Automatchable(),
		Results:       outcome.Results.ToSortedList(),
	}
	if resp.Results == nil {
		resp.Results = []matching.Result{}
	}
	if r, ok := outcome.Automatch(); ok {
		resp.Automatch = &r
	}
	return resp
}

// Handler serves the match endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register registers match routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("/orgs", h.MatchOrg)
	g.POST("/people", h.MatchPerson)
	g.POST("/entities/:id", h.MatchEntity)
}

// MatchOrg matches a free-text organization name.
func (h *Handler) MatchOrg(c echo.Context) error {
	req, err := routes.BindRequest[OrgRequest](c)
	if err != nil {
		return err
	}

	tc := matching.NewOrg(req.Name, Options(req.AssociatedIDs, req.Keywords)...)
	return h.respond(c, tc, req.PerPage)
}

// MatchPerson matches a person by free-text name or by name parts.
func (h *Handler) MatchPerson(c echo.Context) error {
	req, err := routes.BindRequest[PersonRequest](c)
	if err != nil {
		return err
	}

	opts := Options(req.AssociatedIDs, req.Keywords)

	var tc matching.TestCase
	if req.Name != "" {
		tc, err = matching.NewPerson(req.Name, opts...)
	} else {
		tc, err = matching.NewPersonFromName(req.PersonName, opts...)
	}
	if err != nil {
		return err
	}

	return h.respond(c, tc, req.PerPage)
}

// MatchEntity matches a stored entity against the others.
func (h *Handler) MatchEntity(c echo.Context) error {
	id, err := routes.IDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := routes.BindRequest[EntityRequest](c)
	if err != nil {
		return err
	}

	tc, err := h.service.EntityTestCase(c.Request().Context(), id, Options(nil, req.Keywords)...)
	if err != nil {
		return err
	}

	return h.respond(c, tc, req.PerPage)
}

func (h *Handler) respond(c echo.Context, tc matching.TestCase, perPage int) error {
	outcome, err := h.service.Match(c.Request().Context(), tc, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewResponse(outcome))
}

// Options converts request fields to matching options.
func Options(associated []int64, keywords []string) []matching.Option {
	var opts []matching.Option
	if len(associated) > 0 {
		opts = append(opts, matching.WithAssociated(associated...))
	}
	if len(keywords) > 0 {
		opts = append(opts, matching.WithKeywords(keywords...))
	}
	return opts
}
