package names

import (
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
)

// Register registers name parsing routes
func Register(g *echo.Group) {
	g.GET("/org", ParseOrg)
	g.GET("/person", ParsePerson)
}

type OrgResponse struct {
	names.OrgName
	Formatted string           `json:"formatted"`
	Query     query.Expression `json:"query"`
}

type PersonResponse struct {
	names.PersonName
	Full  string           `json:"full"`
	Query query.Expression `json:"query"`
}

func NewOrgResponse(raw string) OrgResponse {
	parsed := names.ParseOrg(raw)
	return OrgResponse{
		OrgName:   parsed,
		Formatted: names.FormatOrg(raw),
		Query:     query.Org(parsed),
	}
}

func NewPersonResponse(raw string) PersonResponse {
	parsed := names.ParsePerson(raw)
	return PersonResponse{
		PersonName: parsed,
		Full:       parsed.Full(),
		Query:      query.Person(parsed, raw),
	}
}

func nameParam(c echo.Context) (string, error) {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	return name, nil
}

// ParseOrg parses an organization name and shows the search it produces.
func ParseOrg(c echo.Context) error {
	raw, err := nameParam(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, NewOrgResponse(raw))
}

// ParsePerson parses a person name and shows the search it produces.
func ParsePerson(c echo.Context) error {
	raw, err := nameParam(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, NewPersonResponse(raw))
}
