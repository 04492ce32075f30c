// Package search finds candidate entities for a query expression.
package search

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/query"
)

// DefaultFields are searched when Options.Fields is empty.
var DefaultFields = []string{"name", "aliases", "nick"}

// DefaultPerPage is used when Options.PerPage is not positive.
const DefaultPerPage = 20

// Options narrow a search.
type Options struct {
	// ExcludeIDs are never returned, so a record is not matched with itself.
	ExcludeIDs []int64
	// Fields are the document fields the expression is matched against.
	Fields []string
	// PerPage is the page size; Page is one-based.
	PerPage int
	Page    int
	// Kind restricts results to "org" or "person" when set.
	Kind string
}

func (o Options) withDefaults() Options {
	if len(o.Fields) == 0 {
		o.Fields = DefaultFields
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.Page <= 0 {
		o.Page = 1
	}
	return o
}

func (o Options) excluded(id int64) bool {
	for _, ex := range o.ExcludeIDs {
		if ex == id {
			return true
		}
	}
	return false
}

// Page is one page of candidate ids in relevance order.
type Page struct {
	IDs   []int64 `json:"ids"`
	Total int64   `json:"total"`
}

// Gateway runs query expressions against a search index.
type Gateway interface {
	Search(ctx context.Context, expr query.Expression, opts Options) (Page, error)
}

// Document is the searchable projection of an entity.
type Document struct {
	ID      int64    `json:"id"`
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Nick    string   `json:"nick,omitempty"`
}

func (d Document) field(name string) []string {
	switch name {
	case "name":
		return []string{d.Name}
	case "aliases":
		return d.Aliases
	case "nick":
		if d.Nick == "" {
			return nil
		}
		return []string{d.Nick}
	}
	return nil
}
