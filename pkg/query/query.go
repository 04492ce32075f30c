// Package query builds full-text search expressions for candidate lookup.
//
// An Expression is a disjunction of parenthesized clauses joined by " | ",
// ordered from most to least specific. Wildcard tokens are written *token*.
package query

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/names"
)

// Separator joins the clauses of an Expression.
const Separator = " | "

// Expression is a search expression in the backend's query grammar.
type Expression string

// String returns the expression text.
func (e Expression) String() string {
	return string(e)
}

// IsEmpty reports whether the expression has no clauses.
func (e Expression) IsEmpty() bool {
	return strings.TrimSpace(string(e)) == ""
}

// Clauses returns the clause bodies without their parentheses, in order.
func (e Expression) Clauses() []string {
	if e.IsEmpty() {
		return nil
	}
	parts := strings.Split(string(e), Separator)
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(strings.TrimPrefix(p, "("), ")")
	}
	return parts
}

// Builder accumulates clauses in order, dropping blank ones.
type Builder struct {
	clauses []string
}

// Add appends a clause made of the given terms joined by spaces.
func (b *Builder) Add(terms ...string) *Builder {
	clause := strings.Join(nonEmpty(terms), " ")
	if clause == "" {
		return b
	}
	b.clauses = append(b.clauses, clause)
	return b
}

// Build renders the accumulated clauses.
func (b *Builder) Build() Expression {
	wrapped := make([]string, len(b.clauses))
	for i, c := range b.clauses {
		wrapped[i] = "(" + c + ")"
	}
	return Expression(strings.Join(wrapped, Separator))
}

// Wildcard wraps a token as *token*.
func Wildcard(token string) string {
	return "*" + token + "*"
}

// Org builds the expression for an organization name: every cleaned token
// wildcarded, then the root when a suffix was detected, then the essential
// words when at least two remain and they differ from the root.
func Org(name names.OrgName) Expression {
	var b Builder

	tokens := strings.Fields(name.Clean)
	wild := make([]string, len(tokens))
	for i, t := range tokens {
		wild[i] = Wildcard(t)
	}
	b.Add(wild...)

	if name.HasSuffix() {
		b.Add(name.Root)
	}

	if len(name.EssentialWords) >= 2 {
		essential := strings.Join(name.EssentialWords, " ")
		if essential != name.Root && essential != name.Clean {
			b.Add(essential)
		}
	}

	return b.Build()
}

// Person builds the expression for a person. full is the name as typed (or
// as stored on the record). Looser tiers follow in a fixed order: first and
// last without the middle name, first last suffix, then prefix last. Each
// tier is added only when the component it depends on is present.
func Person(name names.PersonName, full string) Expression {
	var b Builder

	if strings.TrimSpace(full) == "" {
		full = name.Full()
	}
	b.Add(full)

	if name.Middle != "" {
		b.Add(name.First, name.Last)
	}
	if name.Suffix != "" {
		b.Add(name.First, name.Last, name.Suffix)
	}
	if name.Prefix != "" {
		b.Add(name.Prefix, name.Last)
	}

	return b.Build()
}

// Names builds a generic expression matching any of the given names.
func Names(values ...string) Expression {
	var b Builder
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			b.Add(Wildcard(v))
		}
	}
	return b.Build()
}

func nonEmpty(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
