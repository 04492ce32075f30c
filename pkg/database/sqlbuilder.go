package database

import (
	"github.com/huandu/go-sqlbuilder"
)

// NewSelectBuilder returns a Postgres select builder.
func NewSelectBuilder() *sqlbuilder.SelectBuilder {
	return sqlbuilder.PostgreSQL.NewSelectBuilder()
}

// InsertBuilder adds Postgres conflict clauses to the insert builder.
type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

// NewInsertBuilder returns a Postgres insert builder.
func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{sqlbuilder.PostgreSQL.NewInsertBuilder()}
}

// OnConflictDoNothing appends ON CONFLICT DO NOTHING.
func (b *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	b.SQL("ON CONFLICT DO NOTHING")
	return b
}
