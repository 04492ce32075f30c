package search

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
)

// Memory is an in-process Gateway over a fixed set of documents. A document
// matches a clause when every term of the clause matches a token of one of
// the searched fields; *term* matches any token containing term. Results are
// ordered by the first clause they match, then by id.
type Memory struct {
	mu   sync.RWMutex
	docs map[int64]Document
}

// NewMemory creates a Memory gateway holding docs.
func NewMemory(docs ...Document) *Memory {
	m := &Memory{docs: make(map[int64]Document, len(docs))}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

// Index adds or replaces a document.
func (m *Memory) Index(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

// Search implements Gateway.
func (m *Memory) Search(ctx context.Context, expr query.Expression, opts Options) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	opts = opts.withDefaults()

	clauses := expr.Clauses()
	type hit struct {
		id     int64
		clause int
	}

	m.mu.RLock()
	var hits []hit
	for id, doc := range m.docs {
		if opts.excluded(id) || (opts.Kind != "" && doc.Kind != opts.Kind) {
			continue
		}
		tokens := docTokens(doc, opts.Fields)
		for i, clause := range clauses {
			if clauseMatches(clause, tokens) {
				hits = append(hits, hit{id: id, clause: i})
				break
			}
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(hits, func(a, b hit) int {
		if a.clause != b.clause {
			return a.clause - b.clause
		}
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})

	page := Page{Total: int64(len(hits)), IDs: []int64{}}
	from := (opts.Page - 1) * opts.PerPage
	for i := from; i < len(hits) && i < from+opts.PerPage; i++ {
		page.IDs = append(page.IDs, hits[i].id)
	}
	return page, nil
}

func docTokens(doc Document, fields []string) []string {
	var tokens []string
	for _, f := range fields {
		for _, v := range doc.field(f) {
			tokens = append(tokens, strings.Fields(searchNormalize(v))...)
		}
	}
	return tokens
}

func clauseMatches(clause string, tokens []string) bool {
	terms := strings.Fields(termNormalize(clause))
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !slices.ContainsFunc(tokens, func(tok string) bool { return termMatches(term, tok) }) {
			return false
		}
	}
	return true
}

func termMatches(term, token string) bool {
	inner := strings.Trim(term, "*")
	if inner == "" {
		return true
	}
	if strings.HasPrefix(term, "*") || strings.HasSuffix(term, "*") {
		return strings.Contains(token, inner)
	}
	return token == inner
}

var (
	searchNormalize = names.Chain("fold", "lowercase", "strip_punctuation")
	termNormalize   = names.Chain("fold", "lowercase")
)
