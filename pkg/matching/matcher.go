package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
	"github.com/Ramsey-B/clover/pkg/search"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// RecordStore loads entity records by id.
type RecordStore interface {
	// FetchByIDs returns the records that exist among ids, in any order.
	FetchByIDs(ctx context.Context, ids []int64) ([]Record, error)
	// FetchByID returns a single record or an error wrapping ErrNotFound.
	FetchByID(ctx context.Context, id int64) (Record, error)
}

// MatcherConfig contains configuration for the Matcher.
type MatcherConfig struct {
	PerPage     int      // Candidates fetched per search (default: 20)
	WorkerCount int      // Concurrent candidate evaluations (default: 4)
	Fields      []string // Search fields (default: name, aliases, nick)
}

// DefaultMatcherConfig returns sensible defaults.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		PerPage:     search.DefaultPerPage,
		WorkerCount: 4,
		Fields:      search.DefaultFields,
	}
}

// Outcome is the result of matching one test case.
type Outcome struct {
	TestCase TestCase
	Query    query.Expression
	Results  ResultSet
}

// Automatch returns the single automatch candidate, if there is exactly one.
func (o Outcome) Automatch() (Result, bool) {
	return o.Results.Automatch()
}

// Matcher finds and ranks candidate records for a test case.
type Matcher struct {
	log       ectologger.Logger
	gateway   search.Gateway
	records   RecordStore
	evaluator *Evaluator
	cfg       MatcherConfig
}

// NewMatcher creates a new Matcher.
func NewMatcher(log ectologger.Logger, gateway search.Gateway, records RecordStore, evaluator *Evaluator, cfg MatcherConfig) *Matcher {
	def := DefaultMatcherConfig()
	if cfg.PerPage <= 0 {
		cfg.PerPage = def.PerPage
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = def.Fields
	}
	return &Matcher{
		log:       log,
		gateway:   gateway,
		records:   records,
		evaluator: evaluator,
		cfg:       cfg,
	}
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// MatchOrg matches a raw organization name.
func (m *Matcher) MatchOrg(ctx context.Context, raw string, opts ...Option) (Outcome, error) {
	return m.Match(ctx, NewOrg(raw, opts...), 0)
}

// MatchPerson matches a free-text person name.
func (m *Matcher) MatchPerson(ctx context.Context, raw string, opts ...Option) (Outcome, error) {
	tc, err := NewPerson(raw, opts...)
	if err != nil {
		return Outcome{}, err
	}
	return m.Match(ctx, tc, 0)
}

// MatchPersonName matches structured person name parts.
func (m *Matcher) MatchPersonName(ctx context.Context, name names.PersonName, opts ...Option) (Outcome, error) {
	tc, err := NewPersonFromName(name, opts...)
	if err != nil {
		return Outcome{}, err
	}
	return m.Match(ctx, tc, 0)
}

// MatchEntity loads a stored record and matches it against the others.
func (m *Matcher) MatchEntity(ctx context.Context, id int64, opts ...Option) (Outcome, error) {
	tc, err := m.EntityTestCase(ctx, id, opts...)
	if err != nil {
		return Outcome{}, err
	}
	return m.Match(ctx, tc, 0)
}

// EntityTestCase builds the test case for a stored record.
func (m *Matcher) EntityTestCase(ctx context.Context, id int64, opts ...Option) (TestCase, error) {
	rec, err := m.records.FetchByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return TestCase{}, err
	}
	if err != nil {
		return TestCase{}, fmt.Errorf("%w: loading entity %d: %w", ErrUnavailable, id, err)
	}
	return FromRecord(rec, opts...)
}

// NameSearch is the result of a raw name search.
type NameSearch struct {
	Query   query.Expression
	Total   int64
	Records []Record
}

// SearchNames searches every entity kind for any of the given names across
// the configured name fields and returns the hits in search order, unscored.
func (m *Matcher) SearchNames(ctx context.Context, values ...string) (NameSearch, error) {
	expr := query.Names(values...)
	if expr.IsEmpty() {
		return NameSearch{}, fmt.Errorf("at least one non-blank name is required: %w", ErrInvalidInput)
	}

	page, err := m.gateway.Search(ctx, expr, search.Options{
		Fields:  m.cfg.Fields,
		PerPage: m.cfg.PerPage,
		Page:    1,
	})
	if err != nil {
		m.log.WithContext(ctx).WithError(err).WithField("query", expr.String()).Error("Name search failed")
		return NameSearch{}, fmt.Errorf("%w: name search: %w", ErrUnavailable, err)
	}

	out := NameSearch{Query: expr, Total: page.Total, Records: []Record{}}
	if len(page.IDs) == 0 {
		return out, nil
	}

	records, err := m.records.FetchByIDs(ctx, page.IDs)
	if err != nil {
		return NameSearch{}, fmt.Errorf("%w: loading search hits: %w", ErrUnavailable, err)
	}
	byID := make(map[int64]Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	for _, id := range page.IDs {
		if rec, ok := byID[id]; ok {
			out.Records = append(out.Records, rec)
		}
	}
	return out, nil
}

// =============================================================================
// SEARCH AND EVALUATE
// =============================================================================

// Match searches for candidates of the test case's kind, evaluates each one
// and returns them ranked. A test case built from a record never matches
// that record. perPage overrides the configured page size when positive.
func (m *Matcher) Match(ctx context.Context, tc TestCase, perPage int) (outcome Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Matcher.Match")
	defer func() {
		span.SetAttributes(tracing.MatchAttributes(tc.Kind().String(), outcome.Query.String(), outcome.Results.Len())...)
		tracing.RecordError(span, err)
		span.End()
	}()

	start := time.Now()
	expr := tc.Query()
	log := m.log.WithContext(ctx).WithFields(map[string]any{
		"kind":  tc.Kind().String(),
		"query": expr.String(),
	})

	if perPage <= 0 {
		perPage = m.cfg.PerPage
	}
	opts := search.Options{
		Fields:  m.cfg.Fields,
		PerPage: perPage,
		Page:    1,
		Kind:    tc.Kind().String(),
	}
	sourceID, hasSource := tc.SourceID()
	if hasSource {
		opts.ExcludeIDs = []int64{sourceID}
	}

	page, err := m.gateway.Search(ctx, expr, opts)
	if err != nil {
		metrics.RecordMatch(tc.Kind().String(), "error", 0, time.Since(start).Seconds())
		log.WithError(err).Error("Candidate search failed")
		return Outcome{}, fmt.Errorf("%w: candidate search: %w", ErrUnavailable, err)
	}

	ids := make([]int64, 0, len(page.IDs))
	for _, id := range page.IDs {
		if hasSource && id == sourceID {
			continue
		}
		ids = append(ids, id)
	}

	var records []Record
	if len(ids) > 0 {
		records, err = m.records.FetchByIDs(ctx, ids)
		if err != nil {
			metrics.RecordMatch(tc.Kind().String(), "error", 0, time.Since(start).Seconds())
			log.WithError(err).Error("Failed to load candidate records")
			return Outcome{}, fmt.Errorf("%w: loading candidates: %w", ErrUnavailable, err)
		}
	}

	candidates := make([]TestCase, 0, len(records))
	for _, rec := range records {
		if rec.Kind != tc.Kind() || (hasSource && rec.ID == sourceID) {
			continue
		}
		candidate, err := FromRecord(rec)
		if err != nil {
			log.WithError(err).WithField("candidate_id", rec.ID).Warn("Skipping candidate that cannot be matched")
			continue
		}
		candidates = append(candidates, candidate)
	}

	results, err := m.EvaluateAll(ctx, tc, candidates)
	if err != nil {
		metrics.RecordMatch(tc.Kind().String(), "error", len(candidates), time.Since(start).Seconds())
		return Outcome{}, err
	}

	verdict := "none"
	if _, ok := results.Automatch(); ok {
		verdict = "automatch"
	} else if results.Len() > 0 {
		verdict = "candidates"
	}
	metrics.RecordMatch(tc.Kind().String(), verdict, len(candidates), time.Since(start).Seconds())

	log.WithFields(map[string]any{
		"total_hits": page.Total,
		"candidates": len(candidates),
		"outcome":    verdict,
	}).Debug("Match complete")

	return Outcome{TestCase: tc, Query: expr, Results: results}, nil
}

// EvaluateAll evaluates every candidate against the test case using a
// bounded pool of workers and returns the ranked results. The first error
// cancels the remaining work.
func (m *Matcher) EvaluateAll(ctx context.Context, tc TestCase, candidates []TestCase) (ResultSet, error) {
	if len(candidates) == 0 {
		return NewResultSet(nil), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(candidates))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	workers := min(m.cfg.WorkerCount, len(candidates))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := m.evaluator.Evaluate(ctx, tc, candidates[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[i] = r
			}
		}()
	}

feed:
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return ResultSet{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return ResultSet{}, err
	}
	return NewResultSet(results), nil
}
