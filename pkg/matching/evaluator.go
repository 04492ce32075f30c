package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ramsey-B/clover/pkg/names"
)

// CommonNames answers whether a last name is too common to identify a person
type CommonNames interface {
	IsCommon(ctx context.Context, lastName string) (bool, error)
}

// Evaluator compares a test case with a candidate and records the outcome of
// each comparison as a signal.
type Evaluator struct {
	scorer      *Scorer
	commonNames CommonNames
}

// NewEvaluator creates a new Evaluator. commonNames may be nil, in which case
// the common last name signal is never set.
func NewEvaluator(scorer *Scorer, commonNames CommonNames) *Evaluator {
	return &Evaluator{
		scorer:      scorer,
		commonNames: commonNames,
	}
}

// Evaluate computes the signals for one test case and candidate pair. Both
// must be the same kind.
func (e *Evaluator) Evaluate(ctx context.Context, tc, candidate TestCase) (Result, error) {
	if tc.Kind() != candidate.Kind() {
		return Result{}, fmt.Errorf("cannot evaluate %s against %s: %w", tc.Kind(), candidate.Kind(), ErrVariantMismatch)
	}

	r := Result{kind: tc.Kind(), candidate: candidate.Record()}

	switch tc.Kind() {
	case KindOrg:
		e.evaluateOrg(&r, tc, candidate)
	case KindPerson:
		if err := e.evaluatePerson(ctx, &r, tc, candidate); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("test case has no kind: %w", ErrVariantMismatch)
	}

	e.evaluateContext(&r, tc, candidate)
	r.score = e.scorer.Similarity(tc.FullName(), candidate.FullName())
	return r, nil
}

// =============================================================================
// ORGANIZATIONS
// =============================================================================

func (e *Evaluator) evaluateOrg(r *Result, tc, candidate TestCase) {
	a, b := tc.OrgName(), candidate.OrgName()

	r.set(SameName, SignalOf(e.scorer.Same(a.Clean, b.Clean)))
	r.set(SimilarName, SignalOf(e.scorer.Similar(a.Clean, b.Clean)))
	r.set(SameRoot, SignalOf(e.scorer.Same(a.Root, b.Root)))
	r.set(SimilarRoot, SignalOf(e.scorer.Similar(a.Root, b.Root)))

	if rec := candidate.Record(); rec != nil && len(rec.Aliases) > 0 {
		matched := false
		for _, alias := range rec.Aliases {
			if e.scorer.Same(names.CleanOrg(alias), a.Clean) {
				matched = true
				break
			}
		}
		r.set(MatchesAlias, SignalOf(matched))
	}
}

// =============================================================================
// PEOPLE
// =============================================================================

func (e *Evaluator) evaluatePerson(ctx context.Context, r *Result, tc, candidate TestCase) error {
	compare := func(a, b string, same, similar SignalName) {
		if a == "" || b == "" {
			return
		}
		r.set(same, SignalOf(e.scorer.Same(a, b)))
		if similar != "" {
			r.set(similar, SignalOf(e.scorer.Similar(a, b)))
		}
	}

	compare(tc.First(), candidate.First(), SameFirstName, SimilarFirstName)
	compare(tc.Last(), candidate.Last(), SameLastName, SimilarLastName)
	compare(tc.Prefix(), candidate.Prefix(), SamePrefix, "")

	suffixA, suffixB := tc.Suffix(), candidate.Suffix()
	if suffixA != "" && suffixB != "" {
		same := e.scorer.Same(suffixA, suffixB)
		r.set(SameSuffix, SignalOf(same))
		r.set(MismatchedSuffix, SignalOf(!same))
	}
	suffixConflict := r.Get(MismatchedSuffix).IsTrue() || (suffixA == "") != (suffixB == "")

	e.evaluateMiddle(r, tc, candidate, suffixConflict)

	if r.Get(SameLastName).IsTrue() && e.commonNames != nil {
		common, err := e.commonNames.IsCommon(ctx, candidate.Last())
		if err != nil {
			return fmt.Errorf("%w: common last name lookup: %w", ErrUnavailable, err)
		}
		r.set(CommonLastName, SignalOf(common))
	}
	return nil
}

// evaluateMiddle sets the middle name signals. An initial counts as the same
// middle name as any name starting with that letter, but only full names can
// be different. A middle name on one side only, a conflicting pair or a
// suffix conflict all make the middle name mismatched.
func (e *Evaluator) evaluateMiddle(r *Result, tc, candidate TestCase, suffixConflict bool) {
	a := strings.ReplaceAll(tc.Middle(), ".", "")
	b := strings.ReplaceAll(candidate.Middle(), ".", "")

	switch {
	case a == "" && b == "":
		r.set(DifferentMiddleName, False)
		r.set(MismatchedMiddleName, SignalOf(suffixConflict))

	case a == "" || b == "":
		r.set(DifferentMiddleName, False)
		r.set(MismatchedMiddleName, True)

	default:
		same := e.scorer.Same(a, b)
		if !same && (tc.MiddleIsInitial() || candidate.MiddleIsInitial()) {
			same = e.scorer.Same(tc.MiddleInitial(), candidate.MiddleInitial())
		}
		bothFull := !tc.MiddleIsInitial() && !candidate.MiddleIsInitial()

		r.set(SameMiddleName, SignalOf(same))
		r.set(DifferentMiddleName, SignalOf(bothFull && !same))
		r.set(MismatchedMiddleName, SignalOf(!same || suffixConflict))
	}
}

// =============================================================================
// RELATIONSHIPS AND DESCRIPTIONS
// =============================================================================

func (e *Evaluator) evaluateContext(r *Result, tc, candidate TestCase) {
	if associated := tc.AssociatedIDs(); len(associated) > 0 {
		var related []int64
		if rec := candidate.Record(); rec != nil {
			related = rec.RelatedIDs
		}
		r.set(CommonRelationship, SignalOf(intersects(associated, related)))
	}

	if keywords := tc.Keywords(); len(keywords) > 0 {
		var texts []string
		if rec := candidate.Record(); rec != nil {
			texts = []string{rec.Blurb, rec.Summary}
		}
		r.set(BlurbKeyword, SignalOf(e.scorer.ContainsAny(texts, keywords)))
	}
}

func intersects(a, b []int64) bool {
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
