package matching

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
)

// TestCase is the normalized form of the thing being matched: a raw name, a
// set of name parts or an existing record. It is immutable once built.
type TestCase struct {
	kind       Kind
	org        names.OrgName
	person     names.PersonName
	full       string
	record     *Record
	associated []int64
	keywords   []string
}

// Option configures a TestCase.
type Option func(*testCaseOptions)

type testCaseOptions struct {
	associated    []int64
	hasAssociated bool
	keywords      []string
}

// WithAssociated sets the ids of entities the subject is known to be related
// to. When omitted for a test case built from a record, the record's related
// ids are used.
func WithAssociated(ids ...int64) Option {
	return func(o *testCaseOptions) {
		o.associated = append(o.associated, ids...)
		o.hasAssociated = len(o.associated) > 0
	}
}

// WithKeywords sets words to look for in a candidate's blurb and summary.
func WithKeywords(keywords ...string) Option {
	return func(o *testCaseOptions) {
		for _, k := range keywords {
			if k = strings.TrimSpace(k); k != "" {
				o.keywords = append(o.keywords, k)
			}
		}
	}
}

// NewOrg builds an organization test case from a raw name.
func NewOrg(raw string, opts ...Option) TestCase {
	tc := TestCase{
		kind: KindOrg,
		org:  names.ParseOrg(raw),
		full: raw,
	}
	tc.apply(opts)
	return tc
}

// NewOrgFromRecord builds an organization test case from an existing record.
func NewOrgFromRecord(rec Record, opts ...Option) (TestCase, error) {
	if rec.Kind != KindOrg {
		return TestCase{}, fmt.Errorf("record %d is a %s, not an org: %w", rec.ID, rec.Kind, ErrWrongCategory)
	}
	tc := TestCase{
		kind:   KindOrg,
		org:    names.ParseOrg(rec.Name),
		full:   rec.Name,
		record: &rec,
	}
	tc.apply(opts)
	return tc, nil
}

// NewPerson builds a person test case by parsing a free-text name. A single
// word is taken as the last name; input with no last name is rejected.
func NewPerson(raw string, opts ...Option) (TestCase, error) {
	name := names.ParsePerson(raw)
	if name.Last == "" {
		return TestCase{}, fmt.Errorf("person name %q has no last name: %w", raw, ErrInvalidInput)
	}
	tc := TestCase{
		kind:   KindPerson,
		person: name,
		full:   names.CollapseWhitespace(raw),
	}
	tc.apply(opts)
	return tc, nil
}

// NewPersonFromName builds a person test case from structured name parts.
// Both the first and last name are required.
func NewPersonFromName(name names.PersonName, opts ...Option) (TestCase, error) {
	name = name.Trimmed()
	if name.First == "" || name.Last == "" {
		return TestCase{}, fmt.Errorf("person name requires a first and last name: %w", ErrInvalidInput)
	}
	tc := TestCase{
		kind:   KindPerson,
		person: name,
		full:   name.Full(),
	}
	tc.apply(opts)
	return tc, nil
}

// NewPersonFromRecord builds a person test case from an existing record,
// copying its stored name components as they are.
func NewPersonFromRecord(rec Record, opts ...Option) (TestCase, error) {
	if rec.Kind != KindPerson {
		return TestCase{}, fmt.Errorf("record %d is a %s, not a person: %w", rec.ID, rec.Kind, ErrWrongCategory)
	}
	if strings.TrimSpace(rec.Person.Last) == "" {
		return TestCase{}, fmt.Errorf("person record %d has no last name: %w", rec.ID, ErrInvalidInput)
	}
	full := rec.Name
	if strings.TrimSpace(full) == "" {
		full = rec.Person.Full()
	}
	tc := TestCase{
		kind:   KindPerson,
		person: rec.Person,
		full:   full,
		record: &rec,
	}
	tc.apply(opts)
	return tc, nil
}

// FromRecord builds a test case of the record's own kind.
func FromRecord(rec Record, opts ...Option) (TestCase, error) {
	switch rec.Kind {
	case KindOrg:
		return NewOrgFromRecord(rec, opts...)
	case KindPerson:
		return NewPersonFromRecord(rec, opts...)
	}
	return TestCase{}, fmt.Errorf("record %d has no kind: %w", rec.ID, ErrWrongCategory)
}

func (tc *TestCase) apply(opts []Option) {
	var o testCaseOptions
	for _, opt := range opts {
		opt(&o)
	}

	ids := o.associated
	if !o.hasAssociated && tc.record != nil {
		ids = tc.record.RelatedIDs
	}
	tc.associated = uniqueIDs(ids)
	tc.keywords = o.keywords
}

// Kind returns whether this is an org or a person.
func (tc TestCase) Kind() Kind { return tc.kind }

// OrgName returns the parsed organization name. It is zero for people.
func (tc TestCase) OrgName() names.OrgName { return tc.org }

// PersonName returns the name components as given. It is zero for orgs.
func (tc TestCase) PersonName() names.PersonName { return tc.person }

// FullName returns the name as typed or as stored on the record.
func (tc TestCase) FullName() string { return tc.full }

// Record returns the source record, or nil when built from a name.
func (tc TestCase) Record() *Record { return tc.record }

// SourceID returns the id of the source record, if any.
func (tc TestCase) SourceID() (int64, bool) {
	if tc.record == nil {
		return 0, false
	}
	return tc.record.ID, true
}

// AssociatedIDs returns the related entity ids used for the common
// relationship signal.
func (tc TestCase) AssociatedIDs() []int64 { return slices.Clone(tc.associated) }

// Keywords returns the words searched for in candidate descriptions.
func (tc TestCase) Keywords() []string { return slices.Clone(tc.keywords) }

// Prefix returns the upper-cased name prefix.
func (tc TestCase) Prefix() string { return strings.ToUpper(tc.person.Prefix) }

// First returns the upper-cased first name.
func (tc TestCase) First() string { return strings.ToUpper(tc.person.First) }

// Middle returns the upper-cased middle name.
func (tc TestCase) Middle() string { return strings.ToUpper(tc.person.Middle) }

// Last returns the upper-cased last name.
func (tc TestCase) Last() string { return strings.ToUpper(tc.person.Last) }

// Suffix returns the upper-cased name suffix.
func (tc TestCase) Suffix() string { return strings.ToUpper(tc.person.Suffix) }

// Nick returns the upper-cased nickname.
func (tc TestCase) Nick() string { return strings.ToUpper(tc.person.Nick) }

// MiddleIsInitial reports whether the middle name is a single letter,
// ignoring periods.
func (tc TestCase) MiddleIsInitial() bool {
	return len([]rune(strings.ReplaceAll(tc.Middle(), ".", ""))) == 1
}

// MiddleInitial returns the first letter of the middle name, upper-cased.
func (tc TestCase) MiddleInitial() string {
	m := []rune(tc.Middle())
	if len(m) == 0 {
		return ""
	}
	return string(m[0])
}

// Query returns the search expression for this test case.
func (tc TestCase) Query() query.Expression {
	if tc.kind == KindPerson {
		return query.Person(tc.person, tc.full)
	}
	return query.Org(tc.org)
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
