package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/names"
)

func personRecord(id int64, name names.PersonName) Record {
	return Record{ID: id, Kind: KindPerson, Name: name.Full(), Person: name}
}

func mustPerson(t *testing.T, raw string, opts ...Option) TestCase {
	t.Helper()
	tc, err := NewPerson(raw, opts...)
	require.NoError(t, err)
	return tc
}

func mustPersonName(t *testing.T, name names.PersonName, opts ...Option) TestCase {
	t.Helper()
	tc, err := NewPersonFromName(name, opts...)
	require.NoError(t, err)
	return tc
}

func mustRecord(t *testing.T, rec Record) TestCase {
	t.Helper()
	tc, err := FromRecord(rec)
	require.NoError(t, err)
	return tc
}

func TestEvaluator_Org(t *testing.T) {
	ev := NewEvaluator(NewScorer(DefaultScorerConfig()), nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		tc        TestCase
		candidate Record
		want      map[SignalName]Signal
		automatch bool
	}{
		{
			name: "alias match",
			tc:   NewOrg("SimpleCorp LLC"),
			candidate: Record{
				ID: 2, Kind: KindOrg, Name: "SimpleCorp Inc",
				Aliases: []string{"SimpleCorp, LLC"},
			},
			want: map[SignalName]Signal{
				SameName:     False,
				SimilarName:  True,
				SameRoot:     True,
				SimilarRoot:  False,
				MatchesAlias: True,
			},
			automatch: true,
		},
		{
			name:      "same name without aliases",
			tc:        NewOrg("Acme Widgets Inc."),
			candidate: Record{ID: 3, Kind: KindOrg, Name: "ACME WIDGETS INC"},
			want: map[SignalName]Signal{
				SameName:     True,
				SimilarName:  False,
				SameRoot:     True,
				SimilarRoot:  False,
				MatchesAlias: Unknown,
			},
		},
		{
			name: "aliases that do not match",
			tc:   NewOrg("Acme Widgets"),
			candidate: Record{
				ID: 4, Kind: KindOrg, Name: "Acme Gadgets",
				Aliases: []string{"Gadget Co"},
			},
			want: map[SignalName]Signal{
				SameName:     False,
				MatchesAlias: False,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ev.Evaluate(ctx, tt.tc, mustRecord(t, tt.candidate))
			require.NoError(t, err)

			for name, want := range tt.want {
				assert.Equal(t, want, r.Get(name), name)
			}
			assert.Equal(t, tt.automatch, r.Automatch())
			assert.Equal(t, tt.candidate.ID, r.CandidateID())
			assert.Equal(t, Unknown, r.Get(CommonRelationship))
			assert.Equal(t, Unknown, r.Get(BlurbKeyword))
		})
	}
}

func TestEvaluator_Person(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		tc          func(t *testing.T) TestCase
		candidate   names.PersonName
		commonNames []string
		want        map[SignalName]Signal
		automatch   bool
	}{
		{
			name:      "same last name only",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "jane doe") },
			candidate: names.PersonName{First: "John", Last: "Doe"},
			want: map[SignalName]Signal{
				SameLastName:         True,
				SameFirstName:        False,
				SimilarFirstName:     False,
				DifferentMiddleName:  False,
				MismatchedMiddleName: False,
				MismatchedSuffix:     Unknown,
				CommonLastName:       False,
			},
		},
		{
			name:        "common last name blocks automatch",
			tc:          func(t *testing.T) TestCase { return mustPerson(t, "jane doe") },
			candidate:   names.PersonName{First: "Jane", Last: "Doe"},
			commonNames: []string{"doe"},
			want: map[SignalName]Signal{
				SameFirstName:  True,
				SameLastName:   True,
				CommonLastName: True,
			},
		},
		{
			name:        "common name unknown when last names differ",
			tc:          func(t *testing.T) TestCase { return mustPerson(t, "jane doe") },
			candidate:   names.PersonName{First: "Jane", Last: "Uncommon"},
			commonNames: []string{"uncommon"},
			want: map[SignalName]Signal{
				SameLastName:   False,
				CommonLastName: Unknown,
			},
		},
		{
			name:      "exact match automatches",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "Jane Doe") },
			candidate: names.PersonName{First: "Jane", Last: "Doe"},
			want: map[SignalName]Signal{
				SameFirstName:        True,
				SameLastName:         True,
				SimilarFirstName:     False,
				SimilarLastName:      False,
				MismatchedMiddleName: False,
				CommonLastName:       False,
			},
			automatch: true,
		},
		{
			name:      "similar first name",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "Jon Doe") },
			candidate: names.PersonName{First: "John", Last: "Doe"},
			want: map[SignalName]Signal{
				SameFirstName:    False,
				SimilarFirstName: True,
				SameLastName:     True,
			},
		},
		{
			name: "middle initial matches full middle name",
			tc: func(t *testing.T) TestCase {
				return mustPersonName(t, names.PersonName{First: "Jane", Middle: "Q.", Last: "Doe"})
			},
			candidate: names.PersonName{First: "Jane", Middle: "Quincy", Last: "Doe"},
			want: map[SignalName]Signal{
				SameMiddleName:       True,
				DifferentMiddleName:  False,
				MismatchedMiddleName: False,
			},
			automatch: true,
		},
		{
			name: "different full middle names",
			tc: func(t *testing.T) TestCase {
				return mustPersonName(t, names.PersonName{First: "Jane", Middle: "Ann", Last: "Doe"})
			},
			candidate: names.PersonName{First: "Jane", Middle: "Beth", Last: "Doe"},
			want: map[SignalName]Signal{
				SameMiddleName:       False,
				DifferentMiddleName:  True,
				MismatchedMiddleName: True,
			},
		},
		{
			name: "conflicting initials are not different",
			tc: func(t *testing.T) TestCase {
				return mustPersonName(t, names.PersonName{First: "Jane", Middle: "A", Last: "Doe"})
			},
			candidate: names.PersonName{First: "Jane", Middle: "B", Last: "Doe"},
			want: map[SignalName]Signal{
				SameMiddleName:       False,
				DifferentMiddleName:  False,
				MismatchedMiddleName: True,
			},
		},
		{
			name:      "middle name on one side",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "Jane Doe") },
			candidate: names.PersonName{First: "Jane", Middle: "Quincy", Last: "Doe"},
			want: map[SignalName]Signal{
				SameMiddleName:       Unknown,
				DifferentMiddleName:  False,
				MismatchedMiddleName: True,
			},
		},
		{
			name:      "mismatched suffixes",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "John Smith Jr") },
			candidate: names.PersonName{First: "John", Last: "Smith", Suffix: "Sr"},
			want: map[SignalName]Signal{
				SameSuffix:           False,
				MismatchedSuffix:     True,
				MismatchedMiddleName: True,
			},
		},
		{
			name:      "same suffix",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "John Smith Jr.") },
			candidate: names.PersonName{First: "John", Last: "Smith", Suffix: "JR"},
			want: map[SignalName]Signal{
				SameSuffix:           True,
				MismatchedSuffix:     False,
				MismatchedMiddleName: False,
			},
			automatch: true,
		},
		{
			name:      "suffix on one side",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "John Smith") },
			candidate: names.PersonName{First: "John", Last: "Smith", Suffix: "Jr"},
			want: map[SignalName]Signal{
				SameSuffix:           Unknown,
				MismatchedSuffix:     Unknown,
				MismatchedMiddleName: True,
			},
		},
		{
			name:      "prefixes compared when both present",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "Dr. Jane Doe") },
			candidate: names.PersonName{Prefix: "Dr.", First: "Jane", Last: "Doe"},
			want: map[SignalName]Signal{
				SamePrefix: True,
			},
			automatch: true,
		},
		{
			name:      "prefix on one side",
			tc:        func(t *testing.T) TestCase { return mustPerson(t, "Jane Doe") },
			candidate: names.PersonName{Prefix: "Dr.", First: "Jane", Last: "Doe"},
			want: map[SignalName]Signal{
				SamePrefix: Unknown,
			},
			automatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(NewScorer(DefaultScorerConfig()), newFakeCommonNames(tt.commonNames...))

			r, err := ev.Evaluate(ctx, tt.tc(t), mustRecord(t, personRecord(9, tt.candidate)))
			require.NoError(t, err)

			for name, want := range tt.want {
				assert.Equal(t, want, r.Get(name), name)
			}
			assert.Equal(t, tt.automatch, r.Automatch(), r.String())
		})
	}
}

func TestEvaluator_Context(t *testing.T) {
	ev := NewEvaluator(NewScorer(DefaultScorerConfig()), nil)
	ctx := context.Background()

	candidate := mustRecord(t, Record{
		ID:         7,
		Kind:       KindOrg,
		Name:       "Exxon Mobil Corp",
		RelatedIDs: []int64{40, 41},
		Blurb:      "Oil and gas producer",
	})

	tests := []struct {
		name         string
		tc           TestCase
		relationship Signal
		keyword      Signal
	}{
		{name: "no context", tc: NewOrg("Exxon"), relationship: Unknown, keyword: Unknown},
		{name: "shared relationship", tc: NewOrg("Exxon", WithAssociated(41, 99)), relationship: True, keyword: Unknown},
		{name: "no shared relationship", tc: NewOrg("Exxon", WithAssociated(99)), relationship: False, keyword: Unknown},
		{name: "keyword in blurb", tc: NewOrg("Exxon", WithKeywords("OIL")), relationship: Unknown, keyword: True},
		{name: "keyword missing", tc: NewOrg("Exxon", WithKeywords("software")), relationship: Unknown, keyword: False},
		{name: "blank keywords ignored", tc: NewOrg("Exxon", WithKeywords(" ", "")), relationship: Unknown, keyword: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ev.Evaluate(ctx, tt.tc, candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.relationship, r.Get(CommonRelationship))
			assert.Equal(t, tt.keyword, r.Get(BlurbKeyword))
		})
	}
}

func TestEvaluator_RecordRelationshipsSeedContext(t *testing.T) {
	ev := NewEvaluator(NewScorer(DefaultScorerConfig()), nil)

	source := mustRecord(t, Record{ID: 1, Kind: KindOrg, Name: "Acme Corp", RelatedIDs: []int64{5}})
	candidate := mustRecord(t, Record{ID: 2, Kind: KindOrg, Name: "Acme Co", RelatedIDs: []int64{5, 6}})

	r, err := ev.Evaluate(context.Background(), source, candidate)
	require.NoError(t, err)
	assert.Equal(t, True, r.Get(CommonRelationship))
	assert.Equal(t, True, r.Get(SameRoot))
}

func TestEvaluator_Errors(t *testing.T) {
	ctx := context.Background()
	person := mustPerson(t, "Jane Doe")

	t.Run("variant mismatch", func(t *testing.T) {
		ev := NewEvaluator(NewScorer(DefaultScorerConfig()), nil)

		_, err := ev.Evaluate(ctx, person, NewOrg("Doe Industries"))
		assert.True(t, errors.Is(err, ErrVariantMismatch))

		_, err = ev.Evaluate(ctx, NewOrg("Doe Industries"), person)
		assert.True(t, errors.Is(err, ErrVariantMismatch))
	})

	t.Run("common name lookup failure", func(t *testing.T) {
		ev := NewEvaluator(NewScorer(DefaultScorerConfig()), &fakeCommonNames{err: errBoom})

		_, err := ev.Evaluate(ctx, person, mustPerson(t, "John Doe"))
		assert.True(t, errors.Is(err, errBoom))
	})
}
