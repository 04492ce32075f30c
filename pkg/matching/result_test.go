package matching

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustResult(t *testing.T, kind Kind, id int64, signals map[SignalName]Signal) Result {
	t.Helper()
	r, err := NewResult(kind, signals, &Record{ID: id, Kind: kind})
	require.NoError(t, err)
	return r
}

func ids(results []Result) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.CandidateID()
	}
	return out
}

func TestNewResult_RejectsForeignSignals(t *testing.T) {
	_, err := NewResult(KindOrg, map[SignalName]Signal{SameFirstName: True}, nil)
	assert.True(t, errors.Is(err, ErrUnknownSignal))

	_, err = NewResult(KindPerson, map[SignalName]Signal{MatchesAlias: True}, nil)
	assert.True(t, errors.Is(err, ErrUnknownSignal))

	_, err = NewResult(Kind(0), nil, nil)
	assert.True(t, errors.Is(err, ErrUnknownSignal))
}

func TestResult_Automatch(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		signals map[SignalName]Signal
		want    bool
	}{
		{name: "org alias", kind: KindOrg, signals: map[SignalName]Signal{MatchesAlias: True}, want: true},
		{name: "org same root only", kind: KindOrg, signals: map[SignalName]Signal{SameRoot: True}, want: false},
		{name: "org same name only", kind: KindOrg, signals: map[SignalName]Signal{SameName: True, SameRoot: True}, want: false},
		{
			name: "person clean match",
			kind: KindPerson,
			signals: map[SignalName]Signal{
				SameFirstName: True, SameLastName: True, CommonLastName: False,
				MismatchedMiddleName: False,
			},
			want: true,
		},
		{
			name: "person common last name",
			kind: KindPerson,
			signals: map[SignalName]Signal{
				SameFirstName: True, SameLastName: True, CommonLastName: True,
			},
			want: false,
		},
		{
			name: "person common last name unknown",
			kind: KindPerson,
			signals: map[SignalName]Signal{
				SameFirstName: True, SameLastName: True,
			},
			want: false,
		},
		{
			name: "person mismatched suffix",
			kind: KindPerson,
			signals: map[SignalName]Signal{
				SameFirstName: True, SameLastName: True, CommonLastName: False,
				MismatchedSuffix: True,
			},
			want: false,
		},
		{
			name: "person mismatched middle",
			kind: KindPerson,
			signals: map[SignalName]Signal{
				SameFirstName: True, SameLastName: True, CommonLastName: False,
				MismatchedMiddleName: True,
			},
			want: false,
		},
		{
			name: "person similar first",
			kind: KindPerson,
			signals: map[SignalName]Signal{
				SimilarFirstName: True, SameLastName: True, CommonLastName: False,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustResult(t, tt.kind, 1, tt.signals)
			assert.Equal(t, tt.want, r.Automatch())
		})
	}
}

func TestResult_SignalsAndValues(t *testing.T) {
	r := mustResult(t, KindOrg, 3, map[SignalName]Signal{
		SameRoot:    True,
		SameName:    False,
		SimilarRoot: Unknown,
	})

	assert.Equal(t, map[SignalName]Signal{SameRoot: True, SameName: False}, r.Signals())
	assert.Equal(t, []SignalName{SameRoot}, r.Values())
	assert.Equal(t, "org[same_root]", r.String())
}

func TestResult_MarshalJSON(t *testing.T) {
	r := mustResult(t, KindOrg, 3, map[SignalName]Signal{MatchesAlias: True, SameName: False})

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded struct {
		Kind        string           `json:"kind"`
		CandidateID int64            `json:"candidate_id"`
		Automatch   bool             `json:"automatch"`
		Tier        string           `json:"tier"`
		Signals     map[string]*bool `json:"signals"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "org", decoded.Kind)
	assert.Equal(t, int64(3), decoded.CandidateID)
	assert.True(t, decoded.Automatch)
	assert.Equal(t, "alias", decoded.Tier)
	assert.Len(t, decoded.Signals, len(OrgSignals))
	require.NotNil(t, decoded.Signals["matches_alias"])
	assert.True(t, *decoded.Signals["matches_alias"])
	require.NotNil(t, decoded.Signals["same_name"])
	assert.False(t, *decoded.Signals["same_name"])
	assert.Nil(t, decoded.Signals["same_root"])
}

func TestResultSet_Automatch(t *testing.T) {
	alias := map[SignalName]Signal{MatchesAlias: True}
	root := map[SignalName]Signal{SameRoot: True}

	t.Run("empty set", func(t *testing.T) {
		set := NewResultSet(nil)
		_, ok := set.Automatch()
		assert.False(t, ok)
		assert.Equal(t, Unknown, set.Automatchable())
	})

	t.Run("exactly one automatch", func(t *testing.T) {
		set := NewResultSet([]Result{
			mustResult(t, KindOrg, 1, root),
			mustResult(t, KindOrg, 2, alias),
		})
		r, ok := set.Automatch()
		require.True(t, ok)
		assert.Equal(t, int64(2), r.CandidateID())
		assert.Equal(t, True, set.Automatchable())
	})

	t.Run("two automatches are ambiguous", func(t *testing.T) {
		set := NewResultSet([]Result{
			mustResult(t, KindOrg, 1, alias),
			mustResult(t, KindOrg, 2, alias),
		})
		_, ok := set.Automatch()
		assert.False(t, ok)
		assert.Equal(t, False, set.Automatchable())
	})

	t.Run("no automatch", func(t *testing.T) {
		set := NewResultSet([]Result{mustResult(t, KindOrg, 1, root)})
		_, ok := set.Automatch()
		assert.False(t, ok)
		assert.Equal(t, False, set.Automatchable())
	})
}

func personSortFixture(t *testing.T) []Result {
	return []Result{
		mustResult(t, KindPerson, 1, map[SignalName]Signal{SameFirstName: True, SameLastName: True, SameMiddleName: True, CommonRelationship: True}),
		mustResult(t, KindPerson, 2, map[SignalName]Signal{SameFirstName: True, SameLastName: True, BlurbKeyword: True}),
		mustResult(t, KindPerson, 3, map[SignalName]Signal{SameFirstName: True, SameLastName: True, SameMiddleName: True}),
		mustResult(t, KindPerson, 4, map[SignalName]Signal{SameFirstName: True, SameLastName: True}),
		mustResult(t, KindPerson, 5, map[SignalName]Signal{SameFirstName: True, SimilarLastName: True}),
		mustResult(t, KindPerson, 6, map[SignalName]Signal{SimilarFirstName: True, SameLastName: True}),
		mustResult(t, KindPerson, 7, map[SignalName]Signal{SimilarFirstName: True, SimilarLastName: True}),
		mustResult(t, KindPerson, 8, map[SignalName]Signal{SameLastName: True, CommonRelationship: True}),
		mustResult(t, KindPerson, 9, map[SignalName]Signal{SameLastName: True}),
		mustResult(t, KindPerson, 10, map[SignalName]Signal{SameLastName: True, CommonLastName: True}),
		mustResult(t, KindPerson, 11, map[SignalName]Signal{SimilarLastName: True}),
		mustResult(t, KindPerson, 12, map[SignalName]Signal{SameFirstName: False}),
	}
}

func orgSortFixture(t *testing.T) []Result {
	return []Result{
		mustResult(t, KindOrg, 1, map[SignalName]Signal{SameName: True, CommonRelationship: True}),
		mustResult(t, KindOrg, 2, map[SignalName]Signal{MatchesAlias: True, BlurbKeyword: True}),
		mustResult(t, KindOrg, 3, map[SignalName]Signal{SameName: True}),
		mustResult(t, KindOrg, 4, map[SignalName]Signal{MatchesAlias: True}),
		mustResult(t, KindOrg, 5, map[SignalName]Signal{SimilarName: True, CommonRelationship: True}),
		mustResult(t, KindOrg, 6, map[SignalName]Signal{SameRoot: True, BlurbKeyword: True}),
		mustResult(t, KindOrg, 7, map[SignalName]Signal{SimilarRoot: True, CommonRelationship: True}),
		mustResult(t, KindOrg, 8, map[SignalName]Signal{SimilarName: True}),
		mustResult(t, KindOrg, 9, map[SignalName]Signal{SameRoot: True}),
		mustResult(t, KindOrg, 10, map[SignalName]Signal{SimilarRoot: True}),
		mustResult(t, KindOrg, 11, map[SignalName]Signal{SameName: False}),
	}
}

func TestResultSet_SortOrder(t *testing.T) {
	tests := []struct {
		name    string
		fixture func(t *testing.T) []Result
		want    []int64
	}{
		{name: "people", fixture: personSortFixture, want: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{name: "orgs", fixture: orgSortFixture, want: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := tt.fixture(t)
			assert.Equal(t, tt.want, ids(NewResultSet(results).ToSortedList()))

			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 25; i++ {
				shuffled := append([]Result(nil), results...)
				rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
				assert.Equal(t, tt.want, ids(NewResultSet(shuffled).ToSortedList()))
			}
		})
	}
}

// ranked builds results whose ids follow their position, each with the
// given signals set to True.
func ranked(t *testing.T, kind Kind, rows ...[]SignalName) []Result {
	t.Helper()
	out := make([]Result, len(rows))
	for i, row := range rows {
		signals := make(map[SignalName]Signal, len(row))
		for _, name := range row {
			signals[name] = True
		}
		out[i] = mustResult(t, kind, int64(i+1), signals)
	}
	return out
}

func TestResultSet_RankingLadders(t *testing.T) {
	type row = []SignalName
	const (
		sf  = SameFirstName
		imf = SimilarFirstName
		sl  = SameLastName
		iml = SimilarLastName
		sm  = SameMiddleName
		sp  = SamePrefix
		ss  = SameSuffix
		cr  = CommonRelationship
		bk  = BlurbKeyword
	)

	tests := []struct {
		name string
		kind Kind
		rows []row
	}{
		{
			name: "same first and same last",
			kind: KindPerson,
			rows: []row{
				{sf, sl, sm, cr},
				{sf, sl, cr},
				{sf, sl, bk},
				{sf, sl, sm, sp, ss},
				{sf, sl, sm, sp},
				{sf, sl, sm},
				{sf, iml, ss},
			},
		},
		{
			name: "same first and similar last",
			kind: KindPerson,
			rows: []row{
				{sf, iml, sm, sp, cr},
				{sf, iml, cr},
				{sf, iml, sm, sp, bk},
				{sf, iml, ss, bk},
				{sf, iml, bk},
				{sf, iml, sm, sp, ss},
				{sf, iml},
			},
		},
		{
			name: "similar first and similar last",
			kind: KindPerson,
			rows: []row{
				{sf, sl},
				{sf, iml},
				{imf, iml, cr, bk},
				{imf, iml, sm, sp, cr},
				{imf, iml, cr},
				{imf, iml, sm, sp, bk},
				{imf, iml, ss, bk},
				{imf, iml, bk},
				{imf, iml, sm, sp, ss},
				{imf, iml},
			},
		},
		{
			name: "same last and similar last",
			kind: KindPerson,
			rows: []row{
				{sl, bk, cr},
				{sl, cr},
				{sl, cr},
				{sl, ss, bk},
				{sl, bk},
				{sl, sm, sp},
				{sl, ss},
				{sl, ss},
				{iml, bk},
				{iml, sm, sp},
				{iml},
				{iml},
				{bk, sf},
			},
		},
		{
			name: "people from every tier",
			kind: KindPerson,
			rows: []row{
				{sf, sl, sm, cr},
				{sf, sl, cr},
				{sf, sl, bk},
				{sf, sl, sm, sp, ss},
				{sf, iml, cr},
				{sf, iml, bk},
				{sf, iml},
				{imf, iml, bk},
				{imf, iml, sm},
				{imf, iml},
				{sl, ss, bk},
				{sl, sm, sp},
				{iml, bk},
				{iml},
				{bk, cr},
				{cr},
				{bk},
				{sm},
			},
		},
		{
			name: "orgs from every tier",
			kind: KindOrg,
			rows: []row{
				{SameName, cr, bk},
				{SameName, SimilarName, bk},
				{MatchesAlias, SimilarName, bk, cr},
				{SameName},
				{MatchesAlias, SimilarName},
				{SimilarName, cr},
				{SameRoot, bk},
				{SimilarRoot, cr},
				{SimilarName},
				{SameRoot},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := ranked(t, tt.kind, tt.rows...)
			want := ids(results)

			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 10; i++ {
				shuffled := append([]Result(nil), results...)
				rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
				assert.Equal(t, want, ids(NewResultSet(shuffled).ToSortedList()))
			}
		})
	}
}

func TestResultSet_EqualSignalsOrderedByID(t *testing.T) {
	signals := map[SignalName]Signal{SameLastName: True}
	a := mustResult(t, KindPerson, 20, signals)
	b := mustResult(t, KindPerson, 10, signals)

	assert.True(t, a.Equal(b))
	assert.Equal(t, []int64{10, 20}, ids(NewResultSet([]Result{a, b}).ToSortedList()))
	assert.Equal(t, []int64{10, 20}, ids(NewResultSet([]Result{b, a}).ToSortedList()))
}

func TestResultSet_DoesNotModifyInput(t *testing.T) {
	input := []Result{
		mustResult(t, KindOrg, 2, map[SignalName]Signal{SameRoot: True}),
		mustResult(t, KindOrg, 1, map[SignalName]Signal{SameName: True}),
	}
	set := NewResultSet(input)

	assert.Equal(t, []int64{2, 1}, ids(input))
	assert.Equal(t, []int64{1, 2}, ids(set.ToSortedList()))
	assert.Equal(t, 2, set.Len())
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		signals map[SignalName]Signal
		want    string
	}{
		{name: "person exact", kind: KindPerson, signals: map[SignalName]Signal{SameFirstName: True, SameLastName: True}, want: "same_first_same_last"},
		{name: "person similar last wins over same last alone", kind: KindPerson, signals: map[SignalName]Signal{SameFirstName: True, SimilarLastName: True}, want: "same_first_similar_last"},
		{name: "person last only", kind: KindPerson, signals: map[SignalName]Signal{SameLastName: True}, want: "same_last"},
		{name: "person nothing", kind: KindPerson, signals: nil, want: "other"},
		{name: "org corroborated name", kind: KindOrg, signals: map[SignalName]Signal{SameName: True, BlurbKeyword: True}, want: "same_name_corroborated"},
		{name: "org alias", kind: KindOrg, signals: map[SignalName]Signal{MatchesAlias: True}, want: "alias"},
		{name: "org root", kind: KindOrg, signals: map[SignalName]Signal{SameRoot: True}, want: "same_root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tier := TierOf(mustResult(t, tt.kind, 1, tt.signals))
			assert.Equal(t, tt.want, tier.Name)
		})
	}
}
