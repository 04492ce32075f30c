package matching

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
)

func TestNewPerson(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    names.PersonName
		wantErr error
	}{
		{name: "first and last", raw: "Jane Doe", want: names.PersonName{First: "Jane", Last: "Doe"}},
		{name: "single word is a last name", raw: "Doe", want: names.PersonName{Last: "Doe"}},
		{name: "empty", raw: "   ", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := NewPerson(tt.raw)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, KindPerson, tc.Kind())
			assert.Equal(t, tt.want, tc.PersonName())
			_, hasSource := tc.SourceID()
			assert.False(t, hasSource)
		})
	}
}

func TestNewPersonFromName_RequiresFirstAndLast(t *testing.T) {
	tests := []struct {
		name  string
		input names.PersonName
	}{
		{name: "missing last", input: names.PersonName{First: "Jane"}},
		{name: "missing first", input: names.PersonName{Last: "Doe"}},
		{name: "blank parts", input: names.PersonName{First: " ", Last: " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPersonFromName(tt.input)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestFromRecord_WrongCategory(t *testing.T) {
	org := Record{ID: 1, Kind: KindOrg, Name: "Acme Corp"}
	person := personRecord(2, names.PersonName{First: "Jane", Last: "Doe"})

	_, err := NewPersonFromRecord(org)
	assert.True(t, errors.Is(err, ErrWrongCategory))

	_, err = NewOrgFromRecord(person)
	assert.True(t, errors.Is(err, ErrWrongCategory))

	_, err = FromRecord(Record{ID: 3})
	assert.True(t, errors.Is(err, ErrWrongCategory))

	_, err = NewPersonFromRecord(Record{ID: 4, Kind: KindPerson, Name: "Jane"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewPersonFromRecord_KeepsStoredComponents(t *testing.T) {
	stored := names.PersonName{Prefix: "Dr", First: "jane", Middle: "Q.", Last: "DOE", Suffix: "Jr", Nick: "JJ"}
	rec := personRecord(5, stored)

	tc, err := NewPersonFromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, stored, tc.PersonName())
	assert.Equal(t, "Dr jane Q. DOE Jr", tc.FullName())

	id, ok := tc.SourceID()
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)

	assert.Equal(t, "DR", tc.Prefix())
	assert.Equal(t, "JANE", tc.First())
	assert.Equal(t, "Q.", tc.Middle())
	assert.Equal(t, "DOE", tc.Last())
	assert.Equal(t, "JR", tc.Suffix())
	assert.Equal(t, "JJ", tc.Nick())
	assert.True(t, tc.MiddleIsInitial())
	assert.Equal(t, "Q", tc.MiddleInitial())
}

func TestTestCase_AssociatedIDs(t *testing.T) {
	rec := Record{ID: 1, Kind: KindOrg, Name: "Acme Corp", RelatedIDs: []int64{9, 3, 9}}

	tc, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, tc.AssociatedIDs())

	tc, err = FromRecord(rec, WithAssociated(4))
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, tc.AssociatedIDs())

	assert.Empty(t, NewOrg("Acme Corp").AssociatedIDs())
}

func TestTestCase_Query(t *testing.T) {
	tests := []struct {
		name string
		tc   func(t *testing.T) TestCase
		want query.Expression
	}{
		{
			name: "org",
			tc:   func(t *testing.T) TestCase { return NewOrg("American Green Tomatoes Corp") },
			want: "(*american* *green* *tomatoes* *corp*) | (american green tomatoes) | (green tomatoes)",
		},
		{
			name: "person with middle name",
			tc:   func(t *testing.T) TestCase { return mustPerson(t, "Jane Q Doe") },
			want: "(Jane Q Doe) | (Jane Doe)",
		},
		{
			name: "person from record uses stored name",
			tc: func(t *testing.T) TestCase {
				return mustRecord(t, Record{ID: 1, Kind: KindPerson, Name: "Dr. Jane Doe", Person: names.PersonName{Prefix: "Dr", First: "Jane", Last: "Doe"}})
			},
			want: "(Dr. Jane Doe) | (Dr Doe)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tc(t).Query())
		})
	}
}

func TestParsePerson_Idempotent(t *testing.T) {
	for _, raw := range []string{"Jane Q. Doe", "Doe, Jane", "Dr. Martin Luther King Jr.", "Ludwig van Beethoven"} {
		a, errA := NewPerson(raw)
		b, errB := NewPerson(raw)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a.PersonName(), b.PersonName(), raw)
	}
}
