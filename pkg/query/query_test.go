package query

import (
	"testing"

	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/stretchr/testify/assert"
)

func TestOrg(t *testing.T) {
	tests := []struct {
		input    string
		expected Expression
	}{
		{"simplecorp", "(*simplecorp*)"},
		{"SimpleCorp llc", "(*simplecorp* *llc*) | (simplecorp)"},
		{"American Green Tomatoes Corp", "(*american* *green* *tomatoes* *corp*) | (american green tomatoes) | (green tomatoes)"},
		{"Green Tomatoes of Springfield", "(*green* *tomatoes* *of* *springfield*) | (green tomatoes springfield)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Org(names.ParseOrg(tt.input)))
		})
	}
}

func TestPerson(t *testing.T) {
	tests := []struct {
		name     string
		person   names.PersonName
		full     string
		expected Expression
	}{
		{
			name:     "first and last only",
			person:   names.PersonName{First: "Jane", Last: "Doe"},
			full:     "Jane Doe",
			expected: "(Jane Doe)",
		},
		{
			name:     "with middle",
			person:   names.PersonName{First: "Jane", Middle: "Quinn", Last: "Doe"},
			full:     "Jane Quinn Doe",
			expected: "(Jane Quinn Doe) | (Jane Doe)",
		},
		{
			name:     "with middle and suffix",
			person:   names.PersonName{First: "Jane", Middle: "Quinn", Last: "Doe", Suffix: "Jr"},
			full:     "Jane Quinn Doe Jr",
			expected: "(Jane Quinn Doe Jr) | (Jane Doe) | (Jane Doe Jr)",
		},
		{
			name:     "with middle, prefix and suffix",
			person:   names.PersonName{Prefix: "Dr", First: "Jane", Middle: "Quinn", Last: "Doe", Suffix: "Jr"},
			full:     "Dr Jane Quinn Doe Jr",
			expected: "(Dr Jane Quinn Doe Jr) | (Jane Doe) | (Jane Doe Jr) | (Dr Doe)",
		},
		{
			name:     "suffix without middle",
			person:   names.PersonName{First: "Jane", Last: "Doe", Suffix: "III"},
			full:     "Jane Doe III",
			expected: "(Jane Doe III) | (Jane Doe III)",
		},
		{
			name:     "full name derived when blank",
			person:   names.PersonName{First: "Jane", Middle: "Q", Last: "Doe"},
			expected: "(Jane Q Doe) | (Jane Doe)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Person(tt.person, tt.full))
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, Expression("(*Thoreau*)"), Names("Thoreau"))
	assert.Equal(t, Expression("(*bob*) | (*alice*)"), Names("bob", "alice"))
	assert.Equal(t, Expression("(*bob*)"), Names("bob", "  "))
	assert.True(t, Names().IsEmpty())
}

func TestExpression_Clauses(t *testing.T) {
	e := Expression("(*simplecorp* *llc*) | (simplecorp)")
	assert.Equal(t, []string{"*simplecorp* *llc*", "simplecorp"}, e.Clauses())
	assert.Nil(t, Expression("").Clauses())
	assert.Equal(t, "(*a*)", Names("a").String())
}
