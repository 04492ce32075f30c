package names

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrg(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		clean     string
		root      string
		suffix    string
		essential []string
	}{
		{
			name:      "suffix acronym",
			input:     "SimpleCorp LLC",
			clean:     "simplecorp llc",
			root:      "simplecorp",
			suffix:    "LLC",
			essential: []string{"simplecorp"},
		},
		{
			name:      "no suffix",
			input:     "simplecorp",
			clean:     "simplecorp",
			root:      "simplecorp",
			essential: []string{"simplecorp"},
		},
		{
			name:      "common words are not essential",
			input:     "American Green Tomatoes Corp",
			clean:     "american green tomatoes corp",
			root:      "american green tomatoes",
			suffix:    "Corp",
			essential: []string{"green", "tomatoes"},
		},
		{
			name:      "suffix followed by punctuation",
			input:     "  Acme Widgets, Inc.  ",
			clean:     "acme widgets inc",
			root:      "acme widgets",
			suffix:    "Inc",
			essential: []string{"acme", "widgets"},
		},
		{
			name:      "longest suffix wins",
			input:     "Murdoch Holdings Limited",
			clean:     "murdoch holdings limited",
			root:      "murdoch",
			suffix:    "Holdings Limited",
			essential: []string{"murdoch"},
		},
		{
			name:      "suffix matched case-insensitively",
			input:     "abc company",
			clean:     "abc company",
			root:      "abc",
			suffix:    "Company",
			essential: []string{"abc"},
		},
		{
			name:      "a lone suffix word is the name itself",
			input:     "Group",
			clean:     "group",
			root:      "group",
			essential: []string{},
		},
		{
			name:      "domain dots are kept",
			input:     "Example.com Inc.",
			clean:     "example.com inc",
			root:      "example.com",
			suffix:    "Inc",
			essential: []string{"example.com"},
		},
		{
			name:      "grammar words and duplicates dropped",
			input:     "The Bank of the Bank of Springfield",
			clean:     "the bank of the bank of springfield",
			root:      "the bank of the bank of springfield",
			essential: []string{"springfield"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOrg(tt.input)
			assert.Equal(t, tt.input, got.Original)
			assert.Equal(t, tt.clean, got.Clean)
			assert.Equal(t, tt.root, got.Root)
			assert.Equal(t, tt.suffix, got.Suffix)
			assert.Equal(t, tt.suffix != "", got.HasSuffix())
			if len(tt.essential) == 0 {
				assert.Empty(t, got.EssentialWords)
			} else {
				assert.Equal(t, tt.essential, got.EssentialWords)
			}
		})
	}
}

func TestParseOrg_CleanInvariants(t *testing.T) {
	inputs := []string{
		`"Star"  Widgets,, Inc.`,
		"***Top   Tier*** LLC",
		"Dots.Everywhere.Co.",
		"  Tabs\tand\t\tspaces Corp  ",
		`Quote "Unquote", Ltd.,`,
		"Acme.net Services",
		"",
	}

	for _, input := range inputs {
		got := ParseOrg(input)
		assert.NotContains(t, got.Clean, ",", input)
		assert.NotContains(t, got.Clean, `"`, input)
		assert.NotContains(t, got.Clean, "*", input)
		assert.NotContains(t, got.Clean, "  ", input)
		assert.Equal(t, strings.TrimSpace(got.Clean), got.Clean, input)
		if got.Suffix != "" {
			assert.True(t, IsCorporateSuffix(got.Suffix), input)
			assert.Contains(t, CorporateSuffixes, got.Suffix, input)
		}
	}
}

func TestFormatOrg(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simplecorp llc", "Simplecorp LLC"},
		{"AMERICAN GREEN TOMATOES CORP", "American Green Tomatoes Corp"},
		{"coca-cola enterprises", "Coca-Cola Enterprises"},
		{"at-t company", "At-t Company"},
		{"smith and jones llp", "Smith And Jones LLP"},
		{"pa", "Pa"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatOrg(tt.input))
		})
	}
}

func TestStripPunctuation(t *testing.T) {
	assert.Equal(t, "ABC Company", StripPunctuation("A.B.C. Company"))
	assert.Equal(t, "example.org Foundation", StripPunctuation("example.org Foundation."))
	assert.Equal(t, "Big Top", StripPunctuation(`"Big, *Top*"`))
	assert.Equal(t, "Spaced Out", StripPunctuation("  Spaced    Out "))
}

func TestChain(t *testing.T) {
	fn := Chain("fold", "uppercase", "unknown")
	assert.Equal(t, "JOSE MARTI", fn("José Martí"))

	_, ok := Get("fold")
	assert.True(t, ok)
	_, ok = Get("nope")
	assert.False(t, ok)
}
