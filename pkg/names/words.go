package names

import (
	"slices"
	"strings"
)

// CorporateSuffixes is the ordered list of trailing tokens recognized as an
// organization's legal or descriptive suffix.
var CorporateSuffixes = []string{
	"Inc",
	"Incorporated",
	"Company",
	"Co",
	"Cos",
	"Corp",
	"Corporation",
	"LLP",
	"LLC",
	"LP",
	"PLC",
	"PA",
	"SA",
	"Chtd",
	"GMBH",
	"Chartered",
	"Companies",
	"Bancorp",
	"Bancorporation",
	"Ins",
	"Stores",
	"Holdings",
	"Holdings Limited",
	"Company Limited",
	"Group",
	"Limited",
	"Ltd",
	"Trust",
	"Fund",
	"Solutions",
	"Services",
	"Partners",
	"Enterprises",
	"Committee",
	"Industries",
	"Communications",
	"Systems",
}

// SuffixAcronyms are suffixes that are always written in capitals.
var SuffixAcronyms = []string{"LLP", "LLC", "LP", "PLC", "PA", "SA"}

// GrammarWords carry no identifying weight in an organization name.
var GrammarWords = []string{"And", "Of", "The"}

// CommonWords are business terms too frequent to identify an organization.
var CommonWords = []string{
	"American",
	"Bank",
	"Financial",
	"Holding",
	"Insurance",
	"International",
	"Equity",
	"Restaurants",
	"Energy",
	"Air",
	"Consulting",
	"Development",
	"Management",
	"Realty",
	"Health",
	"Medical",
	"Center",
	"Corporate",
	"Business",
	"Service",
	"Worldwide",
	"National",
	"Political",
	"Action",
	"PAC",
	"Campaign",
	"Country",
	"First",
}

// PersonPrefixes are honorifics recognized at the start of a person's name.
var PersonPrefixes = []string{
	"Mr", "Mrs", "Ms", "Miss", "Mx", "Dr", "Hon", "Rev", "Sen", "Rep",
	"Gov", "Prof", "Gen", "Col", "Capt", "Judge", "Sir", "Dame",
}

// PersonSuffixes are generational and professional suffixes recognized at the
// end of a person's name, keyed by their lowercase spelling.
var PersonSuffixes = map[string]string{
	"jr":  "Jr",
	"sr":  "Sr",
	"ii":  "II",
	"iii": "III",
	"iv":  "IV",
	"v":   "V",
	"vi":  "VI",
	"md":  "MD",
	"phd": "PhD",
	"esq": "Esq",
	"cpa": "CPA",
	"dds": "DDS",
}

// lastNameParticles join the following token to form a compound last name.
var lastNameParticles = map[string]bool{
	"van": true, "von": true, "der": true, "de": true, "del": true, "della": true,
	"di": true, "da": true, "du": true, "la": true, "le": true, "st": true,
	"bin": true, "ibn": true, "al": true, "ter": true, "ten": true,
}

var (
	suffixesByLength []string
	commonWordSet    map[string]struct{}
	prefixSet        map[string]string
	acronymSet       map[string]struct{}
)

func init() {
	// longest first so "Holdings Limited" wins over "Limited"
	suffixesByLength = slices.Clone(CorporateSuffixes)
	slices.SortStableFunc(suffixesByLength, func(a, b string) int {
		return len(b) - len(a)
	})

	commonWordSet = make(map[string]struct{})
	for _, list := range [][]string{GrammarWords, CorporateSuffixes, CommonWords} {
		for _, w := range list {
			commonWordSet[strings.ToLower(w)] = struct{}{}
		}
	}

	prefixSet = make(map[string]string, len(PersonPrefixes))
	for _, p := range PersonPrefixes {
		prefixSet[strings.ToLower(p)] = p
	}

	acronymSet = make(map[string]struct{}, len(SuffixAcronyms))
	for _, a := range SuffixAcronyms {
		acronymSet[strings.ToLower(a)] = struct{}{}
	}
}

// IsCommonWord reports whether a lowercase token is a grammar word, a
// corporate suffix or a common business term.
func IsCommonWord(word string) bool {
	_, ok := commonWordSet[strings.ToLower(word)]
	return ok
}

// IsCorporateSuffix reports whether s is one of CorporateSuffixes, ignoring case.
func IsCorporateSuffix(s string) bool {
	for _, suffix := range CorporateSuffixes {
		if strings.EqualFold(suffix, s) {
			return true
		}
	}
	return false
}
