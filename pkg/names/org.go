package names

import (
	"regexp"
	"strings"
)

// OrgName is the parsed form of an organization name. It is created once per
// input and never mutated.
type OrgName struct {
	Original string `json:"original"`
	// Clean is the name lowercased with punctuation stripped.
	Clean string `json:"clean"`
	// Root is Clean without the trailing corporate suffix.
	Root string `json:"root"`
	// Suffix is the detected corporate suffix as spelled in CorporateSuffixes,
	// or empty when none was found.
	Suffix string `json:"suffix,omitempty"`
	// EssentialWords are the distinct lowercase tokens longer than two
	// characters that are not common words, in name order.
	EssentialWords []string `json:"essential_words"`
}

// HasSuffix reports whether a corporate suffix was detected.
func (n OrgName) HasSuffix() bool {
	return n.Suffix != ""
}

// ParseOrg parses a raw organization name.
func ParseOrg(raw string) OrgName {
	suffix, idx := findSuffix(raw)
	trimmed := strings.TrimSpace(raw)

	root := CleanOrg(raw)
	if suffix != "" {
		root = CleanOrg(trimmed[:idx])
	}

	return OrgName{
		Original:       raw,
		Clean:          CleanOrg(raw),
		Root:           root,
		Suffix:         suffix,
		EssentialWords: essentialWords(raw),
	}
}

// CleanOrg strips punctuation and lowercases an organization name.
func CleanOrg(raw string) string {
	return strings.ToLower(StripPunctuation(raw))
}

// findSuffix returns the canonical suffix that ends the trimmed name and the
// byte offset at which it starts. A suffix must be preceded by a space and may
// be followed only by commas and periods.
func findSuffix(raw string) (string, int) {
	body := strings.TrimRight(strings.TrimSpace(raw), ",.")

	for _, suffix := range suffixesByLength {
		idx := len(body) - len(suffix)
		if idx < 1 || body[idx-1] != ' ' {
			continue
		}
		if strings.EqualFold(body[idx:], suffix) {
			return suffix, idx
		}
	}
	return "", -1
}

func essentialWords(raw string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, word := range strings.Fields(StripPunctuation(raw)) {
		if len([]rune(word)) <= 2 {
			continue
		}
		word = strings.ToLower(word)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		if IsCommonWord(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

var hyphenatedWord = regexp.MustCompile(`\w{3,}-\w{3,}`)

// FormatOrg returns a display form of an organization name: each word
// capitalized, both halves of hyphenated compounds capitalized and a
// trailing acronym suffix in capitals.
func FormatOrg(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = capitalize(w)
	}

	formatted := hyphenatedWord.ReplaceAllStringFunc(strings.Join(words, " "), func(s string) string {
		parts := strings.Split(s, "-")
		for i, p := range parts {
			parts[i] = capitalize(p)
		}
		return strings.Join(parts, "-")
	})

	words = strings.Fields(formatted)
	if n := len(words); n > 1 {
		if _, ok := acronymSet[strings.ToLower(words[n-1])]; ok {
			words[n-1] = strings.ToUpper(words[n-1])
		}
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
