package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is a function that normalizes a name before comparison
type Normalizer func(string) string

var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", strings.ToLower)
	Register("uppercase", strings.ToUpper)
	Register("trim", strings.TrimSpace)
	Register("fold", Fold)
	Register("strip_punctuation", StripPunctuation)
	Register("collapse_whitespace", CollapseWhitespace)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Chain composes the named normalizers into one. Unknown names are ignored.
func Chain(names ...string) Normalizer {
	fns := make([]Normalizer, 0, len(names))
	for _, name := range names {
		if fn, ok := registry[name]; ok {
			fns = append(fns, fn)
		}
	}
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}

// Fold removes diacritics, so "José" and "Jose" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// CollapseWhitespace replaces every run of whitespace with a single space and
// trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripPunctuation removes periods (except the dot of a .com/.net/.org/.edu
// domain), commas, double quotes and asterisks, then collapses whitespace.
func StripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.':
			if isDomainDot(s[i+1:]) {
				b.WriteByte(c)
			}
		case ',', '"', '*':
		default:
			b.WriteByte(c)
		}
	}
	return CollapseWhitespace(b.String())
}

func isDomainDot(rest string) bool {
	if len(rest) < 3 {
		return false
	}
	switch strings.ToLower(rest[:3]) {
	case "com", "net", "org", "edu":
		return true
	}
	return false
}
