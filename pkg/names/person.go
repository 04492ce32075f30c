package names

import (
	"strings"
	"unicode"
)

// PersonName holds the structured components of a person's name. An empty
// component is absent.
type PersonName struct {
	Prefix string `json:"name_prefix,omitempty"`
	First  string `json:"name_first,omitempty"`
	Middle string `json:"name_middle,omitempty"`
	Last   string `json:"name_last,omitempty"`
	Suffix string `json:"name_suffix,omitempty"`
	Nick   string `json:"name_nick,omitempty"`
}

// Full joins the present components in display order. The nickname is not
// part of the full name.
func (n PersonName) Full() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{n.Prefix, n.First, n.Middle, n.Last, n.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsZero reports whether no component is present.
func (n PersonName) IsZero() bool {
	return n == PersonName{}
}

// Trimmed returns a copy with surrounding whitespace removed from every
// component.
func (n PersonName) Trimmed() PersonName {
	return PersonName{
		Prefix: strings.TrimSpace(n.Prefix),
		First:  strings.TrimSpace(n.First),
		Middle: strings.TrimSpace(n.Middle),
		Last:   strings.TrimSpace(n.Last),
		Suffix: strings.TrimSpace(n.Suffix),
		Nick:   strings.TrimSpace(n.Nick),
	}
}

// ParsePerson splits a free-text person name into its components. It
// recognizes leading honorifics, trailing generational or professional
// suffixes, a quoted or parenthesized nickname, "Last, First Middle" order and
// compound last names such as "van Buren". A single word is taken to be a last
// name. Components are title-cased unless they were typed in mixed case.
func ParsePerson(raw string) PersonName {
	var name PersonName

	text, nick := extractNick(CollapseWhitespace(raw))
	name.Nick = titleCase(nick)
	text = strings.Trim(text, " ,")

	tokens, inverted := splitInverted(text)

	var prefixes []string
	for len(tokens) > 1 {
		p, ok := prefixSet[strings.ToLower(strings.TrimSuffix(tokens[0], "."))]
		if !ok {
			break
		}
		prefixes = append(prefixes, p)
		tokens = tokens[1:]
	}
	name.Prefix = strings.Join(prefixes, " ")

	var suffixes []string
	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		s, ok := PersonSuffixes[strings.ToLower(strings.TrimSuffix(last, "."))]
		if !ok {
			break
		}
		suffixes = append([]string{s}, suffixes...)
		tokens = tokens[:len(tokens)-1]
	}
	name.Suffix = strings.Join(suffixes, " ")

	if inverted != nil {
		// "Last, First Middle": tokens hold the given names
		name.Last = titleCase(strings.Join(inverted, " "))
		if len(tokens) > 0 {
			name.First = titleCase(tokens[0])
			name.Middle = titleCase(strings.Join(tokens[1:], " "))
		}
		return name
	}

	switch len(tokens) {
	case 0:
	case 1:
		name.Last = titleCase(tokens[0])
	case 2:
		name.First = titleCase(tokens[0])
		name.Last = titleCase(tokens[1])
	default:
		lastStart := len(tokens) - 1
		for lastStart > 1 && lastNameParticles[strings.ToLower(tokens[lastStart-1])] {
			lastStart--
		}
		name.First = titleCase(tokens[0])
		name.Middle = titleCase(strings.Join(tokens[1:lastStart], " "))
		name.Last = titleCase(strings.Join(tokens[lastStart:], " "))
	}
	return name
}

// extractNick removes a nickname written in double quotes, single quotes or
// parentheses and returns the remaining text and the nickname.
func extractNick(s string) (string, string) {
	for _, pair := range [][2]string{{`"`, `"`}, {"(", ")"}, {" '", "' "}} {
		open := strings.Index(s, pair[0])
		if open < 0 {
			continue
		}
		rest := s[open+len(pair[0]):]
		end := strings.Index(rest, pair[1])
		if end < 0 {
			continue
		}
		nick := strings.TrimSpace(rest[:end])
		remaining := s[:open] + " " + rest[end+len(pair[1]):]
		return CollapseWhitespace(remaining), nick
	}
	return s, ""
}

// splitInverted tokenizes the name. When the name is written "Last, Given"
// the given-name tokens are returned first and the last-name tokens second.
// A comma that only introduces a suffix ("John Smith, Jr.") is not an
// inversion.
func splitInverted(s string) ([]string, []string) {
	comma := strings.Index(s, ",")
	if comma < 0 {
		return strings.Fields(s), nil
	}

	head := strings.Fields(s[:comma])
	tail := strings.Fields(strings.ReplaceAll(s[comma+1:], ",", " "))
	if len(tail) == 0 || len(head) == 0 {
		return append(head, tail...), nil
	}

	allSuffixes := true
	for _, t := range tail {
		if _, ok := PersonSuffixes[strings.ToLower(strings.TrimSuffix(t, "."))]; !ok {
			allSuffixes = false
			break
		}
	}
	if allSuffixes {
		return append(head, tail...), nil
	}
	return tail, head
}

// titleCase capitalizes each word of an all-lower or all-upper string,
// including the parts of hyphenated and apostrophized words. Mixed-case input
// such as "McDonald" is kept as typed.
func titleCase(s string) string {
	if s == "" || isMixedCase(s) {
		return s
	}
	r := []rune(strings.ToLower(s))
	upNext := true
	for i, c := range r {
		if upNext && unicode.IsLetter(c) {
			r[i] = unicode.ToUpper(c)
			upNext = false
			continue
		}
		if c == ' ' || c == '-' || c == '\'' {
			upNext = true
		} else {
			upNext = false
		}
	}
	return string(r)
}

func isMixedCase(s string) bool {
	var hasUpper, hasLower bool
	for _, c := range s {
		if unicode.IsUpper(c) {
			hasUpper = true
		} else if unicode.IsLower(c) {
			hasLower = true
		}
	}
	return hasUpper && hasLower
}
