package matching

import "cmp"

// Tier is one rung of the ranking ladder. Results are placed in the first
// tier whose predicate they satisfy.
type Tier struct {
	Name    string
	Matches func(Result) bool
}

func is(names ...SignalName) func(Result) bool {
	return func(r Result) bool {
		for _, n := range names {
			if !r.Get(n).IsTrue() {
				return false
			}
		}
		return true
	}
}

func corroborated(pred func(Result) bool) func(Result) bool {
	return func(r Result) bool {
		return pred(r) && (r.Get(CommonRelationship).IsTrue() || r.Get(BlurbKeyword).IsTrue())
	}
}

func always(Result) bool { return true }

// PersonTiers rank person results by how strongly the first and last names
// agree. A same signal always outranks the similar signal in its place.
var PersonTiers = []Tier{
	{Name: "same_first_same_last", Matches: is(SameFirstName, SameLastName)},
	{Name: "same_first_similar_last", Matches: is(SameFirstName, SimilarLastName)},
	{Name: "similar_first_same_last", Matches: is(SimilarFirstName, SameLastName)},
	{Name: "similar_first_similar_last", Matches: is(SimilarFirstName, SimilarLastName)},
	{Name: "same_last", Matches: is(SameLastName)},
	{Name: "similar_last", Matches: is(SimilarLastName)},
	{Name: "other", Matches: always},
}

// OrgTiers rank org results. Exact name and alias matches come first,
// promoted when a relationship or keyword backs them up, then looser name
// and root matches in the same pattern.
var OrgTiers = []Tier{
	{Name: "same_name_corroborated", Matches: corroborated(is(SameName))},
	{Name: "alias_corroborated", Matches: corroborated(is(MatchesAlias))},
	{Name: "same_name", Matches: is(SameName)},
	{Name: "alias", Matches: is(MatchesAlias)},
	{Name: "similar_name_corroborated", Matches: corroborated(is(SimilarName))},
	{Name: "same_root_corroborated", Matches: corroborated(is(SameRoot))},
	{Name: "similar_root_corroborated", Matches: corroborated(is(SimilarRoot))},
	{Name: "similar_name", Matches: is(SimilarName)},
	{Name: "same_root", Matches: is(SameRoot)},
	{Name: "similar_root", Matches: is(SimilarRoot)},
	{Name: "other", Matches: always},
}

// nameCorroboration are the person signals that back up a first and last
// name match.
var nameCorroboration = []SignalName{SameMiddleName, SamePrefix, SameSuffix}

// negativeSignals are true when the candidate looks less like the subject.
var negativeSignals = map[SignalName]bool{
	CommonLastName:       true,
	DifferentMiddleName:  true,
	MismatchedMiddleName: true,
	MismatchedSuffix:     true,
}

// TierOf returns the index and tier a result falls in.
func TierOf(r Result) (int, Tier) {
	tiers := OrgTiers
	if r.kind == KindPerson {
		tiers = PersonTiers
	}
	for i, t := range tiers {
		if t.Matches(r) {
			return i, t
		}
	}
	return len(tiers), Tier{Name: "other", Matches: always}
}

// contextRank orders the relationship and keyword signals: both, then a
// relationship alone, then a keyword alone, then neither.
func contextRank(r Result) int {
	rank := 0
	if r.Get(CommonRelationship).IsTrue() {
		rank += 2
	}
	if r.Get(BlurbKeyword).IsTrue() {
		rank++
	}
	return rank
}

func corroborationCount(r Result) int {
	if r.kind != KindPerson {
		return 0
	}
	n := 0
	for _, name := range nameCorroboration {
		if r.Get(name).IsTrue() {
			n++
		}
	}
	return n
}

// signalRank orders the values of one signal from best to worst evidence.
func signalRank(name SignalName, v Signal) int {
	if negativeSignals[name] {
		switch v {
		case False:
			return 2
		case Unknown:
			return 1
		}
		return 0
	}
	switch v {
	case True:
		return 2
	case Unknown:
		return 1
	}
	return 0
}

// Compare orders two results from most to least likely match. It returns a
// negative number when a ranks before b. Results with equal signals are
// ordered by candidate id so the order never depends on input order.
func Compare(a, b Result) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}

	ta, _ := TierOf(a)
	tb, _ := TierOf(b)
	if c := cmp.Compare(ta, tb); c != 0 {
		return c
	}

	if c := cmp.Compare(contextRank(b), contextRank(a)); c != 0 {
		return c
	}

	if c := cmp.Compare(corroborationCount(b), corroborationCount(a)); c != 0 {
		return c
	}

	if a.Automatch() != b.Automatch() {
		if a.Automatch() {
			return -1
		}
		return 1
	}

	for _, name := range signalsForKind[a.kind] {
		if c := cmp.Compare(signalRank(name, b.Get(name)), signalRank(name, a.Get(name))); c != 0 {
			return c
		}
	}

	return cmp.Compare(a.CandidateID(), b.CandidateID())
}
