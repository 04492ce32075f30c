package matching

import "slices"

// ResultSet is the ranked list of results for one test case.
type ResultSet struct {
	results []Result
}

// NewResultSet sorts the results into rank order. The input slice is not
// modified.
func NewResultSet(results []Result) ResultSet {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, Compare)
	return ResultSet{results: sorted}
}

// Len returns the number of results.
func (s ResultSet) Len() int { return len(s.results) }

// ToSortedList returns the results, best first.
func (s ResultSet) ToSortedList() []Result {
	return slices.Clone(s.results)
}

// Automatch returns the single automatch result. It returns false when no
// result or more than one result is an automatch.
func (s ResultSet) Automatch() (Result, bool) {
	var (
		found Result
		count int
	)
	for _, r := range s.results {
		if r.Automatch() {
			found = r
			count++
		}
	}
	if count != 1 {
		return Result{}, false
	}
	return found, true
}

// Automatchable reports whether exactly one result is an automatch. It is
// Unknown for an empty set.
func (s ResultSet) Automatchable() Signal {
	if len(s.results) == 0 {
		return Unknown
	}
	_, ok := s.Automatch()
	return SignalOf(ok)
}
