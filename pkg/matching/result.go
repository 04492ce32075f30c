package matching

import (
	"encoding/json"
	"fmt"
)

var signalNames = [...]SignalName{
	SameName,
	SimilarName,
	SameRoot,
	SimilarRoot,
	MatchesAlias,
	SameFirstName,
	SimilarFirstName,
	SameLastName,
	SimilarLastName,
	SameMiddleName,
	DifferentMiddleName,
	MismatchedMiddleName,
	SameSuffix,
	MismatchedSuffix,
	SamePrefix,
	CommonLastName,
	CommonRelationship,
	BlurbKeyword,
}

type signalSet [len(signalNames)]Signal

var (
	signalIndex     = make(map[SignalName]int, len(signalNames))
	signalsForKind  = map[Kind][]SignalName{KindOrg: OrgSignals, KindPerson: PersonSignals}
	signalAllowedBy = map[Kind]map[SignalName]bool{}
)

func init() {
	for i, name := range signalNames {
		signalIndex[name] = i
	}
	for kind, list := range signalsForKind {
		allowed := make(map[SignalName]bool, len(list))
		for _, name := range list {
			allowed[name] = true
		}
		signalAllowedBy[kind] = allowed
	}
}

// Result holds the signals computed for one candidate. Two results are equal
// when their kinds and signals are equal; the candidate is not compared.
type Result struct {
	kind      Kind
	signals   signalSet
	candidate *Record
	score     float32
}

// NewResult builds a result from explicit signal values. Signals not named
// are Unknown.
func NewResult(kind Kind, values map[SignalName]Signal, candidate *Record) (Result, error) {
	allowed, ok := signalAllowedBy[kind]
	if !ok {
		return Result{}, fmt.Errorf("result kind %d: %w", kind, ErrUnknownSignal)
	}
	r := Result{kind: kind, candidate: candidate}
	for name, value := range values {
		if !allowed[name] {
			return Result{}, fmt.Errorf("%s on %s result: %w", name, kind, ErrUnknownSignal)
		}
		r.set(name, value)
	}
	return r, nil
}

func (r *Result) set(name SignalName, value Signal) {
	r.signals[signalIndex[name]] = value
}

// Score is the name similarity between the test case and the candidate. It
// is informational only.
func (r Result) Score() float32 { return r.score }

// Kind returns whether the result compares orgs or people.
func (r Result) Kind() Kind { return r.kind }

// Candidate returns the candidate record, or nil when the candidate was not
// built from a record.
func (r Result) Candidate() *Record { return r.candidate }

// CandidateID returns the candidate record id, or zero.
func (r Result) CandidateID() int64 {
	if r.candidate == nil {
		return 0
	}
	return r.candidate.ID
}

// Get returns the value of a signal.
func (r Result) Get(name SignalName) Signal {
	i, ok := signalIndex[name]
	if !ok {
		return Unknown
	}
	return r.signals[i]
}

// Signals returns every known signal of the result.
func (r Result) Signals() map[SignalName]Signal {
	out := make(map[SignalName]Signal)
	for _, name := range signalsForKind[r.kind] {
		if v := r.Get(name); v.Known() {
			out[name] = v
		}
	}
	return out
}

// Values returns the names of the signals that are true.
func (r Result) Values() []SignalName {
	var out []SignalName
	for _, name := range signalsForKind[r.kind] {
		if r.Get(name).IsTrue() {
			out = append(out, name)
		}
	}
	return out
}

// Equal reports whether both results carry the same signals.
func (r Result) Equal(other Result) bool {
	return r.kind == other.kind && r.signals == other.signals
}

// Automatch reports whether the result is confident enough to link without
// review. For an org that takes an alias match. For a person it takes the
// same first and last name, no suffix or middle name conflict and a last name
// known not to be common.
func (r Result) Automatch() bool {
	switch r.kind {
	case KindOrg:
		return r.Get(MatchesAlias).IsTrue()
	case KindPerson:
		return r.Get(SameFirstName).IsTrue() &&
			r.Get(SameLastName).IsTrue() &&
			!r.Get(MismatchedSuffix).IsTrue() &&
			!r.Get(MismatchedMiddleName).IsTrue() &&
			r.Get(CommonLastName).IsFalse()
	}
	return false
}

type resultJSON struct {
	Kind        Kind                  `json:"kind"`
	CandidateID int64                 `json:"candidate_id,omitempty"`
	Candidate   *Record               `json:"candidate,omitempty"`
	Automatch   bool                  `json:"automatch"`
	Tier        string                `json:"tier"`
	Score       float32               `json:"score"`
	Signals     map[SignalName]Signal `json:"signals"`
}

// MarshalJSON renders every signal of the result's kind, with null for
// unknown signals.
func (r Result) MarshalJSON() ([]byte, error) {
	signals := make(map[SignalName]Signal, len(signalsForKind[r.kind]))
	for _, name := range signalsForKind[r.kind] {
		signals[name] = r.Get(name)
	}
	_, tier := TierOf(r)
	return json.Marshal(resultJSON{
		Kind:        r.kind,
		CandidateID: r.CandidateID(),
		Candidate:   r.candidate,
		Automatch:   r.Automatch(),
		Tier:        tier.Name,
		Score:       r.score,
		Signals:     signals,
	})
}

// String lists the true signals, for logs and test failures.
func (r Result) String() string {
	return fmt.Sprintf("%s%v", r.kind, r.Values())
}
