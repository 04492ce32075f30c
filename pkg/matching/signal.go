package matching

import (
	"encoding/json"
	"fmt"
)

// Signal is a tri-state comparison outcome. Unknown means the comparison was
// not made (for example because a component is missing on one side) and is
// never treated as False.
type Signal int8

const (
	Unknown Signal = iota
	False
	True
)

// SignalOf converts a definite comparison into a Signal.
func SignalOf(b bool) Signal {
	if b {
		return True
	}
	return False
}

// IsTrue reports whether the signal is known and true.
func (s Signal) IsTrue() bool { return s == True }

// IsFalse reports whether the signal is known and false.
func (s Signal) IsFalse() bool { return s == False }

// Known reports whether the comparison was made.
func (s Signal) Known() bool { return s != Unknown }

func (s Signal) String() string {
	switch s {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON renders true, false or null.
func (s Signal) MarshalJSON() ([]byte, error) {
	switch s {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (s *Signal) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("signal must be a boolean or null: %w", err)
	}
	switch {
	case b == nil:
		*s = Unknown
	case *b:
		*s = True
	default:
		*s = False
	}
	return nil
}

// SignalName identifies one comparison in a Result.
type SignalName string

const (
	SameName             SignalName = "same_name"
	SimilarName          SignalName = "similar_name"
	SameRoot             SignalName = "same_root"
	SimilarRoot          SignalName = "similar_root"
	MatchesAlias         SignalName = "matches_alias"
	SameFirstName        SignalName = "same_first_name"
	SimilarFirstName     SignalName = "similar_first_name"
	SameLastName         SignalName = "same_last_name"
	SimilarLastName      SignalName = "similar_last_name"
	SameMiddleName       SignalName = "same_middle_name"
	DifferentMiddleName  SignalName = "different_middle_name"
	MismatchedMiddleName SignalName = "mismatched_middle_name"
	SameSuffix           SignalName = "same_suffix"
	MismatchedSuffix     SignalName = "mismatched_suffix"
	SamePrefix           SignalName = "same_prefix"
	CommonLastName       SignalName = "common_last_name"
	CommonRelationship   SignalName = "common_relationship"
	BlurbKeyword         SignalName = "blurb_keyword"
)

// OrgSignals lists the signals an organization result carries, in the order
// used for deterministic tie-breaking.
var OrgSignals = []SignalName{
	MatchesAlias,
	SameName,
	SimilarName,
	SameRoot,
	SimilarRoot,
	CommonRelationship,
	BlurbKeyword,
}

// PersonSignals lists the signals a person result carries, in the order used
// for deterministic tie-breaking.
var PersonSignals = []SignalName{
	SameFirstName,
	SameLastName,
	SimilarFirstName,
	SimilarLastName,
	SameMiddleName,
	SamePrefix,
	SameSuffix,
	CommonRelationship,
	BlurbKeyword,
	CommonLastName,
	DifferentMiddleName,
	MismatchedMiddleName,
	MismatchedSuffix,
}
