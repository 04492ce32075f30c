package matching

import (
	"fmt"

	"github.com/Ramsey-B/clover/pkg/names"
)

// Kind is the category of an entity or test case.
type Kind int8

const (
	KindOrg Kind = iota + 1
	KindPerson
)

func (k Kind) String() string {
	switch k {
	case KindOrg:
		return "org"
	case KindPerson:
		return "person"
	default:
		return "unknown"
	}
}

// ParseKind converts "org" or "person" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "org", "Org":
		return KindOrg, nil
	case "person", "Person":
		return KindPerson, nil
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// MarshalText renders the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Record is a read-only snapshot of an existing entity, as much of it as
// matching needs.
type Record struct {
	ID   int64 `json:"id"`
	Kind Kind  `json:"kind"`
	// Name is the entity's primary display name.
	Name string `json:"name"`
	// Person holds the stored name components of a person record.
	Person names.PersonName `json:"person"`
	// Aliases are the entity's alternate names, excluding Name.
	Aliases []string `json:"aliases,omitempty"`
	// RelatedIDs are the ids of entities this one has a relationship with.
	RelatedIDs []int64 `json:"related_ids,omitempty"`
	Blurb      string  `json:"blurb,omitempty"`
	Summary    string  `json:"summary,omitempty"`
}
