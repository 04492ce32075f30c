// Package commonnames answers whether a last name is too common to identify a
// person on its own.
package commonnames

import (
	"context"
	"strings"
	"sync"

	"github.com/Ramsey-B/clover/pkg/names"
)

// Lookup answers whether a last name is common. It satisfies
// matching.CommonNames.
type Lookup interface {
	IsCommon(ctx context.Context, lastName string) (bool, error)
}

// Standardize returns the stored form of a name: trimmed, single-spaced and
// upper-cased. Lookups are exact on this form.
func Standardize(name string) string {
	return strings.ToUpper(names.CollapseWhitespace(name))
}

// Set is an in-memory dictionary of common names.
type Set struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewSet creates a Set holding the given names.
func NewSet(list ...string) *Set {
	s := &Set{names: make(map[string]struct{}, len(list))}
	s.Add(list...)
	return s
}

// Add inserts names into the set. Blank names are ignored.
func (s *Set) Add(list ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range list {
		if n = Standardize(n); n != "" {
			s.names[n] = struct{}{}
		}
	}
}

// Len returns the number of names in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// IsCommon implements Lookup.
func (s *Set) IsCommon(_ context.Context, lastName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[Standardize(lastName)]
	return ok, nil
}

// Includer is a persistent store of common names.
type Includer interface {
	Includes(ctx context.Context, name string) (bool, error)
}

// Store adapts a persistent store to Lookup.
type Store struct {
	repo Includer
}

// NewStore creates a Store.
func NewStore(repo Includer) *Store {
	return &Store{repo: repo}
}

// IsCommon implements Lookup.
func (s *Store) IsCommon(ctx context.Context, lastName string) (bool, error) {
	name := Standardize(lastName)
	if name == "" {
		return false, nil
	}
	return s.repo.Includes(ctx, name)
}
