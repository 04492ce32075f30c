package matching

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/Ramsey-B/clover/pkg/names"
)

// ScorerConfig controls how names are normalized and how far apart two names
// may be while still counting as similar.
type ScorerConfig struct {
	// Normalizers are applied, in order, before any comparison.
	Normalizers []string
	// ShortLength is the longest string, in runes, treated as short.
	ShortLength int
	// ShortMaxEdits is the edit budget when the shorter string is short.
	ShortMaxEdits int
	// LongMaxEdits is the edit budget for longer strings.
	LongMaxEdits int
}

// DefaultScorerConfig returns the thresholds used unless configured otherwise.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		Normalizers:   []string{"fold", "strip_punctuation", "uppercase", "trim"},
		ShortLength:   8,
		ShortMaxEdits: 1,
		LongMaxEdits:  2,
	}
}

// Scorer provides the string comparisons behind the same and similar signals
type Scorer struct {
	normalize names.Normalizer
	cfg       ScorerConfig
}

// NewScorer creates a new Scorer
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{
		normalize: names.Chain(cfg.Normalizers...),
		cfg:       cfg,
	}
}

// Normalize applies the configured normalizer chain.
func (s *Scorer) Normalize(v string) string {
	return s.normalize(v)
}

// Same reports whether two values are equal after normalization.
func (s *Scorer) Same(a, b string) bool {
	return s.normalize(a) == s.normalize(b)
}

// Similar reports whether two values differ after normalization but are
// within the edit budget for their length.
func (s *Scorer) Similar(a, b string) bool {
	a, b = s.normalize(a), s.normalize(b)
	if a == b || a == "" || b == "" {
		return false
	}

	budget := s.MaxEdits(a, b)
	lenDiff := len([]rune(a)) - len([]rune(b))
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > budget {
		return false
	}

	return s.EditDistance(a, b) <= budget
}

// MaxEdits returns the edit budget for a pair of strings.
func (s *Scorer) MaxEdits(a, b string) int {
	shorter := min(len([]rune(a)), len([]rune(b)))
	if shorter <= s.cfg.ShortLength {
		return s.cfg.ShortMaxEdits
	}
	return s.cfg.LongMaxEdits
}

// EditDistance is the optimal string alignment distance, which counts a
// transposition of adjacent characters as one edit.
func (s *Scorer) EditDistance(a, b string) int {
	return edlib.OSADamerauLevenshteinDistance(a, b)
}

// Similarity is the Jaro-Winkler similarity of the normalized values, from 0
// to 1. It is reported alongside results for reviewers and never affects a
// signal.
func (s *Scorer) Similarity(a, b string) float32 {
	a, b = s.normalize(a), s.normalize(b)
	if a == "" || b == "" {
		return 0
	}
	return edlib.JaroWinklerSimilarity(a, b)
}

// ContainsAny reports whether any needle occurs in any haystack, ignoring
// case and diacritics.
func (s *Scorer) ContainsAny(haystacks []string, needles []string) bool {
	for _, h := range haystacks {
		h = strings.ToLower(names.Fold(h))
		if h == "" {
			continue
		}
		for _, n := range needles {
			if strings.Contains(h, strings.ToLower(names.Fold(n))) {
				return true
			}
		}
	}
	return false
}
