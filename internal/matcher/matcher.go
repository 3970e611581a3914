// Package matcher pairs free-text completion phrases with stored goal texts.
package matcher

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultThreshold is the minimum score for a phrase to claim a goal.
	DefaultThreshold = 0.60
	// DefaultSubstringBonus is added when one text contains the other.
	DefaultSubstringBonus = 0.15
)

// Config tunes scoring.
type Config struct {
	Threshold      float64
	SubstringBonus float64
}

// DefaultConfig returns the stock scoring parameters.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, SubstringBonus: DefaultSubstringBonus}
}

// Candidate is an open goal eligible for completion.
type Candidate struct {
	ID   string
	Text string
}

// Match records a phrase that claimed a goal.
type Match struct {
	GoalID string
	Stored string
	Target string
	Score  float64
}

// Matcher scores phrases against candidates.
type Matcher struct {
	cfg Config
}

// New builds a Matcher. Zero values in cfg fall back to the defaults.
func New(cfg Config) *Matcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.SubstringBonus < 0 {
		cfg.SubstringBonus = 0
	}
	return &Matcher{cfg: cfg}
}

// Match walks targets in order and lets each claim the best remaining
// candidate whose score reaches the threshold. A candidate is claimed at most
// once; targets with no acceptable candidate are skipped.
func (m *Matcher) Match(targets []string, candidates []Candidate) []Match {
	pool := make([]Candidate, len(candidates))
	copy(pool, candidates)

	var matches []Match
	for _, target := range targets {
		if len(pool) == 0 {
			break
		}
		best, bestScore := -1, 0.0
		for i, c := range pool {
			if s := m.Score(target, c.Text); best < 0 || s > bestScore {
				best, bestScore = i, s
			}
		}
		if bestScore < m.cfg.Threshold {
			continue
		}
		claimed := pool[best]
		matches = append(matches, Match{
			GoalID: claimed.ID,
			Stored: claimed.Text,
			Target: target,
			Score:  bestScore,
		})
		pool = append(pool[:best], pool[best+1:]...)
	}
	return matches
}

// Score returns the similarity of a and b in [0, 1].
func (m *Matcher) Score(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return 0
	}

	score := ratio(a, b)
	if sorted := ratio(tokenSort(a), tokenSort(b)); sorted > score {
		score = sorted
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		score += m.cfg.SubstringBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

func ratio(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
