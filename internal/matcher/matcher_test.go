package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(texts ...string) []Candidate {
	out := make([]Candidate, len(texts))
	for i, t := range texts {
		out[i] = Candidate{ID: t, Text: t}
	}
	return out
}

func TestMatchTolerantPhrase(t *testing.T) {
	m := New(DefaultConfig())

	got := m.Match([]string{"walk dog"}, candidates("Walk the dog", "Read a book"))

	require.Len(t, got, 1)
	assert.Equal(t, "Walk the dog", got[0].Stored)
	assert.Equal(t, "walk dog", got[0].Target)
	assert.GreaterOrEqual(t, got[0].Score, DefaultThreshold)
}

func TestMatchNothingBelowThreshold(t *testing.T) {
	m := New(DefaultConfig())

	got := m.Match([]string{"quantum physics"}, candidates("Walk the dog", "Read a book"))
	assert.Empty(t, got)
}

func TestMatchEmptyCandidates(t *testing.T) {
	m := New(DefaultConfig())
	assert.Empty(t, m.Match([]string{"walk dog"}, nil))
	assert.Empty(t, m.Match(nil, candidates("Walk the dog")))
}

func TestMatchClaimsEachGoalOnce(t *testing.T) {
	m := New(DefaultConfig())

	got := m.Match(
		[]string{"walk the dog", "walk the dog", "book a read"},
		candidates("Walk the dog", "Read a book"),
	)

	require.Len(t, got, 2)
	assert.Equal(t, "Walk the dog", got[0].Stored)
	assert.Equal(t, "Read a book", got[1].Stored)
	assert.Equal(t, "book a read", got[1].Target)
}

func TestScoreTokenOrderInsensitive(t *testing.T) {
	m := New(DefaultConfig())
	assert.InDelta(t, 1.0, m.Score("the dog walk", "Walk the dog"), 1e-9)
}

func TestScoreTypos(t *testing.T) {
	m := New(DefaultConfig())
	assert.GreaterOrEqual(t, m.Score("wlak the dgo", "walk the dog"), DefaultThreshold)
}

func TestScoreSubstringBonus(t *testing.T) {
	withBonus := New(DefaultConfig())
	without := New(Config{Threshold: DefaultThreshold, SubstringBonus: 0})

	a, b := "project", "Finish project"
	assert.InDelta(t, without.Score(a, b)+DefaultSubstringBonus, withBonus.Score(a, b), 1e-9)
}

func TestScoreCappedAtOne(t *testing.T) {
	m := New(DefaultConfig())
	assert.InDelta(t, 1.0, m.Score("Read a book", "read a book"), 1e-9)
}

func TestThresholdIsConfigurable(t *testing.T) {
	strict := New(Config{Threshold: 0.9, SubstringBonus: DefaultSubstringBonus})
	assert.Empty(t, strict.Match([]string{"walk dog"}, candidates("Walk the dog")))
}
