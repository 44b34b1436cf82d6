package corrector

import (
	"fmt"
	"testing"

	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/bastiangx/sylla/pkg/syllable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		a        string
		b        string
		max      int
		expected int
	}{
		{"", "", 1, 0},
		{"a", "", 1, 1},
		{"", "ab", 1, -1},
		{"ni", "ni", 1, 0},
		{"nu", "ni", 1, 1},
		{"in", "ni", 1, 1},
		{"hoa", "hao", 1, 1},
		{"hao", "ha", 1, 1},
		{"ha", "hao", 1, 1},
		{"kitten", "sitting", 3, 3},
		{"kitten", "sitting", 2, -1},
		{"book", "back", 2, 2},
		{"ca", "abc", 3, 3},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.a, tc.b, tc.max))
		})
	}
}

func TestToleranceSearch(t *testing.T) {
	syllables := []string{"a", "hao", "ni", "nu", "xian", "zhi"}
	c := New(syllables)

	testCases := []struct {
		input       string
		expected    []syllable.Match
		description string
	}{
		{"n", nil, "too short to correct"},
		{"ni", []syllable.Match{{Length: 2, Syllable: 3, Tips: "nu"}}, "exact match is left to the prism"},
		{"nk", []syllable.Match{{Length: 2, Syllable: 2, Tips: "ni"}, {Length: 2, Syllable: 3, Tips: "nu"}}, "substitution"},
		{"hoa", []syllable.Match{{Length: 2, Syllable: 1, Tips: "hao"}, {Length: 3, Syllable: 1, Tips: "hao"}}, "missing letter then transposition"},
		{"xain", []syllable.Match{{Length: 4, Syllable: 4, Tips: "xian"}}, "transposition"},
		{"oa", nil, "first character must match"},
		{"qq", nil, "no match"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := c.ToleranceSearch(tc.input)
			for i := range tc.expected {
				tc.expected[i].Type = spelling.NormalSpelling
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestToleranceSearchSkipsShortSyllables(t *testing.T) {
	c := New([]string{"a", "e"})
	assert.Empty(t, c.ToleranceSearch("ab"))
	assert.Empty(t, New(nil).ToleranceSearch("ab"))
}

func TestCorrectorDrivesSyllabifier(t *testing.T) {
	syllables := []string{"hao", "ni"}
	prism := exactPrism(syllables)
	s := syllable.New()
	s.EnableCorrection(New(syllables))

	g := s.BuildSyllableGraph("nihso", prism)
	assert.Equal(t, 5, g.InterpretedLength)
	edge := g.Edge(2, 5, 0)
	require.NotNil(t, edge)
	assert.True(t, edge.IsCorrection)
	assert.Equal(t, "hao", edge.Tips)
	assert.InDelta(t, spelling.CorrectionPenalty, edge.Credibility, 1e-12)
}

// exactPrism spells every syllable exactly and nothing else.
type exactPrism []string

func (p exactPrism) CommonPrefixSearch(input string) []syllable.Match {
	var out []syllable.Match
	for i, s := range p {
		if len(s) <= len(input) && input[:len(s)] == s {
			out = append(out, syllable.Match{Length: len(s), Syllable: syllable.ID(i)})
		}
	}
	return out
}

func (p exactPrism) ExpandSearch(string) []syllable.Match { return nil }

func BenchmarkToleranceSearch(b *testing.B) {
	var syllables []string
	for _, initial := range []string{"b", "p", "m", "f", "d", "t", "n", "l", "zh", "ch", "sh"} {
		for _, final := range []string{"a", "o", "e", "ai", "ei", "ao", "ou", "an", "en", "ang", "eng"} {
			syllables = append(syllables, initial+final)
		}
	}
	c := New(syllables)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inputs := []string{"zhnag", "shaa", "nihao", "bnag", "leng"}
		c.ToleranceSearch(inputs[i%len(inputs)])
	}
}
