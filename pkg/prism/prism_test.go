package prism

import (
	"testing"

	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/bastiangx/sylla/pkg/syllable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syllabary = []string{"ni", "hao", "zhi", "zi", "shi", "xi", "an", "xian", "a", "ni", " "}

func id(t *testing.T, p *Prism, s string) syllable.ID {
	t.Helper()
	v, ok := p.ID(s)
	require.True(t, ok, s)
	return v
}

func TestNewSortsAndDeduplicates(t *testing.T) {
	p := New(syllabary)
	assert.Equal(t, []string{"a", "an", "hao", "ni", "shi", "xi", "xian", "zhi", "zi"}, p.Syllables())
	assert.Equal(t, 9, p.Size())
	assert.Equal(t, "a", p.Syllable(0))
	assert.Equal(t, "zi", p.Syllable(8))
	assert.Empty(t, p.Syllable(9))
	assert.Empty(t, p.Syllable(-1))

	_, ok := p.ID("nope")
	assert.False(t, ok)
}

func TestParseRule(t *testing.T) {
	testCases := []struct {
		input    string
		expected Rule
		valid    bool
	}{
		{"zh:z", Rule{"zh", "z"}, true},
		{" ang:an ", Rule{"ang", "an"}, true},
		{"z:", Rule{"z", ""}, true},
		{"zh", Rule{}, false},
		{":z", Rule{}, false},
		{"z:z", Rule{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			r, err := ParseRule(tc.input)
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, r)
			assert.Equal(t, tc.expected.From+":"+tc.expected.To, r.String())
		})
	}

	rules, err := ParseRules([]string{"zh:z", "sh:s"})
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	_, err = ParseRules([]string{"zh:z", "bad"})
	assert.Error(t, err)
}

func TestCommonPrefixSearch(t *testing.T) {
	p := New(syllabary)
	matches := p.CommonPrefixSearch("xian")
	require.Len(t, matches, 2)
	assert.Equal(t, syllable.Match{Length: 2, Syllable: id(t, p, "xi"), Type: spelling.NormalSpelling}, matches[0])
	assert.Equal(t, syllable.Match{Length: 4, Syllable: id(t, p, "xian"), Type: spelling.NormalSpelling}, matches[1])

	assert.Empty(t, p.CommonPrefixSearch(""))
	assert.Empty(t, p.CommonPrefixSearch("q"))
}

func TestFuzzyRules(t *testing.T) {
	p := New(syllabary, WithRules(Rule{"zh", "z"}, Rule{"sh", "s"}))

	matches := p.CommonPrefixSearch("zi")
	require.Len(t, matches, 2)
	byID := map[syllable.ID]syllable.Match{}
	for _, m := range matches {
		byID[m.Syllable] = m
	}
	assert.Equal(t, spelling.NormalSpelling, byID[id(t, p, "zi")].Type)
	fuzzy := byID[id(t, p, "zhi")]
	assert.Equal(t, spelling.FuzzySpelling, fuzzy.Type)
	assert.Equal(t, "zhi", fuzzy.Tips)
	assert.Equal(t, 2, fuzzy.Length)

	matches = p.CommonPrefixSearch("si")
	require.Len(t, matches, 1)
	assert.Equal(t, id(t, p, "shi"), matches[0].Syllable)
}

func TestAbbreviations(t *testing.T) {
	p := New(syllabary)
	assert.Empty(t, p.CommonPrefixSearch("zh"), "disabled by default")

	p = New(syllabary, WithAbbreviations(true))
	matches := p.CommonPrefixSearch("zh")
	var ids []syllable.ID
	for _, m := range matches {
		assert.Equal(t, spelling.Abbreviation, m.Type)
		ids = append(ids, m.Syllable)
	}
	assert.Contains(t, ids, id(t, p, "zhi"), "two-letter initial")
	assert.Contains(t, ids, id(t, p, "zi"), "z is a prefix of zh")

	matches = p.CommonPrefixSearch("a")
	require.Len(t, matches, 2, "a is exact; an abbreviates to a")
	types := map[syllable.ID]spelling.Type{}
	for _, m := range matches {
		types[m.Syllable] = m.Type
	}
	assert.Equal(t, spelling.NormalSpelling, types[id(t, p, "a")])
	assert.Equal(t, spelling.Abbreviation, types[id(t, p, "an")])
}

func TestBestTypePerSpelling(t *testing.T) {
	// both rules spell xiang as "xian", which is also the exact xian
	p := New([]string{"xian", "xiang"}, WithRules(Rule{"ang", "an"}, Rule{"g", ""}))
	matches := p.CommonPrefixSearch("xian")
	require.Len(t, matches, 2)
	for _, m := range matches {
		if m.Syllable == id(t, p, "xian") {
			assert.Equal(t, spelling.NormalSpelling, m.Type)
		} else {
			assert.Equal(t, spelling.FuzzySpelling, m.Type)
			assert.Equal(t, "xiang", m.Tips)
		}
	}

	p = New([]string{"ni"}, WithRules(Rule{"i", ""}), WithAbbreviations(true))
	matches = p.CommonPrefixSearch("n")
	require.Len(t, matches, 1)
	assert.Equal(t, spelling.FuzzySpelling, matches[0].Type, "fuzzy beats abbreviation")
}

func TestExpandSearch(t *testing.T) {
	p := New(syllabary, WithRules(Rule{"zh", "z"}), WithAbbreviations(true))

	matches := p.ExpandSearch("x")
	require.Len(t, matches, 2)
	assert.Equal(t, id(t, p, "xi"), matches[0].Syllable)
	assert.Equal(t, id(t, p, "xian"), matches[1].Syllable)
	for _, m := range matches {
		assert.Equal(t, 1, m.Length)
		assert.Equal(t, spelling.NormalSpelling, m.Type)
	}
	assert.Equal(t, "xian", matches[1].Tips)

	matches = p.ExpandSearch("xi")
	require.Len(t, matches, 1, "an exact spelling does not expand to itself")
	assert.Equal(t, id(t, p, "xian"), matches[0].Syllable)

	matches = p.ExpandSearch("z")
	require.Len(t, matches, 2, "fuzzy spellings are not expanded")
	assert.Empty(t, p.ExpandSearch("q"))
	assert.Empty(t, p.ExpandSearch(""))
}

func TestPrismDrivesSyllabifier(t *testing.T) {
	p := New([]string{"ni", "hao", "n", "i"})
	g := syllable.New().BuildSyllableGraph("nihao", p)
	assert.Equal(t, 5, g.InterpretedLength)
	assert.NotNil(t, g.Edge(0, 2, id(t, p, "ni")))
	assert.NotNil(t, g.Edge(2, 5, id(t, p, "hao")))
	assert.Equal(t, spelling.AmbiguousSpelling, g.Vertices[1])
}
