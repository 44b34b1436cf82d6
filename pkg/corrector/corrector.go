// Package corrector suggests syllables for mistyped input: every syllable
// within one edit (insertion, deletion, substitution or adjacent swap) of a
// prefix of the input.
package corrector

import (
	"slices"

	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/bastiangx/sylla/pkg/syllable"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	// MinLength is the shortest input span considered for correction.
	MinLength = 2
	// MaxDistance is the largest edit distance of a correction.
	MaxDistance = 1
)

// Corrector looks up syllables close to a typed span.
type Corrector struct {
	syllables []string
	trie      *patricia.Trie
	maxLength int
}

// New indexes syllables; a syllable's ID is its index in the slice.
func New(syllables []string) *Corrector {
	c := &Corrector{
		syllables: syllables,
		trie:      patricia.NewTrie(),
	}
	for i, s := range syllables {
		if len(s) < MinLength {
			continue
		}
		c.trie.Insert(patricia.Prefix(s), syllable.ID(i))
		c.maxLength = max(c.maxLength, len(s))
	}
	return c
}

// ToleranceSearch returns, for every prefix of input of at least MinLength
// bytes, the syllables at edit distance exactly MaxDistance from it. Exact
// spellings are left to the prism. Candidates must share the first
// character of the input.
func (c *Corrector) ToleranceSearch(input string) []syllable.Match {
	if len(input) < MinLength || c.maxLength == 0 {
		return nil
	}

	var candidates []syllable.ID
	err := c.trie.VisitSubtree(patricia.Prefix(input[:1]), func(_ patricia.Prefix, item patricia.Item) error {
		candidates = append(candidates, item.(syllable.ID))
		return nil
	})
	if err != nil {
		log.Errorf("tolerance search for %q failed: %v", input, err)
		return nil
	}
	slices.Sort(candidates)

	var matches []syllable.Match
	longest := min(len(input), c.maxLength+MaxDistance)
	for length := MinLength; length <= longest; length++ {
		span := input[:length]
		for _, id := range candidates {
			s := c.syllables[id]
			if Distance(span, s, MaxDistance) != MaxDistance {
				continue
			}
			matches = append(matches, syllable.Match{
				Length:   length,
				Syllable: id,
				Type:     spelling.NormalSpelling,
				Tips:     s,
			})
		}
	}
	return matches
}

// Distance returns the restricted Damerau-Levenshtein distance of a and b,
// or -1 once it is known to exceed maxDistance.
func Distance(a, b string, maxDistance int) int {
	if abs(len(a)-len(b)) > maxDistance {
		return -1
	}
	if len(a) == 0 || len(b) == 0 {
		return max(len(a), len(b))
	}

	prevPrev := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				curr[j] = min(curr[j], prevPrev[j-2]+1)
			}
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > maxDistance {
			return -1
		}
		prevPrev, prev, curr = prev, curr, prevPrev
	}

	if prev[len(b)] > maxDistance {
		return -1
	}
	return prev[len(b)]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
