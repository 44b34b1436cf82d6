// Package dictionary holds the phrase table: phrases keyed by their
// syllable codes, indexed on a patricia trie so a partial code can be
// tested for extensions while walking a syllable graph.
package dictionary

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrEmptyTable is returned when a table holds no phrases.
var ErrEmptyTable = errors.New("dictionary: empty phrase table")

// Entry is a phrase and the syllables it is spelled with.
type Entry struct {
	Text   string
	Code   []string
	Weight float64
}

// Table is a phrase table. It is safe for concurrent use.
type Table struct {
	mu          sync.RWMutex
	entries     []Entry
	index       *patricia.Trie
	syllables   map[string]struct{}
	totalWeight float64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		index:     patricia.NewTrie(),
		syllables: make(map[string]struct{}),
	}
}

// codeKey joins syllables with a trailing separator so that the key of
// "ni" is not a prefix of the key of "nin".
func codeKey(code []string) patricia.Prefix {
	var b strings.Builder
	for _, s := range code {
		b.WriteString(s)
		b.WriteByte(' ')
	}
	return patricia.Prefix(b.String())
}

// Add inserts e. Weights must be positive and codes non-empty.
func (t *Table) Add(e Entry) error {
	if e.Text == "" || len(e.Code) == 0 {
		return fmt.Errorf("phrase %q has no text or code", e.Text)
	}
	if !(e.Weight > 0) || math.IsInf(e.Weight, 1) {
		return fmt.Errorf("phrase %q has invalid weight %v", e.Text, e.Weight)
	}
	for _, s := range e.Code {
		if s == "" || strings.ContainsRune(s, ' ') {
			return fmt.Errorf("phrase %q has invalid syllable %q", e.Text, s)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e.Code = slices.Clone(e.Code)
	t.entries = append(t.entries, e)
	pos := len(t.entries) - 1

	key := codeKey(e.Code)
	var positions []int
	if item := t.index.Get(key); item != nil {
		positions = item.([]int)
	}
	t.index.Set(key, append(positions, pos))

	for _, s := range e.Code {
		t.syllables[s] = struct{}{}
	}
	t.totalWeight += e.Weight
	return nil
}

// Len returns the number of phrases.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Syllabary returns every syllable used by a code, sorted.
func (t *Table) Syllabary() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.syllables))
	for s := range t.syllables {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the phrases spelled exactly by code, heaviest first.
func (t *Table) Lookup(code []string) []Entry {
	if len(code) == 0 {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	item := t.index.Get(codeKey(code))
	if item == nil {
		return nil
	}
	positions := item.([]int)
	out := make([]Entry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, t.entries[pos])
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
	return out
}

// HasPrefix reports whether any phrase code starts with code.
func (t *Table) HasPrefix(code []string) bool {
	if len(code) == 0 {
		return t.Len() > 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index.MatchSubtree(codeKey(code))
}

// Credibility returns the log-probability of e within the table.
func (t *Table) Credibility(e Entry) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.totalWeight <= 0 || e.Weight <= 0 {
		return math.Inf(-1)
	}
	return math.Log(e.Weight / t.totalWeight)
}

// Entries returns a copy of every phrase in insertion order.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.entries)
}
