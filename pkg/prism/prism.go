// Package prism maps typed spellings to syllables. Besides the exact
// spelling of every syllable it can register fuzzy variants derived from
// rewrite rules and abbreviations made of syllable initials.
package prism

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/bastiangx/sylla/pkg/syllable"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Rule rewrites the first occurrence of From in a syllable into To,
// producing a fuzzy spelling. "zh:z" lets "zi" stand for "zhi".
type Rule struct {
	From string
	To   string
}

func (r Rule) String() string { return r.From + ":" + r.To }

// ParseRule parses a rule written as "from:to".
func ParseRule(s string) (Rule, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || from == "" || from == to {
		return Rule{}, fmt.Errorf("invalid spelling rule %q, want from:to", s)
	}
	return Rule{From: from, To: to}, nil
}

// ParseRules parses every rule in list.
func ParseRules(list []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(list))
	for _, s := range list {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// entry is one syllable reachable by a spelling.
type entry struct {
	id   syllable.ID
	typ  spelling.Type
	tips string
}

// Prism is a read-only spelling index. It is safe for concurrent use once built.
type Prism struct {
	syllables     []string
	ids           map[string]syllable.ID
	trie          *patricia.Trie
	rules         []Rule
	abbreviations bool
	spellings     int
}

// Option configures a Prism.
type Option func(*Prism)

// WithRules registers fuzzy spelling rules.
func WithRules(rules ...Rule) Option {
	return func(p *Prism) { p.rules = append(p.rules, rules...) }
}

// WithAbbreviations registers initials as abbreviated spellings.
func WithAbbreviations(enable bool) Option {
	return func(p *Prism) { p.abbreviations = enable }
}

// New builds a prism over syllabary. Syllables are sorted and deduplicated;
// a syllable's ID is its index in the sorted list.
func New(syllabary []string, opts ...Option) *Prism {
	syllables := make([]string, 0, len(syllabary))
	for _, s := range syllabary {
		if s = strings.TrimSpace(s); s != "" {
			syllables = append(syllables, s)
		}
	}
	slices.Sort(syllables)
	syllables = slices.Compact(syllables)

	p := &Prism{
		syllables: syllables,
		ids:       make(map[string]syllable.ID, len(syllables)),
		trie:      patricia.NewTrie(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i, s := range syllables {
		id := syllable.ID(i)
		p.ids[s] = id
		p.add(s, entry{id: id, typ: spelling.NormalSpelling})
	}
	for i, s := range syllables {
		id := syllable.ID(i)
		for _, r := range p.rules {
			if !strings.Contains(s, r.From) {
				continue
			}
			p.add(strings.Replace(s, r.From, r.To, 1), entry{id: id, typ: spelling.FuzzySpelling, tips: s})
		}
		if p.abbreviations {
			for _, abbrev := range abbreviate(s) {
				p.add(abbrev, entry{id: id, typ: spelling.Abbreviation, tips: s})
			}
		}
	}

	log.Debugf("prism built: %d syllables, %d spellings", len(syllables), p.spellings)
	return p
}

// abbreviate returns the initials a syllable may be abbreviated to.
func abbreviate(s string) []string {
	var out []string
	for _, initial := range []string{"zh", "ch", "sh"} {
		if strings.HasPrefix(s, initial) && len(s) > len(initial) {
			out = append(out, initial)
		}
	}
	if len(s) > 1 {
		out = append(out, s[:1])
	}
	return out
}

// add registers e under key. A syllable keeps its best spelling type per key.
func (p *Prism) add(key string, e entry) {
	if key == "" {
		return
	}
	prefix := patricia.Prefix(key)
	var list []entry
	if item := p.trie.Get(prefix); item != nil {
		list = item.([]entry)
	}
	for i := range list {
		if list[i].id == e.id {
			if e.typ < list[i].typ {
				list[i] = e
			}
			return
		}
	}
	list = append(list, e)
	p.trie.Set(prefix, list)
	p.spellings++
}

// Size returns the number of syllables.
func (p *Prism) Size() int { return len(p.syllables) }

// Syllables returns the syllabary indexed by ID.
func (p *Prism) Syllables() []string { return slices.Clone(p.syllables) }

// Syllable returns the text of id, or "" if it is out of range.
func (p *Prism) Syllable(id syllable.ID) string {
	if id < 0 || int(id) >= len(p.syllables) {
		return ""
	}
	return p.syllables[id]
}

// ID looks up a syllable by its exact text.
func (p *Prism) ID(s string) (syllable.ID, bool) {
	id, ok := p.ids[s]
	return id, ok
}

// CommonPrefixSearch returns every registered spelling that is a prefix of
// input, shortest first.
func (p *Prism) CommonPrefixSearch(input string) []syllable.Match {
	if input == "" {
		return nil
	}
	var matches []syllable.Match
	err := p.trie.VisitPrefixes(patricia.Prefix(input), func(prefix patricia.Prefix, item patricia.Item) error {
		for _, e := range item.([]entry) {
			matches = append(matches, syllable.Match{
				Length:   len(prefix),
				Syllable: e.id,
				Type:     e.typ,
				Tips:     e.tips,
			})
		}
		return nil
	})
	if err != nil {
		log.Errorf("prefix search for %q failed: %v", input, err)
	}
	return matches
}

// ExpandSearch returns the syllables whose exact spelling starts with input
// and is longer than it, ordered by ID.
func (p *Prism) ExpandSearch(input string) []syllable.Match {
	if input == "" {
		return nil
	}
	seen := make(map[syllable.ID]bool)
	var matches []syllable.Match
	err := p.trie.VisitSubtree(patricia.Prefix(input), func(key patricia.Prefix, item patricia.Item) error {
		if len(key) <= len(input) {
			return nil
		}
		for _, e := range item.([]entry) {
			if e.typ != spelling.NormalSpelling || seen[e.id] {
				continue
			}
			seen[e.id] = true
			matches = append(matches, syllable.Match{
				Length:   len(input),
				Syllable: e.id,
				Type:     spelling.NormalSpelling,
				Tips:     p.syllables[e.id],
			})
		}
		return nil
	})
	if err != nil {
		log.Errorf("expand search for %q failed: %v", input, err)
	}
	slices.SortFunc(matches, func(a, b syllable.Match) int { return int(a.Syllable - b.Syllable) })
	return matches
}
