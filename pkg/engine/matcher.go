package engine

import (
	"maps"
	"slices"
	"strings"

	"github.com/bastiangx/sylla/pkg/candidate"
	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/bastiangx/sylla/pkg/syllable"
	"github.com/bastiangx/sylla/pkg/translation"
)

// path is a walk from the start of the input along the lattice.
type path struct {
	code        []string
	tips        []string
	credibility float64
	kind        string
}

// kindRank orders path kinds; a path is as inexact as its worst hop.
var kindRank = map[string]int{
	TypePhrase:     0,
	TypeFuzzy:      1,
	TypeAbbrev:     2,
	TypeCompletion: 3,
	TypeCorrection: 4,
}

func edgeKind(e *syllable.Edge) string {
	if e.IsCorrection {
		return TypeCorrection
	}
	switch e.Type {
	case spelling.FuzzySpelling:
		return TypeFuzzy
	case spelling.Abbreviation:
		return TypeAbbrev
	case spelling.Completion:
		return TypeCompletion
	}
	return TypePhrase
}

func (p path) extend(syl string, e *syllable.Edge) path {
	tip := e.Tips
	if tip == "" {
		tip = syl
	}
	kind := p.kind
	if k := edgeKind(e); kindRank[k] > kindRank[kind] {
		kind = k
	}
	return path{
		code:        append(slices.Clip(p.code), syl),
		tips:        append(slices.Clip(p.tips), tip),
		credibility: p.credibility + e.Credibility,
		kind:        kind,
	}
}

// bucket gathers the candidates ending at one position, grouped by text.
type bucket struct {
	order  []string
	groups map[string][]candidate.Candidate
}

func (b *bucket) add(c candidate.Candidate) {
	if _, ok := b.groups[c.Text()]; !ok {
		b.order = append(b.order, c.Text())
	}
	b.groups[c.Text()] = append(b.groups[c.Text()], c)
}

// list merges each group of same-text candidates into one and sorts by quality.
func (b *bucket) list() candidate.List {
	out := make(candidate.List, 0, len(b.order))
	for _, text := range b.order {
		group := b.groups[text]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		u := candidate.NewUniquified(group[0], group[0].Type())
		for _, c := range group[1:] {
			u.Append(c)
		}
		out = append(out, u)
	}
	candidate.Sort(out)
	return out
}

// match walks g from position 0 and returns one ordered translation per
// end position reached by a phrase.
func (e *Engine) match(g *syllable.Graph) []*translation.Fifo {
	buckets := make(map[int]*bucket)
	e.walk(g, 0, path{kind: TypePhrase}, buckets)

	var fifos []*translation.Fifo
	for _, end := range slices.Backward(slices.Sorted(maps.Keys(buckets))) {
		fifos = append(fifos, translation.NewFifo(buckets[end].list()...))
	}
	return fifos
}

func (e *Engine) walk(g *syllable.Graph, pos int, p path, buckets map[int]*bucket) {
	index := g.Indices[pos]
	for _, id := range slices.Sorted(maps.Keys(index)) {
		syl := e.prism.Syllable(id)
		code := append(slices.Clip(p.code), syl)
		if !e.table.HasPrefix(code) {
			continue
		}
		entries := e.table.Lookup(code)
		for _, edge := range index[id] {
			next := p.extend(syl, edge)
			if len(entries) > 0 {
				b, ok := buckets[edge.EndPos]
				if !ok {
					b = &bucket{groups: make(map[string][]candidate.Candidate)}
					buckets[edge.EndPos] = b
				}
				for _, entry := range entries {
					b.add(e.candidate(next, edge.EndPos, entry.Text, e.table.Credibility(entry)))
				}
			}
			if len(next.code) < e.opts.MaxSyllables && edge.EndPos < g.InputLength {
				e.walk(g, edge.EndPos, next, buckets)
			}
		}
	}
}

func (e *Engine) candidate(p path, end int, text string, weight float64) candidate.Candidate {
	c := candidate.NewSimple(TypePhrase, 0, end, text, "", strings.Join(p.code, " "))
	c.SetQuality(weight + p.credibility + e.opts.HistoryWeight*e.history.Bonus(text))
	if p.kind == TypePhrase {
		return c
	}
	return candidate.NewShadow(c, p.kind, "", "~"+strings.Join(p.tips, " "), false)
}
