// Package syllable builds the syllable lattice: a DAG over input positions
// whose edges are the syllables a span of input can be read as.
package syllable

import (
	"maps"
	"slices"

	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/charmbracelet/log"
)

// ID identifies a syllable in the syllabary.
type ID int32

// Edge carries the spelling properties of one syllable over one span.
// Edges are shared by pointer between the edge map and the index.
type Edge struct {
	spelling.Properties
	IsCorrection bool
}

type (
	VertexMap       map[int]spelling.Type
	SpellingMap     map[ID]*Edge
	EndVertexMap    map[int]SpellingMap
	EdgeMap         map[int]EndVertexMap
	SpellingIndex   map[ID][]*Edge
	SpellingIndices map[int]SpellingIndex
)

// Graph is the syllable lattice.
type Graph struct {
	InputLength       int
	InterpretedLength int
	Vertices          VertexMap
	Edges             EdgeMap
	Indices           SpellingIndices

	// joint -> end hops already charged the ambiguity penalty
	penalized map[[2]int]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Vertices:  make(VertexMap),
		Edges:     make(EdgeMap),
		Indices:   make(SpellingIndices),
		penalized: make(map[[2]int]struct{}),
	}
}

// Empty reports whether no syllable was recognized.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Edges) == 0
}

// Edge returns the edge for syllable id over [start, end), or nil.
func (g *Graph) Edge(start, end int, id ID) *Edge {
	return g.Edges[start][end][id]
}

// addEdge stores e unless an edge for the same syllable and span already
// exists with a better type or a higher credibility. It reports whether e was kept.
func (g *Graph) addEdge(start, end int, id ID, e *Edge) bool {
	ends, ok := g.Edges[start]
	if !ok {
		ends = make(EndVertexMap)
		g.Edges[start] = ends
	}
	spellings, ok := ends[end]
	if !ok {
		spellings = make(SpellingMap)
		ends[end] = spellings
	}
	if old, ok := spellings[id]; ok {
		if old.Type < e.Type || (old.Type == e.Type && old.Credibility >= e.Credibility) {
			return false
		}
	}
	spellings[id] = e
	return true
}

// CheckOverlappedSpellings looks for two-hop readings start->joint->end of the
// span covered by a start->end edge. When "Z" = "YX", the joint between Y
// and X is ambiguous: every X edge is penalized once and the joint vertex is
// marked AmbiguousSpelling.
func (g *Graph) CheckOverlappedSpellings(start, end int) {
	if g == nil {
		return
	}
	yEnds, ok := g.Edges[start]
	if !ok {
		return
	}
	if _, ok := yEnds[end]; !ok {
		return
	}
	for _, joint := range sortedKeys(yEnds) {
		if joint >= end {
			break
		}
		if joint <= start {
			continue
		}
		xSpellings, ok := g.Edges[joint][end]
		if !ok {
			continue
		}
		hop := [2]int{joint, end}
		if _, done := g.penalized[hop]; !done {
			// bad cases include pinyin syllabification "niju'ede"
			for _, e := range xSpellings {
				e.Credibility += spelling.AmbiguityPenalty
			}
			g.penalized[hop] = struct{}{}
		}
		g.Vertices[joint] = spelling.AmbiguousSpelling
		log.Debugf("ambiguous syllable joint at position %d.", joint)
	}
}

// Transpose rebuilds Indices: for every start position the end buckets are
// visited from the farthest end down, and within a bucket edges are appended
// per syllable in id order.
func (g *Graph) Transpose() {
	g.Indices = make(SpellingIndices, len(g.Edges))
	for start, ends := range g.Edges {
		index := make(SpellingIndex)
		endKeys := sortedKeys(ends)
		for i := len(endKeys) - 1; i >= 0; i-- {
			spellings := ends[endKeys[i]]
			for _, id := range sortedKeys(spellings) {
				index[id] = append(index[id], spellings[id])
			}
		}
		g.Indices[start] = index
	}
}

// Starts returns the positions with outgoing edges in ascending order.
func (g *Graph) Starts() []int {
	return sortedKeys(g.Edges)
}

// Ends returns the end positions reachable from start in ascending order.
func (g *Graph) Ends(start int) []int {
	return sortedKeys(g.Edges[start])
}

func sortedKeys[K ~int | ~int32, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
