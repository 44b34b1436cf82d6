package syllable

import (
	"container/heap"
	"strings"

	"github.com/bastiangx/sylla/pkg/spelling"
	"github.com/charmbracelet/log"
)

// Match is one way the beginning of an input suffix reads as a syllable.
// Length counts the bytes of the suffix it consumes.
type Match struct {
	Length      int
	Syllable    ID
	Type        spelling.Type
	Credibility float64
	Tips        string
}

// Prism looks up syllables spelled at the start of an input suffix.
type Prism interface {
	// CommonPrefixSearch returns every syllable spelling that is a prefix of input.
	CommonPrefixSearch(input string) []Match
	// ExpandSearch returns syllables of which input is a proper prefix.
	ExpandSearch(input string) []Match
}

// Corrector suggests syllables for mistyped prefixes of an input suffix.
type Corrector interface {
	ToleranceSearch(input string) []Match
}

// Syllabifier builds syllable graphs from raw input.
type Syllabifier struct {
	delimiters       string
	enableCompletion bool
	strictSpelling   bool
	corrector        Corrector
}

// Option configures a Syllabifier.
type Option func(*Syllabifier)

// WithDelimiters sets the characters consumed after a syllable, e.g. "'".
func WithDelimiters(delimiters string) Option {
	return func(s *Syllabifier) { s.delimiters = delimiters }
}

// WithCompletion enables completion edges for trailing partial input.
func WithCompletion(enable bool) Option {
	return func(s *Syllabifier) { s.enableCompletion = enable }
}

// WithStrictSpelling disqualifies fuzzy spellings and abbreviations that
// alone cover the whole input, and disables corrections.
func WithStrictSpelling(strict bool) Option {
	return func(s *Syllabifier) { s.strictSpelling = strict }
}

// New creates a Syllabifier.
func New(opts ...Option) *Syllabifier {
	s := &Syllabifier{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnableCorrection sets the corrector; nil disables correction.
func (s *Syllabifier) EnableCorrection(c Corrector) {
	s.corrector = c
}

type vertex struct {
	pos int
	typ spelling.Type
}

// vertexQueue is a min-heap on (position, spelling type).
type vertexQueue []vertex

func (q vertexQueue) Len() int { return len(q) }
func (q vertexQueue) Less(i, j int) bool {
	if q[i].pos != q[j].pos {
		return q[i].pos < q[j].pos
	}
	return q[i].typ < q[j].typ
}
func (q vertexQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *vertexQueue) Push(x any)   { *q = append(*q, x.(vertex)) }
func (q *vertexQueue) Pop() any {
	old := *q
	n := len(old)
	v := old[n-1]
	*q = old[:n-1]
	return v
}

// BuildSyllableGraph builds the lattice of input using prism for lookups.
// Empty input or a nil prism yields an empty graph with zero length.
func (s *Syllabifier) BuildSyllableGraph(input string, prism Prism) *Graph {
	g := NewGraph()
	if input == "" || prism == nil {
		return g
	}
	g.InputLength = len(input)

	farthest := 0
	queue := &vertexQueue{}
	heap.Push(queue, vertex{0, spelling.NormalSpelling})

	for queue.Len() > 0 {
		v := heap.Pop(queue).(vertex)
		if _, seen := g.Vertices[v.pos]; seen {
			// a better or equal spelling type reached this position first
			continue
		}
		g.Vertices[v.pos] = v.typ
		if v.pos > farthest {
			farthest = v.pos
		}
		if v.pos >= len(input) {
			continue
		}
		for _, next := range s.expand(g, input, v, prism) {
			heap.Push(queue, next)
		}
	}

	if s.enableCompletion && farthest < len(input) {
		if s.complete(g, input, farthest, prism) {
			farthest = len(input)
		}
	}
	g.InterpretedLength = farthest

	for _, start := range g.Starts() {
		for _, end := range g.Ends(start) {
			g.CheckOverlappedSpellings(start, end)
		}
	}
	g.Transpose()

	log.Debugf("syllabified %q: %d of %d bytes interpreted", input, g.InterpretedLength, g.InputLength)
	return g
}

// expand adds the edges leaving v and returns the vertices they reach.
func (s *Syllabifier) expand(g *Graph, input string, v vertex, prism Prism) []vertex {
	current := input[v.pos:]
	exact := make(map[ID]bool)
	reached := make(map[int]spelling.Type)

	reach := func(end int, t spelling.Type) {
		if t < v.typ {
			t = v.typ
		}
		if best, ok := reached[end]; !ok || t < best {
			reached[end] = t
		}
	}

	for _, m := range prism.CommonPrefixSearch(current) {
		if m.Length <= 0 || m.Length > len(current) {
			continue
		}
		end := s.skipDelimiters(input, v.pos+m.Length)
		if s.strictSpelling && v.pos == 0 && end == len(input) && m.Type != spelling.NormalSpelling {
			// disqualify fuzzy spellings and abbreviations as a single word
			continue
		}
		e := &Edge{Properties: spelling.Properties{
			Type:        m.Type,
			EndPos:      end,
			Credibility: m.Credibility,
			Tips:        m.Tips,
		}}
		e.Penalize(m.Type.Penalty())
		g.addEdge(v.pos, end, m.Syllable, e)
		if m.Type == spelling.NormalSpelling {
			exact[m.Syllable] = true
		}
		reach(end, m.Type)
	}

	if s.corrector != nil && !s.strictSpelling {
		for _, m := range s.corrector.ToleranceSearch(current) {
			if m.Length <= 0 || m.Length > len(current) || exact[m.Syllable] {
				continue
			}
			end := s.skipDelimiters(input, v.pos+m.Length)
			if g.Edge(v.pos, end, m.Syllable) != nil {
				continue
			}
			e := &Edge{
				Properties: spelling.Properties{
					Type:        m.Type,
					EndPos:      end,
					Credibility: m.Credibility,
					Tips:        m.Tips,
				},
				IsCorrection: true,
			}
			e.Penalize(spelling.CorrectionPenalty)
			g.addEdge(v.pos, end, m.Syllable, e)
			// a corrected hop is never more literal than a fuzzy one
			reach(end, max(m.Type, spelling.FuzzySpelling))
		}
	}

	next := make([]vertex, 0, len(reached))
	for _, end := range sortedKeys(reached) {
		next = append(next, vertex{end, reached[end]})
	}
	return next
}

// complete adds completion edges from pos to the end of input.
func (s *Syllabifier) complete(g *Graph, input string, pos int, prism Prism) bool {
	current := input[pos:]
	added := false
	for _, m := range prism.ExpandSearch(current) {
		e := &Edge{Properties: spelling.Properties{
			Type:        spelling.Completion,
			EndPos:      len(input),
			Credibility: m.Credibility,
			Tips:        m.Tips,
		}}
		e.Penalize(spelling.CompletionPenalty)
		if g.addEdge(pos, len(input), m.Syllable, e) {
			added = true
		}
	}
	if added {
		t := spelling.Completion
		if prev := g.Vertices[pos]; prev > t {
			t = prev
		}
		if _, ok := g.Vertices[len(input)]; !ok {
			g.Vertices[len(input)] = t
		}
	}
	return added
}

func (s *Syllabifier) skipDelimiters(input string, pos int) int {
	if s.delimiters == "" {
		return pos
	}
	for pos < len(input) && strings.IndexByte(s.delimiters, input[pos]) >= 0 {
		pos++
	}
	return pos
}
