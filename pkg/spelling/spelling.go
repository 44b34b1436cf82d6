// Package spelling describes how a span of typed input was interpreted:
// its classification, the position it ends at and how credible it is.
package spelling

import "math"

// Type classifies how literally a span matches a syllable.
// Smaller values are better; the order is relied upon by the syllabifier queue.
type Type int

const (
	NormalSpelling Type = iota
	FuzzySpelling
	Abbreviation
	Completion
	AmbiguousSpelling
	InvalidSpelling
)

// Log-probability penalties applied when composing credibility.
var (
	FuzzySpellingPenalty = math.Log(0.5)
	AbbreviationPenalty  = math.Log(0.5)
	CompletionPenalty    = math.Log(0.5)
	CorrectionPenalty    = math.Log(0.01)
	AmbiguityPenalty     = math.Log(1e-10)
)

var typeNames = [...]string{
	NormalSpelling:    "normal",
	FuzzySpelling:     "fuzzy",
	Abbreviation:      "abbrev",
	Completion:        "completion",
	AmbiguousSpelling: "ambiguous",
	InvalidSpelling:   "invalid",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Penalty returns the credibility penalty for a spelling of this type.
// Normal and ambiguous spellings carry none here; ambiguity is charged by the
// overlap check once the lattice is complete.
func (t Type) Penalty() float64 {
	switch t {
	case FuzzySpelling:
		return FuzzySpellingPenalty
	case Abbreviation:
		return AbbreviationPenalty
	case Completion:
		return CompletionPenalty
	}
	return 0
}

// Properties of a single interpreted span.
type Properties struct {
	Type        Type
	EndPos      int
	Credibility float64
	Tips        string
}

// Penalize lowers credibility by an additive log-probability penalty.
// Positive values are ignored so credibility can only go down.
func (p *Properties) Penalize(penalty float64) {
	if penalty < 0 {
		p.Credibility += penalty
	}
}

// Spelling is the textual form of a span together with its properties.
// Spellings are ordered and compared by text only.
type Spelling struct {
	Str        string
	Properties Properties
}

// New returns a normal spelling for str.
func New(str string) Spelling {
	return Spelling{Str: str}
}

// Compare orders spellings by their text.
func Compare(a, b Spelling) int {
	switch {
	case a.Str < b.Str:
		return -1
	case a.Str > b.Str:
		return 1
	}
	return 0
}
