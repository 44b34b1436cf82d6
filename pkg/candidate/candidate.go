// Package candidate defines the committable results produced by a lookup
// session: simple candidates and the shadow and uniquified wrappers around them.
package candidate

import "sort"

// Candidate is a result the user can commit.
// [Start, End) marks the span of input it corresponds to.
type Candidate interface {
	// Type is recognized by translators in the learning phase.
	Type() string
	Start() int
	End() int
	Quality() float64

	// Text is committed when the candidate is selected.
	Text() string
	Comment() string
	// Preedit replaces the input string in the preedit area.
	Preedit() string

	SetType(typ string)
	SetStart(start int)
	SetEnd(end int)
	SetQuality(quality float64)
}

// List is an ordered list of candidates.
type List []Candidate

// Base holds the metadata shared by every candidate variant.
type Base struct {
	typ     string
	start   int
	end     int
	quality float64
}

// NewBase returns metadata for a candidate of typ over [start, end).
func NewBase(typ string, start, end int, quality float64) Base {
	return Base{typ: typ, start: start, end: end, quality: quality}
}

func (b *Base) Type() string         { return b.typ }
func (b *Base) Start() int           { return b.start }
func (b *Base) End() int             { return b.end }
func (b *Base) Quality() float64     { return b.quality }
func (b *Base) SetType(typ string)   { b.typ = typ }
func (b *Base) SetStart(start int)   { b.start = start }
func (b *Base) SetEnd(end int)       { b.end = end }
func (b *Base) SetQuality(q float64) { b.quality = q }

// Compare orders candidates for the pipeline: the one nearer to the
// beginning of the input comes first, then the longer one, then the one of
// higher quality. It returns 0 for a draw.
func Compare(a, b Candidate) int {
	if k := a.Start() - b.Start(); k != 0 {
		if k < 0 {
			return -1
		}
		return 1
	}
	if k := a.End() - b.End(); k != 0 {
		if k > 0 {
			return -1
		}
		return 1
	}
	qa, qb := a.Quality(), b.Quality()
	switch {
	case qa > qb:
		return -1
	case qa < qb:
		return 1
	}
	return 0
}

// Sort orders list by Compare, keeping arrival order among draws.
func Sort(list List) {
	sort.SliceStable(list, func(i, j int) bool {
		return Compare(list[i], list[j]) < 0
	})
}

// Genuine unwraps a uniquified candidate to its first member.
// Any other candidate is returned as is.
func Genuine(c Candidate) Candidate {
	if u, ok := c.(*Uniquified); ok && len(u.items) > 0 {
		return u.items[0]
	}
	return c
}

// GenuineAll returns the members of a uniquified candidate, or c itself,
// with any shadow wrapper stripped from each.
func GenuineAll(c Candidate) List {
	u, ok := c.(*Uniquified)
	if !ok {
		return List{unpackShadow(c)}
	}
	result := make(List, 0, len(u.items))
	for _, item := range u.items {
		result = append(result, unpackShadow(item))
	}
	return result
}

func unpackShadow(c Candidate) Candidate {
	if s, ok := c.(*Shadow); ok {
		return s.item
	}
	return c
}
