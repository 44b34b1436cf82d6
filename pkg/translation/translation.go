// Package translation provides lazy, single-pass streams of candidates and
// the combinators that compose them into one ranked stream.
//
// A translation is either active, with a current candidate available from
// Peek, or exhausted. Next advances by exactly one candidate and reports
// whether it did; on an exhausted translation it is a no-op returning false.
// Peek never advances and returns nil once exhausted.
package translation

import "github.com/bastiangx/sylla/pkg/candidate"

// Translation is a cursor over an ordered stream of candidates.
type Translation interface {
	Next() bool
	Peek() candidate.Candidate
	Exhausted() bool
}

// Compare decides which of two translations should provide the next
// candidate: negative for a, positive for b. An exhausted translation always
// loses; otherwise the current candidates are compared.
func Compare(a, b Translation) int {
	aDone := a == nil || a.Exhausted()
	bDone := b == nil || b.Exhausted()
	switch {
	case aDone && bDone:
		return 0
	case aDone:
		return 1
	case bDone:
		return -1
	}
	ours, theirs := a.Peek(), b.Peek()
	switch {
	case ours == nil && theirs == nil:
		return 0
	case ours == nil:
		return 1
	case theirs == nil:
		return -1
	}
	return candidate.Compare(ours, theirs)
}

// Drain pulls up to limit candidates from t; limit <= 0 pulls everything.
func Drain(t Translation, limit int) candidate.List {
	var result candidate.List
	for t != nil && !t.Exhausted() {
		if limit > 0 && len(result) >= limit {
			break
		}
		c := t.Peek()
		if c == nil {
			break
		}
		result = append(result, c)
		if !t.Next() {
			break
		}
	}
	return result
}

// Unique holds zero or one candidate.
type Unique struct {
	candidate candidate.Candidate
	exhausted bool
}

// NewUnique returns a translation of c; it is exhausted at once if c is nil.
func NewUnique(c candidate.Candidate) *Unique {
	return &Unique{candidate: c, exhausted: c == nil}
}

func (t *Unique) Next() bool {
	if t.exhausted {
		return false
	}
	t.exhausted = true
	return true
}

func (t *Unique) Peek() candidate.Candidate {
	if t.exhausted {
		return nil
	}
	return t.candidate
}

func (t *Unique) Exhausted() bool { return t.exhausted }

// Fifo serves a list of candidates in order. Appending reopens it.
type Fifo struct {
	candies candidate.List
	cursor  int
}

// NewFifo returns a translation over candies, skipping nil entries.
func NewFifo(candies ...candidate.Candidate) *Fifo {
	t := &Fifo{}
	for _, c := range candies {
		t.Append(c)
	}
	return t
}

// Append adds c to the end of the queue.
func (t *Fifo) Append(c candidate.Candidate) {
	if c == nil {
		return
	}
	t.candies = append(t.candies, c)
}

// Len returns the number of candidates not yet consumed.
func (t *Fifo) Len() int { return len(t.candies) - t.cursor }

func (t *Fifo) Next() bool {
	if t.Exhausted() {
		return false
	}
	t.cursor++
	return true
}

func (t *Fifo) Peek() candidate.Candidate {
	if t.Exhausted() {
		return nil
	}
	return t.candies[t.cursor]
}

func (t *Fifo) Exhausted() bool { return t.cursor >= len(t.candies) }
