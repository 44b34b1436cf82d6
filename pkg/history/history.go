// Package history remembers committed phrases and scores how likely they
// are to be wanted again.
package history

import (
	"slices"
	"sync"

	"github.com/bastiangx/sylla/pkg/dynamics"
)

// Record is the commit history of one phrase. Ticks count commits across
// the whole history, so elapsed ticks measure how much else was typed.
type Record struct {
	Text     string
	Commits  int
	LastTick int64
}

// History is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	records map[string]*Record
	tick    int64
}

// New returns an empty history.
func New() *History {
	return &History{records: make(map[string]*Record)}
}

// Learn records one commit of text.
func (h *History) Learn(text string) {
	if text == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tick++
	r, ok := h.records[text]
	if !ok {
		r = &Record{Text: text}
		h.records[text] = r
	}
	r.Commits++
	r.LastTick = h.tick
}

// Bonus returns the recall probability of text in [0, 1]: zero if it was
// never committed, close to the commit stability right after a commit and
// fading as other commits happen.
func (h *History) Bonus(text string) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.records[text]
	if !ok {
		return 0
	}
	elapsed := float64(h.tick - r.LastTick)
	stability := 1 - 1/float64(r.Commits+1)
	// the adjustment term fades from the commit count as time passes
	difficulty := dynamics.Decay(0, elapsed, float64(r.Commits), 0)
	p := dynamics.Retention(stability, 0, elapsed, difficulty)
	return max(0, min(p, 1))
}

// Len returns the number of distinct phrases learned.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Tick returns the number of commits learned.
func (h *History) Tick() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tick
}

// Records returns a copy of every record, most recent first.
func (h *History) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, 0, len(h.records))
	for _, r := range h.records {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b Record) int {
		switch {
		case a.LastTick > b.LastTick:
			return -1
		case a.LastTick < b.LastTick:
			return 1
		}
		return 0
	})
	return out
}
