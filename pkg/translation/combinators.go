package translation

import (
	"slices"
	"sync"

	"github.com/bastiangx/sylla/pkg/candidate"
	"github.com/charmbracelet/log"
)

// Union serves its translations one after another, each to exhaustion.
type Union struct {
	translations []Translation
}

// NewUnion concatenates ts, skipping nil and exhausted ones.
func NewUnion(ts ...Translation) *Union {
	u := &Union{}
	for _, t := range ts {
		u.Add(t)
	}
	return u
}

// Add appends t unless it is nil or exhausted.
func (u *Union) Add(t Translation) *Union {
	if t != nil && !t.Exhausted() {
		u.translations = append(u.translations, t)
	}
	return u
}

func (u *Union) Next() bool {
	if u.Exhausted() {
		return false
	}
	front := u.translations[0]
	front.Next()
	if front.Exhausted() {
		u.translations = u.translations[1:]
	}
	return true
}

func (u *Union) Peek() candidate.Candidate {
	if u.Exhausted() {
		return nil
	}
	return u.translations[0].Peek()
}

func (u *Union) Exhausted() bool { return len(u.translations) == 0 }

// Merged is a k-way merge of translations that are each ordered by
// candidate priority. The source with the best current candidate is elected
// to serve; ties go to the source added first.
type Merged struct {
	translations []Translation
	elected      int
}

// NewMerged merges ts, each of which must already yield its candidates in
// candidate.Compare order. With no live sources it is exhausted at once.
func NewMerged(ts ...Translation) *Merged {
	m := &Merged{}
	for _, t := range ts {
		if t != nil && !t.Exhausted() {
			m.translations = append(m.translations, t)
		}
	}
	m.elect()
	return m
}

// Add merges t unless it is nil or exhausted.
func (m *Merged) Add(t Translation) *Merged {
	if t != nil && !t.Exhausted() {
		m.translations = append(m.translations, t)
		m.elect()
	}
	return m
}

// Len returns the number of live sources.
func (m *Merged) Len() int { return len(m.translations) }

func (m *Merged) elect() {
	m.elected = 0
	for k := 1; k < len(m.translations); k++ {
		if Compare(m.translations[k], m.translations[m.elected]) < 0 {
			m.elected = k
		}
	}
}

func (m *Merged) Next() bool {
	if m.Exhausted() {
		return false
	}
	elected := m.translations[m.elected]
	elected.Next()
	if elected.Exhausted() {
		log.Debugf("translation #%d has been exhausted.", m.elected)
		m.translations = slices.Delete(m.translations, m.elected, m.elected+1)
	}
	m.elect()
	return true
}

func (m *Merged) Peek() candidate.Candidate {
	if m.Exhausted() {
		return nil
	}
	return m.translations[m.elected].Peek()
}

func (m *Merged) Exhausted() bool { return len(m.translations) == 0 }

// Cache memoizes the current candidate of a translation so repeated Peek
// calls reach the source once per position.
type Cache struct {
	translation Translation
	cache       candidate.Candidate
}

// NewCache wraps t.
func NewCache(t Translation) *Cache {
	return &Cache{translation: t}
}

func (c *Cache) Next() bool {
	if c.Exhausted() {
		return false
	}
	c.translation.Next()
	c.cache = nil
	return true
}

func (c *Cache) Peek() candidate.Candidate {
	if c.Exhausted() {
		return nil
	}
	if c.cache == nil {
		c.cache = c.translation.Peek()
	}
	return c.cache
}

func (c *Cache) Exhausted() bool {
	return c.translation == nil || c.translation.Exhausted()
}

// Distinct drops candidates whose text was already served.
type Distinct struct {
	cache *Cache
	seen  map[string]struct{}
}

// NewDistinct wraps t.
func NewDistinct(t Translation) *Distinct {
	d := &Distinct{
		cache: NewCache(t),
		seen:  make(map[string]struct{}),
	}
	d.settle()
	return d
}

// AlreadyHas reports whether text was served.
func (d *Distinct) AlreadyHas(text string) bool {
	_, ok := d.seen[text]
	return ok
}

// settle skips duplicates and records the text of the new current candidate.
func (d *Distinct) settle() {
	for !d.cache.Exhausted() {
		c := d.cache.Peek()
		if c == nil {
			return
		}
		if !d.AlreadyHas(c.Text()) {
			d.seen[c.Text()] = struct{}{}
			return
		}
		d.cache.Next()
	}
}

func (d *Distinct) Next() bool {
	if d.Exhausted() {
		return false
	}
	d.cache.Next()
	d.settle()
	return true
}

func (d *Distinct) Peek() candidate.Candidate {
	if d.Exhausted() {
		return nil
	}
	return d.cache.Peek()
}

func (d *Distinct) Exhausted() bool { return d.cache.Exhausted() }

// Default buffer sizing of Prefetch.
const (
	DefaultPrefetchSize     = 8
	DefaultPrefetchLowWater = 2
)

// Prefetch reads ahead of its consumer into a buffer, refilled to size
// whenever it drops to lowWater. Candidate order is unchanged. The buffer is
// guarded so Replenish may run from another goroutine.
type Prefetch struct {
	mu          sync.Mutex
	translation Translation
	buffer      candidate.List
	size        int
	lowWater    int
}

// NewPrefetch wraps t. size is at least 1 and lowWater is clamped below it.
func NewPrefetch(t Translation, size, lowWater int) *Prefetch {
	if size < 1 {
		size = 1
	}
	lowWater = max(0, min(lowWater, size-1))
	return &Prefetch{translation: t, size: size, lowWater: lowWater}
}

// Replenish fills the buffer and reports whether it holds any candidate.
func (p *Prefetch) Replenish() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.replenish()
}

func (p *Prefetch) replenish() bool {
	for len(p.buffer) < p.size && p.translation != nil && !p.translation.Exhausted() {
		c := p.translation.Peek()
		if c == nil {
			break
		}
		p.buffer = append(p.buffer, c)
		p.translation.Next()
	}
	return len(p.buffer) > 0
}

// Buffered returns the number of candidates read ahead.
func (p *Prefetch) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffer)
}

func (p *Prefetch) Next() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buffer) == 0 && !p.replenish() {
		return false
	}
	p.buffer[0] = nil
	p.buffer = p.buffer[1:]
	if len(p.buffer) <= p.lowWater {
		p.replenish()
	}
	return true
}

func (p *Prefetch) Peek() candidate.Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buffer) == 0 && !p.replenish() {
		return nil
	}
	return p.buffer[0]
}

func (p *Prefetch) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffer) == 0 && (p.translation == nil || p.translation.Exhausted())
}
