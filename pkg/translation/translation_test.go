package translation

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/bastiangx/sylla/pkg/candidate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(text string, start, end int, quality float64) candidate.Candidate {
	c := candidate.NewSimple("phrase", start, end, text, "", "")
	c.SetQuality(quality)
	return c
}

func texts(list candidate.List) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Text())
	}
	return out
}

// countingTranslation counts how often its source is asked for a candidate.
type countingTranslation struct {
	*Fifo
	peeks int
}

func (c *countingTranslation) Peek() candidate.Candidate {
	c.peeks++
	return c.Fifo.Peek()
}

func assertExhausted(t *testing.T, tr Translation) {
	t.Helper()
	assert.True(t, tr.Exhausted())
	assert.Nil(t, tr.Peek())
	assert.False(t, tr.Next(), "next on an exhausted translation is a no-op")
	assert.False(t, tr.Next())
}

func TestUnique(t *testing.T) {
	assertExhausted(t, NewUnique(nil))

	u := NewUnique(cand("ni", 0, 2, 1))
	require.False(t, u.Exhausted())
	assert.Equal(t, "ni", u.Peek().Text())
	assert.Equal(t, "ni", u.Peek().Text(), "peek does not advance")
	assert.True(t, u.Next())
	assertExhausted(t, u)
}

func TestFifo(t *testing.T) {
	assertExhausted(t, NewFifo())

	f := NewFifo(cand("a", 0, 1, 0), nil, cand("b", 0, 1, 0))
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"a", "b"}, texts(Drain(f, 0)))
	assertExhausted(t, f)

	f.Append(cand("c", 0, 1, 0))
	require.False(t, f.Exhausted(), "append reopens")
	assert.Equal(t, "c", f.Peek().Text())
	assert.Equal(t, 1, f.Len())
}

func TestUnion(t *testing.T) {
	assertExhausted(t, NewUnion())
	assertExhausted(t, NewUnion(nil, NewFifo()))

	u := NewUnion(
		NewFifo(cand("b", 0, 1, 0), cand("a", 0, 5, 9)),
		NewFifo(),
		NewUnique(cand("c", 0, 9, 9)),
	)
	assert.Equal(t, []string{"b", "a", "c"}, texts(Drain(u, 0)), "plain concatenation, no cross comparison")
	assertExhausted(t, u)

	u = NewUnion().Add(NewUnique(cand("x", 0, 1, 0))).Add(NewUnique(nil))
	assert.Equal(t, []string{"x"}, texts(Drain(u, 0)))
}

func TestCompare(t *testing.T) {
	live := NewUnique(cand("a", 0, 2, 0))
	better := NewUnique(cand("b", 0, 3, 0))
	done := NewUnique(nil)

	assert.Equal(t, -1, Compare(live, done))
	assert.Equal(t, 1, Compare(done, live), "an exhausted translation always loses")
	assert.Equal(t, 0, Compare(done, NewFifo()))
	assert.Equal(t, -1, Compare(live, nil))
	assert.Equal(t, 1, Compare(live, better))
	assert.Equal(t, -1, Compare(better, live))
}

func TestMergedLongestSpanFirst(t *testing.T) {
	first := candidate.List{cand("ni", 0, 2, 0.9), cand("nihao", 0, 5, 0.95)}
	candidate.Sort(first)

	m := NewMerged(NewFifo(first...), NewFifo(cand("ni", 0, 2, 0.3)))
	require.False(t, m.Exhausted())
	assert.Equal(t, "nihao", m.Peek().Text(), "longer span beats quality")

	got := Drain(m, 0)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"nihao", "ni", "ni"}, texts(got))
	assert.Equal(t, 0.9, got[1].Quality())
	assert.Equal(t, 0.3, got[2].Quality())
	assertExhausted(t, m)
}

func TestMergedTrustsSourceOrder(t *testing.T) {
	// the first source is out of order; Merged only compares heads
	m := NewMerged(
		NewFifo(cand("ni", 0, 2, 0.9), cand("nihao", 0, 5, 0.95)),
		NewFifo(cand("ni", 0, 2, 0.3)),
	)
	got := Drain(m, 0)
	assert.Equal(t, []string{"ni", "nihao", "ni"}, texts(got))
	assert.Equal(t, []float64{0.9, 0.95, 0.3}, []float64{got[0].Quality(), got[1].Quality(), got[2].Quality()})
}

func TestMergedWithoutSources(t *testing.T) {
	assertExhausted(t, NewMerged())
	assertExhausted(t, NewMerged(nil, NewFifo(), NewUnique(nil)))
}

func TestMergedTiesGoToFirstSource(t *testing.T) {
	a := cand("first", 0, 2, 0.5)
	b := cand("second", 0, 2, 0.5)
	m := NewMerged(NewUnique(a), NewUnique(b))
	assert.Same(t, a, m.Peek())
	m.Next()
	assert.Same(t, b, m.Peek())

	m = NewMerged(NewUnique(b)).Add(NewUnique(a))
	assert.Same(t, b, m.Peek())
}

func TestMergedRemovesExhaustedSources(t *testing.T) {
	m := NewMerged(
		NewFifo(cand("a", 0, 3, 0)),
		NewFifo(cand("b", 0, 2, 0), cand("c", 0, 1, 0)),
	)
	assert.Equal(t, 2, m.Len())
	m.Next()
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"b", "c"}, texts(Drain(m, 0)))
	assert.Zero(t, m.Len())
}

func TestMergedHeadIsMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var sources []*Fifo
	for i := 0; i < 5; i++ {
		var list candidate.List
		for j := 0; j < rng.Intn(6); j++ {
			start := rng.Intn(3)
			list = append(list, cand(fmt.Sprintf("s%d-%d", i, j), start, start+1+rng.Intn(4), rng.Float64()))
		}
		candidate.Sort(list)
		sources = append(sources, NewFifo(list...))
	}
	ts := make([]Translation, len(sources))
	for i, s := range sources {
		ts[i] = s
	}
	m := NewMerged(ts...)

	var previous candidate.Candidate
	for !m.Exhausted() {
		head := m.Peek()
		require.NotNil(t, head)
		for _, s := range sources {
			if other := s.Peek(); other != nil {
				assert.LessOrEqual(t, candidate.Compare(head, other), 0)
			}
		}
		if previous != nil {
			assert.LessOrEqual(t, candidate.Compare(previous, head), 0, "merged output stays ordered")
		}
		previous = head
		m.Next()
	}
}

func TestCache(t *testing.T) {
	src := &countingTranslation{Fifo: NewFifo(cand("a", 0, 1, 0), cand("b", 0, 1, 0))}
	c := NewCache(src)
	for i := 0; i < 5; i++ {
		assert.Equal(t, "a", c.Peek().Text())
	}
	assert.Equal(t, 1, src.peeks)

	assert.True(t, c.Next())
	assert.Equal(t, "b", c.Peek().Text())
	assert.Equal(t, 2, src.peeks)
	assert.True(t, c.Next())
	assertExhausted(t, c)
	assertExhausted(t, NewCache(nil))
}

func TestDistinct(t *testing.T) {
	d := NewDistinct(NewFifo(
		cand("ni", 0, 2, 1),
		cand("ni", 0, 2, 0.5),
		cand("nǐ", 0, 2, 0.4),
		cand("ni", 0, 1, 0.3),
		cand("you", 0, 1, 0.3),
	))
	assert.Equal(t, []string{"ni", "nǐ", "you"}, texts(Drain(d, 0)))
	assertExhausted(t, d)
	assert.True(t, d.AlreadyHas("you"))
	assert.False(t, d.AlreadyHas("hao"))

	allDup := NewDistinct(NewMerged(
		NewFifo(cand("x", 0, 2, 1)),
		NewFifo(cand("x", 0, 2, 0)),
	))
	assert.Equal(t, []string{"x"}, texts(Drain(allDup, 0)))
	assertExhausted(t, allDup)
}

func TestDistinctNeverRepeats(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var list candidate.List
	for i := 0; i < 200; i++ {
		list = append(list, cand(fmt.Sprintf("w%d", rng.Intn(30)), 0, 1, 0))
	}
	seen := map[string]bool{}
	for _, c := range Drain(NewDistinct(NewFifo(list...)), 0) {
		assert.False(t, seen[c.Text()], c.Text())
		seen[c.Text()] = true
	}
}

func TestPrefetch(t *testing.T) {
	var list candidate.List
	for i := 0; i < 10; i++ {
		list = append(list, cand(fmt.Sprintf("c%d", i), 0, 1, 0))
	}
	src := NewFifo(list...)
	p := NewPrefetch(src, 4, 1)
	assert.Zero(t, p.Buffered(), "nothing read before first use")

	assert.Equal(t, "c0", p.Peek().Text())
	assert.Equal(t, 4, p.Buffered())
	assert.Equal(t, 6, src.Len())

	p.Next()
	p.Next()
	assert.Equal(t, 2, p.Buffered(), "above low water, not refilled")
	p.Next()
	assert.Equal(t, 4, p.Buffered(), "refilled at low water")

	assert.Equal(t, []string{"c3", "c4", "c5", "c6", "c7", "c8", "c9"}, texts(Drain(p, 0)))
	assertExhausted(t, p)
}

func TestPrefetchPreservesOrder(t *testing.T) {
	var list candidate.List
	for i := 0; i < 25; i++ {
		list = append(list, cand(fmt.Sprintf("c%d", i), 0, 1, 0))
	}
	for _, size := range []int{-1, 0, 1, 3, 8, 100} {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			p := NewPrefetch(NewFifo(list...), size, size/2)
			assert.Equal(t, texts(list), texts(Drain(p, 0)))
		})
	}
	assertExhausted(t, NewPrefetch(nil, 4, 1))
}

func TestPrefetchBackgroundReplenish(t *testing.T) {
	var list candidate.List
	for i := 0; i < 50; i++ {
		list = append(list, cand(fmt.Sprintf("c%d", i), 0, 1, 0))
	}
	p := NewPrefetch(NewFifo(list...), 8, 2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			p.Replenish()
		}
	}()
	got := Drain(p, 0)
	wg.Wait()
	assert.Equal(t, texts(list), texts(got))
}

func TestDrainLimit(t *testing.T) {
	f := NewFifo(cand("a", 0, 1, 0), cand("b", 0, 1, 0), cand("c", 0, 1, 0))
	assert.Equal(t, []string{"a", "b"}, texts(Drain(f, 2)))
	assert.Equal(t, "c", f.Peek().Text())
	assert.Empty(t, Drain(nil, 3))
}

func TestPipeline(t *testing.T) {
	long := candidate.List{cand("nihao", 0, 5, 0.95), cand("ni", 0, 2, 0.9)}
	short := candidate.List{cand("ni", 0, 2, 0.3), cand("niu", 0, 2, 0.2)}
	raw := NewUnique(cand("nihaoo", 0, 6, -100))

	merged := NewMerged(NewFifo(long...), NewFifo(short...))
	p := NewPrefetch(NewDistinct(NewUnion(merged, raw)), 2, 0)
	assert.Equal(t, []string{"nihao", "ni", "niu", "nihaoo"}, texts(Drain(p, 0)))
}
